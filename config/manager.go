package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	defaultConfigPath = "config/app.yaml"
	envPrefix         = "CCF_"
)

func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfgPath := resolveConfigPath()
	if st, err := os.Stat(cfgPath); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	applyEnvAliases(cfg)
	normalizeConfig(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvAliases(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	if v := getEnv("ENV", "APP_ENV"); v != "" {
		cfg.AppEnv = strings.TrimSpace(v)
	}
	if v := getEnv("PORT", envPrefix+"PORT"); v != "" {
		cfg.ListenAddr = listenAddrWithPort(cfg.ListenAddr, v)
	}
	if v := getEnv("DATA_PATH", envPrefix+"DATA_PATH"); v != "" {
		base := strings.TrimSpace(v)
		cfg.Data.RawDir = filepath.Join(base, "raw")
		cfg.Data.ProcessedDir = filepath.Join(base, "processed")
		cfg.Templates.Path = filepath.Join(base, "templates.json")
	}
	if v := getEnv("OUTPUT_PATH", envPrefix+"OUTPUT_PATH"); v != "" {
		cfg.Output.Dir = strings.TrimSpace(v)
	}
	if v := getEnv("PANDOC_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.Pandoc.Timeout = time.Duration(n) * time.Second
		}
	}
}

func normalizeConfig(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.Data.RawDir = strings.TrimSpace(cfg.Data.RawDir)
	cfg.Data.ProcessedDir = strings.TrimSpace(cfg.Data.ProcessedDir)
	cfg.Output.Dir = strings.TrimSpace(cfg.Output.Dir)
	cfg.Output.DefaultFormat = strings.ToLower(strings.TrimSpace(cfg.Output.DefaultFormat))
	cfg.Templates.Backend = strings.ToLower(strings.TrimSpace(cfg.Templates.Backend))
	cfg.Templates.Path = strings.TrimSpace(cfg.Templates.Path)
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	cfg.DB.URL = strings.TrimSpace(cfg.DB.URL)
	cfg.DB.Path = strings.TrimSpace(cfg.DB.Path)
	cfg.Pandoc.Binary = strings.TrimSpace(cfg.Pandoc.Binary)
	cfg.Metrics.Token = strings.TrimSpace(cfg.Metrics.Token)
	cfg.Policy.ReviewSchedule = strings.TrimSpace(cfg.Policy.ReviewSchedule)

	if cfg.AppEnv == "" {
		cfg.AppEnv = "prod"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "0.0.0.0:8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Data.RawDir == "" {
		cfg.Data.RawDir = filepath.Join("data", "raw")
	}
	if cfg.Data.ProcessedDir == "" {
		cfg.Data.ProcessedDir = filepath.Join("data", "processed")
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = filepath.Join("output", "policies")
	}
	if cfg.Output.DefaultFormat == "" {
		cfg.Output.DefaultFormat = "md"
	}
	if strings.TrimSpace(cfg.Policy.DefaultTemplate) == "" {
		cfg.Policy.DefaultTemplate = "standard"
	}
	if strings.TrimSpace(cfg.Policy.Version) == "" {
		cfg.Policy.Version = "1.0"
	}
	if strings.TrimSpace(cfg.Policy.Classification) == "" {
		cfg.Policy.Classification = "Internal"
	}
	if strings.TrimSpace(cfg.Policy.Owner) == "" {
		cfg.Policy.Owner = "Information Security Team"
	}
	if cfg.Policy.ReviewSchedule == "" {
		cfg.Policy.ReviewSchedule = "@yearly"
	}
	if cfg.Templates.Backend == "" {
		cfg.Templates.Backend = "file"
	}
	if cfg.Templates.Path == "" {
		cfg.Templates.Path = filepath.Join("data", "templates.json")
	}
	if cfg.DB.Driver == "" {
		if cfg.DB.URL != "" {
			cfg.DB.Driver = "postgres"
		} else {
			cfg.DB.Driver = "sqlite"
		}
	}
	if cfg.DB.Driver == "pg" {
		cfg.DB.Driver = "postgres"
	}
	if cfg.DB.Driver == "sqlite" && cfg.DB.Path == "" {
		cfg.DB.Path = filepath.Join("data", "ccf.db")
	}
	if cfg.Pandoc.Binary == "" {
		cfg.Pandoc.Binary = "pandoc"
	}
	if cfg.Pandoc.Timeout <= 0 {
		cfg.Pandoc.Timeout = 60 * time.Second
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout <= 0 {
		cfg.HTTP.WriteTimeout = 2 * time.Minute
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		cfg.HTTP.MaxBodyBytes = 1 << 20
	}
	tokens := make(map[string]string, len(cfg.Auth.Tokens))
	for tok, role := range cfg.Auth.Tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		tokens[tok] = strings.ToLower(strings.TrimSpace(role))
	}
	cfg.Auth.Tokens = tokens
}

func getEnv(keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func resolveConfigPath() string {
	if v := getEnv("APP_CONFIG", envPrefix+"APP_CONFIG"); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultConfigPath
}

func listenAddrWithPort(currentAddr, portRaw string) string {
	port := strings.TrimSpace(portRaw)
	if port == "" {
		return currentAddr
	}
	if _, err := strconv.Atoi(port); err != nil {
		return currentAddr
	}
	host := "0.0.0.0"
	parts := strings.Split(strings.TrimSpace(currentAddr), ":")
	if len(parts) > 1 {
		host = strings.Join(parts[:len(parts)-1], ":")
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host + ":" + port
}
