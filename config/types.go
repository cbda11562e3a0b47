package config

import "time"

type AppConfig struct {
	ListenAddr string          `yaml:"listen_addr" env:"CCF_LISTEN_ADDR"`
	AppEnv     string          `yaml:"app_env" env:"CCF_APP_ENV"`
	LogLevel   string          `yaml:"log_level" env:"CCF_LOG_LEVEL"`
	LogFormat  string          `yaml:"log_format" env:"CCF_LOG_FORMAT"`
	Data       DataConfig      `yaml:"data"`
	Output     OutputConfig    `yaml:"output"`
	Policy     PolicyConfig    `yaml:"policy"`
	Templates  TemplatesConfig `yaml:"templates"`
	DB         DBConfig        `yaml:"db"`
	Pandoc     PandocConfig    `yaml:"pandoc"`
	HTTP       HTTPConfig      `yaml:"http"`
	Metrics    MetricsConfig   `yaml:"metrics"`
	Auth       AuthConfig      `yaml:"auth"`
}

func (c *AppConfig) IsDev() bool {
	if c == nil {
		return false
	}
	return c.AppEnv == "dev"
}

type DataConfig struct {
	RawDir       string `yaml:"raw_dir" env:"CCF_DATA_RAW_DIR"`
	ProcessedDir string `yaml:"processed_dir" env:"CCF_DATA_PROCESSED_DIR"`
}

type OutputConfig struct {
	Dir           string `yaml:"dir" env:"CCF_OUTPUT_DIR"`
	DefaultFormat string `yaml:"default_format" env:"CCF_OUTPUT_FORMAT"`
	FrontMatter   bool   `yaml:"front_matter" env:"CCF_OUTPUT_FRONT_MATTER"`
}

// PolicyConfig holds document metadata defaults a generation request may
// override.
type PolicyConfig struct {
	DefaultTemplate string `yaml:"default_template" env:"CCF_POLICY_TEMPLATE"`
	Version         string `yaml:"version"`
	Classification  string `yaml:"classification"`
	Owner           string `yaml:"owner"`
	ReviewSchedule  string `yaml:"review_schedule" env:"CCF_POLICY_REVIEW_SCHEDULE"`
}

type TemplatesConfig struct {
	Backend string `yaml:"backend" env:"CCF_TEMPLATES_BACKEND"` // file | sql
	Path    string `yaml:"path" env:"CCF_TEMPLATES_PATH"`
}

type DBConfig struct {
	Driver string `yaml:"driver" env:"CCF_DB_DRIVER"`
	URL    string `yaml:"url" env:"CCF_DB_URL"`
	Path   string `yaml:"path" env:"CCF_DB_PATH"`
}

type PandocConfig struct {
	Binary  string        `yaml:"binary" env:"CCF_PANDOC_BIN"`
	Timeout time.Duration `yaml:"timeout" env:"CCF_PANDOC_TIMEOUT"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"CCF_METRICS_ENABLED"`
	Token   string `yaml:"token" env:"CCF_METRICS_TOKEN"`
}

// AuthConfig maps API bearer tokens to roles (viewer, editor).
type AuthConfig struct {
	Enabled bool              `yaml:"enabled" env:"CCF_AUTH_ENABLED"`
	Tokens  map[string]string `yaml:"tokens" env:"CCF_AUTH_TOKENS"`
}
