package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var (
	validFormats   = map[string]bool{"md": true, "docx": true}
	validBackends  = map[string]bool{"file": true, "sql": true}
	validDrivers   = map[string]bool{"sqlite": true, "postgres": true}
	validRoles     = map[string]bool{"viewer": true, "editor": true}
	reviewSchedule = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if !validFormats[cfg.Output.DefaultFormat] {
		return fmt.Errorf("unsupported output.default_format: %s", cfg.Output.DefaultFormat)
	}
	if !validBackends[cfg.Templates.Backend] {
		return fmt.Errorf("unsupported templates.backend: %s", cfg.Templates.Backend)
	}
	if cfg.Templates.Backend == "sql" {
		if !validDrivers[cfg.DB.Driver] {
			return fmt.Errorf("unsupported db.driver: %s", cfg.DB.Driver)
		}
		if cfg.DB.Driver == "postgres" && cfg.DB.URL == "" {
			return fmt.Errorf("db.url must be set for postgres driver")
		}
		if cfg.DB.Driver == "sqlite" && cfg.DB.Path == "" {
			return fmt.Errorf("db.path must be set for sqlite driver")
		}
	}
	if _, err := reviewSchedule.Parse(cfg.Policy.ReviewSchedule); err != nil {
		return fmt.Errorf("invalid policy.review_schedule %q: %w", cfg.Policy.ReviewSchedule, err)
	}
	if cfg.Auth.Enabled {
		if len(cfg.Auth.Tokens) == 0 {
			return fmt.Errorf("auth.tokens must be set when auth is enabled")
		}
		for _, role := range cfg.Auth.Tokens {
			if !validRoles[role] {
				return fmt.Errorf("unsupported auth role: %s", role)
			}
		}
	}
	if !cfg.IsDev() && cfg.Metrics.Enabled && cfg.Metrics.Token == "" {
		return fmt.Errorf("metrics.token must be set outside APP_ENV=dev")
	}
	return nil
}
