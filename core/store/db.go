package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"ccf-policy/config"
	"ccf-policy/core/utils"
	_ "modernc.org/sqlite"
)

// NewDB opens the template database configured in cfg.DB.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if driver == "" {
		if strings.TrimSpace(cfg.DB.URL) != "" {
			driver = "postgres"
		} else {
			driver = "sqlite"
		}
	}
	switch driver {
	case "postgres", "pg":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return nil, errors.New("CCF_DB_URL is required for postgres")
		}
		db, err := sql.Open(postgresDriverName, cfg.DB.URL)
		if err != nil {
			logger.Errorf("db open failed: %v", err)
			return nil, err
		}
		logger.Printf("db open postgres")
		return db, nil
	case "sqlite":
		path := strings.TrimSpace(cfg.DB.Path)
		if path == "" {
			return nil, errors.New("CCF_DB_PATH is required for sqlite")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		db, err := sql.Open("sqlite", path)
		if err != nil {
			logger.Errorf("db open failed: %v", err)
			return nil, err
		}
		// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		logger.Printf("db open sqlite path=%s", path)
		return db, nil
	default:
		return nil, errors.New("unsupported db driver: " + driver)
	}
}
