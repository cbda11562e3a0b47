package appbootstrap

import (
	"os"
	"path/filepath"
	"strings"

	"ccf-policy/config"
	"ccf-policy/core/utils"
)

func ensureStorageDirs(cfg *config.AppConfig, logger *utils.Logger) error {
	if cfg == nil {
		return nil
	}
	type item struct {
		name string
		path string
	}
	items := []item{
		{name: "processed", path: cfg.Data.ProcessedDir},
		{name: "output", path: cfg.Output.Dir},
	}
	if cfg.Templates.Backend == "file" {
		items = append(items, item{name: "templates", path: filepath.Dir(cfg.Templates.Path)})
	}
	for _, it := range items {
		p := strings.TrimSpace(it.path)
		if p == "" || p == "." {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			logger.Errorf("storage dir init failed name=%s path=%s: %v", it.name, p, err)
			return err
		}
	}
	return nil
}
