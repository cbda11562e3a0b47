package appbootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"ccf-policy/api"
	"ccf-policy/config"
	"ccf-policy/core/dataset"
	"ccf-policy/core/docs"
	"ccf-policy/core/policy"
	"ccf-policy/core/store"
	"ccf-policy/core/templates"
	"ccf-policy/core/utils"
)

// Core is everything a generation needs: the loaded dataset, the template
// registry and the generator wired to them.
type Core struct {
	DB        *sql.DB
	Data      *dataset.DataSet
	Templates *templates.Registry
	Converter *docs.Converter
	Generator *policy.Generator
}

func (c *Core) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

type Runtime struct {
	*Core
	Server *api.Server
}

// InitCore loads the processed dataset and opens template storage.
func InitCore(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*Core, error) {
	if err := ensureStorageDirs(cfg, logger); err != nil {
		return nil, fmt.Errorf("storage dirs: %w", err)
	}
	data, err := dataset.Load(dataset.SourcesFromDir(cfg.Data.ProcessedDir))
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	c := data.Counts()
	logger.Printf("dataset loaded: guidance=%d framework=%d mapped=%d evidence=%d", c.Guidance, c.Framework, c.Mapped, c.Evidence)

	core := &Core{Data: data}
	tplStore, err := openTemplateStore(ctx, cfg, core, logger)
	if err != nil {
		return nil, err
	}
	reg, err := templates.NewRegistry(ctx, tplStore, logger)
	if err != nil {
		_ = core.Close()
		return nil, fmt.Errorf("templates: %w", err)
	}
	core.Templates = reg

	review, err := policy.NewReviewCycle(cfg.Policy.ReviewSchedule)
	if err != nil {
		_ = core.Close()
		return nil, err
	}
	core.Converter = docs.NewConverter(cfg.Pandoc.Binary, cfg.Pandoc.Timeout, nil, logger)
	if !core.Converter.Available() {
		logger.Warnf("pandoc binary %q not found, docx export will fail", cfg.Pandoc.Binary)
	}
	core.Generator = policy.NewGenerator(data, &defaultTemplate{reg: reg, id: cfg.Policy.DefaultTemplate}, core.Converter, policy.Options{
		OutputDir:   cfg.Output.Dir,
		FrontMatter: cfg.Output.FrontMatter,
		Defaults: policy.Defaults{
			Version:        cfg.Policy.Version,
			Classification: cfg.Policy.Classification,
			Owner:          cfg.Policy.Owner,
		},
		Review: review,
	}, logger)
	return core, nil
}

func InitRuntime(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*Runtime, error) {
	core, err := InitCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	srv := api.NewServer(cfg, logger, api.ServerDeps{
		Data:      core.Data,
		Templates: core.Templates,
		Generator: core.Generator,
		DB:        core.DB,
	})
	return &Runtime{Core: core, Server: srv}, nil
}

func openTemplateStore(ctx context.Context, cfg *config.AppConfig, core *Core, logger *utils.Logger) (templates.Store, error) {
	if cfg.Templates.Backend != "sql" {
		return templates.NewFileStore(cfg.Templates.Path), nil
	}
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("db init: %w", err)
	}
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	core.DB = db
	return store.NewTemplatesStore(db), nil
}

// defaultTemplate resolves an empty template id to the configured default.
type defaultTemplate struct {
	reg *templates.Registry
	id  string
}

func (d *defaultTemplate) Resolve(id string) templates.Template {
	if id == "" {
		id = d.id
	}
	return d.reg.Resolve(id)
}
