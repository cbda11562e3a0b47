package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ccf-policy/core/render"
	"ccf-policy/core/templates"
)

// TemplatesStore keeps custom policy templates in the policy_templates table.
type TemplatesStore struct {
	db *sql.DB
}

func NewTemplatesStore(db *sql.DB) *TemplatesStore {
	return &TemplatesStore{db: db}
}

var _ templates.Store = (*TemplatesStore)(nil)

func (s *TemplatesStore) LoadAll(ctx context.Context) ([]templates.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, sections, content, updated_at
		FROM policy_templates
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []templates.Template
	for rows.Next() {
		var (
			t                 templates.Template
			sections, updated string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &sections, &t.Content, &updated); err != nil {
			return nil, err
		}
		if sections != "" {
			var specs []render.SectionSpec
			if err := json.Unmarshal([]byte(sections), &specs); err != nil {
				return nil, fmt.Errorf("template %s: sections: %w", t.ID, err)
			}
			t.Sections = specs
		}
		if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			t.UpdatedAt = ts
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// SaveAll replaces the stored set with list in one transaction.
func (s *TemplatesStore) SaveAll(ctx context.Context, list []templates.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM policy_templates`); err != nil {
		return err
	}
	for _, t := range list {
		sections := ""
		if len(t.Sections) > 0 {
			raw, err := json.Marshal(t.Sections)
			if err != nil {
				return err
			}
			sections = string(raw)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO policy_templates(id, name, description, sections, content, updated_at)
			VALUES(?,?,?,?,?,?)`,
			t.ID, t.Name, t.Description, sections, t.Content, t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("template %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}
