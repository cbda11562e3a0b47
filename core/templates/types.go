// Package templates keeps the policy template registry: read-only built-ins
// plus custom templates behind a persistence port.
package templates

import (
	"context"
	"errors"
	"time"

	"ccf-policy/core/render"
)

const DefaultID = "standard"

var (
	ErrTemplateExists   = errors.New("template already exists")
	ErrTemplateNotFound = errors.New("template not found")
	ErrBuiltInTemplate  = errors.New("built-in templates are read-only")
	ErrInvalidTemplate  = errors.New("invalid template")
)

type Template struct {
	ID          string               `json:"id" yaml:"id"`
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description" yaml:"description"`
	Sections    []render.SectionSpec `json:"sections,omitempty" yaml:"sections,omitempty"`
	Content     string               `json:"content" yaml:"content"`
	BuiltIn     bool                 `json:"built_in" yaml:"-"`
	UpdatedAt   time.Time            `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Summary is the list view of a template.
type Summary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BuiltIn     bool     `json:"built_in"`
	Sections    []string `json:"sections"`
}

// DetailSection is one level-2 section of a template's content.
type DetailSection struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Kind  string `json:"kind,omitempty"`
	Body  string `json:"body"`
}

type Details struct {
	Summary
	Placeholders []string        `json:"placeholders"`
	Sections     []DetailSection `json:"sections"`
}

// Input creates a custom template from either a section list or raw content.
type Input struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Sections    []render.SectionSpec `json:"sections"`
	Content     string               `json:"content"`
}

// Patch updates a custom template. Nil fields are left unchanged; Sections,
// when set, recompose the content.
type Patch struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Sections    []render.SectionSpec `json:"sections"`
	Content     *string              `json:"content"`
}

// Store persists custom templates as a whole.
type Store interface {
	LoadAll(ctx context.Context) ([]Template, error)
	SaveAll(ctx context.Context, list []Template) error
}
