package policy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"ccf-policy/core/controls"
	"ccf-policy/core/evidence"
	"ccf-policy/core/mapping"
	"ccf-policy/core/render"
	"ccf-policy/core/templates"
	"ccf-policy/core/utils"
)

const (
	FormatMarkdown = "md"
	FormatDocx     = "docx"
)

var (
	ErrInvalidFormat        = errors.New("invalid output format")
	ErrConverterUnavailable = errors.New("docx converter unavailable")
)

// Dataset is the read-only data a generator works from.
type Dataset interface {
	mapping.Source
	evidence.Library
}

// TemplateSource resolves a template id, falling back to the default.
type TemplateSource interface {
	Resolve(id string) templates.Template
}

// DocxConverter turns a Markdown file into a Word document.
type DocxConverter interface {
	MarkdownToDocx(ctx context.Context, src, dst string) (string, error)
}

// Defaults are the document metadata used when a config leaves them empty.
type Defaults struct {
	Version        string
	Classification string
	Owner          string
}

type Options struct {
	OutputDir   string
	FrontMatter bool
	Defaults    Defaults
	Review      ReviewCycle
}

type Generator struct {
	engine    *mapping.Engine
	evidence  *evidence.Resolver
	templates TemplateSource
	converter DocxConverter
	opts      Options
	logger    *utils.Logger
	now       func() time.Time
}

func NewGenerator(data Dataset, tpls TemplateSource, conv DocxConverter, opts Options, logger *utils.Logger) *Generator {
	if opts.Defaults.Version == "" {
		opts.Defaults.Version = "1.0"
	}
	if opts.Defaults.Classification == "" {
		opts.Defaults.Classification = "Internal"
	}
	if opts.Defaults.Owner == "" {
		opts.Defaults.Owner = "Information Security Team"
	}
	if opts.Review.schedule == nil {
		opts.Review, _ = NewReviewCycle(DefaultReviewSchedule)
	}
	return &Generator{
		engine:    mapping.NewEngine(data),
		evidence:  evidence.NewResolver(data),
		templates: tpls,
		converter: conv,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Document is one rendered policy.
type Document struct {
	ID             string    `json:"generation_id"`
	PolicyStandard string    `json:"policy_standard"`
	TemplateID     string    `json:"template_id"`
	Frameworks     []string  `json:"frameworks"`
	ControlIDs     []string  `json:"control_ids"`
	GeneratedAt    time.Time `json:"generated_at"`
	NextReview     time.Time `json:"next_review"`
	Filename       string    `json:"filename"`
	Content        string    `json:"content"`
}

// Output is an exported document on disk.
type Output struct {
	Document
	Format string `json:"format"`
	Path   string `json:"path"`
	Data   []byte `json:"-"`
}

// Markdown renders the policy selected by cfg.
func (g *Generator) Markdown(ctx context.Context, cfg Config) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Document{}, err
	}
	genID, err := uuid.NewV4()
	if err != nil {
		return Document{}, err
	}
	now := g.now()
	next := g.opts.Review.Next(now)

	var selected []controls.Control
	if len(cfg.ControlIDs) > 0 {
		selected = g.engine.SelectControlIDs(cfg.ControlIDs)
	} else {
		selected = g.engine.SelectControls(cfg.PolicyStandard, cfg.SelectedFrameworks)
	}
	if len(selected) == 0 {
		g.logger.Warnf("policy: no controls for %q with frameworks %v", cfg.PolicyStandard, cfg.SelectedFrameworks)
	}

	blocks := make([]render.ControlBlock, 0, len(selected))
	ids := make([]string, 0, len(selected))
	for _, c := range selected {
		ids = append(ids, c.ID)
		blocks = append(blocks, render.ControlBlock{
			ID:             c.ID,
			Name:           c.Name,
			Type:           c.Type,
			Theme:          c.Theme,
			Description:    c.Description,
			Implementation: c.ImplementationGuidance,
			Testing:        c.TestingProcedure,
			Evidence:       g.evidence.Resolve(c.AuditArtifacts),
		})
	}
	forward := g.engine.ForwardTable(selected, cfg.SelectedFrameworks)
	reverse := mapping.Invert(forward)

	names := make([]string, 0, len(cfg.SelectedFrameworks))
	for _, fw := range cfg.SelectedFrameworks {
		names = append(names, controls.DisplayName(fw))
	}
	meta := g.metadata(cfg)
	bundle := render.Bundle{
		"policy_standard":              cfg.PolicyStandard,
		"policy_standard_lower":        strings.ToLower(cfg.PolicyStandard),
		"current_date":                 now.Format("2006-01-02"),
		"date":                         now.Format("2006-01-02"),
		"next_review_date":             next.Format("2006-01-02"),
		"version":                      meta.Version,
		"classification":               meta.Classification,
		"owner":                        meta.Owner,
		"control_sections":             render.ControlSections(blocks),
		"framework_references":         render.ForwardRows(forward),
		"reverse_framework_references": render.ReverseRows(reverse),
		"control_count":                strconv.Itoa(len(selected)),
		"framework_list":               strings.Join(names, ", "),
	}

	tpl := g.templates.Resolve(cfg.TemplateID)
	content, err := render.Render(tpl.Content, bundle)
	if err != nil {
		return Document{}, fmt.Errorf("template %s: %w", tpl.ID, err)
	}
	doc := Document{
		ID:             genID.String(),
		PolicyStandard: cfg.PolicyStandard,
		TemplateID:     tpl.ID,
		Frameworks:     cfg.SelectedFrameworks,
		ControlIDs:     ids,
		GeneratedAt:    now,
		NextReview:     next,
		Filename:       Filename(cfg.PolicyStandard, now, FormatMarkdown),
	}
	if g.opts.FrontMatter {
		content, err = withFrontMatter(frontMatter{
			Title:          cfg.PolicyStandard,
			Version:        meta.Version,
			Classification: meta.Classification,
			Owner:          meta.Owner,
			Date:           bundle["current_date"],
			NextReview:     bundle["next_review_date"],
			Template:       tpl.ID,
			Frameworks:     cfg.SelectedFrameworks,
			Controls:       ids,
			GenerationID:   doc.ID,
		}, content)
		if err != nil {
			return Document{}, fmt.Errorf("front matter: %w", err)
		}
	}
	doc.Content = content
	g.logger.Printf("policy: generated %s id=%s template=%s controls=%d", cfg.PolicyStandard, doc.ID, tpl.ID, len(selected))
	return doc, nil
}

// Export renders cfg and writes it under the output directory as Markdown
// or, via the converter, as a Word document.
func (g *Generator) Export(ctx context.Context, cfg Config, format string) (Output, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatDocx {
		return Output{}, fmt.Errorf("%w: %q (expected md or docx)", ErrInvalidFormat, format)
	}
	if format == FormatDocx && !g.canConvert() {
		return Output{}, ErrConverterUnavailable
	}
	doc, err := g.Markdown(ctx, cfg)
	if err != nil {
		return Output{}, err
	}
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return Output{}, err
	}
	mdPath := filepath.Join(g.opts.OutputDir, doc.Filename)
	if err := writeFileAtomic(mdPath, []byte(doc.Content)); err != nil {
		return Output{}, err
	}
	out := Output{Document: doc, Format: format, Path: mdPath, Data: []byte(doc.Content)}
	if format == FormatMarkdown {
		return out, nil
	}
	docxPath, err := g.converter.MarkdownToDocx(ctx, mdPath, "")
	if err != nil {
		return Output{}, err
	}
	data, err := os.ReadFile(docxPath)
	if err != nil {
		return Output{}, err
	}
	out.Path = docxPath
	out.Filename = filepath.Base(docxPath)
	out.Data = data
	return out, nil
}

func (g *Generator) canConvert() bool {
	if g.converter == nil {
		return false
	}
	if a, ok := g.converter.(interface{ Available() bool }); ok {
		return a.Available()
	}
	return true
}

func (g *Generator) metadata(cfg Config) Defaults {
	d := g.opts.Defaults
	if v := strings.TrimSpace(cfg.Version); v != "" {
		d.Version = v
	}
	if v := strings.TrimSpace(cfg.Classification); v != "" {
		d.Classification = v
	}
	if v := strings.TrimSpace(cfg.Owner); v != "" {
		d.Owner = v
	}
	return d
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename is <standard_lower_snake>_<YYYYMMDD>.<ext>.
func Filename(policyStandard string, at time.Time, ext string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(policyStandard), "_"), "_")
	if slug == "" {
		slug = "policy"
	}
	return fmt.Sprintf("%s_%s.%s", slug, at.Format("20060102"), ext)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".policy-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
