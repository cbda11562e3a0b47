package templates

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"ccf-policy/core/render"
	"ccf-policy/core/utils"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Registry holds built-in and custom templates. Readers share a read lock;
// writers are serialized and roll back when persistence fails.
type Registry struct {
	mu      sync.RWMutex
	builtIn map[string]Template
	custom  map[string]Template
	store   Store
	logger  *utils.Logger
	now     func() time.Time
}

// NewRegistry seeds the built-ins and loads custom templates from store. A
// nil store keeps custom templates in memory only.
func NewRegistry(ctx context.Context, store Store, logger *utils.Logger) (*Registry, error) {
	r := &Registry{
		builtIn: map[string]Template{},
		custom:  map[string]Template{},
		store:   store,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, t := range builtIns() {
		r.builtIn[t.ID] = t
	}
	if store == nil {
		return r, nil
	}
	list, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	for _, t := range list {
		if _, reserved := r.builtIn[t.ID]; reserved {
			r.logger.Warnf("templates: stored template %q shadows a built-in, skipped", t.ID)
			continue
		}
		t.BuiltIn = false
		r.custom[t.ID] = t
	}
	r.logger.Printf("templates: %d built-in, %d custom", len(r.builtIn), len(r.custom))
	return r, nil
}

// List returns built-ins first, then custom templates by id.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.builtIn)+len(r.custom))
	for _, t := range builtIns() {
		out = append(out, summarize(r.builtIn[t.ID]))
	}
	for _, id := range sortedIDs(r.custom) {
		out = append(out, summarize(r.custom[id]))
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.builtIn) + len(r.custom)
}

func (r *Registry) Get(id string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(id)
}

func (r *Registry) getLocked(id string) (Template, error) {
	if t, ok := r.builtIn[id]; ok {
		return t, nil
	}
	if t, ok := r.custom[id]; ok {
		return t, nil
	}
	return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

// Resolve returns the template for id, falling back to the default template
// for empty or unknown ids.
func (r *Registry) Resolve(id string) Template {
	id = strings.TrimSpace(id)
	if id != "" {
		if t, err := r.Get(id); err == nil {
			return t
		}
		r.logger.Warnf("templates: %q not found, using %s", id, DefaultID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtIn[DefaultID]
}

// Details describes a template's sections as found in its content.
func (r *Registry) Details(id string) (Details, error) {
	t, err := r.Get(id)
	if err != nil {
		return Details{}, err
	}
	d := Details{Summary: summarize(t), Placeholders: render.Placeholders(t.Content)}
	for _, s := range render.ExtractSectionBodies(t.Content) {
		ds := DetailSection{Title: s.Title, Body: s.Body, Type: "custom"}
		if sec, ok := render.SectionByTitle(s.Title); ok {
			ds.Type = sec.Type
			ds.Kind = string(sec.Kind)
		}
		d.Sections = append(d.Sections, ds)
	}
	return d, nil
}

func (r *Registry) Create(ctx context.Context, in Input) (Template, error) {
	id := strings.TrimSpace(in.ID)
	if !idPattern.MatchString(id) {
		return Template{}, fmt.Errorf("%w: id must match %s", ErrInvalidTemplate, idPattern)
	}
	content, err := buildContent(in.Sections, in.Content)
	if err != nil {
		return Template{}, err
	}
	t := Template{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Sections:    in.Sections,
		Content:     content,
		UpdatedAt:   r.now(),
	}
	if t.Name == "" {
		t.Name = id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builtIn[id]; ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateExists, id)
	}
	if _, ok := r.custom[id]; ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateExists, id)
	}
	r.custom[id] = t
	if err := r.persistLocked(ctx); err != nil {
		delete(r.custom, id)
		return Template{}, err
	}
	r.logger.Printf("templates: created %s", id)
	return t, nil
}

func (r *Registry) Update(ctx context.Context, id string, p Patch) (Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builtIn[id]; ok {
		return Template{}, fmt.Errorf("%w: %s", ErrBuiltInTemplate, id)
	}
	prev, ok := r.custom[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	next := prev
	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			next.Name = name
		}
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	switch {
	case p.Sections != nil:
		content, err := buildContent(p.Sections, "")
		if err != nil {
			return Template{}, err
		}
		next.Sections = p.Sections
		next.Content = content
	case p.Content != nil:
		content, err := buildContent(nil, *p.Content)
		if err != nil {
			return Template{}, err
		}
		next.Sections = nil
		next.Content = content
	}
	next.UpdatedAt = r.now()

	r.custom[id] = next
	if err := r.persistLocked(ctx); err != nil {
		r.custom[id] = prev
		return Template{}, err
	}
	r.logger.Printf("templates: updated %s", id)
	return next, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builtIn[id]; ok {
		return fmt.Errorf("%w: %s", ErrBuiltInTemplate, id)
	}
	prev, ok := r.custom[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	delete(r.custom, id)
	if err := r.persistLocked(ctx); err != nil {
		r.custom[id] = prev
		return err
	}
	r.logger.Printf("templates: deleted %s", id)
	return nil
}

func (r *Registry) persistLocked(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	list := make([]Template, 0, len(r.custom))
	for _, id := range sortedIDs(r.custom) {
		list = append(list, r.custom[id])
	}
	if err := r.store.SaveAll(ctx, list); err != nil {
		r.logger.Errorf("templates: save failed: %v", err)
		return fmt.Errorf("save templates: %w", err)
	}
	return nil
}

// buildContent composes sections when given, otherwise validates raw content.
func buildContent(sections []render.SectionSpec, content string) (string, error) {
	if len(sections) > 0 {
		return render.Compose(sections)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: sections or content required", ErrInvalidTemplate)
	}
	return content, nil
}

func summarize(t Template) Summary {
	return Summary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		BuiltIn:     t.BuiltIn,
		Sections:    render.ExtractSections(t.Content),
	}
}

func sortedIDs(m map[string]Template) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
