package templates

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"ccf-policy/core/render"
	"ccf-policy/core/utils"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	saved   []Template
	failErr error
	saves   int
}

func (m *memStore) LoadAll(context.Context) ([]Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Template(nil), m.saved...), nil
}

func (m *memStore) SaveAll(_ context.Context, list []Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.saved = append([]Template(nil), list...)
	return nil
}

func newRegistry(t *testing.T, store Store) *Registry {
	t.Helper()
	r, err := NewRegistry(context.Background(), store, utils.NopLogger())
	require.NoError(t, err)
	return r
}

func TestBuiltInsListed(t *testing.T) {
	r := newRegistry(t, nil)
	list := r.List()
	require.Len(t, list, 2)
	require.Equal(t, "standard", list[0].ID)
	require.True(t, list[0].BuiltIn)
	require.Contains(t, list[1].Sections, "Executive Summary")
	require.Equal(t, 2, r.Count())
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := newRegistry(t, nil)
	require.Equal(t, DefaultID, r.Resolve("does-not-exist").ID)
	require.Equal(t, DefaultID, r.Resolve("").ID)
	require.Equal(t, "detailed", r.Resolve("detailed").ID)
}

func TestCreateFromSections(t *testing.T) {
	store := &memStore{}
	r := newRegistry(t, store)
	tpl, err := r.Create(context.Background(), Input{
		ID:       "lean",
		Sections: []render.SectionSpec{{Type: "purpose"}, {Type: "policy_requirements"}},
	})
	require.NoError(t, err)
	require.Equal(t, "lean", tpl.Name)
	require.Contains(t, tpl.Content, "${control_sections}")
	require.Len(t, store.saved, 1)

	_, err = r.Create(context.Background(), Input{ID: "lean", Content: "# x"})
	require.ErrorIs(t, err, ErrTemplateExists)
	_, err = r.Create(context.Background(), Input{ID: "standard", Content: "# x"})
	require.ErrorIs(t, err, ErrTemplateExists)
}

func TestCreateValidation(t *testing.T) {
	r := newRegistry(t, nil)
	_, err := r.Create(context.Background(), Input{ID: "Bad ID", Content: "x"})
	require.ErrorIs(t, err, ErrInvalidTemplate)
	_, err = r.Create(context.Background(), Input{ID: "empty"})
	require.ErrorIs(t, err, ErrInvalidTemplate)
	_, err = r.Create(context.Background(), Input{ID: "odd", Sections: []render.SectionSpec{{Type: "appendix"}}})
	var us *render.UnknownSectionTypeError
	require.True(t, errors.As(err, &us))
}

func TestUpdateAndDelete(t *testing.T) {
	store := &memStore{}
	r := newRegistry(t, store)
	ctx := context.Background()
	_, err := r.Create(ctx, Input{ID: "custom", Content: "# ${policy_standard}\n## A\n"})
	require.NoError(t, err)

	name := "Renamed"
	updated, err := r.Update(ctx, "custom", Patch{Name: &name, Sections: []render.SectionSpec{{Type: "scope"}}})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, []string{"Scope"}, render.ExtractSections(updated.Content))

	_, err = r.Update(ctx, "standard", Patch{Name: &name})
	require.ErrorIs(t, err, ErrBuiltInTemplate)
	_, err = r.Update(ctx, "missing", Patch{Name: &name})
	require.ErrorIs(t, err, ErrTemplateNotFound)

	require.ErrorIs(t, r.Delete(ctx, "detailed"), ErrBuiltInTemplate)
	require.NoError(t, r.Delete(ctx, "custom"))
	require.ErrorIs(t, r.Delete(ctx, "custom"), ErrTemplateNotFound)
	require.Empty(t, store.saved)
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	store := &memStore{}
	r := newRegistry(t, store)
	ctx := context.Background()
	_, err := r.Create(ctx, Input{ID: "keep", Content: "# keep"})
	require.NoError(t, err)

	store.failErr = errors.New("disk full")
	_, err = r.Create(ctx, Input{ID: "lost", Content: "# lost"})
	require.Error(t, err)
	_, err = r.Get("lost")
	require.ErrorIs(t, err, ErrTemplateNotFound)

	content := "# changed"
	_, err = r.Update(ctx, "keep", Patch{Content: &content})
	require.Error(t, err)
	got, err := r.Get("keep")
	require.NoError(t, err)
	require.Equal(t, "# keep", got.Content)

	require.Error(t, r.Delete(ctx, "keep"))
	_, err = r.Get("keep")
	require.NoError(t, err)
}

func TestRegistryLoadsFromStore(t *testing.T) {
	store := &memStore{saved: []Template{
		{ID: "mine", Name: "Mine", Content: "# ${policy_standard}"},
		{ID: "standard", Name: "Shadow", Content: "x"},
	}}
	r := newRegistry(t, store)
	require.Equal(t, 3, r.Count())
	std, err := r.Get("standard")
	require.NoError(t, err)
	require.Equal(t, "Standard Policy Template", std.Name)
}

func TestDetails(t *testing.T) {
	r := newRegistry(t, nil)
	d, err := r.Details("detailed")
	require.NoError(t, err)
	require.Contains(t, d.Placeholders, "next_review_date")
	var types []string
	for _, s := range d.Sections {
		types = append(types, s.Type)
	}
	require.Contains(t, types, "document_control")
	require.Contains(t, types, "compliance")
	require.Contains(t, types, "custom")

	_, err = r.Details("nope")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestConcurrentWritersAreSerialized(t *testing.T) {
	store := &memStore{}
	r := newRegistry(t, store)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Create(ctx, Input{ID: "t" + string(rune('a'+i)), Content: "# x"})
			_ = r.List()
		}(i)
	}
	wg.Wait()
	require.Equal(t, 22, r.Count())
	require.Len(t, store.saved, 20)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "templates.json")
	fs := NewFileStore(path)
	list, err := fs.LoadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)

	r := newRegistry(t, fs)
	_, err = r.Create(context.Background(), Input{ID: "file-backed", Name: "File", Content: "# ${policy_standard}"})
	require.NoError(t, err)

	reopened := newRegistry(t, NewFileStore(path))
	got, err := reopened.Get("file-backed")
	require.NoError(t, err)
	require.Equal(t, "File", got.Name)
	require.False(t, got.BuiltIn)
}
