package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkform/docpress/internal/document"
)

func TestTemplateCacheRoundTrip(t *testing.T) {
	cache := NewTemplateCache(t.TempDir())

	tmpl := document.DefaultTemplate()
	tmpl.Name = "Cached Layout"
	require.NoError(t, cache.Save(tmpl))

	got, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, "Cached Layout", got.Name)
	assert.Len(t, got.Elements, len(tmpl.Elements))
}

func TestTemplateCacheLoadMissing(t *testing.T) {
	cache := NewTemplateCache(t.TempDir())
	_, err := cache.Load()
	assert.Error(t, err)
}

type fakeLoader struct {
	templates []*document.Template
	err       error
}

func (f *fakeLoader) ListTemplates() ([]*document.Template, error) {
	return f.templates, f.err
}

func TestLoadTemplateOrDefaultPrefersStore(t *testing.T) {
	stored := document.DefaultTemplate()
	stored.Name = "From Store"

	got := LoadTemplateOrDefault(&fakeLoader{templates: []*document.Template{stored}}, nil, nil)
	assert.Equal(t, "From Store", got.Name)
}

func TestLoadTemplateOrDefaultSkipsEmptyTemplates(t *testing.T) {
	empty := &document.Template{ID: "e", Name: "Empty"}
	full := document.DefaultTemplate()
	full.Name = "Full"

	got := LoadTemplateOrDefault(&fakeLoader{templates: []*document.Template{empty, full}}, nil, nil)
	assert.Equal(t, "Full", got.Name)
}

func TestLoadTemplateOrDefaultFallsBackToCache(t *testing.T) {
	cache := NewTemplateCache(t.TempDir())
	cached := document.DefaultTemplate()
	cached.Name = "From Cache"
	require.NoError(t, cache.Save(cached))

	got := LoadTemplateOrDefault(&fakeLoader{err: errors.New("db locked")}, cache, nil)
	assert.Equal(t, "From Cache", got.Name)
}

func TestLoadTemplateOrDefaultBuiltIn(t *testing.T) {
	got := LoadTemplateOrDefault(nil, nil, nil)
	require.NotNil(t, got)
	assert.NotEmpty(t, got.Elements)

	// A failing store and an empty cache still yield a usable template.
	got = LoadTemplateOrDefault(&fakeLoader{err: errors.New("gone")}, NewTemplateCache(t.TempDir()), nil)
	require.NotNil(t, got)
	assert.NotEmpty(t, got.Elements)
}
