package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inkform/docpress/internal/document"
)

// TemplateCache is a JSON file holding the last template the user worked
// with. It keeps the editor usable when the database is missing or
// unreadable.
type TemplateCache struct {
	path string
}

// NewTemplateCache places the cache file under dataDir.
func NewTemplateCache(dataDir string) *TemplateCache {
	return &TemplateCache{path: filepath.Join(dataDir, "template_cache.json")}
}

// Save writes the template to the cache file.
func (c *TemplateCache) Save(t *document.Template) error {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encoding template cache: %w", err)
	}
	if err := os.WriteFile(c.path, b, 0o640); err != nil {
		return fmt.Errorf("store: writing template cache: %w", err)
	}
	return nil
}

// Load reads the cached template.
func (c *TemplateCache) Load() (*document.Template, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("store: reading template cache: %w", err)
	}
	var t document.Template
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("store: decoding template cache: %w", err)
	}
	return &t, nil
}

// TemplateLoader is the subset of Store the fallback chain needs.
type TemplateLoader interface {
	ListTemplates() ([]*document.Template, error)
}

// LoadTemplateOrDefault resolves the template to open in the editor:
// newest stored template, then the file cache, then the built-in default.
// It never returns nil and never returns a template with zero elements.
func LoadTemplateOrDefault(loader TemplateLoader, cache *TemplateCache, log *zap.Logger) *document.Template {
	if log == nil {
		log = zap.NewNop()
	}

	if loader != nil {
		if templates, err := loader.ListTemplates(); err == nil {
			for _, t := range templates {
				if len(t.Elements) > 0 {
					return t
				}
			}
		} else {
			log.Warn("template store unavailable, trying cache", zap.Error(err))
		}
	}

	if cache != nil {
		if t, err := cache.Load(); err == nil && len(t.Elements) > 0 {
			log.Info("loaded template from file cache", zap.String("name", t.Name))
			return t
		}
	}

	log.Info("using built-in default template")
	return document.DefaultTemplate()
}
