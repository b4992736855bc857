// Package i18n looks up translated strings by locale, falling back to English.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

//go:embed locales/*.yaml
var embedded embed.FS

type Translations map[string]string

type Catalog struct {
	mu      sync.RWMutex
	locales map[string]Translations
}

// Load reads every <locale>.yaml file of the bundled locales directory.
func Load() (*Catalog, error) {
	return LoadFS(embedded, "locales")
}

// LoadFS reads every <locale>.yaml below dir. Nested YAML maps are flattened
// into dotted keys, so EMAILS: {signup: {subject: ...}} becomes
// "emails.signup.subject".
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	c := &Catalog{locales: make(map[string]Translations)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}

		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		trans := make(Translations)
		flatten("", tree, trans)
		c.locales[strings.TrimSuffix(name, ".yaml")] = trans
	}
	return c, nil
}

func flatten(prefix string, tree map[string]any, out Translations) {
	for k, v := range tree {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Translate returns the string for key in locale, the English string when the
// locale lacks it, or the key itself.
func (c *Catalog) Translate(locale, key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if trans, ok := c.locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if trans, ok := c.locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

// Section returns every string below prefix with the prefix stripped, resolved
// for locale.
func (c *Catalog) Section(locale, prefix string) map[string]string {
	c.mu.RLock()
	keys := make(map[string]struct{})
	for _, l := range []string{DefaultLocale, locale} {
		for k := range c.locales[l] {
			if strings.HasPrefix(k, prefix+".") {
				keys[k] = struct{}{}
			}
		}
	}
	c.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for k := range keys {
		out[strings.TrimPrefix(k, prefix+".")] = c.Translate(locale, k)
	}
	return out
}

func (c *Catalog) HasLocale(locale string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.locales[locale]
	return ok
}
