// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the fallback locale when no catalog matches.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// NewCatalog builds a catalog for the given locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	if messages == nil {
		messages = map[Code]string{}
	}
	return &Catalog{locale: locale, messages: messages}
}

// Register installs a catalog for its locale, replacing any previous one.
func Register(c *Catalog) {
	if c == nil || strings.TrimSpace(c.locale) == "" {
		return
	}
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[c.locale] = c
}

// GetCatalog returns the catalog for the given locale.
// Falls back to en-US if the locale is not found.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	if c, ok := catalogs[requested]; ok {
		return c
	}
	if c, ok := catalogs[BaseLocale]; ok {
		return c
	}
	return NewCatalog(BaseLocale, nil)
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata so that
// template variables without metadata render as empty.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return code
	}
	// Absent metadata keys render as empty strings, not "<no value>".
	t = t.Option("missingkey=zero")
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return code
	}
	return buf.String()
}
