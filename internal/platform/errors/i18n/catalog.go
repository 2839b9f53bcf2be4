// Package i18n renders localized user-facing error messages.
//
// Messages are registered in an x/text catalog keyed by error code and
// rendered as text/template strings so metadata can be interpolated.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the locale every lookup falls back to.
const BaseLocale = "en-US"

// Catalog renders messages for a single resolved locale.
type Catalog struct {
	locale  string
	printer *message.Printer
	known   map[string]struct{}
}

var (
	buildOnce sync.Once
	builder   *catalog.Builder
	supported []language.Tag
	locales   []string
	matcher   language.Matcher

	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// translations maps locale to code to message template.
var translations = map[string]map[string]string{
	BaseLocale: enUS,
	"es-ES":    esES,
}

func build() {
	builder = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	locales = []string{BaseLocale}
	for locale := range translations {
		if locale != BaseLocale {
			locales = append(locales, locale)
		}
	}
	for _, locale := range locales {
		tag := language.MustParse(locale)
		supported = append(supported, tag)
		for code, msg := range translations[locale] {
			_ = builder.SetString(tag, code, msg)
		}
	}
	matcher = language.NewMatcher(supported)
}

// GetCatalog returns the catalog best matching locale, falling back to en-US.
func GetCatalog(locale string) *Catalog {
	buildOnce.Do(build)

	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}
	resolved := BaseLocale
	if tag, err := language.Parse(requested); err == nil {
		_, index, confidence := matcher.Match(tag)
		if confidence != language.No {
			resolved = locales[index]
		}
	}

	catalogsMu.RLock()
	existing, ok := catalogs[resolved]
	catalogsMu.RUnlock()
	if ok {
		return existing
	}

	known := make(map[string]struct{}, len(translations[resolved]))
	for code := range translations[resolved] {
		known[code] = struct{}{}
	}
	for code := range translations[BaseLocale] {
		known[code] = struct{}{}
	}
	cat := &Catalog{
		locale:  resolved,
		printer: message.NewPrinter(language.MustParse(resolved), message.Catalog(builder)),
		known:   known,
	}

	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[resolved]; ok {
		return existing
	}
	catalogs[resolved] = cat
	return cat
}

// Locale returns the resolved locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Has reports whether a message exists for code in this catalog or the base locale.
func (c *Catalog) Has(code string) bool {
	_, ok := c.known[code]
	return ok
}

// Format renders the message template for code with metadata.
// Unknown codes render as the code itself; a broken template renders raw.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	if !c.Has(code) {
		return code
	}
	tmpl := c.printer.Sprintf(code)
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
