package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FallbackLocale fills in every key a locale does not translate
const FallbackLocale = "en"

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Bundle holds the message catalogs of every known locale. It is built
// once at startup and read-only afterwards.
type Bundle struct {
	defaultLocale string
	catalogs      map[string]map[string]string
	overrides     map[string]map[string]string
	supported     []string
	matcher       language.Matcher
}

// NewBundle loads the built-in catalogs and layers overrides on top.
// defaultLocale is used when negotiation finds no match.
func NewBundle(defaultLocale string, overrides map[string]map[string]string) (*Bundle, error) {
	catalogs, err := loadCatalogs()
	if err != nil {
		return nil, err
	}

	if defaultLocale == "" {
		defaultLocale = FallbackLocale
	}
	defaultLocale = strings.ToLower(defaultLocale)

	b := &Bundle{
		defaultLocale: defaultLocale,
		catalogs:      catalogs,
		overrides:     make(map[string]map[string]string, len(overrides)),
	}
	for loc, msgs := range overrides {
		b.overrides[strings.ToLower(loc)] = msgs
	}

	seen := map[string]bool{}
	add := func(loc string) {
		if !seen[loc] {
			seen[loc] = true
			b.supported = append(b.supported, loc)
		}
	}
	// The default goes first so the matcher falls back to it
	add(defaultLocale)
	rest := make([]string, 0, len(catalogs)+len(b.overrides))
	for loc := range catalogs {
		rest = append(rest, loc)
	}
	for loc := range b.overrides {
		rest = append(rest, loc)
	}
	sort.Strings(rest)
	for _, loc := range rest {
		add(loc)
	}

	tags := make([]language.Tag, 0, len(b.supported))
	for _, loc := range b.supported {
		tag, err := language.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", loc, err)
		}
		tags = append(tags, tag)
	}
	b.matcher = language.NewMatcher(tags)

	return b, nil
}

func loadCatalogs() (map[string]map[string]string, error) {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogs: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := catalogFS.ReadFile(path.Join("catalogs", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", entry.Name(), err)
		}
		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", entry.Name(), err)
		}
		catalogs[strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))] = msgs
	}
	return catalogs, nil
}

// Default returns the configured default locale
func (b *Bundle) Default() string {
	return b.defaultLocale
}

// Supported lists every locale with a catalog or overrides, default first
func (b *Bundle) Supported() []string {
	out := make([]string, len(b.supported))
	copy(out, b.supported)
	return out
}

// Negotiate picks the best supported locale for an Accept-Language header
func (b *Bundle) Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.defaultLocale
	}
	_, idx, confidence := b.matcher.Match(tags...)
	if confidence == language.No {
		return b.defaultLocale
	}
	return b.supported[idx]
}

// Messages returns the merged messages for locale: English first, then
// the locale's catalog, then configured overrides.
func (b *Bundle) Messages(locale string) map[string]string {
	locale = strings.ToLower(locale)
	merged := make(map[string]string, len(b.catalogs[FallbackLocale]))
	for _, layer := range []map[string]string{
		b.catalogs[FallbackLocale],
		b.catalogs[locale],
		b.overrides[locale],
	} {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// Translator returns a lookup function bound to locale
func (b *Bundle) Translator(locale string) Translator {
	return Translator{locale: strings.ToLower(locale), messages: b.Messages(locale)}
}

// Translator looks up messages for one locale
type Translator struct {
	locale   string
	messages map[string]string
}

// Locale returns the translator's locale
func (t Translator) Locale() string {
	return t.locale
}

// T returns the message for key, or key itself when there is none
func (t Translator) T(key string) string {
	if msg, ok := t.messages[key]; ok && msg != "" {
		return msg
	}
	return key
}
