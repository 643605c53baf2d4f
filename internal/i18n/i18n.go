// Package i18n holds the student-facing strings in every supported language.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error

	defaultLang atomic.Value // string
)

func init() {
	defaultLang.Store("en")
}

func load() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			bundleErr = fmt.Errorf("read locales dir: %w", err)
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := localeFS.ReadFile("locales/" + e.Name())
			if err != nil {
				bundleErr = fmt.Errorf("read locale file %s: %w", e.Name(), err)
				return
			}
			if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
				bundleErr = fmt.Errorf("parse locale file %s: %w", e.Name(), err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Init loads the embedded locales and makes lang the default language.
func Init(lang string) error {
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}
	if _, err := load(); err != nil {
		return err
	}
	defaultLang.Store(lang)
	return nil
}

// Languages returns the tags of every loaded locale.
func Languages() []string {
	b, err := load()
	if err != nil {
		return nil
	}
	tags := b.LanguageTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

// WithLanguage returns a context whose lookups prefer lang.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

func localizer(ctx context.Context) *i18n.Localizer {
	b, err := load()
	if err != nil {
		return nil
	}
	lang, _ := ctx.Value(ctxKey{}).(string)
	if lang == "" {
		lang = defaultLang.Load().(string)
	}
	return i18n.NewLocalizer(b, lang, "en")
}

// T translates a message by ID. Unknown IDs come back unchanged.
func T(ctx context.Context, msgID string) string {
	return Td(ctx, msgID, nil)
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	loc := localizer(ctx)
	if loc == nil {
		return msgID
	}
	s, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		return msgID
	}
	return s
}
