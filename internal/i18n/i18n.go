// Package i18n implements translate(lang, key, params) over the English and
// Chinese catalogs.
package i18n

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
)

// DefaultLang is used for unknown or empty language codes.
const DefaultLang = "zh"

var placeholder = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Translator looks up UI strings. It is read-only after New and safe for
// concurrent use.
type Translator struct {
	uni      *ut.UniversalTranslator
	fallback string
	langs    []string
	// params[lang][key] lists the named parameters in positional order
	params map[string]map[string][]string
}

// New registers the built-in catalogs. fallback must be "en" or "zh"; empty means DefaultLang.
func New(fallback string) (*Translator, error) {
	if fallback == "" {
		fallback = DefaultLang
	}
	supported := map[string]locales.Translator{
		"en": en.New(),
		"zh": zh.New(),
	}
	fb, ok := supported[fallback]
	if !ok {
		return nil, fmt.Errorf("unsupported fallback language %q", fallback)
	}

	t := &Translator{
		uni:      ut.New(fb, supported["en"], supported["zh"]),
		fallback: fallback,
		langs:    []string{"en", "zh"},
		params:   make(map[string]map[string][]string),
	}

	for _, lang := range t.langs {
		tr, found := t.uni.GetTranslator(lang)
		if !found {
			return nil, fmt.Errorf("translator for %q not registered", lang)
		}
		t.params[lang] = make(map[string][]string)

		for key, text := range catalog[lang] {
			positional, names := toPositional(text)
			if err := tr.Add(key, positional, false); err != nil {
				return nil, fmt.Errorf("failed to add %s/%s: %w", lang, key, err)
			}
			if len(names) > 0 {
				t.params[lang][key] = names
			}
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			if err := tr.Add(DayKey(d), tr.WeekdayWide(d), false); err != nil {
				return nil, fmt.Errorf("failed to add %s/%s: %w", lang, DayKey(d), err)
			}
		}
	}
	return t, nil
}

// toPositional rewrites {name} placeholders to {0}, {1}, ... in order of
// appearance and returns the names in that order.
func toPositional(text string) (string, []string) {
	var names []string
	out := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		names = append(names, m[1:len(m)-1])
		return "{" + strconv.Itoa(len(names)-1) + "}"
	})
	return out, names
}

// DayKey is the localization key of a weekday name.
func DayKey(d time.Weekday) string {
	return "day_" + strconv.Itoa(int(d))
}

// Languages returns the supported language codes.
func (t *Translator) Languages() []string {
	return append([]string(nil), t.langs...)
}

// Normalize maps lang to a supported code, falling back to the default.
// Region suffixes are dropped, so "en-US" becomes "en".
func (t *Translator) Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	for _, l := range t.langs {
		if l == lang {
			return l
		}
	}
	return t.fallback
}

// Translate returns the text of key in lang with params substituted. Unknown
// keys come back unchanged; missing params render empty.
func (t *Translator) Translate(lang, key string, params map[string]any) string {
	lang = t.Normalize(lang)
	tr, _ := t.uni.GetTranslator(lang)

	names := t.params[lang][key]
	args := make([]string, len(names))
	for i, name := range names {
		if v, ok := params[name]; ok {
			args[i] = fmt.Sprint(v)
		}
	}

	text, err := tr.T(key, args...)
	if err != nil {
		return key
	}
	return text
}

// T is Translate without parameters.
func (t *Translator) T(lang, key string) string {
	return t.Translate(lang, key, nil)
}

// DayName returns the localized weekday name.
func (t *Translator) DayName(lang string, d time.Weekday) string {
	return t.T(lang, DayKey(d))
}

// FormatDate renders date in the locale's medium date format.
func (t *Translator) FormatDate(lang string, date time.Time) string {
	tr, _ := t.uni.GetTranslator(t.Normalize(lang))
	return tr.FmtDateMedium(date)
}
