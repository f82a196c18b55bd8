// Package i18n localizes the terminal front end's messages. Messages live
// in the embedded active.*.toml files.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.en.toml", "active.tr.toml"}

// Localizer renders messages in one locale, falling back to English
type Localizer struct {
	localizer *i18n.Localizer
	tag       language.Tag
	log       zerolog.Logger
}

// New builds a Localizer for locale ("tr", "en-US"). A blank locale is
// taken from $LANG.
func New(locale string, log zerolog.Logger) *Localizer {
	log = log.With().Str("component", "i18n").Logger()

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("failed to load messages")
		}
	}

	if locale == "" {
		locale = FromEnv(os.Getenv("LANG"))
	}

	matcher := language.NewMatcher(bundle.LanguageTags())
	tag, _, _ := matcher.Match(language.Make(locale))
	base, _ := tag.Base()

	return &Localizer{
		localizer: i18n.NewLocalizer(bundle, base.String(), language.English.String()),
		tag:       tag,
		log:       log,
	}
}

// T renders the message identified by key. If the key is unknown the key
// itself is returned.
func (l *Localizer) T(key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		l.log.Debug().Err(err).Str("key", key).Msg("localize failed")
		return key
	}
	return msg
}

// Language returns the matched language
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// FromEnv converts a POSIX locale ("tr_TR.UTF-8") to a BCP 47 code
func FromEnv(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}
