package locale

import (
	"io/fs"
	"strings"

	"github.com/sessiontodo/todo/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	localizerKey    = "localizer"
	defaultLanguage = "en-US"
)

// Locale holds the message catalogue loaded from the translation files.
type Locale struct {
	bundle *i18n.Bundle
}

// InitLocalizer parses every file under "translation" in i18nFS. English is
// the fallback language.
func InitLocalizer(i18nFS fs.FS) (*Locale, error) {
	bundle := i18n.NewBundle(language.MustParse(defaultLanguage))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(i18nFS, bundle); err != nil {
		return nil, err
	}
	return &Locale{bundle: bundle}, nil
}

// Localizer returns a localizer for the given language preferences, which
// may be tags or Accept-Language header values. English is always the last
// preference so messages missing from a translation fall back to it.
func (l *Locale) Localizer(langs ...string) *i18n.Localizer {
	prefs := make([]string, 0, len(langs)+1)
	prefs = append(prefs, langs...)
	prefs = append(prefs, defaultLanguage)
	return i18n.NewLocalizer(l.bundle, prefs...)
}

// LocalizerMiddleware stores a localizer for the request language in the
// gin context. A "lang" cookie takes precedence over Accept-Language.
func (l *Locale) LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}

		c.Set(localizerKey, l.Localizer(lang))
		c.Next()
	}
}

// FromContext returns the localizer set by LocalizerMiddleware, or nil.
func FromContext(c *gin.Context) *i18n.Localizer {
	if v, ok := c.Get(localizerKey); ok {
		if localizer, ok := v.(*i18n.Localizer); ok {
			return localizer
		}
	}
	return nil
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	sep := "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		name, value, _ := strings.Cut(param, sep)
		templateData[name] = value
	}

	return templateData
}

// I18n localizes key. params are "name==value" template pairs. Without a
// localizer the key itself is returned.
func I18n(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Errorf("Failed to localize message: %v", err)
		return key
	}

	return msg
}

func parseTranslationFiles(i18nFS fs.FS, i18nBundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			data, err := fs.ReadFile(i18nFS, path)
			if err != nil {
				return err
			}

			_, err = i18nBundle.ParseMessageFileBytes(data, path)
			return err
		})
}
