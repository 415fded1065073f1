// Package locale loads the TOML translations and picks a localizer per
// request from the lang cookie or the Accept-Language header.
package locale

import (
	"io/fs"
	"strings"

	"github.com/editalgen/editalgen/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const localizerKey = "localizer"

var (
	i18nBundle *i18n.Bundle
	// LocalizerDefault serves code running outside a request, such as the
	// CLI and cron jobs.
	LocalizerDefault *i18n.Localizer
)

// DefaultLanguage is used when the client expresses no preference.
var DefaultLanguage = language.BrazilianPortuguese

// InitLocalizer parses every translation/*.toml file in fsys.
func InitLocalizer(fsys fs.FS) error {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(fsys, bundle); err != nil {
		return err
	}
	i18nBundle = bundle
	LocalizerDefault = i18n.NewLocalizer(bundle, DefaultLanguage.String())
	return nil
}

// Languages lists the tags of the loaded translations.
func Languages() []string {
	if i18nBundle == nil {
		return nil
	}
	tags := i18nBundle.LanguageTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

func createTemplateData(params []string, separator ...string) map[string]any {
	sep := "=="
	if len(separator) > 0 {
		sep = separator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}
	return templateData
}

// Localize translates key with the given localizer. Params are
// "name==value" pairs. Unknown keys come back unchanged.
func Localize(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Debugf("localize %s: %v", key, err)
		return key
	}
	return msg
}

// I18n translates key in the default language.
func I18n(key string, params ...string) string {
	return Localize(LocalizerDefault, key, params...)
}

// FromContext returns the request localizer set by LocalizerMiddleware.
func FromContext(c *gin.Context) *i18n.Localizer {
	if v, ok := c.Get(localizerKey); ok {
		if l, ok := v.(*i18n.Localizer); ok {
			return l
		}
	}
	return LocalizerDefault
}

func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if i18nBundle == nil {
			c.Next()
			return
		}
		var langs []string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			langs = append(langs, cookie.Value)
		}
		langs = append(langs, c.GetHeader("Accept-Language"))

		c.Set(localizerKey, i18n.NewLocalizer(i18nBundle, langs...))
		c.Next()
	}
}

func parseTranslationFiles(fsys fs.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(fsys, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
}
