// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/shopinsights/internal/i18n"
)

// I18nMiddleware stores the caller's preferred language under "lang".
// Accept-Language entries are tried in order against the loaded locales.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", preferredLanguage(c.GetHeader("Accept-Language"), i18n.GetSupportedLanguages()))
		c.Next()
	}
}

func preferredLanguage(header string, supported []string) string {
	available := make(map[string]bool, len(supported))
	for _, lang := range supported {
		available[lang] = true
	}

	// Handle cases like "zh-TW,zh;q=0.9,en;q=0.8"
	for _, entry := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(entry, ";")[0])
		if tag == "" || tag == "*" {
			continue
		}
		lang := localeName(tag)
		if available[lang] {
			return lang
		}
		if base := strings.SplitN(lang, "_", 2)[0]; available[base] {
			return base
		}
	}
	return "en"
}

// localeName maps a language tag to the locale file naming, e.g. zh-Hant -> zh_TW.
func localeName(tag string) string {
	switch strings.ToLower(strings.ReplaceAll(tag, "_", "-")) {
	case "zh-tw", "zh-hant", "zh-hk", "zh-hant-tw":
		return "zh_TW"
	}
	parts := strings.SplitN(strings.ReplaceAll(tag, "-", "_"), "_", 2)
	if len(parts) == 2 {
		return strings.ToLower(parts[0]) + "_" + strings.ToUpper(parts[1])
	}
	return strings.ToLower(parts[0])
}
