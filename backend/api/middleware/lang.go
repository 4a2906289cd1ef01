package middleware

import (
	"strings"

	"mediafeed/backend/common/i18n"

	"github.com/gin-gonic/gin"
)

// LangMiddleware stores the first Accept-Language tag as "lang".
func LangMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = i18n.DefaultLang
		} else {
			lang = strings.TrimSpace(strings.Split(strings.Split(lang, ",")[0], ";")[0])
		}
		c.Set("lang", lang)
		c.Next()
	}
}
