package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/habitspark/internal/locale"
)

const localeContextKey = "__request_language"

// requestLanguage resolves ?lang, then Accept-Language, then the configured default.
func (a *API) requestLanguage(c *gin.Context) string {
	if cached, exists := c.Get(localeContextKey); exists {
		if language, ok := cached.(string); ok {
			return language
		}
	}
	language := locale.Resolve(
		c.Query("lang"),
		locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")),
		a.defaultLanguage,
	)
	c.Set(localeContextKey, language)
	return language
}

func (a *API) message(c *gin.Context, key string) string {
	return locale.Message(a.requestLanguage(c), key)
}
