package locale

import "strings"

const (
	LanguageFrench  = "fr"
	LanguageEnglish = "en"
)

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "fr") {
		return LanguageFrench
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage picks the first supported language in header order.
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if lang := NormalizeLanguage(tag); lang != "" {
			return lang
		}
	}
	return ""
}

// Resolve returns the first supported language among candidates, falling back to French.
func Resolve(candidates ...string) string {
	for _, candidate := range candidates {
		if lang := NormalizeLanguage(candidate); lang != "" {
			return lang
		}
	}
	return LanguageFrench
}
