package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// ExtractURL returns the first http(s) URL in text, or "".
func ExtractURL(text string) string {
	return urlPattern.FindString(text)
}

// IsOnlyURL reports whether text, trimmed, is a single URL.
func IsOnlyURL(text string) bool {
	s := strings.TrimSpace(text)
	return s != "" && urlPattern.FindString(s) == s
}

// DetectLanguage returns "ru" when more than 30% of the letters are
// Cyrillic, "en" otherwise, and "unknown" when text has no Latin or
// Cyrillic letters at all.
func DetectLanguage(text string) string {
	cyr, total := 0, 0
	for _, r := range text {
		switch {
		case isRussianLetter(r):
			cyr++
			total++
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			total++
		}
	}
	if total == 0 {
		return "unknown"
	}
	if float64(cyr)/float64(total) > 0.3 {
		return "ru"
	}
	return "en"
}

func isRussianLetter(r rune) bool {
	return (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
}
