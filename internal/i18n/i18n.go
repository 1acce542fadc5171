package i18n

import (
	"fmt"
	"os"
	"strings"
)

// I18n 国际化支持
// I18n resolves user-facing message keys for one locale. English is always
// loaded as the fallback.
type I18n struct {
	locale   string
	messages map[string]string
}

// New 创建 i18n 实例
// New creates an i18n instance; an empty locale is detected from the
// environment.
func New(locale string) *I18n {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)

	i := &I18n{
		locale:   locale,
		messages: make(map[string]string, len(EnMessages)),
	}
	for k, v := range EnMessages {
		i.messages[k] = v
	}
	if locale == "ru" {
		for k, v := range RuMessages {
			i.messages[k] = v
		}
	}
	return i
}

// T 翻译函数 / Translation function
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale 返回当前 locale
// Locale returns current locale
func (i *I18n) Locale() string {
	return i.locale
}

// DetectLocale 自动检测 locale
// DetectLocale auto-detects locale from environment
func DetectLocale() string {
	for _, env := range []string{"VAULTBOT_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return normalizeLocale(v)
		}
	}
	return "en"
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "en"
	}
	// 去掉 .UTF-8 等后缀 / Remove .UTF-8 suffix
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "ru"):
		return "ru"
	case strings.HasPrefix(lower, "en"), lower == "c", lower == "posix":
		return "en"
	}
	return s
}
