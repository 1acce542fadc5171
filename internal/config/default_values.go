package config

const (
	DefaultProviderName       = "openrouter"
	DefaultBaseURL            = "https://openrouter.ai/api/v1"
	DefaultModel              = "openai/gpt-4o"
	DefaultAppName            = "vaultbot"
	DefaultProviderTimeoutMS  = 120000
	DefaultProviderMaxRetries = 2
	DefaultMaxTokens          = 4096

	DefaultMaxHistory = 20

	DefaultInboxDir = "tickets"

	DefaultSyncTimeoutSec = 180

	DefaultReminderHour = 9
	DefaultTimezone     = "Europe/Moscow"

	DefaultArticleMaxChars   = 15000
	DefaultArticleTimeoutSec = 30
)
