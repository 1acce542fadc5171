// Package assistant holds the LLM-facing workflows: free chat, article
// analysis and book evaluation.
package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"vaultbot/internal/chat"
	"vaultbot/internal/contextmgr"
	"vaultbot/internal/extract"
	"vaultbot/internal/i18n"
	"vaultbot/internal/provider"
	"vaultbot/internal/security"
	"vaultbot/internal/storage"
)

const (
	chatTemperature     float32 = 0.7
	analysisTemperature float32 = 0.3

	defaultArticleMaxChars = 15000
)

// UsageRecorder persists token usage of successful completions.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, e storage.UsageEntry) error
}

type Options struct {
	// Provider may be nil when no API key is configured; every workflow
	// then answers with the "not configured" message.
	Provider        provider.Provider
	History         *contextmgr.History
	I18n            *i18n.I18n
	Usage           UsageRecorder
	MaxTokens       int
	ArticleMaxChars int
	Logger          *slog.Logger
}

// Assistant 对话与内容分析流程
// Assistant turns user input into completion requests and completion
// results (or failures) into user-facing text.
type Assistant struct {
	provider        provider.Provider
	history         *contextmgr.History
	tr              *i18n.I18n
	usage           UsageRecorder
	maxTokens       int
	articleMaxChars int
	logger          *slog.Logger
}

func New(opts Options) *Assistant {
	tr := opts.I18n
	if tr == nil {
		tr = i18n.New("")
	}
	history := opts.History
	if history == nil {
		history = contextmgr.NewHistory(20, tr.T("llm.prompt.chat"))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxChars := opts.ArticleMaxChars
	if maxChars <= 0 {
		maxChars = defaultArticleMaxChars
	}
	return &Assistant{
		provider:        opts.Provider,
		history:         history,
		tr:              tr,
		usage:           opts.Usage,
		maxTokens:       opts.MaxTokens,
		articleMaxChars: maxChars,
		logger:          logger,
	}
}

func (a *Assistant) History() *contextmgr.History { return a.history }

// Configured reports whether a completion provider is attached.
func (a *Assistant) Configured() bool { return a.provider != nil }

// ProviderName and Model describe the attached provider for /model.
func (a *Assistant) ProviderName() string {
	if a.provider == nil {
		return ""
	}
	return a.provider.Name()
}

func (a *Assistant) Model() string {
	if a.provider == nil {
		return ""
	}
	return a.provider.CurrentModel()
}

// Chat records text as the user's turn, asks the model with the trimmed
// history and records the answer as the assistant's turn. Failure
// messages are recorded too, so the history stays in user/assistant pairs.
func (a *Assistant) Chat(ctx context.Context, userID int64, text string) string {
	a.history.Append(userID, chat.RoleUser, text)
	reply := a.complete(ctx, userID, a.history.PrepareContext(userID), chatTemperature)
	a.history.Append(userID, chat.RoleAssistant, reply)
	return reply
}

// SummarizeArticle asks for a structured review of art. The article text is
// cut to the configured length first.
func (a *Assistant) SummarizeArticle(ctx context.Context, userID int64, art extract.Article) string {
	msgs := []chat.Message{
		chat.System(a.tr.T("llm.prompt.article")),
		chat.User(a.ArticleRequest(art)),
	}
	return a.complete(ctx, userID, msgs, analysisTemperature)
}

// ArticleRequest renders the user message sent for art.
func (a *Assistant) ArticleRequest(art extract.Article) string {
	text := art.Text
	if utf8.RuneCountInString(text) > a.articleMaxChars {
		text = string([]rune(text)[:a.articleMaxChars]) + a.tr.T("article.truncate")
	}
	words := art.WordCount
	if words == 0 {
		words = len(strings.Fields(art.Text))
	}
	return a.tr.T("article.request", art.Title, art.URL, a.LanguageName(art.Language), words, text)
}

// LanguageName localizes a language code from the extractor.
func (a *Assistant) LanguageName(code string) string {
	switch code {
	case "ru", "en":
		return a.tr.T("lang." + code)
	default:
		return a.tr.T("lang.unknown")
	}
}

func (a *Assistant) EvaluateBook(ctx context.Context, userID int64, info string) string {
	msgs := []chat.Message{
		chat.System(a.tr.T("llm.prompt.book")),
		chat.User(a.tr.T("book.request", info)),
	}
	return a.complete(ctx, userID, msgs, analysisTemperature)
}

func (a *Assistant) complete(ctx context.Context, userID int64, msgs []chat.Message, temperature float32) string {
	if a.provider == nil {
		return a.tr.T("llm.not_configured")
	}
	resp, err := a.provider.Complete(ctx, provider.ChatRequest{
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return a.errorMessage(err)
	}

	a.logger.Info("completion tokens",
		"user_id", userID,
		"prompt", resp.Usage.PromptTokens,
		"completion", resp.Usage.CompletionTokens,
		"total", resp.Usage.TotalTokens,
	)
	if a.usage != nil && resp.Usage.TotalTokens > 0 {
		entry := storage.UsageEntry{
			UserID:           userID,
			Model:            resp.Model,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		if err := a.usage.RecordUsage(ctx, entry); err != nil {
			a.logger.Warn("record usage failed", "err", err)
		}
	}
	return resp.Content
}

func (a *Assistant) errorMessage(err error) string {
	switch {
	case errors.Is(err, provider.ErrNotConfigured):
		return a.tr.T("llm.not_configured")
	case errors.Is(err, provider.ErrEmptyResponse):
		return a.tr.T("llm.empty")
	}

	switch provider.KindOf(err) {
	case provider.KindAuth:
		return a.tr.T("llm.err.auth")
	case provider.KindQuota:
		return a.tr.T("llm.err.quota")
	case provider.KindRateLimit:
		return a.tr.T("llm.err.rate_limit")
	case provider.KindModelNotFound:
		return a.tr.T("llm.err.model", a.Model())
	case provider.KindTimeout:
		return a.tr.T("llm.err.timeout")
	default:
		a.logger.Error("completion failed", "err", err)
		return a.tr.T("llm.err.generic", security.Mask(err.Error()))
	}
}
