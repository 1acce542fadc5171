package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vaultbot/internal/chat"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider 使用 go-openai SDK 的 Provider 实现
// OpenAIProvider implements Provider against any OpenAI-compatible API
// (OpenRouter by default) using the go-openai SDK.
type OpenAIProvider struct {
	client  *openai.Client
	cfg     OpenAIConfig
	logger  *slog.Logger
	backoff time.Duration
}

// OpenAIConfig SDK provider 配置
// OpenAIConfig is the SDK provider configuration
type OpenAIConfig struct {
	Name       string
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutMS  int
	MaxRetries int
	// SiteURL and AppName are sent as OpenRouter attribution headers.
	SiteURL   string
	AppName   string
	MaxTokens int
	Logger    *slog.Logger
}

// NewOpenAIProvider 创建基于 SDK 的 provider
// NewOpenAIProvider creates an SDK-based provider. It fails with
// ErrNotConfigured when no API key is set.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = "openrouter"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	config := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	httpClient := &http.Client{Transport: &headerTransport{
		base:    http.DefaultTransport,
		headers: attributionHeaders(cfg.SiteURL, cfg.AppName),
	}}
	if cfg.TimeoutMS > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	config.HTTPClient = httpClient

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(config),
		cfg:     cfg,
		logger:  logger,
		backoff: 500 * time.Millisecond,
	}, nil
}

func (p *OpenAIProvider) Name() string { return p.cfg.Name }

func (p *OpenAIProvider) CurrentModel() string { return p.cfg.Model }

// Complete sends req, retrying transient failures with exponential backoff.
// Authentication, quota, rate-limit and unknown-model errors are returned
// immediately as *Error.
func (p *OpenAIProvider) Complete(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.CurrentModel()
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.cfg.MaxTokens
	}
	sdkReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	var lastErr *Error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := p.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ChatResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := p.client.CreateChatCompletion(ctx, sdkReq)
		if err == nil {
			return p.toResponse(model, resp)
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return ChatResponse{}, classify(err, model)
		}
		lastErr = classify(err, model)
		if !lastErr.retryable() {
			return ChatResponse{}, lastErr
		}
		p.logger.Warn("completion attempt failed", "attempt", attempt+1, "model", model, "err", err)
	}
	return ChatResponse{}, lastErr
}

func (p *OpenAIProvider) toResponse(model string, resp openai.ChatCompletionResponse) (ChatResponse, error) {
	out := ChatResponse{
		Model: model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if resp.Model != "" {
		out.Model = resp.Model
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	if out.Usage.TotalTokens > 0 {
		p.logger.Info("completion usage",
			"model", out.Model,
			"prompt", out.Usage.PromptTokens,
			"completion", out.Usage.CompletionTokens,
			"total", out.Usage.TotalTokens)
	}
	if strings.TrimSpace(out.Content) == "" {
		return out, ErrEmptyResponse
	}
	return out, nil
}

func convertMessages(messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func attributionHeaders(siteURL, appName string) http.Header {
	h := http.Header{}
	if s := strings.TrimSpace(siteURL); s != "" {
		h.Set("HTTP-Referer", s)
	}
	if s := strings.TrimSpace(appName); s != "" {
		h.Set("X-Title", s)
	}
	return h
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			clone.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(clone)
}

var _ Provider = (*OpenAIProvider)(nil)

func (p *OpenAIProvider) String() string {
	return fmt.Sprintf("%s(%s)", p.cfg.Name, p.cfg.Model)
}
