package provider

import (
	"context"
	"errors"

	"vaultbot/internal/chat"
)

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("completion provider is not configured")
	// ErrEmptyResponse is returned when the model answered with no content.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// ChatRequest 封装一次模型请求
// ChatRequest wraps a single model call
type ChatRequest struct {
	Model       string
	Messages    []chat.Message
	Temperature float32
	MaxTokens   int
}

// Usage token 用量统计
// Usage reports token consumption
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse 完整响应
// ChatResponse is the complete response
type ChatResponse struct {
	Content      string
	FinishReason string
	Model        string
	Usage        Usage
}

// Provider 模型提供方接口
// Provider is the completion backend.
type Provider interface {
	// Complete sends one non-streaming chat completion request.
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)

	// Name returns the provider name
	Name() string

	// CurrentModel returns the model used when a request names none
	CurrentModel() string
}
