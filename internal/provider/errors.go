package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Kind 上游错误分类
// Kind classifies an upstream failure so callers can word it for the user.
type Kind string

const (
	KindAuth          Kind = "auth"
	KindQuota         Kind = "quota"
	KindRateLimit     Kind = "rate_limit"
	KindModelNotFound Kind = "model_not_found"
	KindTimeout       Kind = "timeout"
	KindGeneric       Kind = "generic"
)

// Error wraps a failed completion call.
type Error struct {
	Kind   Kind
	Status int
	Model  string
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindGeneric when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindGeneric
}

// retryable reports whether another attempt may succeed.
func (e *Error) retryable() bool {
	switch e.Kind {
	case KindTimeout:
		return true
	case KindGeneric:
		return e.Status == 0 || e.Status >= 500
	default:
		return false
	}
}

func classify(err error, model string) *Error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	msg := strings.ToLower(err.Error())
	kind := KindGeneric
	switch {
	case status == http.StatusUnauthorized || strings.Contains(msg, "unauthorized"):
		kind = KindAuth
	case status == http.StatusPaymentRequired || strings.Contains(msg, "payment required"):
		kind = KindQuota
	case status == http.StatusTooManyRequests || strings.Contains(msg, "rate limit"):
		kind = KindRateLimit
	case strings.Contains(msg, "model") && (status == http.StatusNotFound || strings.Contains(msg, "not found")):
		kind = KindModelNotFound
	case isTimeout(err):
		kind = KindTimeout
	}
	return &Error{Kind: kind, Status: status, Model: model, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
