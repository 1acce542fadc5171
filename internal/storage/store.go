package storage

import (
	"context"
	"time"
)

// Store 持久化接口 / Store persists bot state that does not belong in the vault.
type Store interface {
	// 设置 / Settings
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error

	// 同步记录 / Sync runs
	RecordSync(ctx context.Context, backend string, ok bool, message string) error
	LastSync(ctx context.Context) (SyncRun, bool, error)

	// 用量 / Token usage
	RecordUsage(ctx context.Context, entry UsageEntry) error
	UsageTotals(ctx context.Context, userID int64) (UsageTotals, error)

	// 生命周期 / Lifecycle
	Close() error
}

// SyncRun 一次同步记录
// SyncRun is one recorded sync attempt.
type SyncRun struct {
	ID        int64
	Backend   string
	OK        bool
	Message   string
	CreatedAt time.Time
}

// UsageEntry is the token accounting of one completion call.
type UsageEntry struct {
	UserID           int64
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// UsageTotals aggregates usage_log rows for one user.
type UsageTotals struct {
	Requests         int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
