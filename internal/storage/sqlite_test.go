package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Settings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetSetting(ctx, "reminder.time"); err != nil || ok {
		t.Fatalf("GetSetting on empty store: ok=%v err=%v", ok, err)
	}
	if err := store.SetSetting(ctx, "reminder.time", "09:00"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := store.SetSetting(ctx, "reminder.time", "07:45"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	v, ok, err := store.GetSetting(ctx, "reminder.time")
	if err != nil || !ok {
		t.Fatalf("GetSetting: ok=%v err=%v", ok, err)
	}
	if v != "07:45" {
		t.Fatalf("value=%q, want %q", v, "07:45")
	}
	if err := store.SetSetting(ctx, "  ", "x"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestSQLiteStore_SyncRuns(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if _, ok, err := store.LastSync(ctx); err != nil || ok {
		t.Fatalf("LastSync on empty store: ok=%v err=%v", ok, err)
	}
	if err := store.RecordSync(ctx, "rclone", false, "sync failed: boom"); err != nil {
		t.Fatalf("RecordSync: %v", err)
	}
	if err := store.RecordSync(ctx, "mirror", true, "mirrored"); err != nil {
		t.Fatalf("RecordSync: %v", err)
	}
	run, ok, err := store.LastSync(ctx)
	if err != nil || !ok {
		t.Fatalf("LastSync: ok=%v err=%v", ok, err)
	}
	if run.Backend != "mirror" || !run.OK || run.Message != "mirrored" {
		t.Fatalf("run=%+v", run)
	}
	if !run.CreatedAt.Equal(time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("CreatedAt=%v", run.CreatedAt)
	}
}

func TestSQLiteStore_Usage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []UsageEntry{
		{UserID: 1, Model: "openai/gpt-4o", PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		{UserID: 1, Model: "openai/gpt-4o", PromptTokens: 20, CompletionTokens: 7, TotalTokens: 27},
		{UserID: 2, Model: "openai/gpt-4o", PromptTokens: 3, CompletionTokens: 3, TotalTokens: 6},
	}
	for _, e := range entries {
		if err := store.RecordUsage(ctx, e); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}
	got, err := store.UsageTotals(ctx, 1)
	if err != nil {
		t.Fatalf("UsageTotals: %v", err)
	}
	want := UsageTotals{Requests: 2, PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42}
	if got != want {
		t.Fatalf("totals=%+v, want %+v", got, want)
	}
	none, err := store.UsageTotals(ctx, 99)
	if err != nil || none != (UsageTotals{}) {
		t.Fatalf("totals for unknown user=%+v err=%v", none, err)
	}
}

func TestSQLiteStore_ReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s1.SetSetting(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}
	_ = s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if v, ok, _ := s2.GetSetting(ctx, "k"); !ok || v != "v" {
		t.Fatalf("after reopen value=%q ok=%v", v, ok)
	}
	if s2.Path() != filepath.Join(dir, DBName) {
		t.Fatalf("Path()=%q", s2.Path())
	}
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
