package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DBName is the state database file created under the state directory.
const DBName = "vaultbot.db"

// SQLiteStore 基于 SQLite (WAL 模式) 的持久化实现
// SQLiteStore implements Store using SQLite with WAL mode
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore 创建并初始化 SQLite 数据库
// NewSQLiteStore creates and initializes a SQLite database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

// Open opens the state database inside stateDir.
func Open(stateDir string) (*SQLiteStore, error) {
	return NewSQLiteStore(filepath.Join(stateDir, DBName))
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		backend    TEXT NOT NULL,
		ok         INTEGER NOT NULL DEFAULT 0,
		message    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS usage_log (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id           INTEGER NOT NULL,
		model             TEXT NOT NULL DEFAULT '',
		prompt_tokens     INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens      INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_log_user ON usage_log(user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Settings ---

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("setting key is empty")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, s.stamp())
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// --- Sync Runs ---

func (s *SQLiteStore) RecordSync(ctx context.Context, backend string, ok bool, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (backend, ok, message, created_at) VALUES (?, ?, ?, ?)`,
		backend, boolToInt(ok), message, s.stamp())
	if err != nil {
		return fmt.Errorf("record sync: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LastSync(ctx context.Context) (SyncRun, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, backend, ok, message, created_at FROM sync_runs ORDER BY id DESC LIMIT 1`)
	var run SyncRun
	var ok int
	var created string
	err := row.Scan(&run.ID, &run.Backend, &ok, &run.Message, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncRun{}, false, nil
	}
	if err != nil {
		return SyncRun{}, false, fmt.Errorf("last sync: %w", err)
	}
	run.OK = ok != 0
	run.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return run, true, nil
}

// --- Usage ---

func (s *SQLiteStore) RecordUsage(ctx context.Context, e UsageEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_log (user_id, model, prompt_tokens, completion_tokens, total_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Model, e.PromptTokens, e.CompletionTokens, e.TotalTokens, s.stamp())
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UsageTotals(ctx context.Context, userID int64) (UsageTotals, error) {
	var u UsageTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(prompt_tokens), 0), COALESCE(SUM(completion_tokens), 0), COALESCE(SUM(total_tokens), 0)
		FROM usage_log WHERE user_id=?`, userID).
		Scan(&u.Requests, &u.PromptTokens, &u.CompletionTokens, &u.TotalTokens)
	if err != nil {
		return UsageTotals{}, fmt.Errorf("usage totals: %w", err)
	}
	return u, nil
}

// --- Helpers ---

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
