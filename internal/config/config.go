package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

type TelegramConfig struct {
	Token string `json:"token" yaml:"token"`
	// AllowedUsers 为空表示不限制 / empty means everyone may talk to the bot.
	AllowedUsers []int64 `json:"allowed_users" yaml:"allowed_users"`
}

type ProviderConfig struct {
	Name       string `json:"name" yaml:"name"`
	BaseURL    string `json:"base_url" yaml:"base_url"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	Model      string `json:"model" yaml:"model"`
	SiteURL    string `json:"site_url" yaml:"site_url"`
	AppName    string `json:"app_name" yaml:"app_name"`
	TimeoutMS  int    `json:"timeout_ms" yaml:"timeout_ms"`
	MaxRetries int    `json:"max_retries" yaml:"max_retries"`
	MaxTokens  int    `json:"max_tokens" yaml:"max_tokens"`
}

type ChatConfig struct {
	MaxHistory int `json:"max_history" yaml:"max_history"`
}

type VaultConfig struct {
	Path     string `json:"path" yaml:"path"`
	InboxDir string `json:"inbox_dir" yaml:"inbox_dir"`
}

type SyncConfig struct {
	// Enabled turns on the automatic sync after every vault mutation.
	// /sync works whenever a backend is configured.
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	MirrorPath   string `json:"mirror_path" yaml:"mirror_path"`
	RcloneRemote string `json:"rclone_remote" yaml:"rclone_remote"`
	TimeoutSec   int    `json:"timeout_sec" yaml:"timeout_sec"`
}

type ReminderConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Hour     int    `json:"hour" yaml:"hour"`
	Minute   int    `json:"minute" yaml:"minute"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

type ArticleConfig struct {
	MaxChars   int `json:"max_chars" yaml:"max_chars"`
	TimeoutSec int `json:"timeout_sec" yaml:"timeout_sec"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir" yaml:"base_dir"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Config 运行配置，显式传递给各组件
// Config is built once at startup and handed to every component.
type Config struct {
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Chat     ChatConfig     `json:"chat" yaml:"chat"`
	Vault    VaultConfig    `json:"vault" yaml:"vault"`
	Sync     SyncConfig     `json:"sync" yaml:"sync"`
	Reminder ReminderConfig `json:"reminder" yaml:"reminder"`
	Article  ArticleConfig  `json:"article" yaml:"article"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Locale   string         `json:"locale" yaml:"locale"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// Sections whose booleans default to true need pointers to tell "false"
// from "absent".
type fileSyncConfig struct {
	Enabled      *bool  `json:"enabled" yaml:"enabled"`
	MirrorPath   string `json:"mirror_path" yaml:"mirror_path"`
	RcloneRemote string `json:"rclone_remote" yaml:"rclone_remote"`
	TimeoutSec   int    `json:"timeout_sec" yaml:"timeout_sec"`
}

type fileReminderConfig struct {
	Enabled  *bool  `json:"enabled" yaml:"enabled"`
	Hour     *int   `json:"hour" yaml:"hour"`
	Minute   *int   `json:"minute" yaml:"minute"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

type fileConfig struct {
	Telegram *TelegramConfig     `json:"telegram" yaml:"telegram"`
	Provider *ProviderConfig     `json:"provider" yaml:"provider"`
	Chat     *ChatConfig         `json:"chat" yaml:"chat"`
	Vault    *VaultConfig        `json:"vault" yaml:"vault"`
	Sync     *fileSyncConfig     `json:"sync" yaml:"sync"`
	Reminder *fileReminderConfig `json:"reminder" yaml:"reminder"`
	Article  *ArticleConfig      `json:"article" yaml:"article"`
	Storage  *StorageConfig      `json:"storage" yaml:"storage"`
	Locale   string              `json:"locale" yaml:"locale"`
	Log      *LogConfig          `json:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Name:       DefaultProviderName,
			BaseURL:    DefaultBaseURL,
			Model:      DefaultModel,
			AppName:    DefaultAppName,
			TimeoutMS:  DefaultProviderTimeoutMS,
			MaxRetries: DefaultProviderMaxRetries,
			MaxTokens:  DefaultMaxTokens,
		},
		Chat: ChatConfig{MaxHistory: DefaultMaxHistory},
		Vault: VaultConfig{
			Path:     "./vault",
			InboxDir: DefaultInboxDir,
		},
		Sync: SyncConfig{TimeoutSec: DefaultSyncTimeoutSec},
		Reminder: ReminderConfig{
			Enabled:  true,
			Hour:     DefaultReminderHour,
			Minute:   0,
			Timezone: DefaultTimezone,
		},
		Article: ArticleConfig{
			MaxChars:   DefaultArticleMaxChars,
			TimeoutSec: DefaultArticleTimeoutSec,
		},
		Storage: StorageConfig{BaseDir: "~/.vaultbot"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load 按 默认值 → 配置文件 → 环境变量 的顺序合并配置
// Load merges defaults, then the config file, then environment overrides.
// An explicit path (or VAULTBOT_CONFIG) must exist; discovered paths are
// optional.
func Load(path string) (Config, error) {
	cfg := Default()

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("VAULTBOT_CONFIG")); resolvedPath == "" && envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath != "" {
		if err := mergeFromFile(&cfg, resolvedPath, true); err != nil {
			return Config{}, err
		}
	} else if found := findConfigPath(); found != "" {
		if err := mergeFromFile(&cfg, found, false); err != nil {
			return Config{}, err
		}
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func configCandidates() []string {
	candidates := []string{
		"vaultbot.json",
		"vaultbot.jsonc",
		"vaultbot.yaml",
		"vaultbot.yml",
		filepath.Join(".vaultbot", "config.json"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".vaultbot", "config.json"))
	}
	return candidates
}

func findConfigPath() string {
	for _, c := range configCandidates() {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string, required bool) error {
	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	fc, err := parseFile(resolved, data)
	if err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fc)
	return nil
}

func parseFile(path string, data []byte) (fileConfig, error) {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fileConfig{}, err
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
			return fileConfig{}, err
		}
	}
	return fc, nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Telegram != nil {
		if strings.TrimSpace(fc.Telegram.Token) != "" {
			cfg.Telegram.Token = fc.Telegram.Token
		}
		if fc.Telegram.AllowedUsers != nil {
			cfg.Telegram.AllowedUsers = append([]int64(nil), fc.Telegram.AllowedUsers...)
		}
	}
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Chat != nil && fc.Chat.MaxHistory > 0 {
		cfg.Chat.MaxHistory = fc.Chat.MaxHistory
	}
	if fc.Vault != nil {
		if strings.TrimSpace(fc.Vault.Path) != "" {
			cfg.Vault.Path = fc.Vault.Path
		}
		if strings.TrimSpace(fc.Vault.InboxDir) != "" {
			cfg.Vault.InboxDir = fc.Vault.InboxDir
		}
	}
	if fc.Sync != nil {
		if fc.Sync.Enabled != nil {
			cfg.Sync.Enabled = *fc.Sync.Enabled
		}
		if strings.TrimSpace(fc.Sync.MirrorPath) != "" {
			cfg.Sync.MirrorPath = fc.Sync.MirrorPath
		}
		if strings.TrimSpace(fc.Sync.RcloneRemote) != "" {
			cfg.Sync.RcloneRemote = fc.Sync.RcloneRemote
		}
		if fc.Sync.TimeoutSec > 0 {
			cfg.Sync.TimeoutSec = fc.Sync.TimeoutSec
		}
	}
	if fc.Reminder != nil {
		if fc.Reminder.Enabled != nil {
			cfg.Reminder.Enabled = *fc.Reminder.Enabled
		}
		if fc.Reminder.Hour != nil {
			cfg.Reminder.Hour = *fc.Reminder.Hour
		}
		if fc.Reminder.Minute != nil {
			cfg.Reminder.Minute = *fc.Reminder.Minute
		}
		if strings.TrimSpace(fc.Reminder.Timezone) != "" {
			cfg.Reminder.Timezone = fc.Reminder.Timezone
		}
	}
	if fc.Article != nil {
		if fc.Article.MaxChars > 0 {
			cfg.Article.MaxChars = fc.Article.MaxChars
		}
		if fc.Article.TimeoutSec > 0 {
			cfg.Article.TimeoutSec = fc.Article.TimeoutSec
		}
	}
	if fc.Storage != nil && strings.TrimSpace(fc.Storage.BaseDir) != "" {
		cfg.Storage.BaseDir = fc.Storage.BaseDir
	}
	if strings.TrimSpace(fc.Locale) != "" {
		cfg.Locale = fc.Locale
	}
	if fc.Log != nil && strings.TrimSpace(fc.Log.Level) != "" {
		cfg.Log.Level = fc.Log.Level
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.Name) != "" {
		base.Name = override.Name
	}
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.SiteURL) != "" {
		base.SiteURL = override.SiteURL
	}
	if strings.TrimSpace(override.AppName) != "" {
		base.AppName = override.AppName
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.MaxRetries > 0 {
		base.MaxRetries = override.MaxRetries
	}
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	return base
}

func normalize(cfg *Config) error {
	def := Default()
	cfg.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Provider.BaseURL), "/")
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = def.Provider.BaseURL
	}
	cfg.Provider.Model = strings.TrimSpace(cfg.Provider.Model)
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = def.Provider.Model
	}
	if strings.TrimSpace(cfg.Provider.Name) == "" {
		cfg.Provider.Name = def.Provider.Name
	}
	if cfg.Provider.TimeoutMS <= 0 {
		cfg.Provider.TimeoutMS = def.Provider.TimeoutMS
	}
	if cfg.Provider.MaxRetries < 0 {
		cfg.Provider.MaxRetries = 0
	}
	if cfg.Provider.MaxTokens <= 0 {
		cfg.Provider.MaxTokens = def.Provider.MaxTokens
	}
	if cfg.Chat.MaxHistory <= 0 {
		cfg.Chat.MaxHistory = def.Chat.MaxHistory
	}

	vaultPath, err := expandPath(cfg.Vault.Path)
	if err != nil {
		return err
	}
	if vaultPath == "" {
		if vaultPath, err = expandPath(def.Vault.Path); err != nil {
			return err
		}
	}
	cfg.Vault.Path = vaultPath
	cfg.Vault.InboxDir = strings.TrimSpace(cfg.Vault.InboxDir)
	if cfg.Vault.InboxDir == "" {
		cfg.Vault.InboxDir = def.Vault.InboxDir
	}

	if cfg.Sync.MirrorPath, err = expandPath(cfg.Sync.MirrorPath); err != nil {
		return err
	}
	cfg.Sync.RcloneRemote = strings.TrimSpace(cfg.Sync.RcloneRemote)
	if cfg.Sync.TimeoutSec <= 0 {
		cfg.Sync.TimeoutSec = def.Sync.TimeoutSec
	}

	if cfg.Reminder.Hour < 0 || cfg.Reminder.Hour > 23 {
		return fmt.Errorf("reminder.hour out of range: %d", cfg.Reminder.Hour)
	}
	if cfg.Reminder.Minute < 0 || cfg.Reminder.Minute > 59 {
		return fmt.Errorf("reminder.minute out of range: %d", cfg.Reminder.Minute)
	}
	cfg.Reminder.Timezone = strings.TrimSpace(cfg.Reminder.Timezone)
	if cfg.Reminder.Timezone == "" {
		cfg.Reminder.Timezone = def.Reminder.Timezone
	}
	if _, err := time.LoadLocation(cfg.Reminder.Timezone); err != nil {
		return fmt.Errorf("invalid reminder.timezone %q: %w", cfg.Reminder.Timezone, err)
	}

	if cfg.Article.MaxChars <= 0 {
		cfg.Article.MaxChars = def.Article.MaxChars
	}
	if cfg.Article.TimeoutSec <= 0 {
		cfg.Article.TimeoutSec = def.Article.TimeoutSec
	}

	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	if storageDir == "" {
		if storageDir, err = expandPath(def.Storage.BaseDir); err != nil {
			return err
		}
	}
	cfg.Storage.BaseDir = storageDir

	cfg.Locale = strings.TrimSpace(cfg.Locale)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	case "warning":
		cfg.Log.Level = "warn"
	default:
		cfg.Log.Level = def.Log.Level
	}
	cfg.Telegram.AllowedUsers = dedupeIDs(cfg.Telegram.AllowedUsers)
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", name, v)
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = strings.EqualFold(v, "true")
		}
	}

	str("TELEGRAM_TOKEN", &cfg.Telegram.Token)
	if v := strings.TrimSpace(os.Getenv("ALLOWED_USERS")); v != "" {
		ids, err := ParseUserIDs(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ALLOWED_USERS: %w", err)
		}
		cfg.Telegram.AllowedUsers = ids
	}

	str("OPENROUTER_API_KEY", &cfg.Provider.APIKey)
	str("OPENROUTER_BASE_URL", &cfg.Provider.BaseURL)
	str("LLM_PROVIDER", &cfg.Provider.Name)
	str("LLM_MODEL", &cfg.Provider.Model)
	str("OPENROUTER_APP_NAME", &cfg.Provider.AppName)
	str("OPENROUTER_SITE_URL", &cfg.Provider.SiteURL)

	str("OBSIDIAN_VAULT_PATH", &cfg.Vault.Path)
	str("OBSIDIAN_TICKETS_DIR", &cfg.Vault.InboxDir)

	flag("ICLOUD_SYNC_ENABLED", &cfg.Sync.Enabled)
	str("ICLOUD_VAULT_PATH", &cfg.Sync.MirrorPath)
	str("RCLONE_REMOTE", &cfg.Sync.RcloneRemote)

	flag("REMINDER_ENABLED", &cfg.Reminder.Enabled)
	str("TIMEZONE", &cfg.Reminder.Timezone)

	str("VAULTBOT_STATE_DIR", &cfg.Storage.BaseDir)
	str("VAULTBOT_LANG", &cfg.Locale)
	str("VAULTBOT_LOG_LEVEL", &cfg.Log.Level)

	for name, dst := range map[string]*int{
		"MAX_HISTORY":       &cfg.Chat.MaxHistory,
		"REMINDER_HOUR":     &cfg.Reminder.Hour,
		"REMINDER_MINUTE":   &cfg.Reminder.Minute,
		"ARTICLE_MAX_CHARS": &cfg.Article.MaxChars,
	} {
		if err := num(name, dst); err != nil {
			return Config{}, err
		}
	}

	return cfg, normalize(&cfg)
}

// ParseUserIDs parses a comma or semicolon separated list of user ids.
func ParseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return dedupeIDs(ids), nil
}

func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Location loads the reminder timezone. normalize already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reminder.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SyncTimeout returns the sync backend bound as a duration.
func (c Config) SyncTimeout() time.Duration {
	return time.Duration(c.Sync.TimeoutSec) * time.Second
}

// ArticleTimeout returns the article fetch bound as a duration.
func (c Config) ArticleTimeout() time.Duration {
	return time.Duration(c.Article.TimeoutSec) * time.Second
}

// Allowed reports whether userID passes the allowlist.
func (c Config) Allowed(userID int64) bool {
	if len(c.Telegram.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.Telegram.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}
