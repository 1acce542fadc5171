package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"vaultbot/internal/assistant"
	"vaultbot/internal/bot"
	"vaultbot/internal/config"
	"vaultbot/internal/contextmgr"
	"vaultbot/internal/extract"
	"vaultbot/internal/gateway"
	"vaultbot/internal/i18n"
	"vaultbot/internal/provider"
	"vaultbot/internal/reminder"
	"vaultbot/internal/security"
	"vaultbot/internal/storage"
	"vaultbot/internal/vault"
	"vaultbot/internal/vaultsync"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	tr        *i18n.I18n
	vault     *vault.Store
	store     storage.Store
	assistant *assistant.Assistant
	sync      *vaultsync.Coordinator
	tokenizer *contextmgr.Tokenizer
}

// newLogger builds the masked text logger at the configured level.
func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(security.NewMaskingHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newApp(cfg, newLogger(logOut, cfg.Log.Level))
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	tr := i18n.New(cfg.Locale)
	loc := cfg.Location()

	v, err := vault.New(cfg.Vault.Path, cfg.Vault.InboxDir,
		vault.WithLocation(loc),
		vault.WithLogger(logger.With("component", "vault")),
	)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	store, err := storage.Open(cfg.Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	// A missing API key leaves the provider nil; every LLM workflow then
	// answers with the "not configured" text.
	var prov provider.Provider
	p, err := provider.NewOpenAIProvider(provider.OpenAIConfig{
		Name:       cfg.Provider.Name,
		BaseURL:    cfg.Provider.BaseURL,
		APIKey:     cfg.Provider.APIKey,
		Model:      cfg.Provider.Model,
		TimeoutMS:  cfg.Provider.TimeoutMS,
		MaxRetries: cfg.Provider.MaxRetries,
		SiteURL:    cfg.Provider.SiteURL,
		AppName:    cfg.Provider.AppName,
		MaxTokens:  cfg.Provider.MaxTokens,
		Logger:     logger.With("component", "provider"),
	})
	switch {
	case err == nil:
		prov = p
	case errors.Is(err, provider.ErrNotConfigured):
		logger.Warn("llm provider not configured, chat and analysis are disabled")
	default:
		_ = store.Close()
		return nil, fmt.Errorf("init provider: %w", err)
	}

	asst := assistant.New(assistant.Options{
		Provider:        prov,
		History:         contextmgr.NewHistory(cfg.Chat.MaxHistory, tr.T("llm.prompt.chat")),
		I18n:            tr,
		Usage:           store,
		MaxTokens:       cfg.Provider.MaxTokens,
		ArticleMaxChars: cfg.Article.MaxChars,
		Logger:          logger.With("component", "assistant"),
	})

	coord := &vaultsync.Coordinator{
		VaultPath:  v.Root(),
		Remote:     cfg.Sync.RcloneRemote,
		MirrorPath: cfg.Sync.MirrorPath,
		Timeout:    cfg.SyncTimeout(),
		Recorder:   store,
		Logger:     logger.With("component", "sync"),
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		tr:        tr,
		vault:     v,
		store:     store,
		assistant: asst,
		sync:      coord,
		tokenizer: contextmgr.NewTokenizerForModel(cfg.Provider.Model),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close state store", "err", err)
	}
}

// reminders builds the digest service delivering through sender.
func (a *app) reminders(sender reminder.Sender, recipients []int64) *reminder.Service {
	return reminder.NewService(reminder.Options{
		Tickets:    a.vault,
		Sender:     sender,
		Recipients: recipients,
		I18n:       a.tr,
		Store:      a.store,
		Settings: reminder.Settings{
			Enabled:  a.cfg.Reminder.Enabled,
			Hour:     a.cfg.Reminder.Hour,
			Minute:   a.cfg.Reminder.Minute,
			Location: a.cfg.Location(),
		},
		Logger: a.logger.With("component", "reminder"),
	})
}

func (a *app) bot(gw gateway.Gateway, rem bot.Reminders, allowed []int64) *bot.Bot {
	return bot.New(bot.Options{
		Gateway:      gw,
		Vault:        a.vault,
		Assistant:    a.assistant,
		Extractor:    extract.NewHTMLExtractor(a.cfg.ArticleTimeout(), a.logger.With("component", "extract")),
		Sync:         a.sync,
		AutoSync:     a.cfg.Sync.Enabled && a.sync.Configured(),
		Reminders:    rem,
		Usage:        a.store,
		Tokenizer:    a.tokenizer,
		AllowedUsers: allowed,
		I18n:         a.tr,
		ProviderName: a.cfg.Provider.Name,
		Model:        a.cfg.Provider.Model,
		Logger:       a.logger.With("component", "bot"),
	})
}

// serve starts the reminder job and runs gw until ctx ends.
func (a *app) serve(ctx context.Context, gw gateway.Gateway, b *bot.Bot, rem *reminder.Service) error {
	if err := rem.Start(ctx); err != nil {
		a.logger.Error("start reminders", "err", err)
	}
	defer rem.Stop()
	a.logger.Info("vaultbot started", "vault", a.vault.Root(), "sync", a.sync.Configured(), "reminder", rem.Active())
	err := gw.Run(ctx, b.Handle)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
