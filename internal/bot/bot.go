// Package bot routes gateway updates to command handlers.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"vaultbot/internal/assistant"
	"vaultbot/internal/contextmgr"
	"vaultbot/internal/extract"
	"vaultbot/internal/gateway"
	"vaultbot/internal/i18n"
	"vaultbot/internal/reminder"
	"vaultbot/internal/storage"
	"vaultbot/internal/vault"
	"vaultbot/internal/vaultsync"
)

// Syncer is the slice of the sync coordinator the bot needs.
type Syncer interface {
	Configured() bool
	Sync(ctx context.Context) vaultsync.Result
}

// Reminders is the runtime control surface of the morning digest.
type Reminders interface {
	Settings() reminder.Settings
	Active() bool
	SetTime(ctx context.Context, hour, minute int) error
	Enable(ctx context.Context) error
	Disable(ctx context.Context)
}

// UsageStats reads accumulated token usage for /stats.
type UsageStats interface {
	UsageTotals(ctx context.Context, userID int64) (storage.UsageTotals, error)
}

type Options struct {
	Gateway   gateway.Gateway
	Vault     *vault.Store
	Assistant *assistant.Assistant
	Extractor extract.Extractor
	// Sync and AutoSync control the sync that follows every vault mutation.
	Sync         Syncer
	AutoSync     bool
	Reminders    Reminders
	Usage        UsageStats
	Tokenizer    *contextmgr.Tokenizer
	AllowedUsers []int64
	I18n         *i18n.I18n
	// ProviderName and Model are shown by /model when no provider is
	// attached to the assistant.
	ProviderName string
	Model        string
	Logger       *slog.Logger
}

type commandFunc func(ctx context.Context, u gateway.Update) error

// Bot 命令路由与错误边界
// Bot checks access, dispatches commands and turns any handler failure
// into the generic apology.
type Bot struct {
	gw        gateway.Gateway
	vault     *vault.Store
	assistant *assistant.Assistant
	extractor extract.Extractor
	sync      Syncer
	autoSync  bool
	reminders Reminders
	usage     UsageStats
	tokenizer *contextmgr.Tokenizer
	allowed   map[int64]struct{}
	tr        *i18n.I18n
	provider  string
	model     string
	logger    *slog.Logger
	commands  map[string]commandFunc
}

func New(opts Options) *Bot {
	tr := opts.I18n
	if tr == nil {
		tr = i18n.New("")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tok := opts.Tokenizer
	if tok == nil {
		tok = contextmgr.NewTokenizer("")
	}
	asst := opts.Assistant
	if asst == nil {
		asst = assistant.New(assistant.Options{I18n: tr, Logger: logger})
	}
	b := &Bot{
		gw:        opts.Gateway,
		vault:     opts.Vault,
		assistant: asst,
		extractor: opts.Extractor,
		sync:      opts.Sync,
		autoSync:  opts.AutoSync,
		reminders: opts.Reminders,
		usage:     opts.Usage,
		tokenizer: tok,
		allowed:   make(map[int64]struct{}, len(opts.AllowedUsers)),
		tr:        tr,
		provider:  opts.ProviderName,
		model:     opts.Model,
		logger:    logger,
	}
	for _, id := range opts.AllowedUsers {
		b.allowed[id] = struct{}{}
	}
	b.commands = map[string]commandFunc{
		"start":         b.cmdStart,
		"help":          b.cmdHelp,
		"clear":         b.cmdClear,
		"model":         b.cmdModel,
		"stats":         b.cmdStats,
		"ticket":        b.cmdTicket,
		"tickets":       b.cmdTickets,
		"today":         b.cmdToday,
		"done":          b.cmdDone,
		"delete_ticket": b.cmdDelete,
		"sync":          b.cmdSync,
		"article":       b.cmdArticle,
		"book":          b.cmdBook,
		"remind":        b.cmdRemind,
	}
	return b
}

// Allowed reports whether userID passes the allowlist. An empty list lets
// everyone in.
func (b *Bot) Allowed(userID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[userID]
	return ok
}

// Handle is the gateway.Handler for the bot. It never panics.
func (b *Bot) Handle(ctx context.Context, u gateway.Update) {
	log := b.logger.With("user_id", u.UserID, "username", u.DisplayName())
	log.Info("update", "text", preview(u.Text, 50))

	if !b.Allowed(u.UserID) {
		log.Warn("access denied")
		b.send(ctx, u, b.tr.T("access.denied"))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			b.send(ctx, u, b.tr.T("error.generic"))
		}
	}()
	if err := b.dispatch(ctx, u); err != nil {
		log.Error("handler failed", "command", u.Command, "err", err)
		b.send(ctx, u, b.tr.T("error.generic"))
	}
}

func (b *Bot) dispatch(ctx context.Context, u gateway.Update) error {
	if !u.IsCommand() {
		return b.handleText(ctx, u)
	}
	cmd, ok := b.commands[u.Command]
	if !ok {
		return b.reply(ctx, u, b.tr.T("command.unknown"))
	}
	return cmd(ctx, u)
}

func (b *Bot) handleText(ctx context.Context, u gateway.Update) error {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return nil
	}
	if extract.IsOnlyURL(text) {
		return b.processArticle(ctx, u, text)
	}
	b.typing(ctx, u)
	return b.reply(ctx, u, b.assistant.Chat(ctx, u.UserID, u.Text))
}

func (b *Bot) reply(ctx context.Context, u gateway.Update, text string) error {
	if b.gw == nil {
		return nil
	}
	return b.gw.Send(ctx, u.ChatID, text)
}

// send is reply for paths that have nowhere left to report a failure.
func (b *Bot) send(ctx context.Context, u gateway.Update, text string) {
	if err := b.reply(ctx, u, text); err != nil {
		b.logger.Error("send reply failed", "chat_id", u.ChatID, "err", err)
	}
}

func (b *Bot) typing(ctx context.Context, u gateway.Update) {
	if b.gw == nil {
		return
	}
	if err := b.gw.Typing(ctx, u.ChatID); err != nil {
		b.logger.Debug("typing action failed", "err", err)
	}
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
