package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageLimit is Telegram's per-message text limit.
const MessageLimit = 4096

const defaultPollTimeout = 60

var ErrNoToken = errors.New("telegram token is not configured")

type TelegramOptions struct {
	Token string
	// Endpoint overrides the Bot API endpoint, a format string taking the
	// token and the method name.
	Endpoint    string
	Client      *http.Client
	PollTimeout int
	Logger      *slog.Logger
}

// Telegram 基于 Bot API 长轮询的网关
// Telegram is the Bot API long-polling gateway.
type Telegram struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *slog.Logger
}

var _ Gateway = (*Telegram)(nil)

func NewTelegram(opts TelegramOptions) (*Telegram, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, ErrNoToken
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	return &Telegram{api: api, pollTimeout: timeout, logger: logger}, nil
}

// BotName is the bot's @username as reported by getMe.
func (t *Telegram) BotName() string { return t.api.Self.UserName }

// Send delivers text in MessageLimit-sized chunks. Each chunk is tried as
// Markdown first and resent as plain text when Telegram rejects the markup.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range SplitMessage(text, MessageLimit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.sendChunk(chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *Telegram) sendChunk(chatID int64, chunk string) error {
	msg := tgbotapi.NewMessage(chatID, chunk)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := t.api.Send(msg)
	if err == nil {
		return nil
	}
	if !isBadRequest(err) {
		return fmt.Errorf("send message: %w", err)
	}
	t.logger.Debug("markdown rejected, resending as plain text", "chat_id", chatID, "err", err)
	msg.ParseMode = ""
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send plain message: %w", err)
	}
	return nil
}

func isBadRequest(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusBadRequest
	}
	return strings.Contains(err.Error(), "can't parse entities")
}

func (t *Telegram) Typing(_ context.Context, chatID int64) error {
	_, err := t.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func (t *Telegram) Run(ctx context.Context, h Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = t.pollTimeout
	updates := t.api.GetUpdatesChan(cfg)
	defer t.api.StopReceivingUpdates()

	t.logger.Info("telegram polling started", "bot", t.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			u, ok := updateFromMessage(upd.Message)
			if !ok {
				continue
			}
			h(ctx, u)
		}
	}
}

func updateFromMessage(m *tgbotapi.Message) (Update, bool) {
	if m == nil || m.From == nil || m.Chat == nil {
		return Update{}, false
	}
	u := Update{
		UserID:    m.From.ID,
		ChatID:    m.Chat.ID,
		Username:  m.From.UserName,
		FirstName: m.From.FirstName,
		Text:      m.Text,
	}
	if m.IsCommand() {
		u.Command = strings.ToLower(m.Command())
		u.ArgText = strings.TrimSpace(m.CommandArguments())
		u.Args = strings.Fields(u.ArgText)
	}
	return u, true
}
