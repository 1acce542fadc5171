// Package gateway abstracts the chat transport the bot talks through.
package gateway

import (
	"context"
	"strings"
	"unicode"
)

// Update 一条入站消息
// Update is one inbound user message, already split into command parts.
type Update struct {
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	Text      string
	// Command is the command name without the leading slash, empty for
	// plain text.
	Command string
	// ArgText is everything after the command, spacing preserved.
	ArgText string
	Args    []string
}

func (u Update) IsCommand() bool { return u.Command != "" }

// DisplayName prefers the username and falls back to the first name.
func (u Update) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Handler processes one update. Replies go through the gateway's Sender.
type Handler func(ctx context.Context, u Update)

// Gateway 消息通道：收消息、发消息
// Gateway receives updates and delivers replies for one transport.
type Gateway interface {
	Sender
	// Typing shows a "working on it" indicator where the transport has one.
	Typing(ctx context.Context, chatID int64) error
	// Run dispatches updates to h one at a time until ctx is done or the
	// transport closes.
	Run(ctx context.Context, h Handler) error
}

// ParseCommand splits "/cmd@bot rest of text" into "cmd" and "rest of text".
// ok is false for text that is not a command.
func ParseCommand(text string) (cmd, argText string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") || len(trimmed) == 1 {
		return "", "", false
	}
	head, rest := trimmed[1:], ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, rest = head[:i], head[i:]
	}
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// NewTextUpdate builds an Update from raw text typed by a local user.
func NewTextUpdate(userID, chatID int64, username, text string) Update {
	u := Update{
		UserID:    userID,
		ChatID:    chatID,
		Username:  username,
		FirstName: username,
		Text:      text,
	}
	if cmd, argText, ok := ParseCommand(text); ok {
		u.Command = cmd
		u.ArgText = argText
		u.Args = strings.Fields(argText)
	}
	return u
}
