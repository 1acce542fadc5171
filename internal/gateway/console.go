package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// ConsoleUserID identifies the local console user.
const ConsoleUserID int64 = 1

type lineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func newBasicLineInput(in io.Reader, out io.Writer) *basicLineInput {
	return &basicLineInput{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(historyPath string) (*readlineInput, error) {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

type ConsoleOptions struct {
	// HistoryPath enables readline with persistent history. Leave In set and
	// HistoryPath empty to read plain lines instead.
	HistoryPath string
	In          io.Reader
	Out         io.Writer
	Username    string
	// Render turns markdown replies into terminal output.
	Render func(string) string
	Prompt string
}

// Console 本地终端网关，便于不连 Telegram 调试
// Console is a local terminal gateway acting as a single fixed user.
type Console struct {
	in       lineInput
	out      io.Writer
	mu       sync.Mutex
	render   func(string) string
	username string
	prompt   string
}

var _ Gateway = (*Console)(nil)

// NewConsole falls back to plain line input when readline is unavailable.
func NewConsole(opts ConsoleOptions) *Console {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	var in lineInput
	if opts.In != nil {
		in = newBasicLineInput(opts.In, out)
	} else if rl, err := newReadlineInput(opts.HistoryPath); err == nil {
		in = rl
	} else {
		in = newBasicLineInput(os.Stdin, out)
	}
	render := opts.Render
	if render == nil {
		render = func(s string) string { return s }
	}
	username := opts.Username
	if username == "" {
		username = "console"
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "> "
	}
	return &Console{in: in, out: out, render: render, username: username, prompt: prompt}
}

func (c *Console) Send(_ context.Context, _ int64, text string) error {
	if text == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, c.render(text))
	return err
}

func (c *Console) Typing(context.Context, int64) error { return nil }

// Run reads lines until EOF, ctx cancellation, /quit or /exit.
func (c *Console) Run(ctx context.Context, h Handler) error {
	defer c.in.Close()
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := c.in.ReadLine(c.prompt)
		if err != nil {
			switch {
			case errors.Is(err, readline.ErrInterrupt):
				fmt.Fprintln(c.out)
				continue
			case errors.Is(err, io.EOF):
				return nil
			default:
				return fmt.Errorf("read input: %w", err)
			}
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		u := NewTextUpdate(ConsoleUserID, ConsoleUserID, c.username, text)
		if u.Command == "quit" || u.Command == "exit" {
			return nil
		}
		h(ctx, u)
	}
}
