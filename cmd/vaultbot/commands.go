package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vaultbot/internal/config"
	"vaultbot/internal/gateway"
	"vaultbot/internal/tui"
	"vaultbot/internal/vaultsync"
)

const consoleWidth = 100

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			allowed := a.cfg.Telegram.AllowedUsers
			if len(allowed) == 0 {
				a.logger.Warn("ALLOWED_USERS is empty, the bot answers everyone")
			}
			tg, err := gateway.NewTelegram(gateway.TelegramOptions{
				Token:  a.cfg.Telegram.Token,
				Logger: a.logger.With("component", "telegram"),
			})
			if err != nil {
				return fmt.Errorf("connect telegram: %w", err)
			}
			a.logger.Info("telegram connected", "bot", tg.BotName())

			rem := a.reminders(tg, allowed)
			return a.serve(ctx, tg, a.bot(tg, rem, allowed), rem)
		},
	}
}

func consoleCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			opts := gateway.ConsoleOptions{
				HistoryPath: filepath.Join(a.cfg.Storage.BaseDir, "console.history"),
				Out:         cmd.OutOrStdout(),
				Username:    currentUsername(),
			}
			if !plain {
				opts.Render = func(s string) string { return tui.RenderMarkdown(s, consoleWidth) }
			}
			console := gateway.NewConsole(opts)
			me := []int64{gateway.ConsoleUserID}
			rem := a.reminders(console, me)
			return a.serve(ctx, console, a.bot(console, rem, me), rem)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print replies as raw markdown")
	return cmd
}

func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the ticket board",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return tui.Run(ctx, a.vault, a.tr)
		},
	}
}

func digestCmd() *cobra.Command {
	var send, plain bool
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the morning digest, or send it with --send",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !send {
				text, err := a.reminders(nil, nil).Digest(ctx)
				if err != nil {
					return err
				}
				if !plain {
					text = tui.RenderMarkdown(text, consoleWidth)
				}
				fmt.Fprintln(out, text)
				return nil
			}

			tg, err := gateway.NewTelegram(gateway.TelegramOptions{
				Token:  a.cfg.Telegram.Token,
				Logger: a.logger.With("component", "telegram"),
			})
			if err != nil {
				return fmt.Errorf("connect telegram: %w", err)
			}
			recipients := a.cfg.Telegram.AllowedUsers
			if len(recipients) == 0 {
				return errors.New("no recipients: set ALLOWED_USERS")
			}
			sent, err := a.reminders(tg, recipients).Fire(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "digest sent to %d of %d recipient(s)\n", sent, len(recipients))
			return nil
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "Send to every allowed Telegram user")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown")
	return cmd
}

func syncCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the vault once, or show the last run with --status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if status {
				run, ok, err := a.store.LastSync(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "no sync recorded")
					return nil
				}
				state := "ok"
				if !run.OK {
					state = "failed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %s\n", run.CreatedAt.Format(time.DateTime), run.Backend, state, run.Message)
				return nil
			}
			if !a.sync.Configured() {
				return vaultsync.ErrNotConfigured
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			res := a.sync.Sync(ctx)
			if !res.OK {
				return errors.New(res.Message())
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Show the last recorded sync")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultScaffoldPath
			if len(args) == 1 {
				path = args[0]
			}
			written, created, err := config.InitScaffold(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, left unchanged\n", written)
			}
			return nil
		},
	})
	return cmd
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
