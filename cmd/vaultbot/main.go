package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "time/tzdata"
)

var configPath string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vaultbot",
		Short:        "Personal assistant bot over a markdown ticket vault",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config JSON/JSONC/YAML")

	root.AddCommand(runCmd())
	root.AddCommand(consoleCmd())
	root.AddCommand(boardCmd())
	root.AddCommand(digestCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(configCmd())
	return root
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
