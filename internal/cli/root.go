package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gizetz/gbairai/internal/config"
	"github.com/gizetz/gbairai/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config string
}

// NewRootCommand creates the root command for the gbairai CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gbairai",
		Short: "Gbairai - direct messaging service",
		Long:  "One-to-one conversations with per-viewer hiding, tombstoning, blocking and unread tracking.",
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "config", "config file name under ./config (without .yaml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		return 1
	}
	return 0
}

func loadConfig(opts *RootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(os.Stderr, cfg.Logger)
	slog.SetDefault(log)
	return cfg, log, nil
}
