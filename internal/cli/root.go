// Package cli is the command-line host for the responder.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"voice-assistant/internal/app"
	"voice-assistant/internal/common/config"
	"voice-assistant/internal/common/logger"
)

// Builder creates the responder for a command run.
type Builder func(ctx context.Context, configPath, logLevel string) (*app.App, error)

type rootOptions struct {
	configPath string
	logLevel   string
	build      Builder
}

// NewRootCommand returns the assistant command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultBuilder)
}

func newRootCommand(build Builder) *cobra.Command {
	opts := &rootOptions{build: build}

	rootCmd := &cobra.Command{
		Use:   "assistant",
		Short: "A French rule-based conversational assistant",
		Long: `assistant answers French small talk, tells the time and date, and gives the
weather for a few French cities. Use "chat" for an interactive session or "ask" for a
single question.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newChatCommand(opts),
		newAskCommand(opts),
		newListenCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultBuilder(ctx context.Context, configPath, logLevel string) (*app.App, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	// stdout belongs to the conversation.
	log := logger.NewStructured(level, "console", "stderr")

	return app.Build(ctx, cfg, log, app.Options{})
}
