// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"reelproxy/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagConfig string
	flagDebug  bool
)

// cfg holds the loaded configuration (merged: defaults < config file <
// environment < flags).
var cfg *config.Config

var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "reelproxy",
	Short: "Resolve and relay social post videos",
	Long: `Reelproxy is a small backend proxy that resolves a social-media post URL
into a direct video and thumbnail URL, and can re-stream the video bytes to
the caller as a file download.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: XDG config dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDebug {
		cfg.Debug = true
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	return nil
}
