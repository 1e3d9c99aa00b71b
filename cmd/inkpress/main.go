// Package main is the entry point for inkpress. The root command loads
// configuration and sets up logging; subcommands run the HTTP server,
// apply migrations or generate articles from the terminal.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inkpress/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

var flagConfig string

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "inkpress",
	Short: "AI article generation CMS",
	Long: "inkpress generates blog articles from titles with a generative text model, " +
		"stores them in PostgreSQL and serves them through a JSON API and a public blog.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		c, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = c
		slog.SetDefault(newLogger(os.Stderr, cfg.IsDev(), cfg.LogLevel))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "inkpress %s (commit: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file (default $CONFIG_PATH)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger outputs text in development and JSON everywhere else.
func newLogger(w io.Writer, dev bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if dev {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
