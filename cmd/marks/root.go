package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

var (
	// Global flags
	logLevel  string
	prettyLog bool
)

var rootCmd = &cobra.Command{
	Use:   "marks",
	Short: "Bookmark sync service",
	Long: `marks keeps one live, filtered mirror of each user's bookmarks and
pushes every change to connected clients.

Configuration is read from MARKS_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level for one-shot commands (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty", true, "human readable logs for one-shot commands")
}

// cliLogger builds the logger of commands that do not load the full config.
func cliLogger() logger.Logger {
	return logger.New(logLevel, prettyLog)
}
