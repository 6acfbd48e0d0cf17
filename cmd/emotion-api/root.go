package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "emotion-api",
	Short: "Emotion API - session-based emotion analysis service",
	Long: `Emotion API is an HTTP service for session-based emotion analysis of
video frames.

Clients start a session, then submit base64-encoded frames. Each frame is
classified against a closed seven-label emotion set (angry, disgust, fear,
happy, sad, surprise, neutral) by an external model service, and the
per-frame score distribution is persisted per session in SQLite. Stored
results are pruned on a schedule once they exceed the retention window.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
