package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Peixotim/emotion-api/pkg/config"
)

var validateFlags struct {
	env bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the server.

The command applies defaults, optionally applies EMOTION_* environment
variable overrides, and runs the full configuration validation. It prints
the effective listen address, database path and classifier endpoint on
success.

Examples:
  # Validate the default config file
  emotion-api validate

  # Validate a specific file
  emotion-api validate --config /etc/emotion-api/config.yaml

  # Validate with environment overrides applied
  emotion-api validate --env`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.env, "env", false, "apply EMOTION_* environment overrides before validating")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if validateFlags.env {
		cfg, err = config.LoadConfigWithEnvOverrides(cfgFile)
	} else {
		cfg, err = config.LoadConfig(cfgFile)
	}
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  Database path:  %s\n", cfg.Database.Path)
	fmt.Printf("  Classifier:     %s\n", cfg.Classifier.BaseURL)
	if cfg.Retention.Days > 0 {
		fmt.Printf("  Retention:      %d days (%s)\n", cfg.Retention.Days, cfg.Retention.PruneSchedule)
	} else {
		fmt.Println("  Retention:      disabled")
	}
	return nil
}
