package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Peixotim/emotion-api/pkg/classifier"
	"github.com/Peixotim/emotion-api/pkg/cli"
	"github.com/Peixotim/emotion-api/pkg/config"
	"github.com/Peixotim/emotion-api/pkg/emotion/gateway"
	"github.com/Peixotim/emotion-api/pkg/emotion/retention"
	"github.com/Peixotim/emotion-api/pkg/emotion/storage"
	"github.com/Peixotim/emotion-api/pkg/orchestrator"
	"github.com/Peixotim/emotion-api/pkg/server"
	"github.com/Peixotim/emotion-api/pkg/telemetry/health"
	"github.com/Peixotim/emotion-api/pkg/telemetry/logging"
	"github.com/Peixotim/emotion-api/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the emotion analysis API server",
	Long: `Start the emotion analysis API server with the specified configuration.

The server listens on the configured address, forwards frames to the
classifier service, stores results in SQLite and prunes expired records on
the configured schedule.

Examples:
  # Start with default config
  emotion-api run

  # Start with custom config
  emotion-api run --config /etc/emotion-api/config.yaml

  # Override listen address
  emotion-api run --listen 0.0.0.0:8000

  # Validate config without starting the server
  emotion-api run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	}); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Emotion API v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Storage
	slog.Info("initializing storage", "path", cfg.Database.Path)
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()
	fmt.Println("✓ Storage initialized")

	// Classifier client
	cl, err := classifier.NewHTTPClassifier(&classifier.Config{
		BaseURL: cfg.Classifier.BaseURL,
		Timeout: cfg.Classifier.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create classifier client: %w", err)
	}
	defer cl.Close()
	fmt.Printf("✓ Classifier client ready (%s)\n", cfg.Classifier.BaseURL)

	// Metrics
	collector := metrics.NewCollector(&metrics.Config{
		Enabled: cfg.Telemetry.Metrics.Enabled,
	}, nil)

	// Analysis pipeline
	gw := gateway.New(store, cl)
	gw.SetObserver(collector)
	o := orchestrator.New(store, gw)

	// Readiness checks
	checker := health.New(0)
	checker.RegisterCheck("database", health.DatabaseCheck(store))
	checker.RegisterCheck("classifier", health.ClassifierCheck(cfg.Classifier.BaseURL, nil))

	// Retention pruner
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Retention.Days > 0 {
		pruner := retention.NewPruner(store, &retention.Config{
			RetentionDays: cfg.Retention.Days,
			PruneSchedule: cfg.Retention.PruneSchedule,
		})
		pruner.SetObserver(collector)
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				slog.Debug("retention scheduler started", "next_pruning", next)
			}
			fmt.Printf("✓ Retention scheduler started (%d day window)\n", cfg.Retention.Days)
		}
	} else {
		slog.Info("retention pruning disabled")
	}

	// HTTP server
	srv := server.NewServer(cfg, o, collector, Version)
	srv.SetHealthChecker(checker)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}
