package config

import (
	"fmt"
	"net"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for errors and returns a descriptive
// error for the first problem found.
func Validate(cfg *Config) error {
	// Server validation
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not host:port: %w",
			cfg.Server.ListenAddress, err)
	}
	if cfg.Server.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must not be negative")
	}
	if cfg.Server.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must not be negative")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}

	// Database validation
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if cfg.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must not be negative")
	}
	if cfg.Database.MaxIdleConns > cfg.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) exceeds max_open_conns (%d)",
			cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	}

	// Classifier validation
	if cfg.Classifier.BaseURL == "" {
		return fmt.Errorf("classifier.base_url is required")
	}
	if cfg.Classifier.Timeout <= 0 {
		return fmt.Errorf("classifier.timeout must be positive")
	}

	// Retention validation
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			return fmt.Errorf("retention.prune_schedule %q is not a valid cron expression: %w",
				cfg.Retention.PruneSchedule, err)
		}
	}

	// Telemetry validation
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not one of debug, info, warn, error",
			cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not one of json, text",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
