// Package main is the entry point for the sentinel process health supervisor.
// It loads configuration, wires the probes, restart controller, and health
// aggregator, and runs either a single readiness check or the indefinite
// monitoring loop.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/watchpost/sentinel/internal/config"
	"github.com/watchpost/sentinel/internal/probe"
	"github.com/watchpost/sentinel/internal/supervisor"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  string
	endpointURL string
	logLevel    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sentinel [check|start]",
	Short: "Process health supervisor",
	Long: `sentinel keeps a fixed set of critical processes alive. It probes process
liveness, host resources, and a companion HTTP health endpoint; restarts dead
processes; and persists timestamped JSON health reports.

With no subcommand it runs a single readiness check.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli := config.CLIOverrides{EndpointURL: endpointURL, LogLevel: logLevel}

		var err error
		if cmd.Flags().Changed("config") {
			cfg, err = config.LoadLayered(cli, embeddedConfig, configPath)
		} else {
			cfg, err = config.LoadLayered(cli, embeddedConfig)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger = initLogger(cfg)
		return nil
	},
	RunE: runCheck,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&endpointURL, "endpoint", "", "Override health-check endpoint URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug|info|warn|error)")
	rootCmd.AddCommand(checkCmd, startCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildAggregator wires the probes, restart controller, and aggregator from
// one shared config object.
func buildAggregator(cfg *config.Config, logger *zap.Logger) *supervisor.Aggregator {
	table := supervisor.NewTable(cfg.Processes)
	prober := probe.NewProcessProbe(logger)
	sampler := probe.NewResourceSampler(cfg.Thresholds, logger)
	endpoint := probe.NewEndpointProbe(cfg.Endpoint.URL, cfg.Endpoint.Timeout.Duration, logger)
	restarter := supervisor.NewRestarter(prober, cfg.Restart, logger)
	return supervisor.NewAggregator(table, prober, sampler, endpoint, restarter, cfg.Thresholds, logger)
}

// initLogger creates a zap logger based on the configuration.
// It outputs to console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	logPaths := []string{}
	if cfg.Logging.File != "" {
		logPaths = append(logPaths, cfg.Logging.File)
	}
	if cfg.Logging.Dir != "" {
		// Dated per-day log, swept by weekly maintenance.
		if err := os.MkdirAll(cfg.Logging.Dir, 0750); err == nil {
			logPaths = append(logPaths,
				filepath.Join(cfg.Logging.Dir, time.Now().Format("20060102")+"_system.log"))
		}
	}

	for _, path := range logPaths {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err != nil {
			continue
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(file),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...))
}
