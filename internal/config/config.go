// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "5s", "15m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all supervisor configuration. It is constructed once at process
// start and passed by reference to every component that needs it.
type Config struct {
	Processes  []ProcessConfig `yaml:"processes"`
	Endpoint   EndpointConfig  `yaml:"endpoint"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Restart    RestartConfig   `yaml:"restart"`
	Schedule   ScheduleConfig  `yaml:"schedule"`
	Reports    ReportConfig    `yaml:"reports"`
	Server     ServerConfig    `yaml:"server"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// ProcessConfig describes one critical process the supervisor keeps alive.
// Name is matched as a substring against running process command lines;
// Command is the shell command used to relaunch it.
type ProcessConfig struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
	Port    int    `yaml:"port,omitempty"`
}

// EndpointConfig holds the companion HTTP health-check settings.
type EndpointConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// ThresholdConfig names every resource cut point the supervisor uses.
// Warn* values trigger log warnings in the sampler; the remaining fields
// drive the aggregator's recommendation policy. All comparisons are strict.
type ThresholdConfig struct {
	CPUWarnPercent    float64 `yaml:"cpu_warn_percent"`
	MemoryWarnPercent float64 `yaml:"memory_warn_percent"`
	DiskWarnPercent   float64 `yaml:"disk_warn_percent"`

	CPUScalePercent   float64 `yaml:"cpu_scale_percent"`
	MemoryLeakPercent float64 `yaml:"memory_leak_percent"`
	DiskFreeMinGB     float64 `yaml:"disk_free_min_gb"`
	RestartBudget     int     `yaml:"restart_budget"`

	CPUSampleInterval Duration `yaml:"cpu_sample_interval"`
}

// RestartConfig holds restart timing settings.
type RestartConfig struct {
	GracePeriod  Duration `yaml:"grace_period"`
	SettlePeriod Duration `yaml:"settle_period"`
}

// ScheduleConfig holds the monitoring cadence. Wall-clock fields use "HH:MM"
// and lowercase English weekday names.
type ScheduleConfig struct {
	PollInterval    Duration `yaml:"poll_interval"`
	ErrorCooldown   Duration `yaml:"error_cooldown"`
	HealthCheckEach Duration `yaml:"health_check_each"`
	FullReportEach  Duration `yaml:"full_report_each"`
	DailyReportAt   string   `yaml:"daily_report_at"`
	MaintenanceDay  string   `yaml:"maintenance_day"`
	MaintenanceAt   string   `yaml:"maintenance_at"`
}

// ReportConfig holds report persistence settings.
type ReportConfig struct {
	Dir        string `yaml:"dir"`
	DailyDir   string `yaml:"daily_dir"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ServerConfig holds the optional status API settings.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig holds logging settings. Dir is pruned during weekly maintenance
// together with old reports.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Dir   string `yaml:"dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:     "http://localhost:5001/health",
			Timeout: Duration{5 * time.Second},
		},
		Thresholds: ThresholdConfig{
			CPUWarnPercent:    80,
			MemoryWarnPercent: 85,
			DiskWarnPercent:   90,
			CPUScalePercent:   70,
			MemoryLeakPercent: 80,
			DiskFreeMinGB:     5,
			RestartBudget:     10,
			CPUSampleInterval: Duration{1 * time.Second},
		},
		Restart: RestartConfig{
			GracePeriod:  Duration{2 * time.Second},
			SettlePeriod: Duration{5 * time.Second},
		},
		Schedule: ScheduleConfig{
			PollInterval:    Duration{60 * time.Second},
			ErrorCooldown:   Duration{5 * time.Minute},
			HealthCheckEach: Duration{5 * time.Minute},
			FullReportEach:  Duration{15 * time.Minute},
			DailyReportAt:   "08:00",
			MaintenanceDay:  "sunday",
			MaintenanceAt:   "02:00",
		},
		Reports: ReportConfig{
			Dir:        "health_reports",
			DailyDir:   "daily_reports",
			MaxAgeDays: 30,
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    ":5055",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "sentinel.log",
			Dir:   "logs",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	EndpointURL string
	LogLevel    string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	candidates := configSearchPaths()
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	// Layer 1: embedded config (lowest priority data layer)
	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	// Layer 2: external YAML file
	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0] // caller-supplied (may be "")
	} else {
		filePath = Locate() // auto-discover
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	// Layer 3: environment variables
	applyEnvOverrides(cfg)

	// Layer 4: CLI flags (highest priority)
	if cli.EndpointURL != "" {
		cfg.Endpoint.URL = cli.EndpointURL
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("SENTINEL_ENDPOINT_URL"); url != "" {
		cfg.Endpoint.URL = url
	}
	if level := os.Getenv("SENTINEL_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if addr := os.Getenv("SENTINEL_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
		cfg.Server.Enabled = true
	}
}

// Validate checks that the configuration is usable before the supervisor starts.
func (c *Config) Validate() error {
	if len(c.Processes) == 0 {
		return fmt.Errorf("at least one managed process is required")
	}
	seen := make(map[string]bool, len(c.Processes))
	for _, p := range c.Processes {
		if p.Name == "" {
			return fmt.Errorf("process name is required")
		}
		if p.Command == "" {
			return fmt.Errorf("process %q: launch command is required", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate process name %q", p.Name)
		}
		seen[p.Name] = true
	}
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint URL is required")
	}
	if _, _, err := ParseClock(c.Schedule.DailyReportAt); err != nil {
		return fmt.Errorf("daily_report_at: %w", err)
	}
	if _, _, err := ParseClock(c.Schedule.MaintenanceAt); err != nil {
		return fmt.Errorf("maintenance_at: %w", err)
	}
	if _, err := ParseWeekday(c.Schedule.MaintenanceDay); err != nil {
		return fmt.Errorf("maintenance_day: %w", err)
	}
	return nil
}

// ParseClock parses a "HH:MM" wall-clock string into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// ParseWeekday parses a lowercase English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	days := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	day, ok := days[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	return day, nil
}
