package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Transport TransportConfig `mapstructure:"transport"`
	Session   SessionConfig   `mapstructure:"session"`
	Runner    RunnerConfig    `mapstructure:"runner"`
	Debug     DebugConfig     `mapstructure:"debug"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type TransportConfig struct {
	LogPath      string `mapstructure:"log_path"`      // written by libomt, scraped after the run
	Quality      string `mapstructure:"quality"`       // default, low, medium or high
	SenderPrefix string `mapstructure:"sender_prefix"` // prepended to the case name
	ProductName  string `mapstructure:"product_name"`
	Manufacturer string `mapstructure:"manufacturer"`
	Version      string `mapstructure:"version"`
}

type SessionConfig struct {
	Duration          time.Duration `mapstructure:"duration"`
	PeerWaitAttempts  int           `mapstructure:"peer_wait_attempts"`
	PeerPollInterval  time.Duration `mapstructure:"peer_poll_interval"`
	BackpressureDelay time.Duration `mapstructure:"backpressure_delay"`
}

type RunnerConfig struct {
	CasePause    time.Duration `mapstructure:"case_pause"`
	FailurePause time.Duration `mapstructure:"failure_pause"`
	LogScanLimit int           `mapstructure:"log_scan_limit"`
}

type DebugConfig struct {
	LogPath          string `mapstructure:"log_path"`
	SenderName       string `mapstructure:"sender_name"`
	Frames           int    `mapstructure:"frames"`
	PeerWaitAttempts int    `mapstructure:"peer_wait_attempts"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`   // json or text
	Output     string `mapstructure:"output"`   // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

// Load reads the optional YAML file at configPath into v, applies
// OMTSEND_* environment overrides and defaults, and validates the result.
// An empty configPath runs on defaults and environment only.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	v.SetConfigType("yaml")

	v.SetEnvPrefix("OMTSEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	// Transport defaults
	v.SetDefault("transport.log_path", "/tmp/omt-send.log")
	v.SetDefault("transport.quality", "medium")
	v.SetDefault("transport.sender_prefix", "GoSend_")
	v.SetDefault("transport.product_name", "omt-send-test-go")
	v.SetDefault("transport.manufacturer", "Go OMT Test")
	v.SetDefault("transport.version", "1.0.0")

	// Session defaults
	v.SetDefault("session.duration", "5s")
	v.SetDefault("session.peer_wait_attempts", 30)
	v.SetDefault("session.peer_poll_interval", "100ms")
	v.SetDefault("session.backpressure_delay", "100ms")

	// Runner defaults
	v.SetDefault("runner.case_pause", "1s")
	v.SetDefault("runner.failure_pause", "2s")
	v.SetDefault("runner.log_scan_limit", 10)

	// Debug variant defaults
	v.SetDefault("debug.log_path", "/tmp/omt-send-debug.log")
	v.SetDefault("debug.sender_name", "GoDebugSender")
	v.SetDefault("debug.frames", 10)
	v.SetDefault("debug.peer_wait_attempts", 100)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", 9090)
}
