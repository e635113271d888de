package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			LogPath:      "/tmp/omt-send.log",
			Quality:      "medium",
			SenderPrefix: "GoSend_",
			ProductName:  "omt-send-test-go",
			Manufacturer: "Go OMT Test",
			Version:      "1.0.0",
		},
		Session: SessionConfig{
			Duration:          5 * time.Second,
			PeerWaitAttempts:  30,
			PeerPollInterval:  100 * time.Millisecond,
			BackpressureDelay: 100 * time.Millisecond,
		},
		Runner: RunnerConfig{
			CasePause:    time.Second,
			FailurePause: 2 * time.Second,
			LogScanLimit: 10,
		},
		Debug: DebugConfig{
			LogPath:          "/tmp/omt-send-debug.log",
			SenderName:       "GoDebugSender",
			Frames:           10,
			PeerWaitAttempts: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
			Port: 9090,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown quality",
			mutate:  func(c *Config) { c.Transport.Quality = "ultra" },
			wantErr: true,
			errMsg:  "invalid quality",
		},
		{
			name:    "empty log path",
			mutate:  func(c *Config) { c.Transport.LogPath = "" },
			wantErr: true,
			errMsg:  "log_path cannot be empty",
		},
		{
			name: "product name too long",
			mutate: func(c *Config) {
				name := make([]byte, 128)
				for i := range name {
					name[i] = 'a'
				}
				c.Transport.ProductName = string(name)
			},
			wantErr: true,
			errMsg:  "product_name exceeds 127 bytes",
		},
		{
			name:    "sub-second duration",
			mutate:  func(c *Config) { c.Session.Duration = 500 * time.Millisecond },
			wantErr: true,
			errMsg:  "duration must be at least 1s",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Session.PeerPollInterval = 0 },
			wantErr: true,
			errMsg:  "peer_poll_interval must be positive",
		},
		{
			name:    "negative pause",
			mutate:  func(c *Config) { c.Runner.FailurePause = -time.Second },
			wantErr: true,
			errMsg:  "pauses cannot be negative",
		},
		{
			name:    "zero debug frames",
			mutate:  func(c *Config) { c.Debug.Frames = 0 },
			wantErr: true,
			errMsg:  "frames must be positive",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
			errMsg:  "invalid log level",
		},
		{
			name: "file output without max size",
			mutate: func(c *Config) {
				c.Logging.Output = "/var/log/omt-send-test.log"
				c.Logging.MaxSize = 0
			},
			wantErr: true,
			errMsg:  "max_size must be positive",
		},
		{
			name: "metrics enabled on invalid port",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Port = 0
			},
			wantErr: true,
			errMsg:  "invalid metrics port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if err != nil {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/omt-send.log", cfg.Transport.LogPath)
	assert.Equal(t, "medium", cfg.Transport.Quality)
	assert.Equal(t, 5*time.Second, cfg.Session.Duration)
	assert.Equal(t, 30, cfg.Session.PeerWaitAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.PeerPollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.BackpressureDelay)
	assert.Equal(t, time.Second, cfg.Runner.CasePause)
	assert.Equal(t, 2*time.Second, cfg.Runner.FailurePause)
	assert.Equal(t, 10, cfg.Runner.LogScanLimit)
	assert.Equal(t, "/tmp/omt-send-debug.log", cfg.Debug.LogPath)
	assert.Equal(t, 10, cfg.Debug.Frames)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "omt-send-config-*.yaml")
	require.NoError(t, err)
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()

	configContent := `
transport:
  log_path: "/tmp/custom-omt.log"
  quality: "high"

session:
  duration: "2s"

logging:
  level: "debug"
  format: "json"
`
	_, err = tmpfile.Write([]byte(configContent))
	require.NoError(t, err)
	_ = tmpfile.Close()

	cfg, err := Load(viper.New(), tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom-omt.log", cfg.Transport.LogPath)
	assert.Equal(t, "high", cfg.Transport.Quality)
	assert.Equal(t, 2*time.Second, cfg.Session.Duration)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, cfg.Session.PeerWaitAttempts)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("OMTSEND_SESSION_DURATION", "3s")
	t.Setenv("OMTSEND_TRANSPORT_QUALITY", "low")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Session.Duration)
	assert.Equal(t, "low", cfg.Transport.Quality)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(viper.New(), "/nonexistent/omt-send.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("OMTSEND_TRANSPORT_QUALITY", "ultra")

	cfg, err := Load(viper.New(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid quality")
	assert.Nil(t, cfg)
}
