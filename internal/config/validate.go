package config

import (
	"fmt"
	"time"
)

var validQualities = map[string]bool{
	"default": true,
	"low":     true,
	"medium":  true,
	"high":    true,
}

func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}

	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	if err := c.Runner.Validate(); err != nil {
		return fmt.Errorf("runner config: %w", err)
	}

	if err := c.Debug.Validate(); err != nil {
		return fmt.Errorf("debug config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	return nil
}

func (t *TransportConfig) Validate() error {
	if t.LogPath == "" {
		return fmt.Errorf("log_path cannot be empty")
	}

	if !validQualities[t.Quality] {
		return fmt.Errorf("invalid quality: %s", t.Quality)
	}

	// libomt copies sender info into fixed 128-byte C arrays.
	for name, value := range map[string]string{
		"product_name": t.ProductName,
		"manufacturer": t.Manufacturer,
		"version":      t.Version,
	} {
		if len(value) > 127 {
			return fmt.Errorf("%s exceeds 127 bytes", name)
		}
	}

	return nil
}

func (s *SessionConfig) Validate() error {
	if s.Duration < time.Second {
		return fmt.Errorf("duration must be at least 1s, got %s", s.Duration)
	}

	if s.PeerWaitAttempts < 0 {
		return fmt.Errorf("peer_wait_attempts cannot be negative")
	}

	if s.PeerPollInterval <= 0 {
		return fmt.Errorf("peer_poll_interval must be positive")
	}

	if s.BackpressureDelay <= 0 {
		return fmt.Errorf("backpressure_delay must be positive")
	}

	return nil
}

func (r *RunnerConfig) Validate() error {
	if r.CasePause < 0 || r.FailurePause < 0 {
		return fmt.Errorf("pauses cannot be negative")
	}

	if r.LogScanLimit < 0 {
		return fmt.Errorf("log_scan_limit cannot be negative")
	}

	return nil
}

func (d *DebugConfig) Validate() error {
	if d.LogPath == "" {
		return fmt.Errorf("log_path cannot be empty")
	}

	if d.SenderName == "" {
		return fmt.Errorf("sender_name cannot be empty")
	}

	if d.Frames <= 0 {
		return fmt.Errorf("frames must be positive")
	}

	if d.PeerWaitAttempts < 0 {
		return fmt.Errorf("peer_wait_attempts cannot be negative")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text'")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		if l.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive for file output")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("max_backups cannot be negative")
		}
		if l.MaxAge < 0 {
			return fmt.Errorf("max_age cannot be negative")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.Port < 1 || m.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", m.Port)
		}

		if m.Path == "" {
			return fmt.Errorf("metrics path cannot be empty")
		}
	}

	return nil
}
