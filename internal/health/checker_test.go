package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/omt-send-test/internal/logger"
)

type mockChecker struct {
	name  string
	err   error
	delay time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

func TestManager(t *testing.T) {
	t.Run("Register and RunChecks", func(t *testing.T) {
		manager := NewManager(logger.NewNullLogger())
		manager.Register(&mockChecker{name: "checker1"})
		manager.Register(&mockChecker{name: "checker2", err: errors.New("checker2 failed")})

		results := manager.RunChecks(context.Background())
		require.Len(t, results, 2)
		assert.Equal(t, StatusOK, results["checker1"].Status)
		assert.Empty(t, results["checker1"].Message)
		assert.Equal(t, StatusDown, results["checker2"].Status)
		assert.Contains(t, results["checker2"].Message, "checker2 failed")
	})

	t.Run("OverallStatus", func(t *testing.T) {
		manager := NewManager(nil)
		assert.Equal(t, StatusDown, manager.OverallStatus(), "no results yet")

		manager.Register(&mockChecker{name: "ok"})
		manager.RunChecks(context.Background())
		assert.Equal(t, StatusOK, manager.OverallStatus())

		manager.Register(&mockChecker{name: "bad", err: assert.AnError})
		manager.RunChecks(context.Background())
		assert.Equal(t, StatusDown, manager.OverallStatus())
	})

	t.Run("Timeout handling", func(t *testing.T) {
		manager := NewManager(nil)
		manager.timeout = 10 * time.Millisecond
		manager.Register(&mockChecker{name: "slow", delay: time.Second})

		results := manager.RunChecks(context.Background())
		assert.Equal(t, StatusDown, results["slow"].Status)
		assert.Equal(t, "Health check timed out", results["slow"].Message)
	})
}

func TestLogPathChecker(t *testing.T) {
	dir := t.TempDir()

	checker := NewLogPathChecker(filepath.Join(dir, "omt-send.log"))
	assert.Equal(t, "transport_log", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file is removed")

	missing := NewLogPathChecker(filepath.Join(dir, "nope", "omt-send.log"))
	assert.Error(t, missing.Check(context.Background()))

	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	notDir := NewLogPathChecker(filepath.Join(file, "omt-send.log"))
	assert.Error(t, notDir.Check(context.Background()))
}

func TestFuncChecker(t *testing.T) {
	called := false
	checker := NewFuncChecker("transport", func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.Equal(t, "transport", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))
	assert.True(t, called)
}
