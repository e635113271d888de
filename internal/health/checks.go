package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LogPathChecker verifies that the directory holding the transport log
// exists and is writable.
type LogPathChecker struct {
	path string
}

// NewLogPathChecker creates a checker for the log file at path.
func NewLogPathChecker(path string) *LogPathChecker {
	return &LogPathChecker{path: path}
}

// Name returns the name of the checker.
func (c *LogPathChecker) Name() string {
	return "transport_log"
}

// Check tests the log directory with a temporary file.
func (c *LogPathChecker) Check(ctx context.Context) error {
	dir := filepath.Dir(c.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("log directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("log directory %s is not a directory", dir)
	}

	tmp, err := os.CreateTemp(dir, ".omt-send-health-*")
	if err != nil {
		return fmt.Errorf("log directory not writable: %w", err)
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}

// FuncChecker adapts a function to Checker.
type FuncChecker struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFuncChecker creates a checker called name that runs fn.
func NewFuncChecker(name string, fn func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

// Name returns the name of the checker.
func (c *FuncChecker) Name() string {
	return c.name
}

// Check runs the wrapped function.
func (c *FuncChecker) Check(ctx context.Context) error {
	return c.fn(ctx)
}
