// Package cli provides the command-line interface for the send test suite.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zsiec/omt-send-test/internal/config"
	"github.com/zsiec/omt-send-test/internal/errors"
	"github.com/zsiec/omt-send-test/internal/health"
	"github.com/zsiec/omt-send-test/internal/logger"
	"github.com/zsiec/omt-send-test/internal/omt"
	"github.com/zsiec/omt-send-test/internal/pacing"
	"github.com/zsiec/omt-send-test/internal/server"
	"github.com/zsiec/omt-send-test/internal/session"
)

// OpenFunc opens the video transport.
type OpenFunc func() (omt.Transport, error)

// App holds what the commands need from the outside world.
type App struct {
	Open  OpenFunc
	Clock pacing.Clock
	// Signals cancels the run on SIGINT and SIGTERM when true.
	Signals bool
}

// NewApp creates an App backed by the real transport and wall clock.
func NewApp() *App {
	return &App{
		Open:    omt.Open,
		Clock:   pacing.SystemClock{},
		Signals: true,
	}
}

// env is the per-invocation state shared by both commands.
type env struct {
	cfg       *config.Config
	base      *logrus.Logger
	log       logger.Logger
	transport omt.Transport
	quality   omt.Quality
	run       *health.RunTracker
}

// setup loads configuration, builds the logger and opens the transport.
// Every error it returns is a setup failure.
func (a *App) setup(v *viper.Viper, configPath string) (*env, error) {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, err
	}

	base, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.ForRun(base)
	log.WithField("config_path", configPath).Debug("Configuration loaded")

	quality, err := omt.ParseQuality(cfg.Transport.Quality)
	if err != nil {
		return nil, err
	}

	transport, err := a.Open()
	if err != nil {
		if !errors.IsAppError(err) {
			err = errors.Wrap(err, errors.ErrorTypeTransport, "failed to open transport")
		}
		return nil, err
	}

	return &env{
		cfg:       cfg,
		base:      base,
		log:       log,
		transport: transport,
		quality:   quality,
		run:       health.NewRunTracker(),
	}, nil
}

func (e *env) sessionConfig() session.Config {
	return session.Config{
		SenderPrefix: e.cfg.Transport.SenderPrefix,
		Quality:      e.quality,
		Info: omt.SenderInfo{
			ProductName:  e.cfg.Transport.ProductName,
			Manufacturer: e.cfg.Transport.Manufacturer,
			Version:      e.cfg.Transport.Version,
		},
		PeerWaitAttempts:  e.cfg.Session.PeerWaitAttempts,
		PeerPollInterval:  e.cfg.Session.PeerPollInterval,
		BackpressureDelay: e.cfg.Session.BackpressureDelay,
	}
}

// runContext returns the command context, cancelled on SIGINT and SIGTERM when
// signals are enabled.
func (a *App) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !a.Signals {
		return context.WithCancel(ctx)
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// startMetrics runs the status server in the background when enabled.
func (e *env) startMetrics(ctx context.Context, logPath string) {
	if !e.cfg.Metrics.Enabled {
		return
	}

	srv := server.New(&e.cfg.Metrics, e.base, e.run,
		health.NewLogPathChecker(logPath),
		health.NewFuncChecker("transport", func(context.Context) error {
			if e.transport == nil {
				return errors.New(errors.ErrorTypeTransport, "transport not open")
			}
			return nil
		}),
	)
	go func() {
		if err := srv.Start(ctx); err != nil {
			e.log.WithError(err).Error("Metrics server error")
		}
	}()
}
