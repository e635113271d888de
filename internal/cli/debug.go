package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zsiec/omt-send-test/internal/errors"
	"github.com/zsiec/omt-send-test/internal/omt"
	"github.com/zsiec/omt-send-test/internal/runner"
	"github.com/zsiec/omt-send-test/internal/session"
	"github.com/zsiec/omt-send-test/internal/video"
)

const debugLogScanLimit = 5

var debugFormat = video.Format{
	Encoding: video.EncodingUYVY,
	Width:    1280,
	Height:   720,
	Rate:     video.FrameRate30,
	Name:     "UYVY_720p30_debug",
}

// NewDebugCmd creates the omt-send-debug command: one UYVY 720p30 sender,
// a handful of frames, every submission printed.
func (a *App) NewDebugCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:           "omt-send-debug",
		Short:         "Send a few UYVY 720p30 frames with per-frame diagnostics",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.setup(v, configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			logPath := e.cfg.Debug.LogPath
			fmt.Fprintln(out, "OMT Debug Test - Simple UYVY 720p30 send")
			fmt.Fprintln(out, "=========================================")
			e.transport.SetLoggingFilename(logPath)
			fmt.Fprintf(out, "Log file: %s\n", logPath)
			fmt.Fprintf(out, "Creating sender with name: %s\n", e.cfg.Debug.SenderName)
			writeDescriptor(out, debugFormat)

			ctx, cancel := a.runContext(cmd)
			defer cancel()
			e.startMetrics(ctx, logPath)

			sc := e.sessionConfig()
			sc.PeerWaitAttempts = e.cfg.Debug.PeerWaitAttempts
			driver := session.NewDriver(e.transport, sc, a.Clock, e.log, out)

			e.run.CaseStarted(debugFormat.Name)
			report, err := driver.Run(ctx, session.Case{
				Format:     debugFormat,
				Frames:     int64(e.cfg.Debug.Frames),
				SenderName: e.cfg.Debug.SenderName,
				LumaRamp:   true,
				Verbose:    true,
			})
			res := runner.Result{Name: debugFormat.Name, Report: report, Err: err}
			e.run.CaseFinished(debugFormat.Name, res.Status(), res.Failed())
			if err != nil {
				if errors.IsType(err, errors.ErrorTypeInterrupted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted")
					return nil
				}
				// A session failure is reported, not a setup failure.
				fmt.Fprintf(cmd.ErrOrStderr(), "Debug send failed: %v\n", err)
			}
			if report != nil && report.PeerLost {
				fmt.Fprintln(cmd.ErrOrStderr(), "Receiver disconnected, stopped early")
			}

			fmt.Fprintln(out, "\nChecking log file for errors...")
			scan, err := runner.ScanLog(logPath, debugLogScanLimit)
			if err != nil {
				e.log.WithError(err).Debug("Debug log not readable")
				return nil
			}
			if scan.Total == 0 {
				fmt.Fprintln(out, "No errors found in log file")
				return nil
			}
			fmt.Fprintf(out, "Found %d warnings/errors in log:\n", scan.Total)
			for _, line := range scan.Lines {
				fmt.Fprintf(out, "  %s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	cmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	_ = v.BindPFlag("logging.level", cmd.Flags().Lookup("log-level"))

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func writeDescriptor(w io.Writer, f video.Format) {
	codec, _ := omt.CodecFor(f.Encoding)
	fmt.Fprintf(w, "Frame: %s %dx%d, stride %d, %d bytes, %d/%d fps\n",
		codec, f.Width, f.Height, f.Stride(), f.PayloadSize(), f.Rate.Num, f.Rate.Den)
}
