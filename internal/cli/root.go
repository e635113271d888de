package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zsiec/omt-send-test/internal/errors"
	"github.com/zsiec/omt-send-test/internal/runner"
	"github.com/zsiec/omt-send-test/internal/session"
	"github.com/zsiec/omt-send-test/internal/tui"
	"github.com/zsiec/omt-send-test/pkg/version"
)

// NewRootCmd creates the omt-send-test command.
func (a *App) NewRootCmd() *cobra.Command {
	v := viper.New()
	var (
		configPath string
		useTUI     bool
	)

	rootCmd := &cobra.Command{
		Use:   "omt-send-test [case]",
		Short: "Send synthetic video over OMT and report how the transport copes",
		Long: fmt.Sprintf(`Runs the send test catalogue against libomt, or a single case when one is named.

Available cases: %s`, joinNames()),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			// Unknown names are reported before config or the transport are touched.
			if _, ok := runner.Select(name); !ok {
				runner.WriteUnknown(errOut, name)
				return nil
			}

			e, err := a.setup(v, configPath)
			if err != nil {
				return err
			}
			e.transport.SetLoggingFilename(e.cfg.Transport.LogPath)
			e.log.WithField("log_path", e.cfg.Transport.LogPath).Info("Transport log configured")

			ctx, cancel := a.runContext(cmd)
			defer cancel()
			e.startMetrics(ctx, e.cfg.Transport.LogPath)

			run := func(w, werr io.Writer) (*runner.Summary, error) {
				driver := session.NewDriver(e.transport, e.sessionConfig(), a.Clock, e.log, w)
				r := runner.New(driver, runner.Config{
					Duration:     e.cfg.Session.Duration,
					CasePause:    e.cfg.Runner.CasePause,
					FailurePause: e.cfg.Runner.FailurePause,
					LogPath:      e.cfg.Transport.LogPath,
					LogScanLimit: e.cfg.Runner.LogScanLimit,
				}, a.Clock, e.log, w, werr)
				r.SetObserver(e.run)
				return r.Run(ctx, name)
			}

			var summary *runner.Summary
			if useTUI {
				err = tui.Run("OMT Send Test Suite", out, cancel, func(w io.Writer) error {
					var runErr error
					summary, runErr = run(w, w)
					return runErr
				})
				if summary != nil {
					runner.WriteSummary(out, summary)
				}
			} else {
				summary, err = run(out, errOut)
			}
			if err != nil {
				if errors.IsType(err, errors.ErrorTypeInterrupted) {
					e.log.Warn("Run interrupted")
					fmt.Fprintln(errOut, "Interrupted")
					return nil
				}
				return err
			}

			e.log.WithFields(map[string]interface{}{
				"cases":    len(summary.Results),
				"failures": summary.Failures(),
			}).Info("Run complete")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().Duration("duration", 0, "How long each case streams")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live view instead of line output")
	_ = v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("session.duration", rootCmd.Flags().Lookup("duration"))

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetInfo().String())
		},
	}
}

func joinNames() string {
	return strings.Join(runner.Names(), ", ")
}
