// Package runner drives the case catalogue through the session driver,
// isolating failures between cases and reporting on the transport log.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zsiec/omt-send-test/internal/errors"
	"github.com/zsiec/omt-send-test/internal/logger"
	"github.com/zsiec/omt-send-test/internal/metrics"
	"github.com/zsiec/omt-send-test/internal/pacing"
	"github.com/zsiec/omt-send-test/internal/session"
	"github.com/zsiec/omt-send-test/internal/video"
)

// Config holds the runner settings.
type Config struct {
	Duration     time.Duration
	CasePause    time.Duration
	FailurePause time.Duration
	LogPath      string
	LogScanLimit int
}

// Driver runs a single session.
type Driver interface {
	Run(ctx context.Context, c session.Case) (*session.Report, error)
}

// Observer is told when each case run starts and ends.
type Observer interface {
	CaseStarted(label string)
	CaseFinished(label, status string, failed bool)
}

type nopObserver struct{}

func (nopObserver) CaseStarted(string)                {}
func (nopObserver) CaseFinished(string, string, bool) {}

// Result is the outcome of one case run.
type Result struct {
	Name    string
	Alpha   bool
	Report  *session.Report
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the case returned an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Case statuses shown in the summary.
const (
	StatusPass     = "PASS"
	StatusFail     = "FAIL"
	StatusPeerLost = "PEER LOST"
	StatusNoFrames = "NO FRAMES"
)

// Status returns FAIL for an error, PEER LOST for a truncated run, NO FRAMES
// when the run ended without the transport accepting a frame, PASS otherwise.
func (r Result) Status() string {
	switch {
	case r.Err != nil:
		return StatusFail
	case r.Report != nil && r.Report.PeerLost:
		return StatusPeerLost
	case r.Report != nil && !r.Report.Passed():
		return StatusNoFrames
	default:
		return StatusPass
	}
}

func (r Result) label() string {
	if r.Alpha {
		return r.Name + "+alpha"
	}
	return r.Name
}

// Summary collects every case result of one run.
type Summary struct {
	Results []Result
	Log     *LogScan
}

// Failures returns how many case runs failed.
func (s *Summary) Failures() int {
	n := 0
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Runner executes catalogue cases one at a time.
type Runner struct {
	driver   Driver
	observer Observer
	config   Config
	clock    pacing.Clock
	logger   logger.Logger
	out      io.Writer
	errOut   io.Writer
}

// New creates a runner. Progress goes to out and case failures to errOut.
func New(driver Driver, cfg Config, clock pacing.Clock, log logger.Logger, out, errOut io.Writer) *Runner {
	if clock == nil {
		clock = pacing.SystemClock{}
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Runner{
		driver:   driver,
		observer: nopObserver{},
		config:   cfg,
		clock:    clock,
		logger:   logger.WithComponent(log, "runner"),
		out:      out,
		errOut:   errOut,
	}
}

// SetObserver registers o to follow case progress.
func (r *Runner) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	r.observer = o
}

// Run executes the case called name, or every case when name is empty. An
// unknown name prints a diagnostic to errOut and runs nothing. Case failures
// are recorded in the summary; the error is non-nil only when ctx ends the
// run early.
func (r *Runner) Run(ctx context.Context, name string) (*Summary, error) {
	fmt.Fprintln(r.out, "OMT Send Test Suite")
	fmt.Fprintln(r.out, "==================")
	fmt.Fprintf(r.out, "Available formats: %s\n\n", availableList())

	formats, ok := Select(name)
	if !ok {
		WriteUnknown(r.errOut, name)
		r.logger.WithField("case", name).Warn("Unknown case requested, nothing to run")
		return &Summary{}, nil
	}

	summary := &Summary{}
	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return summary, errors.NewInterruptedError(err)
		}

		fmt.Fprintf(r.out, "\n=== Testing %s ===\n", f.Name)
		res := r.runCase(ctx, f, false)
		summary.Results = append(summary.Results, res)

		if res.Failed() {
			fmt.Fprintf(r.errOut, "Test failed for %s: %v\n", f.Name, res.Err)
			if errors.IsType(res.Err, errors.ErrorTypeInterrupted) {
				return summary, res.Err
			}
			if err := r.clock.Sleep(ctx, r.config.FailurePause); err != nil {
				return summary, errors.NewInterruptedError(err)
			}
			continue
		}

		if f.Encoding == video.EncodingBGRA {
			fmt.Fprintf(r.out, "\nTesting %s with alpha flag...\n", f.Name)
			alpha := r.runCase(ctx, f, true)
			summary.Results = append(summary.Results, alpha)
			if alpha.Failed() {
				fmt.Fprintf(r.errOut, "Test with alpha failed for %s: %v\n", f.Name, alpha.Err)
				if errors.IsType(alpha.Err, errors.ErrorTypeInterrupted) {
					return summary, alpha.Err
				}
			}
		}

		if err := r.clock.Sleep(ctx, r.config.CasePause); err != nil {
			return summary, errors.NewInterruptedError(err)
		}
	}

	fmt.Fprintln(r.out, "\nAll tests completed!")
	summary.Log = r.scanLog()
	WriteSummary(r.out, summary)
	return summary, nil
}

// runCase runs one session and converts a panic inside it into a failed
// result so the remaining cases still run.
func (r *Runner) runCase(ctx context.Context, f video.Format, alpha bool) (res Result) {
	res = Result{Name: f.Name, Alpha: alpha}
	log := logger.WithCase(r.logger, f.Name, alpha)
	start := r.clock.Now()
	r.observer.CaseStarted(res.label())

	defer func() {
		if rec := recover(); rec != nil {
			res.Err = errors.NewPanicError(rec)
			log.WithError(res.Err).Error("Case panicked")
		}
		res.Elapsed = r.clock.Now().Sub(start)
		metrics.RecordCaseResult(f.Name, resultLabel(res), res.Elapsed.Seconds())
		r.observer.CaseFinished(res.label(), res.Status(), res.Failed())
	}()

	log.Info("Case started")
	res.Report, res.Err = r.driver.Run(ctx, session.Case{
		Format:   f,
		Duration: r.config.Duration,
		Alpha:    alpha,
	})
	if res.Err != nil {
		log.WithError(res.Err).Error("Case failed")
	} else {
		log.WithField("status", res.Status()).Info("Case finished")
	}
	return res
}

func resultLabel(res Result) string {
	switch res.Status() {
	case StatusFail:
		return "fail"
	case StatusPeerLost:
		return "peer_lost"
	case StatusNoFrames:
		return "no_frames"
	default:
		return "pass"
	}
}

func (r *Runner) scanLog() *LogScan {
	fmt.Fprintln(r.out, "\nChecking log file for errors...")
	scan, err := ScanLog(r.config.LogPath, r.config.LogScanLimit)
	if err != nil {
		r.logger.WithError(err).WithField("path", r.config.LogPath).Debug("Transport log not readable")
		if scan == nil {
			return nil
		}
	}

	if scan.Total == 0 {
		fmt.Fprintln(r.out, "No errors found in log file")
		return scan
	}
	fmt.Fprintf(r.out, "Found %d warnings/errors in log:\n", scan.Total)
	for _, line := range scan.Lines {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
	return scan
}
