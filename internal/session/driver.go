// Package session runs one test case against one transport sender: create,
// wait for a receiver, stream paced frames, drain statistics and release.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zsiec/omt-send-test/internal/errors"
	"github.com/zsiec/omt-send-test/internal/logger"
	"github.com/zsiec/omt-send-test/internal/metrics"
	"github.com/zsiec/omt-send-test/internal/omt"
	"github.com/zsiec/omt-send-test/internal/pacing"
	"github.com/zsiec/omt-send-test/internal/video"
)

// Case is one session request.
type Case struct {
	Format   video.Format
	Duration time.Duration
	Alpha    bool
	// Frames overrides the frame count derived from Duration when positive.
	Frames int64
	// SenderName overrides the name derived from the format when set.
	SenderName string
	// LumaRamp sends the UYVY luma ramp instead of the colour bars.
	LumaRamp bool
	// Verbose prints every submission and its return code.
	Verbose bool
}

// Config holds the driver settings shared by every case.
type Config struct {
	SenderPrefix      string
	Quality           omt.Quality
	Info              omt.SenderInfo
	PeerWaitAttempts  int
	PeerPollInterval  time.Duration
	BackpressureDelay time.Duration
}

// Driver owns the transport session of one case at a time.
type Driver struct {
	transport omt.Transport
	config    Config
	clock     pacing.Clock
	logger    logger.Logger
	out       io.Writer

	state State
}

// NewDriver creates a driver. Progress and statistics are printed to out.
func NewDriver(transport omt.Transport, cfg Config, clock pacing.Clock, log logger.Logger, out io.Writer) *Driver {
	if clock == nil {
		clock = pacing.SystemClock{}
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	if out == nil {
		out = io.Discard
	}
	return &Driver{
		transport: transport,
		config:    cfg,
		clock:     clock,
		logger:    logger.WithComponent(log, "session"),
		out:       out,
	}
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State {
	return d.state
}

func (d *Driver) setState(s State, log logger.Logger) {
	log.WithFields(logger.Fields{"from": d.state.String(), "to": s.String()}).Debug("Session state change")
	d.state = s
}

// Run executes c and returns its report. The error is nil when streaming
// reached its end or was cut short by peer loss; it is a typed AppError for
// a failed create, a fatal return code, an invalid format or cancellation.
// The sender, once created, is destroyed exactly once on every path,
// panics included.
func (d *Driver) Run(ctx context.Context, c Case) (*Report, error) {
	f := c.Format
	log := logger.WithCase(d.logger, f.Name, c.Alpha)
	d.state = StateIdle

	if err := f.Validate(); err != nil {
		return nil, err
	}

	var (
		payload []byte
		err     error
	)
	if c.LumaRamp {
		payload, err = video.GenerateLumaRamp(f)
	} else {
		payload, err = video.Generate(f)
	}
	if err != nil {
		return nil, err
	}

	frame, err := omt.NewVideoFrame(f, payload, c.Alpha)
	if err != nil {
		return nil, errors.WrapInternalError(err, "failed to build frame descriptor")
	}

	report := &Report{
		Case:         f.Name,
		Alpha:        c.Alpha,
		PayloadBytes: len(payload),
		FramesToSend: f.Rate.FramesIn(c.Duration),
		Duration:     c.Duration,
	}
	if c.Frames > 0 {
		report.FramesToSend = c.Frames
		report.Duration = time.Duration(c.Frames) * f.Rate.Period()
	}

	d.setState(StateCreating, log)
	name := c.SenderName
	if name == "" {
		name = d.config.SenderPrefix + f.Name
	}
	sender := d.transport.CreateSender(name, d.config.Quality)
	if sender == nil {
		d.setState(StateClosed, log)
		report.State = StateClosed
		return report, errors.NewSessionCreateError(name)
	}
	metrics.SessionOpened()
	defer func() {
		sender.Destroy()
		metrics.SessionClosed()
		d.setState(StateClosed, log)
		report.State = StateClosed
	}()
	log.WithField("sender", name).Info("Sender created")

	d.setState(StateWaitingForPeer, log)
	if err := d.waitForPeer(ctx, sender, report, log); err != nil {
		return report, errors.NewInterruptedError(err)
	}
	sender.SetSenderInfo(d.config.Info)

	d.setState(StateStreaming, log)
	streamErr := d.stream(ctx, c, sender, frame, report, log)

	d.setState(StateDraining, log)
	report.Final = sender.VideoStatistics()
	metrics.UpdateTransportStats(f.Name, report.Final.BytesSent, report.Final.FramesDropped)
	metrics.SetBitrate(f.Name, report.BitrateBPS())
	report.WriteFinal(d.out)

	return report, streamErr
}

func (d *Driver) waitForPeer(ctx context.Context, sender omt.Sender, report *Report, log logger.Logger) error {
	fmt.Fprintln(d.out, "Waiting for receiver connection...")
	for attempt := 0; attempt < d.config.PeerWaitAttempts; attempt++ {
		if n := sender.Connections(); n > 0 {
			report.PeerSeen = true
			waited := time.Duration(attempt) * d.config.PeerPollInterval
			fmt.Fprintf(d.out, "%d receiver(s) connected after %.1fs\n", n, waited.Seconds())
			log.WithField("connections", n).Info("Receiver connected")
			return nil
		}
		if err := d.clock.Sleep(ctx, d.config.PeerPollInterval); err != nil {
			return err
		}
	}

	report.addNote("no receiver connected after %d polls, streamed best-effort", d.config.PeerWaitAttempts)
	log.Warn("No receivers connected, proceeding anyway")
	return nil
}

func (d *Driver) stream(ctx context.Context, c Case, sender omt.Sender, frame *omt.MediaFrame, report *Report, log logger.Logger) error {
	f := c.Format
	ticks := f.Rate.TicksPerFrame()
	pacer := pacing.NewPacer(f.Rate, log)
	statsEvery := f.Rate.WholeFramesPerSecond()

	fmt.Fprintf(d.out, "Sending %d frames at %dx%d %gfps...\n", report.FramesToSend, f.Width, f.Height, f.Rate.Float64())

	start := d.clock.Now()
	prev := start
	var sinceStats int64
	defer func() {
		report.Elapsed = d.clock.Now().Sub(start)
		report.Resyncs = pacer.Resyncs()
	}()

	for i := int64(0); i < report.FramesToSend; {
		frame.Timestamp = video.Timestamp(i, ticks)
		rc := sender.Send(frame)
		report.Submissions++
		report.LastTimestamp = frame.Timestamp

		outcome := omt.Classify(rc)
		metrics.RecordSubmission(f.Name, outcome.String())
		if c.Verbose {
			fmt.Fprintf(d.out, "Frame %d: PTS=%d rc=%d (%s)\n", i, frame.Timestamp, rc, omt.Describe(rc))
		}

		if outcome != omt.OutcomeSuccess {
			if sender.Connections() == 0 {
				report.PeerLost = true
				report.PeerLostAt = i
				report.addNote("receiver disconnected at frame %d (rc=%d), run truncated", i, rc)
				metrics.IncrementPeerLoss(f.Name)
				log.WithFields(logger.Fields{"frame": i, "rc": rc}).Warn("Receiver disconnected, stopping")
				return nil
			}

			switch outcome {
			case omt.OutcomeBackpressure:
				report.Retries++
				metrics.IncrementBackpressureRetry(f.Name)
				log.WithField("frame", i).Warn("Buffer overflow, waiting before resubmitting")
				if err := d.clock.Sleep(ctx, d.config.BackpressureDelay); err != nil {
					return errors.NewInterruptedError(err)
				}
				continue
			case omt.OutcomeInformational:
				log.WithFields(logger.Fields{"frame": i, "rc": rc}).Debug(omt.Describe(rc))
			default:
				err := errors.NewSubmissionError(rc, i, omt.Describe(rc))
				log.WithError(err).Error("Fatal send error")
				return err
			}
		}

		report.Delivered++
		i++

		sinceStats++
		if sinceStats >= statsEvery {
			stats := sender.VideoStatistics()
			writeProgress(d.out, d.clock.Now().Sub(start), stats)
			metrics.UpdateTransportStats(f.Name, stats.BytesSent, stats.FramesDropped)
			sinceStats = 0
		}

		now := d.clock.Now()
		deadline, resynced := pacer.NextDeadline(prev, now)
		if resynced {
			metrics.IncrementPacingResync(f.Name)
		}
		prev = deadline
		if err := d.clock.Sleep(ctx, pacing.Wait(deadline, now)); err != nil {
			return errors.NewInterruptedError(err)
		}
	}

	return nil
}
