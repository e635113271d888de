// Package pacing turns a nominal frame rate into per-frame deadlines.
package pacing

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/zsiec/omt-send-test/internal/logger"
	"github.com/zsiec/omt-send-test/internal/video"
)

// maxLagFrames is how many whole frame periods the loop may fall behind
// before the schedule is abandoned and restarted from now.
const maxLagFrames = 2

// Pacer computes frame deadlines for one session.
type Pacer struct {
	period  time.Duration
	resyncs int
	logger  logger.Logger
	warn    rate.Sometimes
}

// NewPacer creates a pacer for r. The resync warning is logged at most once
// per second.
func NewPacer(r video.Rate, log logger.Logger) *Pacer {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Pacer{
		period: r.Period(),
		logger: log,
		warn:   rate.Sometimes{First: 1, Interval: time.Second},
	}
}

// Period returns the nominal frame duration.
func (p *Pacer) Period() time.Duration {
	return p.period
}

// Resyncs returns how many times the schedule was reset.
func (p *Pacer) Resyncs() int {
	return p.resyncs
}

// NextDeadline returns prev+period unless now is more than two periods past
// that point, in which case the schedule restarts at now+period so the loop
// does not burst to catch up. resynced reports the restart.
func (p *Pacer) NextDeadline(prev, now time.Time) (deadline time.Time, resynced bool) {
	deadline = prev.Add(p.period)
	lag := now.Sub(deadline)
	if lag <= maxLagFrames*p.period {
		return deadline, false
	}

	p.resyncs++
	p.warn.Do(func() {
		p.logger.WithFields(logger.Fields{
			"lag":     lag.String(),
			"period":  p.period.String(),
			"resyncs": p.resyncs,
		}).Warn("Timing drift detected, resynchronizing")
	})
	return now.Add(p.period), true
}

// Wait returns how long to sleep from now until deadline; zero when the
// deadline has already passed.
func Wait(deadline, now time.Time) time.Duration {
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}
