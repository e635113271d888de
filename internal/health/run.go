package health

import (
	"sync"
	"time"

	"github.com/zsiec/omt-send-test/internal/metrics"
)

// CaseOutcome is how a finished case run ended.
type CaseOutcome struct {
	Case       string    `json:"case"`
	Status     string    `json:"status"`
	Failed     bool      `json:"failed"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunState is the harness view reported on /health.
type RunState struct {
	Current        string       `json:"current_case,omitempty"`
	Last           *CaseOutcome `json:"last_case,omitempty"`
	CasesRun       int          `json:"cases_run"`
	Failures       int          `json:"failures"`
	SessionsActive int          `json:"sessions_active"`
}

// RunTracker follows the suite as cases start and finish. It is safe for
// concurrent use; the runner writes while the status server reads.
type RunTracker struct {
	mu       sync.RWMutex
	current  string
	last     *CaseOutcome
	casesRun int
	failures int
	now      func() time.Time
}

// NewRunTracker creates an empty tracker.
func NewRunTracker() *RunTracker {
	return &RunTracker{now: time.Now}
}

// CaseStarted records label as the case in progress.
func (t *RunTracker) CaseStarted(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = label
}

// CaseFinished records how label ended and clears the case in progress.
func (t *RunTracker) CaseFinished(label, status string, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = ""
	t.casesRun++
	if failed {
		t.failures++
	}
	t.last = &CaseOutcome{Case: label, Status: status, Failed: failed, FinishedAt: t.now()}
}

// Snapshot returns the current run state.
func (t *RunTracker) Snapshot() RunState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state := RunState{
		Current:        t.current,
		CasesRun:       t.casesRun,
		Failures:       t.failures,
		SessionsActive: metrics.SessionsActive(),
	}
	if t.last != nil {
		last := *t.last
		state.Last = &last
	}
	return state
}
