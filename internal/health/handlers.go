package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zsiec/omt-send-test/pkg/version"
)

const checkTimeout = 10 * time.Second

// Response is the /health body: checker results plus where the suite is.
type Response struct {
	Status        Status            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Run           *RunState         `json:"run,omitempty"`
	Checks        map[string]*Check `json:"checks,omitempty"`
}

// Handler serves /health and /live.
type Handler struct {
	manager *Manager
	run     *RunTracker
	started time.Time
}

// NewHandler creates a handler. run may be nil when no suite is attached.
func NewHandler(manager *Manager, run *RunTracker) *Handler {
	return &Handler{manager: manager, run: run, started: time.Now()}
}

// HandleHealth runs every checker and reports the run state. A failed
// checker answers 503; a failed last case only degrades the status, since
// the harness keeps going with the next case.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := Response{
		Checks:        h.manager.RunChecks(ctx),
		Status:        h.manager.OverallStatus(),
		Timestamp:     time.Now(),
		Version:       version.Version,
		UptimeSeconds: time.Since(h.started).Seconds(),
	}
	if h.run != nil {
		state := h.run.Snapshot()
		resp.Run = &state
		if resp.Status == StatusOK && state.Last != nil && state.Last.Failed {
			resp.Status = StatusDegraded
		}
	}

	code := http.StatusOK
	if resp.Status == StatusDown {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, resp)
}

// HandleLive answers as long as the process serves requests.
func (h *Handler) HandleLive(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.manager.logger.WithError(err).Error("Failed to encode health response")
	}
}
