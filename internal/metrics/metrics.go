package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	// Submission metrics
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omt_send_submissions_total",
		Help: "Frame submissions by classified return code",
	}, []string{"case", "outcome"})

	backpressureRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omt_send_backpressure_retries_total",
		Help: "Frames resubmitted after the transport reported backpressure",
	}, []string{"case"})

	pacingResyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omt_send_pacing_resyncs_total",
		Help: "Times the frame schedule fell more than two periods behind and restarted",
	}, []string{"case"})

	peerLossTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omt_send_peer_loss_total",
		Help: "Sessions cut short because the last receiver disconnected",
	}, []string{"case"})

	// Session metrics
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "omt_send_sessions_active",
		Help: "Number of live transport sessions",
	})

	caseResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omt_send_case_results_total",
		Help: "Completed cases by result",
	}, []string{"case", "result"})

	caseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "omt_send_case_duration_seconds",
		Help:    "Wall-clock duration of one case",
		Buckets: prometheus.LinearBuckets(1, 1, 10), // 1s to 10s
	}, []string{"case"})

	// Transport statistics
	bytesSent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "omt_send_bytes_sent",
		Help: "Bytes sent as last reported by the transport",
	}, []string{"case"})

	framesDropped = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "omt_send_frames_dropped",
		Help: "Frames dropped as last reported by the transport",
	}, []string{"case"})

	bitrate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "omt_send_bitrate_bps",
		Help: "Average bitrate of the last completed case in bits per second",
	}, []string{"case"})
)

// RecordSubmission counts one Send call with its classified outcome
func RecordSubmission(caseName, outcome string) {
	submissionsTotal.WithLabelValues(caseName, outcome).Inc()
}

// IncrementBackpressureRetry counts one backpressure retry
func IncrementBackpressureRetry(caseName string) {
	backpressureRetriesTotal.WithLabelValues(caseName).Inc()
}

// IncrementPacingResync counts one schedule reset
func IncrementPacingResync(caseName string) {
	pacingResyncsTotal.WithLabelValues(caseName).Inc()
}

// IncrementPeerLoss counts one session truncated by peer loss
func IncrementPeerLoss(caseName string) {
	peerLossTotal.WithLabelValues(caseName).Inc()
}

// SessionOpened marks a transport session as live
func SessionOpened() {
	sessionsActive.Inc()
}

// SessionClosed marks a transport session as released
func SessionClosed() {
	sessionsActive.Dec()
}

// SessionsActive returns how many senders are open right now.
func SessionsActive() int {
	var m dto.Metric
	if err := sessionsActive.Write(&m); err != nil {
		return 0
	}
	return int(m.GetGauge().GetValue())
}

// RecordCaseResult records the outcome and duration of a case
func RecordCaseResult(caseName, result string, seconds float64) {
	caseResultsTotal.WithLabelValues(caseName, result).Inc()
	caseDuration.WithLabelValues(caseName).Observe(seconds)
}

// UpdateTransportStats stores the latest transport counters for a case
func UpdateTransportStats(caseName string, sent, dropped int64) {
	bytesSent.WithLabelValues(caseName).Set(float64(sent))
	framesDropped.WithLabelValues(caseName).Set(float64(dropped))
}

// SetBitrate stores the average bitrate of a finished case
func SetBitrate(caseName string, bps float64) {
	bitrate.WithLabelValues(caseName).Set(bps)
}
