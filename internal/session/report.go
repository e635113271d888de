package session

import (
	"fmt"
	"io"
	"time"

	"github.com/zsiec/omt-send-test/internal/omt"
)

// Report summarizes one session.
type Report struct {
	Case         string
	Alpha        bool
	PayloadBytes int
	FramesToSend int64

	Submissions int64 // Send calls, retries included
	Delivered   int64 // frames the loop advanced past
	Retries     int64 // backpressure resubmissions
	Resyncs     int

	PeerSeen   bool
	PeerLost   bool
	PeerLostAt int64 // frame index of the submission that found no peer

	LastTimestamp int64
	Final         omt.Statistics
	Duration      time.Duration // nominal duration the rates are computed over
	Elapsed       time.Duration // wall-clock time spent streaming
	State         State
	Notes         []string
}

// Passed reports whether the transport accepted at least one frame.
func (r *Report) Passed() bool {
	return r.Final.Frames > 0 || r.Delivered > 0
}

// BitrateBPS returns bytes_sent·8 / duration.
func (r *Report) BitrateBPS() float64 {
	secs := r.Duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Final.BytesSent) * 8 / secs
}

// SuccessRate returns frames_accepted / frames_to_send as a fraction.
func (r *Report) SuccessRate() float64 {
	if r.FramesToSend <= 0 {
		return 0
	}
	return float64(r.Final.Frames) / float64(r.FramesToSend)
}

func (r *Report) addNote(format string, args ...interface{}) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// WriteFinal prints the end-of-session statistics block.
func (r *Report) WriteFinal(w io.Writer) {
	fmt.Fprintf(w, "\n=== Final Statistics for %s ===\n", r.Case)
	fmt.Fprintf(w, "Total bytes sent: %d\n", r.Final.BytesSent)
	fmt.Fprintf(w, "Total frames sent: %d\n", r.Final.Frames)
	fmt.Fprintf(w, "Frames dropped: %d\n", r.Final.FramesDropped)
	fmt.Fprintf(w, "Average bitrate: %.2f Mbps\n", r.BitrateBPS()/1_000_000)
	fmt.Fprintf(w, "Success rate: %.2f%%\n", r.SuccessRate()*100)
	for _, note := range r.Notes {
		fmt.Fprintf(w, "Note: %s\n", note)
	}
}

func writeProgress(w io.Writer, elapsed time.Duration, s omt.Statistics) {
	fmt.Fprintf(w, "[%.1fs] Sent: %d bytes, %d frames, dropped: %d, codec_time: %dms\n",
		elapsed.Seconds(), s.BytesSent, s.Frames, s.FramesDropped, s.CodecTimeSinceLast)
}
