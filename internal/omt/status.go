package omt

// Outcome is what the session loop does with a send return code.
type Outcome int

const (
	// OutcomeSuccess means rc == 0.
	OutcomeSuccess Outcome = iota
	// OutcomeBackpressure means the sender is full; retry the same frame.
	OutcomeBackpressure
	// OutcomeInformational means the frame went out with a status attached.
	OutcomeInformational
	// OutcomeFatal ends the session.
	OutcomeFatal
)

// String returns the outcome name used in logs and metric labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeBackpressure:
		return "backpressure"
	case OutcomeInformational:
		return "informational"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// RCBackpressure is returned by send when the library cannot take the frame
// yet.
const RCBackpressure int32 = 26984

// Vendor-opaque status codes observed alongside frames that were still
// delivered. Their meaning is not documented; keep the table as is.
var informationalCodes = map[int32]bool{
	12428: true,
	19448: true,
	29843: true,
	39293: true,
}

// Classify maps a send return code to an Outcome. It does not look at peer
// liveness: the caller checks Connections() for any non-zero code, because a
// status returned after the last receiver left means the session is over.
func Classify(rc int32) Outcome {
	switch {
	case rc == 0:
		return OutcomeSuccess
	case rc == RCBackpressure:
		return OutcomeBackpressure
	case informationalCodes[rc]:
		return OutcomeInformational
	case rc > 0:
		return OutcomeInformational
	default:
		return OutcomeFatal
	}
}

// Describe returns a human-readable label for rc.
func Describe(rc int32) string {
	switch {
	case rc == 0:
		return "Success"
	case informationalCodes[rc]:
		return "Frame queued/processing (non-fatal)"
	case rc == RCBackpressure:
		return "Buffer overflow or encoding error"
	case rc == -1:
		return "General error"
	case rc > 0:
		return "Status/warning code (may be non-fatal)"
	default:
		return "Unknown error"
	}
}
