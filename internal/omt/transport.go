// Package omt is the boundary to the native OMT media-transport library.
// The session loop only sees the Transport and Sender capabilities, so it
// can run against the cgo binding or an in-process fake.
package omt

// Transport abstracts the native library's process-wide entry points.
type Transport interface {
	// SetLoggingFilename points the library's own log at path. The setting
	// is process-wide.
	SetLoggingFilename(path string)
	// CreateSender opens a sender advertised under name. It returns nil when
	// the library refuses, mirroring the native null handle.
	CreateSender(name string, quality Quality) Sender
}

// Sender is one live sender handle.
type Sender interface {
	SetSenderInfo(info SenderInfo)
	// Connections returns the number of receivers currently attached.
	Connections() int
	// Send submits one frame and returns the library's raw status code.
	Send(frame *MediaFrame) int32
	VideoStatistics() Statistics
	// Destroy releases the handle. The sender must not be used afterwards.
	Destroy()
}

// SenderInfo is advertised to receivers. Each field is truncated to fit the
// library's 128-byte C strings.
type SenderInfo struct {
	ProductName  string
	Manufacturer string
	Version      string
}

// Statistics is a snapshot of the sender's video counters.
type Statistics struct {
	BytesSent          int64
	Frames             int64
	FramesDropped      int64
	CodecTimeSinceLast int64 // milliseconds
}
