//go:build omt

package omt

/*
#cgo LDFLAGS: -lomt -lvmx
#include <stdlib.h>
#include <string.h>
#include <libomt.h>
*/
import "C"

import (
	"runtime"
	"sync"
	"unsafe"
)

// Available reports whether the binary was built against libomt.
const Available = true

var logFileOnce sync.Once

// Library implements Transport over libomt through cgo.
type Library struct{}

// Open returns the libomt-backed transport.
func Open() (Transport, error) {
	return &Library{}, nil
}

// SetLoggingFilename implements Transport. libomt keeps a single log file
// per process, so only the first call takes effect.
func (l *Library) SetLoggingFilename(path string) {
	logFileOnce.Do(func() {
		cpath := C.CString(path)
		defer C.free(unsafe.Pointer(cpath))
		C.omt_setloggingfilename(cpath)
	})
}

// CreateSender implements Transport.
func (l *Library) CreateSender(name string, quality Quality) Sender {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	handle := C.omt_send_create(cname, C.OMTQuality(quality))
	if handle == nil {
		return nil
	}
	return &librarySender{handle: handle}
}

type librarySender struct {
	handle *C.omt_send_t
}

func (s *librarySender) SetSenderInfo(info SenderInfo) {
	var cinfo C.OMTSenderInfo
	copyCString(cinfo.ProductName[:], info.ProductName)
	copyCString(cinfo.Manufacturer[:], info.Manufacturer)
	copyCString(cinfo.Version[:], info.Version)
	C.omt_send_setsenderinformation(s.handle, &cinfo)
}

func (s *librarySender) Connections() int {
	return int(C.omt_send_connections(s.handle))
}

func (s *librarySender) Send(frame *MediaFrame) int32 {
	var cframe C.OMTMediaFrame
	cframe.Type = C.OMTFrameType(frame.Type)
	cframe.Codec = C.OMTCodec(frame.Codec)
	cframe.Width = C.int(frame.Width)
	cframe.Height = C.int(frame.Height)
	cframe.Stride = C.int(frame.Stride)
	cframe.Flags = C.OMTVideoFlags(frame.Flags)
	cframe.FrameRateN = C.int(frame.FrameRateN)
	cframe.FrameRateD = C.int(frame.FrameRateD)
	cframe.AspectRatio = C.float(frame.AspectRatio)
	cframe.ColorSpace = C.OMTColorSpace(frame.ColorSpace)
	cframe.DataLength = C.int(frame.DataLength)
	cframe.Timestamp = C.int64_t(frame.Timestamp)

	// The C struct holds a pointer into the Go payload for the duration of
	// the call, which cgo only permits for pinned memory.
	var pinner runtime.Pinner
	defer pinner.Unpin()
	if len(frame.Data) > 0 {
		pinner.Pin(&frame.Data[0])
		cframe.Data = unsafe.Pointer(&frame.Data[0])
	}

	return int32(C.omt_send(s.handle, &cframe))
}

func (s *librarySender) VideoStatistics() Statistics {
	var cstats C.OMTStatistics
	C.omt_send_getvideostatistics(s.handle, &cstats)
	return Statistics{
		BytesSent:          int64(cstats.BytesSent),
		Frames:             int64(cstats.Frames),
		FramesDropped:      int64(cstats.FramesDropped),
		CodecTimeSinceLast: int64(cstats.CodecTimeSinceLast),
	}
}

func (s *librarySender) Destroy() {
	if s.handle == nil {
		return
	}
	C.omt_send_destroy(s.handle)
	s.handle = nil
}

// copyCString writes s into a fixed C char array, truncating and always
// NUL-terminating.
func copyCString(dst []C.char, s string) {
	if len(dst) == 0 {
		return
	}
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	for i := 0; i < n; i++ {
		dst[i] = C.char(s[i])
	}
	dst[n] = 0
}
