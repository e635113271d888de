// Package omttest provides an in-memory Transport for tests.
package omttest

import (
	"sync"
	"time"

	"github.com/zsiec/omt-send-test/internal/omt"
	"github.com/zsiec/omt-send-test/internal/pacing"
)

// Submission records one Send call.
type Submission struct {
	Seq        int // 1-based submission number within the sender
	Timestamp  int64
	Codec      omt.Codec
	Flags      omt.VideoFlags
	ColorSpace omt.ColorSpace
	DataLength int32
	Stride     int32
	At         time.Time
	RC         int32
}

// Fake is an in-memory Transport. Zero value behaves like a transport with
// one receiver attached that accepts every frame.
type Fake struct {
	mu sync.Mutex

	// CreateFails makes CreateSender return nil.
	CreateFails bool
	// RC returns the code for submission seq (1-based). Nil means always 0.
	RC func(seq int, frame *omt.MediaFrame) int32
	// Peers returns the connection count after seq submissions. Nil means 1.
	Peers func(seq int) int
	// PanicAt makes submission PanicAt panic. Zero disables.
	PanicAt int
	// Clock, when set, stamps submissions and is advanced by SendCost.
	Clock *pacing.ManualClock
	// SendCost returns how long submission seq blocks inside the transport.
	SendCost func(seq int) time.Duration

	logPath string
	senders []*FakeSender
}

// NewFake creates a fake transport.
func NewFake() *Fake {
	return &Fake{}
}

// SetLoggingFilename implements omt.Transport.
func (f *Fake) SetLoggingFilename(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logPath = path
}

// LogPath returns the last logging filename set.
func (f *Fake) LogPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logPath
}

// CreateSender implements omt.Transport.
func (f *Fake) CreateSender(name string, quality omt.Quality) omt.Sender {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateFails {
		return nil
	}
	s := &FakeSender{fake: f, Name: name, Quality: quality}
	f.senders = append(f.senders, s)
	return s
}

// Senders returns every sender created so far.
func (f *Fake) Senders() []*FakeSender {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*FakeSender, len(f.senders))
	copy(out, f.senders)
	return out
}

// Last returns the most recently created sender, or nil.
func (f *Fake) Last() *FakeSender {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.senders) == 0 {
		return nil
	}
	return f.senders[len(f.senders)-1]
}

// FakeSender is the sender handle returned by Fake.
type FakeSender struct {
	fake *Fake

	mu          sync.Mutex
	Name        string
	Quality     omt.Quality
	Info        omt.SenderInfo
	submissions []Submission
	accepted    int64
	bytes       int64
	statsCalls  int
	peerPolls   int
	destroyed   int
}

func (s *FakeSender) SetSenderInfo(info omt.SenderInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Info = info
}

func (s *FakeSender) Connections() int {
	s.mu.Lock()
	seq := len(s.submissions)
	s.peerPolls++
	s.mu.Unlock()

	if s.fake.Peers == nil {
		return 1
	}
	return s.fake.Peers(seq)
}

func (s *FakeSender) Send(frame *omt.MediaFrame) int32 {
	s.mu.Lock()
	seq := len(s.submissions) + 1
	s.mu.Unlock()

	if s.fake.PanicAt > 0 && seq == s.fake.PanicAt {
		panic("omttest: injected panic")
	}

	var at time.Time
	if s.fake.Clock != nil {
		at = s.fake.Clock.Now()
		if s.fake.SendCost != nil {
			s.fake.Clock.Advance(s.fake.SendCost(seq))
		}
	}

	var rc int32
	if s.fake.RC != nil {
		rc = s.fake.RC(seq, frame)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, Submission{
		Seq:        seq,
		Timestamp:  frame.Timestamp,
		Codec:      frame.Codec,
		Flags:      frame.Flags,
		ColorSpace: frame.ColorSpace,
		DataLength: frame.DataLength,
		Stride:     frame.Stride,
		At:         at,
		RC:         rc,
	})
	if omt.Classify(rc) == omt.OutcomeSuccess || omt.Classify(rc) == omt.OutcomeInformational {
		s.accepted++
		s.bytes += int64(frame.DataLength)
	}
	return rc
}

func (s *FakeSender) VideoStatistics() omt.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsCalls++
	return omt.Statistics{
		BytesSent:          s.bytes,
		Frames:             s.accepted,
		CodecTimeSinceLast: 1,
	}
}

func (s *FakeSender) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed++
}

// Submissions returns a copy of every recorded Send call.
func (s *FakeSender) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// Timestamps returns the timestamps of every Send call in order.
func (s *FakeSender) Timestamps() []int64 {
	subs := s.Submissions()
	out := make([]int64, len(subs))
	for i, sub := range subs {
		out[i] = sub.Timestamp
	}
	return out
}

// Destroyed returns how many times Destroy was called.
func (s *FakeSender) Destroyed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// StatsCalls returns how many times VideoStatistics was called.
func (s *FakeSender) StatsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsCalls
}

// PeerPolls returns how many times Connections was called.
func (s *FakeSender) PeerPolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerPolls
}

// Compile-time interface checks.
var (
	_ omt.Transport = (*Fake)(nil)
	_ omt.Sender    = (*FakeSender)(nil)
)
