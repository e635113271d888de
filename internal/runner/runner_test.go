package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/omt-send-test/internal/errors"
	"github.com/zsiec/omt-send-test/internal/logger"
	"github.com/zsiec/omt-send-test/internal/omt"
	"github.com/zsiec/omt-send-test/internal/omt/omttest"
	"github.com/zsiec/omt-send-test/internal/pacing"
	"github.com/zsiec/omt-send-test/internal/session"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type stubDriver struct {
	calls []session.Case
	run   func(c session.Case) (*session.Report, error)
}

func (s *stubDriver) Run(_ context.Context, c session.Case) (*session.Report, error) {
	s.calls = append(s.calls, c)
	if s.run != nil {
		return s.run(c)
	}
	return &session.Report{Case: c.Format.Name, Alpha: c.Alpha, Delivered: 1}, nil
}

func testConfig(logPath string) Config {
	return Config{
		Duration:     time.Second,
		CasePause:    time.Second,
		FailurePause: 2 * time.Second,
		LogPath:      logPath,
		LogScanLimit: 10,
	}
}

func newStubRunner(t *testing.T, d Driver) (*Runner, *pacing.ManualClock, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	clock := pacing.NewManualClock(epoch)
	var out, errOut bytes.Buffer
	r := New(d, testConfig(filepath.Join(t.TempDir(), "missing.log")), clock, logger.NewNullLogger(), &out, &errOut)
	return r, clock, &out, &errOut
}

func TestSelect(t *testing.T) {
	all, ok := Select("")
	require.True(t, ok)
	assert.Len(t, all, 5)
	assert.Equal(t, []string{"UYVY_720p30", "UYVY_1080p30", "BGRA_720p30", "BGRA_1080p30", "NV12_720p30"}, Names())

	one, ok := Select("NV12_720p30")
	require.True(t, ok)
	require.Len(t, one, 1)
	assert.Equal(t, 1280, one[0].Width)

	_, ok = Select("ProRes_4k")
	assert.False(t, ok)

	_, ok = Select("uyvy_720p30")
	assert.False(t, ok, "names are case-sensitive")
}

func TestCatalogueFormatsAreValid(t *testing.T) {
	for _, f := range Catalogue() {
		assert.NoError(t, f.Validate(), f.Name)
		assert.Equal(t, 30, f.Rate.Num)
		assert.Equal(t, 1, f.Rate.Den)
	}
}

func TestRunUnknownName(t *testing.T) {
	fake := omttest.NewFake()
	clock := pacing.NewManualClock(epoch)
	d := session.NewDriver(fake, session.Config{PeerWaitAttempts: 1}, clock, nil, nil)

	var out, errOut bytes.Buffer
	r := New(d, testConfig(""), clock, nil, &out, &errOut)

	summary, err := r.Run(context.Background(), "ProRes_4k")
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Empty(t, fake.Senders())
	assert.Contains(t, errOut.String(), "Unknown format")
	assert.Contains(t, errOut.String(), "ProRes_4k")
}

func TestRunFullCatalogue(t *testing.T) {
	clock := pacing.NewManualClock(epoch)
	fake := omttest.NewFake()
	fake.Clock = clock
	d := session.NewDriver(fake, session.Config{
		SenderPrefix:      "GoSend_",
		Quality:           omt.QualityMedium,
		PeerWaitAttempts:  30,
		PeerPollInterval:  100 * time.Millisecond,
		BackpressureDelay: 100 * time.Millisecond,
	}, clock, nil, nil)

	logPath := filepath.Join(t.TempDir(), "omt-send.log")
	require.NoError(t, os.WriteFile(logPath, []byte("INFO start\nWARN slow consumer\n"), 0o644))

	var out, errOut bytes.Buffer
	r := New(d, testConfig(logPath), clock, nil, &out, &errOut)

	summary, err := r.Run(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, summary.Results, 7)
	assert.Zero(t, summary.Failures())
	assert.Empty(t, errOut.String())

	var names []string
	for _, s := range fake.Senders() {
		names = append(names, s.Name)
		assert.Equal(t, 1, s.Destroyed())
		assert.Len(t, s.Submissions(), 30)
	}
	assert.Equal(t, []string{
		"GoSend_UYVY_720p30",
		"GoSend_UYVY_1080p30",
		"GoSend_BGRA_720p30",
		"GoSend_BGRA_720p30",
		"GoSend_BGRA_1080p30",
		"GoSend_BGRA_1080p30",
		"GoSend_NV12_720p30",
	}, names)

	// The second BGRA run of each pair carries the alpha flag.
	senders := fake.Senders()
	assert.Equal(t, omt.VideoFlagsNone, senders[2].Submissions()[0].Flags)
	assert.Equal(t, omt.VideoFlagsAlpha, senders[3].Submissions()[0].Flags)
	assert.True(t, summary.Results[3].Alpha)

	require.NotNil(t, summary.Log)
	assert.Equal(t, 1, summary.Log.Total)
	assert.Contains(t, out.String(), "All tests completed!")
	assert.Contains(t, out.String(), "Found 1 warnings/errors in log:")
	assert.Contains(t, out.String(), "  WARN slow consumer")
	assert.Contains(t, out.String(), "BGRA_1080p30+alpha")
	assert.Contains(t, out.String(), "7 case run(s), 0 failed")
}

func TestRunSingleBGRARunsAlphaThenPauses(t *testing.T) {
	d := &stubDriver{}
	r, clock, _, _ := newStubRunner(t, d)

	summary, err := r.Run(context.Background(), "BGRA_1080p30")
	require.NoError(t, err)
	require.Len(t, d.calls, 2)
	assert.False(t, d.calls[0].Alpha)
	assert.True(t, d.calls[1].Alpha)
	assert.Equal(t, time.Second, d.calls[0].Duration)
	assert.Len(t, summary.Results, 2)

	slept, sleeps := clock.Slept()
	assert.Equal(t, time.Second, slept)
	assert.Equal(t, 1, sleeps)
}

func TestRunFailureSkipsAlphaAndPausesLonger(t *testing.T) {
	d := &stubDriver{run: func(c session.Case) (*session.Report, error) {
		return nil, errors.NewSessionCreateError("GoSend_" + c.Format.Name)
	}}
	r, clock, _, errOut := newStubRunner(t, d)

	summary, err := r.Run(context.Background(), "BGRA_720p30")
	require.NoError(t, err)
	require.Len(t, d.calls, 1)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "FAIL", summary.Results[0].Status())
	assert.Equal(t, 1, summary.Failures())
	assert.Contains(t, errOut.String(), "Test failed for BGRA_720p30")

	slept, _ := clock.Slept()
	assert.Equal(t, 2*time.Second, slept)
}

func TestRunAlphaFailureContinues(t *testing.T) {
	d := &stubDriver{run: func(c session.Case) (*session.Report, error) {
		if c.Alpha {
			return &session.Report{}, errors.NewSubmissionError(-1, 3, "error")
		}
		return &session.Report{Delivered: 1}, nil
	}}
	r, _, _, errOut := newStubRunner(t, d)

	summary, err := r.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, d.calls, 7)
	assert.Equal(t, 2, summary.Failures())
	assert.Contains(t, errOut.String(), "Test with alpha failed for BGRA_720p30")
}

func TestRunRecoversPanic(t *testing.T) {
	d := &stubDriver{run: func(c session.Case) (*session.Report, error) {
		if c.Format.Name == "UYVY_720p30" {
			panic("boom")
		}
		return &session.Report{Delivered: 1}, nil
	}}
	r, _, out, errOut := newStubRunner(t, d)

	summary, err := r.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, d.calls, 7)
	require.NotEmpty(t, summary.Results)
	assert.True(t, errors.IsType(summary.Results[0].Err, errors.ErrorTypePanic))
	assert.Contains(t, errOut.String(), "boom")
	assert.Contains(t, out.String(), "All tests completed!")
}

func TestRunPeerLossIsNotFailure(t *testing.T) {
	d := &stubDriver{run: func(c session.Case) (*session.Report, error) {
		return &session.Report{Delivered: 44, PeerLost: true, PeerLostAt: 44}, nil
	}}
	r, _, out, _ := newStubRunner(t, d)

	summary, err := r.Run(context.Background(), "BGRA_720p30")
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "PEER LOST", summary.Results[0].Status())
	assert.Zero(t, summary.Failures())
	assert.Contains(t, out.String(), "PEER LOST")
}

func TestRunZeroAcceptedFramesIsNoFrames(t *testing.T) {
	d := &stubDriver{run: func(c session.Case) (*session.Report, error) {
		return &session.Report{Case: c.Format.Name, FramesToSend: 30}, nil
	}}
	r, _, out, _ := newStubRunner(t, d)

	summary, err := r.Run(context.Background(), "NV12_720p30")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, StatusNoFrames, summary.Results[0].Status())
	assert.Zero(t, summary.Failures())
	assert.Contains(t, out.String(), "NO FRAMES")
	assert.Contains(t, out.String(), "0/30")
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) CaseStarted(label string) {
	o.events = append(o.events, "start "+label)
}

func (o *recordingObserver) CaseFinished(label, status string, failed bool) {
	o.events = append(o.events, fmt.Sprintf("end %s %s %t", label, status, failed))
}

func TestRunNotifiesObserver(t *testing.T) {
	d := &stubDriver{run: func(c session.Case) (*session.Report, error) {
		if c.Alpha {
			return &session.Report{}, errors.NewSubmissionError(-1, 0, "General error")
		}
		return &session.Report{Delivered: 1}, nil
	}}
	r, _, _, _ := newStubRunner(t, d)
	obs := &recordingObserver{}
	r.SetObserver(obs)

	_, err := r.Run(context.Background(), "BGRA_720p30")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"start BGRA_720p30",
		"end BGRA_720p30 PASS false",
		"start BGRA_720p30+alpha",
		"end BGRA_720p30+alpha FAIL true",
	}, obs.events)
}

func TestRunCancelled(t *testing.T) {
	d := &stubDriver{}
	r, _, _, _ := newStubRunner(t, d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := r.Run(ctx, "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInterrupted))
	assert.Empty(t, d.calls)
	assert.Empty(t, summary.Results)
}

func TestRunStopsWhenCaseInterrupted(t *testing.T) {
	d := &stubDriver{run: func(c session.Case) (*session.Report, error) {
		return &session.Report{}, errors.NewInterruptedError(context.Canceled)
	}}
	r, _, _, _ := newStubRunner(t, d)

	_, err := r.Run(context.Background(), "")
	require.Error(t, err)
	assert.Len(t, d.calls, 1)
}

func TestScanLog(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "INFO frame %d\n", i)
		if i%2 == 0 {
			fmt.Fprintf(&b, "ERROR send failed %d\n", i)
		} else {
			fmt.Fprintf(&b, "WARN queue high %d\n", i)
		}
	}
	path := filepath.Join(t.TempDir(), "omt.log")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	scan, err := ScanLog(path, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, scan.Total)
	require.Len(t, scan.Lines, 10)
	assert.Equal(t, "ERROR send failed 0", scan.Lines[0])
	assert.Equal(t, "WARN queue high 9", scan.Lines[9])
}

func TestScanLogMissingFile(t *testing.T) {
	_, err := ScanLog(filepath.Join(t.TempDir(), "nope.log"), 10)
	assert.Error(t, err)
}

func TestScanLogClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omt.log")
	require.NoError(t, os.WriteFile(path, []byte("INFO ok\nDEBUG fine\n"), 0o644))

	scan, err := ScanLog(path, 10)
	require.NoError(t, err)
	assert.Zero(t, scan.Total)
	assert.Empty(t, scan.Lines)
}
