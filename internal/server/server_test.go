package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/omt-send-test/internal/config"
	"github.com/zsiec/omt-send-test/internal/health"
	"github.com/zsiec/omt-send-test/internal/metrics"
	"github.com/zsiec/omt-send-test/pkg/version"
)

func newTestServer(t *testing.T, checkers ...health.Checker) *Server {
	t.Helper()
	return newRunServer(t, nil, checkers...)
}

func newRunServer(t *testing.T, run *health.RunTracker, checkers ...health.Checker) *Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(&config.MetricsConfig{Enabled: true, Path: "/metrics", Port: 0}, log, run, checkers...)
}

func okChecker() health.Checker {
	return health.NewFuncChecker("ok", func(context.Context) error { return nil })
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, okChecker())
	metrics.RecordSubmission("UYVY_720p30", "success")

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "omt_send_submissions_total")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, okChecker())

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp health.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, health.StatusOK, resp.Status)
	assert.Contains(t, resp.Checks, "ok")
}

func TestHealthEndpointReportsRun(t *testing.T) {
	run := health.NewRunTracker()
	run.CaseFinished("UYVY_720p30", "PASS", false)
	run.CaseStarted("UYVY_1080p30")
	s := newRunServer(t, run, okChecker())

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp health.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Run)
	assert.Equal(t, "UYVY_1080p30", resp.Run.Current)
	assert.Equal(t, "UYVY_720p30", resp.Run.Last.Case)
}

func TestHealthEndpointDown(t *testing.T) {
	s := newTestServer(t, health.NewFuncChecker("transport", func(context.Context) error {
		return assert.AnError
	}))

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/version", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var info version.Info
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_FOUND")
}

func TestRequestIDPreserved(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestRequestsAreCounted(t *testing.T) {
	s := newTestServer(t)
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/live", "200"))

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/live", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/live", "200"))
	assert.Equal(t, before+1, after)
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(t, okChecker())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), "alive")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
