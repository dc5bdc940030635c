package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorMetrics_Record(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewMonitorMetrics(registry)
	require.NoError(t, err)

	m.RecordTick(ResultHit)
	m.RecordTick(ResultHit)
	m.RecordTick(ResultMiss)
	m.RecordTickError("capture")
	m.RecordAlert("beep")
	m.SetStreak(3)
	m.ObserveRecognition(0.25)
	m.ObserveTick(0.3)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Ticks.WithLabelValues(ResultHit)), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Ticks.WithLabelValues(ResultMiss)), 0.001)
	assert.InDelta(t, 0, testutil.ToFloat64(m.Ticks.WithLabelValues(ResultError)), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TickErrors.WithLabelValues("capture")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Alerts.WithLabelValues("beep")), 0.001)
	assert.InDelta(t, 3, testutil.ToFloat64(m.Streak), 0.001)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RecognitionSeconds))
}

func TestNewMonitorMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewMonitorMetrics(registry)
	require.NoError(t, err)

	_, err = NewMonitorMetrics(registry)
	assert.Error(t, err)
}

func TestServer_ServesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewMonitorMetrics(registry)
	require.NoError(t, err)
	m.RecordTick(ResultHit)

	srv, err := Listen("127.0.0.1:0", registry, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `screen_alert_ticks_total{result="hit"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("metrics server did not shut down")
	}
}

func TestListen_BadAddress(t *testing.T) {
	_, err := Listen("not-an-address", prometheus.NewRegistry(), nil)
	assert.Error(t, err)
}
