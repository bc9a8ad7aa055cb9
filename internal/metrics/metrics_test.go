package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheDecision("hit")
	m.SourceFetch(nil, time.Second)
	m.Conversion(errors.New("boom"))
	m.HTTPRequest("/health", "GET", "200", time.Millisecond)
}

func TestRecording(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CacheDecision("miss")
	m.CacheDecision("hit")
	m.CacheDecision("hit")
	m.SourceFetch(nil, 120*time.Millisecond)
	m.SourceFetch(errors.New("timeout"), time.Second)
	m.Conversion(nil)
	m.HTTPRequest("/api/v1/rates", "GET", "200", 5*time.Millisecond)

	if v := testutil.ToFloat64(m.CacheDecisions.WithLabelValues("hit")); v != 2 {
		t.Errorf("expected 2 hits, got %v", v)
	}
	if v := testutil.ToFloat64(m.SourceFetches.WithLabelValues("error")); v != 1 {
		t.Errorf("expected 1 failed fetch, got %v", v)
	}
	if v := testutil.ToFloat64(m.Conversions.WithLabelValues("ok")); v != 1 {
		t.Errorf("expected 1 conversion, got %v", v)
	}
	if v := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/v1/rates", "GET", "200")); v != 1 {
		t.Errorf("expected 1 request, got %v", v)
	}
	if n := testutil.CollectAndCount(m.FetchDuration); n != 1 {
		t.Errorf("expected 1 histogram series, got %d", n)
	}
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = New(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	_ = New(reg)
}
