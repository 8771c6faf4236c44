package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestMetricsHandlerExposesConversionSeries(t *testing.T) {
	m := NewMetrics()
	m.ObserveConversion("ok", 120*time.Millisecond)
	m.ObserveConversion("generation_failed", time.Second)
	m.ObserveGeneration(100*time.Millisecond, nil)
	m.ObserveGeneration(time.Second, errors.New("boom"))
	m.IncMarkerMissing()
	m.SetContextLength(42)
	m.ObserveBreaker("generator", gobreaker.StateClosed, gobreaker.StateOpen)
	m.ObserveUpstream("chat_completions", 200, 50*time.Millisecond)
	m.ObserveHTTP("/v1/convert", http.MethodPost, 200, 10*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	out := string(body)

	for _, want := range []string{
		`hanzify_conversions_total{outcome="ok"} 1`,
		`hanzify_conversions_total{outcome="generation_failed"} 1`,
		`hanzify_generation_duration_seconds_count{status="error"} 1`,
		`hanzify_marker_missing_total 1`,
		`hanzify_context_length_runes 42`,
		`hanzify_generator_breaker_state 2`,
		`hanzify_upstream_requests_total{endpoint="chat_completions",status="200"} 1`,
		`hanzify_http_requests_total{method="POST",route="/v1/convert",status="200"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveConversion("ok", time.Second)
	m.ObserveGeneration(time.Second, nil)
	m.IncMarkerMissing()
	m.SetContextLength(1)
	m.ObserveBreaker("g", gobreaker.StateClosed, gobreaker.StateOpen)
	m.ObserveHTTP("", "", 200, time.Second)
	m.ObserveUpstream("", 200, time.Second)
}
