package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hanzify/internal/config"
	"hanzify/internal/contextbuf"
	"hanzify/internal/conversion"
	"hanzify/internal/generator"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		Provider:        config.ProviderOpenAI,
		UpstreamBaseURL: baseURL,
		Model:           "qwen",
		BreakerFailures: 3,
		BreakerCooldown: time.Minute,
	}
}

func TestNewIsLazyAndChecksModelOnce(t *testing.T) {
	var modelChecks, completions atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/models"):
			modelChecks.Add(1)
			_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"qwen","object":"model"}]}`)
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			completions.Add(1)
			_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"[转换结果]天地"}}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	var observed atomic.Int32
	lazy := New(testConfig(ts.URL), ts.Client(), Hooks{
		Upstream: func(string, int, time.Duration) { observed.Add(1) },
	})
	if lazy.Initialized() || modelChecks.Load() != 0 {
		t.Fatal("backend must not connect before first use")
	}

	for i := 0; i < 2; i++ {
		out, err := lazy.Generate(context.Background(), "p", generator.DefaultConfig())
		if err != nil || out != "p[转换结果]天地" {
			t.Fatalf("Generate() = %q, %v", out, err)
		}
	}
	if modelChecks.Load() != 1 || completions.Load() != 2 {
		t.Fatalf("unexpected call counts: models=%d completions=%d", modelChecks.Load(), completions.Load())
	}
	if observed.Load() != 3 {
		t.Fatalf("expected 3 observed upstream calls, got %d", observed.Load())
	}
}

func TestInitFailsWhenModelMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"other","object":"model"}]}`)
	}))
	defer ts.Close()

	lazy := New(testConfig(ts.URL), ts.Client(), Hooks{})
	if err := lazy.Init(context.Background()); !generator.IsFailure(err) {
		t.Fatalf("expected init failure, got %v", err)
	}
	if lazy.Initialized() {
		t.Fatal("failed init must leave backend uninitialized")
	}
}

func TestGenerationConfigAppliesSeed(t *testing.T) {
	cfg := testConfig("")
	if GenerationConfig(cfg).Seed != nil {
		t.Fatal("expected no seed by default")
	}
	seed := int64(99)
	cfg.GenerationSeed = &seed
	if got := GenerationConfig(cfg).Seed; got == nil || *got != 99 {
		t.Fatalf("unexpected seed: %v", got)
	}
}

type markerCounter struct {
	missing atomic.Int32
}

func (c *markerCounter) ObserveConversion(string, time.Duration) {}
func (c *markerCounter) ObserveGeneration(time.Duration, error) {}
func (c *markerCounter) IncMarkerMissing() { c.missing.Add(1) }
func (c *markerCounter) SetContextLength(int) {}

func TestConvertThroughOpenAIFindsMarker(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/models"):
			_, _ = io.WriteString(w, `{"object":"list","data":[]}`)
		default:
			// Chat servers answer with the continuation only.
			_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"天地"}}]}`)
		}
	}))
	defer ts.Close()

	counter := &markerCounter{}
	svc := conversion.New(New(testConfig(ts.URL), ts.Client(), Hooks{}), contextbuf.New(0), conversion.WithObserver(counter))

	res := svc.Convert(context.Background(), "tiandi")
	if !res.OK || res.Output != "天地。" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.MarkerFound || counter.missing.Load() != 0 {
		t.Fatalf("expected marker in decoded text, found=%v missing=%d", res.MarkerFound, counter.missing.Load())
	}
}

func TestGeminiProviderUsesConfiguredBaseURL(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"航空"}]}}]}`)
	}))
	defer ts.Close()

	cfg := testConfig("")
	cfg.Provider = config.ProviderGemini
	cfg.GeminiAPIKey = "g-key"
	cfg.GeminiBaseURL = ts.URL
	cfg.Model = "gemini-2.0-flash"

	out, err := New(cfg, ts.Client(), Hooks{}).Generate(context.Background(), "p", generator.DefaultConfig())
	if err != nil || out != "p航空" {
		t.Fatalf("Generate() = %q, %v", out, err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected the configured endpoint to be called once, got %d", hits.Load())
	}
}
