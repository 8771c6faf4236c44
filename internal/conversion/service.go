package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"hanzify/internal/contextbuf"
	"hanzify/internal/generator"
	"hanzify/internal/history"
	"hanzify/internal/pinyin"
	"hanzify/internal/postprocess"
	"hanzify/internal/prompt"
)

var errEmptyOutput = errors.New("generator returned blank text")

type Observer interface {
	ObserveConversion(outcome string, duration time.Duration)
	ObserveGeneration(duration time.Duration, err error)
	IncMarkerMissing()
	SetContextLength(n int)
}

type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithGenerationConfig(cfg generator.Config) Option {
	return func(s *Service) { s.genCfg = cfg }
}

func WithMarker(marker string) Option {
	return func(s *Service) { s.builder = prompt.New(marker) }
}

// WithTimeout bounds a single generation call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// Service runs conversions one at a time against a shared generator and
// context buffer.
type Service struct {
	gen      generator.Generator
	buf      *contextbuf.Buffer
	builder  *prompt.Builder
	genCfg   generator.Config
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
	recorder Recorder

	// slot admits one conversion between reading and writing the buffer.
	slot chan struct{}
}

func New(gen generator.Generator, buf *contextbuf.Buffer, opts ...Option) *Service {
	if gen == nil || buf == nil {
		panic("conversion: generator and buffer are required")
	}
	s := &Service{
		gen:     gen,
		buf:     buf,
		builder: prompt.New(prompt.DefaultMarker),
		genCfg:  generator.DefaultConfig(),
		logger:  slog.Default(),
		slot:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Convert(ctx context.Context, raw string) Result {
	started := time.Now()
	res := s.convert(ctx, raw)
	res.Duration = time.Since(started)
	s.finish(ctx, raw, res)
	return res
}

func (s *Service) convert(ctx context.Context, raw string) Result {
	s.logger.Debug("conversion started", "state", StateValidating, "pinyin", raw)
	if err := pinyin.Validate(raw); err != nil {
		return rejection(err)
	}

	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return failure(ctx.Err())
	}
	defer func() { <-s.slot }()

	return s.convertLocked(ctx, raw)
}

func (s *Service) convertLocked(ctx context.Context, raw string) (res Result) {
	state := StateBuilding
	defer func() {
		if rec := recover(); rec != nil {
			res = failure(fmt.Errorf("panic in %s: %v", state, rec))
		}
	}()

	promptText := s.builder.Build(raw, s.buf.Current())

	state = StateGenerating
	text, err := s.generate(ctx, promptText)
	if err != nil {
		return failure(err)
	}

	state = StateExtracting
	answer, found := postprocess.Extract(text, s.builder.Marker)
	if !found {
		s.logger.Warn("marker not found in generated text, using full output", "marker", s.builder.Marker)
		if s.observer != nil {
			s.observer.IncMarkerMissing()
		}
	}
	out := postprocess.Normalize(answer)

	// Append is the last step that may fail; nothing after it can turn this
	// conversion into a failure.
	state = StateContextUpdating
	s.buf.Append(out)

	return Result{OK: true, Output: out, MarkerFound: found, Context: s.buf.Current()}
}

// generate detaches the call from caller cancellation: once started a
// generation runs to completion or to the configured timeout.
func (s *Service) generate(ctx context.Context, promptText string) (string, error) {
	genCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(genCtx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := s.gen.Generate(genCtx, promptText, s.genCfg)
	if err == nil && strings.TrimSpace(text) == "" {
		err = generator.Fail("generate", errEmptyOutput)
	}
	if s.observer != nil {
		s.observer.ObserveGeneration(time.Since(started), err)
	}
	return text, err
}

func (s *Service) finish(ctx context.Context, raw string, res Result) {
	if s.observer != nil {
		if res.OK {
			s.observer.SetContextLength(utf8.RuneCountInString(res.Context))
		}
		s.observer.ObserveConversion(res.Kind.String(), res.Duration)
	}

	switch {
	case res.OK:
		s.logger.Info("conversion finished",
			"state", StateDone,
			"pinyin", raw,
			"output", res.Output,
			"marker_found", res.MarkerFound,
			"duration_ms", res.Duration.Milliseconds(),
		)
	case res.Kind.Rejected():
		s.logger.Info("conversion rejected", "state", StateError, "reason", res.Kind.String(), "error", res.Err)
		return
	default:
		s.logger.Error("conversion failed",
			"state", StateError,
			"pinyin", raw,
			"error", res.Err,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}

	if s.recorder == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(recordCtx, history.Entry{
		Pinyin:   raw,
		Output:   res.Output,
		Status:   res.Kind.String(),
		Duration: res.Duration,
	}); err != nil {
		s.logger.Warn("history record failed", "error", err)
	}
}

func (s *Service) Context() string {
	return s.buf.Current()
}

// SetContext replaces the context with operator-edited text. The length
// limit is not applied here.
func (s *Service) SetContext(text string) {
	s.buf.Set(text)
	if s.observer != nil {
		s.observer.SetContextLength(s.buf.Len())
	}
}

func (s *Service) ClearContext() {
	s.buf.Clear()
	if s.observer != nil {
		s.observer.SetContextLength(0)
	}
}
