package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"hanzify/internal/config"
	"hanzify/internal/conversion"
	"hanzify/internal/history"
	"hanzify/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Converter interface {
	Convert(ctx context.Context, raw string) conversion.Result
	Context() string
	SetContext(text string)
	ClearContext()
}

// ReadinessChecker reports whether the generator is loaded, loading it if needed.
type ReadinessChecker interface {
	Init(ctx context.Context) error
}

type HistoryLister interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

type MetricsObserver interface {
	ObserveHTTP(route, method string, status int, duration time.Duration)
}

type Dependencies struct {
	Converter      Converter
	Readiness      ReadinessChecker
	History        HistoryLister
	Metrics        MetricsObserver
	MetricsHandler http.Handler
}

type server struct {
	cfg          config.Config
	logger       *slog.Logger
	converter    Converter
	readiness    ReadinessChecker
	history      HistoryLister
	metrics      MetricsObserver
	metricsRoute http.Handler
}

type ctxKey string

const (
	requestIDHeader  = "X-Request-Id"
	requestIDContext = ctxKey("request_id")
	maxJSONBodyBytes = 1 << 20
	readinessTimeout = 30 * time.Second
	serviceName      = "hanzify"
)

func NewServer(cfg config.Config, logger *slog.Logger, deps Dependencies) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Converter == nil || deps.Readiness == nil {
		panic("httpapi: converter and readiness dependencies are required")
	}

	s := &server{
		cfg:          cfg,
		logger:       logger,
		converter:    deps.Converter,
		readiness:    deps.Readiness,
		history:      deps.History,
		metrics:      deps.Metrics,
		metricsRoute: deps.MetricsHandler,
	}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.authMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if s.metricsRoute != nil {
		r.Handle("/metrics", s.metricsRoute)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/context", s.handleGetContext)
		r.Put("/context", s.handleSetContext)
		r.Delete("/context", s.handleClearContext)
		if s.history != nil {
			r.Get("/history", s.handleHistory)
		}
		r.Get("/ws", s.handleStream)
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{OK: true})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := s.readiness.Init(ctx); err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "not_ready", "model is not loaded", detailsForError(err))
		return
	}
	writeJSON(w, http.StatusOK, model.ReadyResponse{OK: true, ServiceName: serviceName})
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req model.ConvertRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	res := s.converter.Convert(r.Context(), req.Pinyin)
	if !res.OK {
		status := http.StatusServiceUnavailable
		if res.Kind.Rejected() {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, res.Kind.String(), res.Message, nil)
		return
	}

	writeJSON(w, http.StatusOK, model.ConvertResponse{
		Result:     res.Output,
		Context:    res.Context,
		DurationMS: res.Duration.Milliseconds(),
	})
}

func (s *server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contextResponse(s.converter.Context()))
}

func (s *server) handleSetContext(w http.ResponseWriter, r *http.Request) {
	var req model.SetContextRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.converter.SetContext(req.Context)
	writeJSON(w, http.StatusOK, contextResponse(s.converter.Context()))
}

func (s *server) handleClearContext(w http.ResponseWriter, r *http.Request) {
	s.converter.ClearContext()
	writeJSON(w, http.StatusOK, contextResponse(s.converter.Context()))
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultListLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, http.StatusBadRequest, "invalid_request", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	out := model.HistoryResponse{Entries: make([]model.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, model.HistoryEntry{
			ID:         e.ID,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
			Pinyin:     e.Pinyin,
			Output:     e.Output,
			Status:     e.Status,
			DurationMS: e.Duration.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	defer func() { _ = r.Body.Close() }()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return false
	}
	if err := ensureBodyFullyConsumed(decoder); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return false
	}
	return true
}

func (s *server) handleJSONDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "request_too_large", "JSON body too large", nil)
		return
	}
	s.writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
}

func (s *server) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "request failed"

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		code = "timeout"
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		status = 499
		code = "canceled"
		message = "request canceled"
	}

	s.writeError(w, r, status, code, message, detailsForError(err))
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	writeJSON(w, status, model.ErrorResponse{
		Error:     model.APIError{Code: code, Message: message, Details: details},
		RequestID: requestIDFromContext(r.Context()),
	})
}

func (s *server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDContext, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		duration := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, r.Method, status, duration)
		}

		s.logger.Info("http_request",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
		)
	})
}

func (s *server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic recovered", "request_id", requestIDFromContext(r.Context()), "panic", rec)
				s.writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware is a no-op unless API_TOKEN is set. Browsers cannot set
// headers on websocket upgrades, so /v1/ws also accepts ?access_token=.
func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIToken == "" || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, hasHeader, ok := extractBearerToken(r.Header.Get("Authorization"))
		if hasHeader && !ok {
			s.writeError(w, r, http.StatusUnauthorized, "unauthorized", "Authorization must be Bearer <token>", nil)
			return
		}
		if token == "" && r.URL.Path == "/v1/ws" {
			token = r.URL.Query().Get("access_token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.APIToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isPublicPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	default:
		return false
	}
}

func contextResponse(text string) model.ContextResponse {
	return model.ContextResponse{Context: text, Length: utf8.RuneCountInString(text)}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func ensureBodyFullyConsumed(decoder *json.Decoder) error {
	var extra any
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("multiple JSON values")
		}
		return err
	}
	return nil
}

func requestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDContext).(string)
	return value
}

func extractBearerToken(header string) (token string, hasHeader bool, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false, true
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", true, false
	}
	token = strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", true, false
	}
	return token, true, true
}

func detailsForError(err error) map[string]any {
	if err == nil {
		return nil
	}
	return map[string]any{"error": err.Error()}
}
