// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
)

const (
	headerRequestID    = "X-Request-ID"
	healthCheckTimeout = 2 * time.Second
)

// HealthChecker is satisfied by every repository.JobRepository.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// JobService is satisfied by *pipeline.Orchestrator.
type JobService interface {
	Submit(ctx context.Context, req pipeline.CreateRequest) (*entity.Job, error)
	GetJob(ctx context.Context, id string) (*entity.Job, error)
	ListJobs(ctx context.Context) ([]*entity.Job, error)
	Export(ctx context.Context, id string, format export.Format) (*export.Document, error)
}

type Deps struct {
	Jobs   JobService
	Logger *slog.Logger
	// MaxDocumentBytes bounds multipart uploads; 0 means 32 MiB.
	MaxDocumentBytes int64
	// Offline is reported by /healthz.
	Offline bool
	// Health backs /healthz; nil always reports ok.
	Health HealthChecker
}

type handler struct {
	jobs     JobService
	log      *slog.Logger
	maxBytes int64
	offline  bool
	health   HealthChecker
}

// NewHandler builds the HTTP API router.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxDocumentBytes <= 0 {
		deps.MaxDocumentBytes = 32 << 20
	}
	h := &handler{
		jobs:     deps.Jobs,
		log:      deps.Logger,
		maxBytes: deps.MaxDocumentBytes,
		offline:  deps.Offline,
		health:   deps.Health,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", h.handleCreateJob)
		r.Get("/", h.handleListJobs)
		r.Get("/{id}", h.handleGetJob)
		r.Get("/{id}/export", h.handleExport)
	})
	return r
}

// NewHTTPServer wraps handler with the timeouts used by serve.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.HealthCheck(r.Context(), healthCheckTimeout); err != nil {
			h.log.Warn("http.health.failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "offline": h.offline})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "offline": h.offline})
}

// requestID propagates or assigns X-Request-ID and stores it on the context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(common.WithRequestID(r.Context(), id)))
	})
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", common.RequestIDFromContext(r.Context()),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
