// Package proxy implements the transcription HTTP service. It keeps the
// vendor API key server side: clients post raw audio to /api/transcribe and
// receive the vendor's JSON response relayed verbatim.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmarin/voznota/internal/config"
)

// Server is the transcription proxy HTTP server.
type Server struct {
	server   *http.Server
	logger   *slog.Logger
	cfg      *config.Config
	upstream Upstream
	metrics  *Metrics

	startTime time.Time
}

// NewServer creates the proxy server. The upstream is injected so tests can
// substitute a fake vendor.
func NewServer(cfg *config.Config, logger *slog.Logger, upstream Upstream, reg *prometheus.Registry) *Server {
	s := &Server{
		logger:    logger,
		cfg:       cfg,
		upstream:  upstream,
		metrics:   NewMetrics(reg),
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/transcribe", s.withMetrics("/api/transcribe", s.handleTranscribe))
	mux.HandleFunc("/healthz", s.withMetrics("/healthz", s.handleHealth))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the routing mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the server until ListenAndServe fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting transcription proxy",
		slog.String("address", s.server.Addr),
	)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping transcription proxy")
	return s.server.Shutdown(ctx)
}

// withMetrics wraps a handler with request metrics collection.
func (s *Server) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		s.metrics.RecordHTTPRequest(r.Method, endpoint, fmt.Sprintf("%d", ww.statusCode), duration)
		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			s.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeError emits a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleTranscribe implements POST /api/transcribe. The whole request body
// is the audio payload; the Content-Type header carries its format.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := s.logger.With(slog.String("request_id", requestID))

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	mime := r.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/wav"
	}

	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.HTTP.MaxBodySize))
	if err != nil {
		logger.Warn("failed to read request body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "Failed to read audio data")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "Request body is empty")
		return
	}

	logger.Info("transcription request",
		slog.String("content_type", mime),
		slog.Int("audio_bytes", len(audio)),
	)

	startTime := time.Now()
	body, err := s.upstream.Transcribe(r.Context(), audio, mime)
	duration := time.Since(startTime).Seconds()
	if err != nil {
		s.metrics.RecordUpstreamFailure(duration)
		logger.Error("upstream transcription failed",
			slog.String("error", err.Error()),
			slog.Float64("duration_seconds", duration),
		)
		writeError(w, http.StatusBadGateway, "Transcription failed")
		return
	}

	s.metrics.RecordUpstreamSuccess(duration, len(audio))
	logger.Info("transcription complete",
		slog.Float64("duration_seconds", duration),
		slog.Int("response_bytes", len(body)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// handleHealth implements GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startTime).String(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
