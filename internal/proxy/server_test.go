package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rmarin/voznota/internal/config"
)

type fakeUpstream struct {
	response []byte
	err      error

	gotAudio []byte
	gotMIME  string
}

func (f *fakeUpstream) Transcribe(ctx context.Context, audio []byte, mime string) ([]byte, error) {
	f.gotAudio = audio
	f.gotMIME = mime
	return f.response, f.err
}

func newTestServer(t *testing.T, up Upstream) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Upstream.APIKey = "test"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, logger, up, prometheus.NewRegistry())
}

func TestTranscribeRelaysUpstreamResponse(t *testing.T) {
	up := &fakeUpstream{response: []byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hola"}]}]}}`)}
	srv := newTestServer(t, up)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader("RIFFaudio"))
	req.Header.Set("Content-Type", "audio/wav")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != string(up.response) {
		t.Errorf("body = %s, want verbatim upstream response", got)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if string(up.gotAudio) != "RIFFaudio" || up.gotMIME != "audio/wav" {
		t.Errorf("upstream got audio=%q mime=%q", up.gotAudio, up.gotMIME)
	}
}

func TestTranscribeRejectsNonPost(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/transcribe", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s status = %d, want 405", method, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%s body = %s, want JSON error", method, rec.Body.String())
		}
	}
}

func TestTranscribeRejectsEmptyBody(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTranscribeUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader("audio"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Errorf("body = %s, want JSON error", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeUpstream{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
}
