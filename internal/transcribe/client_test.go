package transcribe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func vendorResponse(text string) string {
	body := map[string]any{
		"results": map[string]any{
			"channels": []any{
				map[string]any{
					"alternatives": []any{
						map[string]any{"transcript": text, "confidence": 0.98},
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestTranscribeSendsAudioAndParsesTranscript(t *testing.T) {
	var gotMIME string
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotMIME = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotLen = len(body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, vendorResponse("hola mundo"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	text, err := c.Transcribe(context.Background(), []byte("RIFFfakeaudio"), "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hola mundo" {
		t.Errorf("text = %q", text)
	}
	if gotMIME != "audio/wav" {
		t.Errorf("content type = %q", gotMIME)
	}
	if gotLen != len("RIFFfakeaudio") {
		t.Errorf("body length = %d", gotLen)
	}
}

func TestTranscribeSurfacesProxyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"error":"upstream unavailable"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Transcribe(context.Background(), []byte("audio"), "audio/wav"); err == nil {
		t.Fatal("expected an error")
	} else if got := err.Error(); got != "transcription failed: upstream unavailable" {
		t.Errorf("error = %q", got)
	}
}

func TestTranscribeRejectsEmptyAudio(t *testing.T) {
	c := NewClient("http://unused.invalid")
	if _, err := c.Transcribe(context.Background(), nil, "audio/wav"); err == nil {
		t.Error("expected an error for empty audio")
	}
}

func TestTranscribeEmptyResultShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results":{"channels":[]}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Transcribe(context.Background(), []byte("audio"), "audio/wav"); err == nil {
		t.Error("expected an error when the response carries no transcript")
	}
}
