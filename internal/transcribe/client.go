// Package transcribe sends recording bytes to the transcription proxy and
// extracts the text from the vendor's response.
package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultEndpoint assumes a local `voznota serve` instance.
const DefaultEndpoint = "http://localhost:8264/api/transcribe"

// Result is the vendor's nested transcript structure, as relayed verbatim
// by the proxy.
type Result struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcript returns the first alternative of the first channel.
func (r *Result) Transcript() (string, bool) {
	if len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return "", false
	}
	return r.Results.Channels[0].Alternatives[0].Transcript, true
}

type errorBody struct {
	Error string `json:"error"`
}

// Client posts raw audio bytes to the proxy endpoint.
type Client struct {
	endpoint string
	http     *resty.Client
}

// NewClient creates a client for the given proxy endpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http:     resty.New().SetTimeout(2 * time.Minute),
	}
}

// Transcribe sends the audio and returns the transcript text. Any network
// failure or non-2xx response comes back as an error; the caller decides
// whether to offer a retry.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("recording has no audio data")
	}
	if mime == "" {
		mime = "audio/wav"
	}

	var result Result
	var apiErr errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", mime).
		SetBody(audio).
		SetResult(&result).
		SetError(&apiErr).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	if !resp.IsSuccess() {
		if apiErr.Error != "" {
			return "", fmt.Errorf("transcription failed: %s", apiErr.Error)
		}
		return "", fmt.Errorf("transcription failed: %s", resp.Status())
	}

	text, ok := result.Transcript()
	if !ok {
		return "", fmt.Errorf("transcription response missing transcript")
	}
	return text, nil
}
