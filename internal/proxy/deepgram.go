package proxy

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/rmarin/voznota/internal/config"
)

// Upstream sends audio to the speech-to-text vendor and returns the raw
// response body for the handler to relay.
type Upstream interface {
	Transcribe(ctx context.Context, audio []byte, mime string) ([]byte, error)
}

// deepgramClient calls the Deepgram pre-recorded audio API.
type deepgramClient struct {
	cfg  config.UpstreamConfig
	http *resty.Client
}

// NewDeepgram creates an Upstream backed by Deepgram.
func NewDeepgram(cfg config.UpstreamConfig) Upstream {
	return &deepgramClient{
		cfg:  cfg,
		http: resty.New().SetTimeout(cfg.GetTimeoutDuration()),
	}
}

// Transcribe posts raw audio bytes and returns Deepgram's JSON response
// verbatim. The response keeps the vendor's nested channels/alternatives
// shape so the caller can relay it untouched.
func (d *deepgramClient) Transcribe(ctx context.Context, audio []byte, mime string) ([]byte, error) {
	resp, err := d.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+d.cfg.APIKey).
		SetHeader("Content-Type", mime).
		SetQueryParams(map[string]string{
			"model":     d.cfg.Model,
			"language":  d.cfg.Language,
			"punctuate": "true",
		}).
		SetBody(audio).
		Post(d.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("upstream returned %s: %s", resp.Status(), resp.String())
	}
	return resp.Body(), nil
}
