// Package speech is the client for the external text-to-speech service.
// Synthesis failures are surfaced as errors for the caller to degrade to a
// text-only reply; they are never fatal to a conversation.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/cartable/internal/gateway"
)

// maxAudioBytes caps a synthesized payload; anything larger is treated as
// a service fault.
const maxAudioBytes = 10 << 20

// Client calls an HTTP TTS service (POST {base}/api/tts) and returns the
// synthesized audio bytes. Transient failures are retried with backoff.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   *gateway.RetryPolicy
}

// NewClient creates a Client for the service at baseURL. The API key is
// optional; when set it is sent as a bearer token.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   gateway.DefaultRetryPolicy(),
	}
}

type synthesizeRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Synthesize renders the text as speech in the given language.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, Lang: lang})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	var audio []byte
	err = c.retry.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tts", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build tts request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("tts request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("tts service returned %d", resp.StatusCode)
		}

		audio, err = io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
		if err != nil {
			return fmt.Errorf("read tts response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts service returned empty audio")
	}
	return audio, nil
}
