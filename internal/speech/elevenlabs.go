// Package speech synthesizes reply text into playable audio via the
// ElevenLabs HTTP API. Playback happens through a cached URL, so the
// whole clip is fetched in one request rather than streamed.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxClipBytes = 16 << 20

// ElevenLabsConfig configures the synthesizer.
type ElevenLabsConfig struct {
	APIKey       string
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Timeout      time.Duration
}

// ElevenLabsSynthesizer converts text to MP3 audio.
type ElevenLabsSynthesizer struct {
	cfg        ElevenLabsConfig
	httpClient *http.Client
}

func NewElevenLabsSynthesizer(cfg ElevenLabsConfig) *ElevenLabsSynthesizer {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if strings.TrimSpace(cfg.OutputFormat) == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ElevenLabsSynthesizer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize returns the spoken clip for text, or an error the caller
// maps to the provider's native text-to-speech fallback.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("speech: empty text")
	}
	if strings.TrimSpace(s.cfg.VoiceID) == "" {
		return nil, errors.New("speech: voice id is required")
	}

	body, err := json.Marshal(synthesisRequest{Text: text, ModelID: s.cfg.ModelID})
	if err != nil {
		return nil, fmt.Errorf("speech: marshal request: %w", err)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") +
		"/v1/text-to-speech/" + url.PathEscape(s.cfg.VoiceID) +
		"?output_format=" + url.QueryEscape(s.cfg.OutputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("speech: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("speech: elevenlabs status %d: %s", res.StatusCode, string(detail))
	}

	audio, err := io.ReadAll(io.LimitReader(res.Body, maxClipBytes))
	if err != nil {
		return nil, fmt.Errorf("speech: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("speech: empty audio payload")
	}
	return audio, nil
}
