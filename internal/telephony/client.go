// Package telephony contains the Twilio REST client and the TwiML
// document builder used to answer voice webhooks.
package telephony

import (
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

// Recording is the Twilio recording resource subset we care about.
type Recording struct {
	SID         string `json:"sid"`
	CallSID     string `json:"call_sid"`
	Status      string `json:"status"`
	Channels    int    `json:"channels"`
	DateCreated string `json:"date_created"`
}

// Error is a Twilio API error payload.
type Error struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

// ClientConfig configures the Twilio REST client.
type ClientConfig struct {
	AccountSID        string
	AuthToken         string
	BaseURL           string
	RecordingChannels string
	Timeout           time.Duration
}

// Client talks to the Twilio control API.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, errors.New("telephony: account SID is required")
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("telephony: auth token is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	if strings.TrimSpace(cfg.RecordingChannels) == "" {
		cfg.RecordingChannels = "dual"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// StartRecording begins recording the call and points completion updates
// at statusCallbackURL. Callers treat failures as non-fatal.
func (c *Client) StartRecording(ctx context.Context, callSID, statusCallbackURL string) (*Recording, error) {
	if strings.TrimSpace(callSID) == "" {
		return nil, errors.New("telephony: call SID is required")
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s/Recordings.json",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.AccountSID, callSID)

	data := url.Values{}
	data.Set("RecordingChannels", c.cfg.RecordingChannels)
	if statusCallbackURL != "" {
		data.Set("RecordingStatusCallback", statusCallbackURL)
		data.Set("RecordingStatusCallbackMethod", http.MethodPost)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("telephony: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telephony: request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("telephony: read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var apiErr Error
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("telephony: status %d: %s", res.StatusCode, string(body))
	}

	var rec Recording
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("telephony: decode recording: %w", err)
	}
	return &rec, nil
}
