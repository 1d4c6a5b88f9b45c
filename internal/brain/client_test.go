package brain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antoniostano/frontdesk/internal/convstore"
)

func TestCompleteSendsModelAndBoundedSampling(t *testing.T) {
	var got chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Certainly, sir."}}]}`))
	}))
	defer ts.Close()

	c := NewClient(ClientConfig{
		APIKey:      "test-key",
		BaseURL:     ts.URL,
		Model:       "grok-3",
		MaxTokens:   150,
		Temperature: 0.7,
	})

	text, err := c.Complete(context.Background(), []convstore.Turn{
		{Role: convstore.RoleSystem, Text: "persona"},
		{Role: convstore.RoleUser, Text: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "Certainly, sir." {
		t.Fatalf("Complete() = %q", text)
	}
	if got.Model != "grok-3" || got.MaxTokens != 150 || got.Temperature != 0.7 {
		t.Fatalf("request knobs = %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("request carried %d messages, want 2", len(got.Messages))
	}
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(ClientConfig{APIKey: "k", BaseURL: ts.URL})
	_, err := c.Complete(context.Background(), []convstore.Turn{{Role: convstore.RoleUser, Text: "hi"}})
	if err == nil {
		t.Fatalf("Complete() should fail on 429")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("StatusCode = %d, want 429", statusErr.StatusCode)
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	c := NewClient(ClientConfig{APIKey: "k", BaseURL: ts.URL})
	if _, err := c.Complete(context.Background(), []convstore.Turn{{Role: convstore.RoleUser, Text: "hi"}}); err == nil {
		t.Fatalf("Complete() should fail when no choices are returned")
	}
}
