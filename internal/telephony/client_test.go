package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStartRecordingPostsFormWithCallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Accounts/AC123/Calls/CA456/Recordings.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("RecordingChannels"); got != "dual" {
			t.Errorf("RecordingChannels = %q", got)
		}
		if got := r.PostForm.Get("RecordingStatusCallback"); got != "https://bot.example.com/recording-status" {
			t.Errorf("RecordingStatusCallback = %q", got)
		}
		if got := r.PostForm.Get("RecordingStatusCallbackMethod"); got != "POST" {
			t.Errorf("RecordingStatusCallbackMethod = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"RE789","call_sid":"CA456","status":"in-progress"}`))
	}))
	defer ts.Close()

	c, err := NewClient(ClientConfig{
		AccountSID:        "AC123",
		AuthToken:         "secret",
		BaseURL:           ts.URL,
		RecordingChannels: "dual",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	rec, err := c.StartRecording(context.Background(), "CA456", "https://bot.example.com/recording-status")
	if err != nil {
		t.Fatalf("StartRecording() error = %v", err)
	}
	if rec.SID != "RE789" || rec.CallSID != "CA456" {
		t.Fatalf("recording = %+v", rec)
	}
}

func TestStartRecordingDecodesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21220,"message":"Call is not in-progress","status":400}`))
	}))
	defer ts.Close()

	c, err := NewClient(ClientConfig{AccountSID: "AC123", AuthToken: "secret", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.StartRecording(context.Background(), "CA456", "")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Code != 21220 {
		t.Fatalf("Code = %d, want 21220", apiErr.Code)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(ClientConfig{AuthToken: "secret"}); err == nil {
		t.Fatalf("NewClient() without account SID should fail")
	}
	if _, err := NewClient(ClientConfig{AccountSID: "AC123"}); err == nil {
		t.Fatalf("NewClient() without auth token should fail")
	}
}

func TestStartRecordingRequiresCallSID(t *testing.T) {
	c, err := NewClient(ClientConfig{AccountSID: "AC123", AuthToken: "secret"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := c.StartRecording(context.Background(), "", ""); err == nil {
		t.Fatalf("StartRecording() without call SID should fail")
	}
}
