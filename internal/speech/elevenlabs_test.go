package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSynthesizeSendsVoiceAndFormat(t *testing.T) {
	mp3 := []byte{0xff, 0xf3, 0x44, 0x00}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text-to-speech/voice-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("output_format"); got != "mp3_44100_128" {
			t.Errorf("output_format = %q", got)
		}
		if got := r.Header.Get("xi-api-key"); got != "el-key" {
			t.Errorf("xi-api-key = %q", got)
		}
		var req synthesisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "hello caller" || req.ModelID != "eleven_multilingual_v2" {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(mp3)
	}))
	defer ts.Close()

	s := NewElevenLabsSynthesizer(ElevenLabsConfig{
		APIKey:  "el-key",
		BaseURL: ts.URL,
		VoiceID: "voice-1",
	})

	audio, err := s.Synthesize(context.Background(), "hello caller")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(audio, mp3) {
		t.Fatalf("Synthesize() = %v, want %v", audio, mp3)
	}
}

func TestSynthesizeNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	s := NewElevenLabsSynthesizer(ElevenLabsConfig{APIKey: "k", BaseURL: ts.URL, VoiceID: "v"})
	if _, err := s.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatalf("Synthesize() should fail on 401")
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	s := NewElevenLabsSynthesizer(ElevenLabsConfig{APIKey: "k", VoiceID: "v"})
	if _, err := s.Synthesize(context.Background(), "   "); err == nil {
		t.Fatalf("Synthesize() should reject empty text")
	}
}

func TestSynthesizeRejectsEmptyAudio(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	s := NewElevenLabsSynthesizer(ElevenLabsConfig{APIKey: "k", BaseURL: ts.URL, VoiceID: "v"})
	if _, err := s.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatalf("Synthesize() should reject an empty audio payload")
	}
}
