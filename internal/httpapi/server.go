package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/antoniostano/frontdesk/internal/archive"
	"github.com/antoniostano/frontdesk/internal/audiocache"
	"github.com/antoniostano/frontdesk/internal/callflow"
	"github.com/antoniostano/frontdesk/internal/config"
	"github.com/antoniostano/frontdesk/internal/convstore"
	"github.com/antoniostano/frontdesk/internal/observability"
	"github.com/antoniostano/frontdesk/internal/telephony"
)

// Orchestrator answers one call turn per webhook.
type Orchestrator interface {
	StartTurn(ctx context.Context, in callflow.TurnInput) *telephony.VoiceResponse
	SpeechTurn(ctx context.Context, in callflow.TurnInput) *telephony.VoiceResponse
}

type Server struct {
	cfg           config.Config
	orchestrator  Orchestrator
	conversations *convstore.Store
	audio         *audiocache.Cache
	archiver      archive.Store
	metrics       *observability.Metrics
}

func New(cfg config.Config, orchestrator Orchestrator, conversations *convstore.Store, audio *audiocache.Cache, archiver archive.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:           cfg,
		orchestrator:  orchestrator,
		conversations: conversations,
		audio:         audio,
		archiver:      archiver,
		metrics:       metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("frontdesk voice bridge is running"))
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/voice", s.handleVoice)
	r.Post("/process-speech", s.handleProcessSpeech)
	r.Get("/audio/{audioID}", s.handleAudio)
	r.Post("/recording-status", s.handleRecordingStatus)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	callSID := strings.TrimSpace(r.PostForm.Get("CallSid"))
	if callSID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}

	doc := s.orchestrator.StartTurn(r.Context(), callflow.TurnInput{
		CallSID: callSID,
		From:    r.PostForm.Get("From"),
		BaseURL: s.baseURL(r),
	})
	s.respondTwiML(w, doc)
}

func (s *Server) handleProcessSpeech(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	callSID := strings.TrimSpace(r.PostForm.Get("CallSid"))
	if callSID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}

	doc := s.orchestrator.SpeechTurn(r.Context(), callflow.TurnInput{
		CallSID:    callSID,
		From:       r.PostForm.Get("From"),
		Transcript: strings.TrimSpace(r.PostForm.Get("SpeechResult")),
		BaseURL:    s.baseURL(r),
	})
	s.respondTwiML(w, doc)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	audioID := chi.URLParam(r, "audioID")
	audio, ok := s.audio.Get(audioID)
	if !ok {
		http.Error(w, "audio not found or expired", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(audio)
}

func (s *Server) handleRecordingStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	status := r.PostForm.Get("RecordingStatus")
	callSID := r.PostForm.Get("CallSid")
	recordingURL := r.PostForm.Get("RecordingUrl")
	duration, _ := strconv.Atoi(r.PostForm.Get("RecordingDuration"))
	channels, _ := strconv.Atoi(r.PostForm.Get("RecordingChannels"))

	log.Printf("httpapi: recording status for call %s: sid=%s status=%s duration=%ds url=%s",
		callSID, r.PostForm.Get("RecordingSid"), status, duration, recordingURL)

	if s.archiver != nil {
		err := s.archiver.SaveRecording(r.Context(), archive.RecordingRecord{
			RecordingSID:    r.PostForm.Get("RecordingSid"),
			CallSID:         callSID,
			Status:          status,
			URL:             recordingURL,
			DurationSeconds: duration,
			Channels:        channels,
		})
		if err != nil {
			log.Printf("httpapi: archive recording for call %s: %v", callSID, err)
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) respondTwiML(w http.ResponseWriter, doc *telephony.VoiceResponse) {
	s.updateGauges()

	body, err := doc.Render()
	if err != nil {
		log.Printf("httpapi: render voice response: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(body))
}

func (s *Server) updateGauges() {
	if s.conversations != nil {
		s.metrics.ActiveConversations.Set(float64(s.conversations.Len()))
	}
	if s.audio != nil {
		s.metrics.CachedAudioBlobs.Set(float64(s.audio.Len()))
	}
}

// baseURL resolves the externally reachable origin for audio and
// callback URLs: the configured public base URL when set, otherwise the
// inbound request's host with the forwarded proto respected.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL
	}
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
