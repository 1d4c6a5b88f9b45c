package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/antoniostano/frontdesk/internal/archive"
	"github.com/antoniostano/frontdesk/internal/audiocache"
	"github.com/antoniostano/frontdesk/internal/brain"
	"github.com/antoniostano/frontdesk/internal/callflow"
	"github.com/antoniostano/frontdesk/internal/config"
	"github.com/antoniostano/frontdesk/internal/convstore"
	"github.com/antoniostano/frontdesk/internal/httpapi"
	"github.com/antoniostano/frontdesk/internal/observability"
	"github.com/antoniostano/frontdesk/internal/phrases"
	"github.com/antoniostano/frontdesk/internal/speech"
	"github.com/antoniostano/frontdesk/internal/telephony"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archiveStore, err := archive.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("archive store init failed: %v", err)
	}
	defer archiveStore.Close()

	conversations := convstore.New(cfg.ConversationTTL)
	audioCache := audiocache.New(cfg.AudioCacheTTL)

	completionClient := brain.NewClient(brain.ClientConfig{
		APIKey:      cfg.XAIAPIKey,
		BaseURL:     cfg.XAIBaseURL,
		Model:       cfg.XAIModel,
		MaxTokens:   cfg.XAIMaxTokens,
		Temperature: cfg.XAITemperature,
		Timeout:     cfg.XAITimeout,
	})
	generator := brain.NewGenerator(completionClient, conversations, phrases.RandomPicker{}, cfg.PersonaPrompt, cfg.MaxHistoryTurns)

	synthesizer := speech.NewElevenLabsSynthesizer(speech.ElevenLabsConfig{
		APIKey:       cfg.ElevenLabsAPIKey,
		BaseURL:      cfg.ElevenLabsBaseURL,
		VoiceID:      cfg.ElevenLabsVoiceID,
		ModelID:      cfg.ElevenLabsModelID,
		OutputFormat: cfg.ElevenLabsOutputFormat,
		Timeout:      cfg.ElevenLabsTimeout,
	})

	var recorder callflow.Recorder
	if cfg.CallRecordingEnabled {
		twilioClient, err := telephony.NewClient(telephony.ClientConfig{
			AccountSID:        cfg.TwilioAccountSID,
			AuthToken:         cfg.TwilioAuthToken,
			BaseURL:           cfg.TwilioAPIBaseURL,
			RecordingChannels: cfg.RecordingChannels,
			Timeout:           cfg.TwilioTimeout,
		})
		if err != nil {
			log.Printf("call recording disabled: %v", err)
		} else {
			recorder = twilioClient
		}
	}

	orchestrator := callflow.New(callflow.Config{
		Greeting:             cfg.Greeting,
		GatherTimeoutSeconds: cfg.GatherTimeoutSeconds,
		SpeechAction:         "/process-speech",
		RecordingEnabled:     recorder != nil,
	}, generator, synthesizer, recorder, audioCache, archiveStore, phrases.RandomPicker{}, metrics)

	api := httpapi.New(cfg, orchestrator, conversations, audioCache, archiveStore, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	conversations.StartJanitor(runCtx, cfg.JanitorInterval)
	audioCache.StartJanitor(runCtx, cfg.JanitorInterval)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
