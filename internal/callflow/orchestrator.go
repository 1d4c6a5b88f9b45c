// Package callflow drives one conversational turn per inbound telephony
// webhook: greeting on the initial call event, then a reply loop on each
// speech result.
package callflow

import (
	"context"
	"log"
	"time"

	"github.com/antoniostano/frontdesk/internal/archive"
	"github.com/antoniostano/frontdesk/internal/observability"
	"github.com/antoniostano/frontdesk/internal/phrases"
	"github.com/antoniostano/frontdesk/internal/telephony"
)

// Replier produces the assistant reply for an utterance. It never fails;
// vendor errors surface as pre-authored fallback text.
type Replier interface {
	Reply(ctx context.Context, callSID, utterance string) string
}

// Synthesizer converts text to playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Recorder starts call recording on the provider side.
type Recorder interface {
	StartRecording(ctx context.Context, callSID, statusCallbackURL string) (*telephony.Recording, error)
}

// AudioCache stores synthesized clips for the playback fetch.
type AudioCache interface {
	Put(audio []byte) string
}

// Config carries the orchestrator's fixed turn parameters.
type Config struct {
	Greeting             string
	GatherTimeoutSeconds int
	SpeechAction         string
	RecordingEnabled     bool
}

// Orchestrator emits the voice-response document for each webhook.
type Orchestrator struct {
	cfg      Config
	replier  Replier
	synth    Synthesizer
	recorder Recorder
	cache    AudioCache
	archiver archive.Store
	picker   phrases.Picker
	metrics  *observability.Metrics
}

func New(cfg Config, replier Replier, synth Synthesizer, recorder Recorder, cache AudioCache, archiver archive.Store, picker phrases.Picker, metrics *observability.Metrics) *Orchestrator {
	if cfg.GatherTimeoutSeconds <= 0 {
		cfg.GatherTimeoutSeconds = 10
	}
	if cfg.SpeechAction == "" {
		cfg.SpeechAction = "/process-speech"
	}
	if picker == nil {
		picker = phrases.RandomPicker{}
	}
	return &Orchestrator{
		cfg:      cfg,
		replier:  replier,
		synth:    synth,
		recorder: recorder,
		cache:    cache,
		archiver: archiver,
		picker:   picker,
		metrics:  metrics,
	}
}

// TurnInput carries the webhook fields one turn needs. BaseURL is the
// externally reachable origin used to build audio and callback URLs.
type TurnInput struct {
	CallSID    string
	From       string
	Transcript string
	BaseURL    string
}

// StartTurn answers the initial inbound-call event: start recording
// (best-effort), greet, collect speech, and hang up only if the caller
// never speaks.
func (o *Orchestrator) StartTurn(ctx context.Context, in TurnInput) *telephony.VoiceResponse {
	o.metrics.CallsStarted.Inc()
	log.Printf("callflow: inbound call %s from %s", in.CallSID, in.From)

	if o.cfg.RecordingEnabled && o.recorder != nil && in.CallSID != "" {
		rec, err := o.recorder.StartRecording(ctx, in.CallSID, in.BaseURL+"/recording-status")
		if err != nil {
			// Recording is independent of the main flow; the call continues.
			log.Printf("callflow: failed to start recording for call %s: %v", in.CallSID, err)
			o.metrics.ProviderErrors.WithLabelValues("twilio", "recording_start").Inc()
		} else {
			log.Printf("callflow: recording %s started for call %s", rec.SID, in.CallSID)
		}
	}

	doc := telephony.NewVoiceResponse()
	o.speakOrSay(ctx, doc, in.BaseURL, o.cfg.Greeting, o.cfg.Greeting)
	doc.GatherSpeech(o.cfg.SpeechAction, o.cfg.GatherTimeoutSeconds)
	// Reached only when no speech was ever detected.
	doc.Hangup()

	o.metrics.TurnEvents.WithLabelValues("greeting").Inc()
	return doc
}

// SpeechTurn answers a speech-result event and re-issues speech
// collection, perpetuating the loop. The call is never hung up here.
func (o *Orchestrator) SpeechTurn(ctx context.Context, in TurnInput) *telephony.VoiceResponse {
	doc := telephony.NewVoiceResponse()

	if in.Transcript == "" {
		o.metrics.TurnEvents.WithLabelValues("speech_missing").Inc()
		doc.Say(phrases.Choose(o.picker, phrases.SpeechMissing))
		doc.GatherSpeech(o.cfg.SpeechAction, o.cfg.GatherTimeoutSeconds)
		return doc
	}

	log.Printf("callflow: call %s speech: %q", in.CallSID, in.Transcript)
	o.metrics.TurnEvents.WithLabelValues("speech").Inc()

	replyStart := time.Now()
	replyText := o.replier.Reply(ctx, in.CallSID, in.Transcript)
	o.metrics.ObserveReplyLatency(time.Since(replyStart))

	o.archiveTurn(ctx, in, "user", in.Transcript)
	o.archiveTurn(ctx, in, "assistant", replyText)

	// Reply text already falls back inside the generator, so the only
	// remaining failure mode here is synthesis.
	o.speakOrSay(ctx, doc, in.BaseURL, replyText, phrases.Choose(o.picker, phrases.AudioFailure))
	doc.GatherSpeech(o.cfg.SpeechAction, o.cfg.GatherTimeoutSeconds)
	return doc
}

// speakOrSay plays synthesized audio for text, or falls back to the
// provider's native text-to-speech with sayText when synthesis fails.
func (o *Orchestrator) speakOrSay(ctx context.Context, doc *telephony.VoiceResponse, baseURL, text, sayText string) {
	start := time.Now()
	audio, err := o.synth.Synthesize(ctx, text)
	o.metrics.ObserveSynthesisLatency(time.Since(start))
	if err != nil {
		log.Printf("callflow: synthesis failed: %v", err)
		o.metrics.ProviderErrors.WithLabelValues("elevenlabs", "synthesis").Inc()
		doc.Say(sayText)
		return
	}

	id := o.cache.Put(audio)
	doc.Play(baseURL + "/audio/" + id)
}

func (o *Orchestrator) archiveTurn(ctx context.Context, in TurnInput, role, content string) {
	if o.archiver == nil {
		return
	}
	err := o.archiver.SaveTurn(ctx, archive.TurnRecord{
		CallSID: in.CallSID,
		From:    in.From,
		Role:    role,
		Content: content,
	})
	if err != nil {
		log.Printf("callflow: archive %s turn for call %s: %v", role, in.CallSID, err)
	}
}
