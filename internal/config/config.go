package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultPersonaPrompt = "You are Saeed, a warm and experienced hotel concierge with over 15 years in luxury hospitality. " +
	"You have a genuine passion for making guests feel special and creating memorable experiences. " +
	"Your personality: warm and approachable, knowledgeable but never condescending, proactive in anticipating needs, " +
	"and you speak with the natural rhythm of someone who truly cares about guest satisfaction. " +
	"For room service: you have encyclopedic knowledge of our menu, can make thoughtful recommendations based on dietary " +
	"preferences and occasions, and always mention preparation times naturally in conversation. " +
	"For concierge services: you are a local expert who knows the best hidden gems, can arrange special experiences, " +
	"and treat every request as an opportunity to delight. " +
	"Ask clarifying questions naturally, offer alternatives when appropriate, and show genuine enthusiasm for helping. " +
	"Never sound scripted or robotic - respond as a trusted friend who happens to work in hospitality."

const defaultGreeting = "Hello, this is Saeed, your Room Service and Concierge Specialist. How may I assist you today?"

// Config contains all runtime settings for the voice bridge.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// PublicBaseURL overrides the host derived from inbound requests when
	// building audio retrieval and status callback URLs.
	PublicBaseURL string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioAPIBaseURL     string
	TwilioTimeout        time.Duration
	CallRecordingEnabled bool
	RecordingChannels    string

	XAIAPIKey      string
	XAIBaseURL     string
	XAIModel       string
	XAIMaxTokens   int
	XAITemperature float64
	XAITimeout     time.Duration

	ElevenLabsAPIKey       string
	ElevenLabsBaseURL      string
	ElevenLabsVoiceID      string
	ElevenLabsModelID      string
	ElevenLabsOutputFormat string
	ElevenLabsTimeout      time.Duration

	ConversationTTL      time.Duration
	MaxHistoryTurns      int
	AudioCacheTTL        time.Duration
	GatherTimeoutSeconds int
	JanitorInterval      time.Duration

	PersonaPrompt string
	Greeting      string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "frontdesk"),
		PublicBaseURL:    strings.TrimRight(stringsTrimSpace("PUBLIC_BASE_URL"), "/"),

		TwilioAccountSID:     stringsTrimSpace("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      stringsTrimSpace("TWILIO_AUTH_TOKEN"),
		TwilioAPIBaseURL:     envOrDefault("TWILIO_API_BASE_URL", "https://api.twilio.com/2010-04-01"),
		CallRecordingEnabled: true,
		// Record both sides of the conversation.
		RecordingChannels: envOrDefault("RECORDING_CHANNELS", "dual"),

		XAIAPIKey:      stringsTrimSpace("XAI_API_KEY"),
		XAIBaseURL:     envOrDefault("XAI_BASE_URL", "https://api.x.ai/v1"),
		XAIModel:       envOrDefault("XAI_MODEL", "grok-3"),
		XAIMaxTokens:   150,
		XAITemperature: 0.7,

		ElevenLabsAPIKey:  stringsTrimSpace("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: envOrDefault("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		// Default to a warm male premade voice for the concierge persona.
		ElevenLabsVoiceID:      envOrDefault("ELEVENLABS_VOICE_ID", "onwK4e9ZLuTAKqWW03F9"),
		ElevenLabsModelID:      envOrDefault("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		ElevenLabsOutputFormat: envOrDefault("ELEVENLABS_OUTPUT_FORMAT", "mp3_44100_128"),

		ConversationTTL:      30 * time.Minute,
		MaxHistoryTurns:      10,
		AudioCacheTTL:        5 * time.Minute,
		GatherTimeoutSeconds: 10,
		JanitorInterval:      time.Minute,

		PersonaPrompt: envOrDefault("PERSONA_PROMPT", defaultPersonaPrompt),
		Greeting:      envOrDefault("GREETING_TEXT", defaultGreeting),

		DatabaseURL: stringsTrimSpace("DATABASE_URL"),

		ShutdownTimeout:   15 * time.Second,
		TwilioTimeout:     10 * time.Second,
		XAITimeout:        10 * time.Second,
		ElevenLabsTimeout: 10 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ConversationTTL, err = durationFromEnv("CONVERSATION_TTL", cfg.ConversationTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.AudioCacheTTL, err = durationFromEnv("AUDIO_CACHE_TTL", cfg.AudioCacheTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.JanitorInterval, err = durationFromEnv("JANITOR_INTERVAL", cfg.JanitorInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.TwilioTimeout, err = durationFromEnv("TWILIO_TIMEOUT", cfg.TwilioTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.XAITimeout, err = durationFromEnv("XAI_TIMEOUT", cfg.XAITimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ElevenLabsTimeout, err = durationFromEnv("ELEVENLABS_TIMEOUT", cfg.ElevenLabsTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxHistoryTurns, err = intFromEnv("MAX_HISTORY_TURNS", cfg.MaxHistoryTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.XAIMaxTokens, err = intFromEnv("XAI_MAX_TOKENS", cfg.XAIMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.GatherTimeoutSeconds, err = intFromEnv("GATHER_TIMEOUT_SECONDS", cfg.GatherTimeoutSeconds)
	if err != nil {
		return Config{}, err
	}
	cfg.XAITemperature, err = floatFromEnv("XAI_TEMPERATURE", cfg.XAITemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.CallRecordingEnabled, err = boolFromEnv("CALL_RECORDING_ENABLED", cfg.CallRecordingEnabled)
	if err != nil {
		return Config{}, err
	}

	if cfg.ConversationTTL < time.Minute {
		return Config{}, fmt.Errorf("CONVERSATION_TTL must be at least 1m")
	}
	if cfg.AudioCacheTTL < 10*time.Second {
		return Config{}, fmt.Errorf("AUDIO_CACHE_TTL must be at least 10s")
	}
	if cfg.MaxHistoryTurns <= 0 {
		return Config{}, fmt.Errorf("MAX_HISTORY_TURNS must be positive")
	}
	if cfg.XAIMaxTokens <= 0 {
		return Config{}, fmt.Errorf("XAI_MAX_TOKENS must be positive")
	}
	if cfg.XAITemperature < 0 || cfg.XAITemperature > 2 {
		return Config{}, fmt.Errorf("XAI_TEMPERATURE must be in [0, 2]")
	}
	if cfg.GatherTimeoutSeconds < 1 {
		return Config{}, fmt.Errorf("GATHER_TIMEOUT_SECONDS must be at least 1")
	}
	if cfg.RecordingChannels != "mono" && cfg.RecordingChannels != "dual" {
		return Config{}, fmt.Errorf("RECORDING_CHANNELS must be mono or dual")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
