package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Scheduling
	ShowInterval    time.Duration // wall-clock interval between show cycles
	PostingInterval time.Duration // delay between consecutive part uploads

	// Groq (OpenAI-compatible API, used for the script LLM and Whisper)
	GroqAPIKey       string
	GroqBaseURL      string
	GroqLLMModel     string
	GroqWhisperModel string

	// Gemini (alternative script backend, used when the key is set)
	GeminiKey   string
	GeminiModel string

	// ElevenLabs (TTS)
	ElevenLabsKey string

	// Facebook (publishing destination; empty = skip posting, still reclaim disk)
	FacebookPageID      string
	FacebookAccessToken string

	// Database (optional episode-history store; empty = disabled)
	DatabaseURL string

	// Status API (optional)
	APIEnabled         bool
	APIPort            string
	BackendAPIKey      string
	CorsAllowedOrigins string

	// Paths
	TempDir            string
	DataDir            string
	CharactersJSONPath string

	// Media
	BackgroundVideoURL string
	BackgroundMusicURL string
	PartDuration       time.Duration

	// Show length bounds passed to the script prompt, in minutes
	MinShowMinutes int
	MaxShowMinutes int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		ShowInterval:    time.Duration(getEnvInt("SHOW_INTERVAL_SECONDS", 11400)) * time.Second,
		PostingInterval: time.Duration(getEnvInt("POSTING_INTERVAL_SECONDS", 600)) * time.Second,

		GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:      getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqLLMModel:     getEnv("GROQ_LLM_MODEL", "llama-3.3-70b-versatile"),
		GroqWhisperModel: getEnv("GROQ_WHISPER_MODEL", "whisper-large-v3"),

		GeminiKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		ElevenLabsKey: getEnv("ELEVENLABS_API_KEY", ""),

		FacebookPageID:      getEnv("FACEBOOK_PAGE_ID", ""),
		FacebookAccessToken: getEnv("FACEBOOK_ACCESS_TOKEN", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		APIEnabled:         getEnvBool("API_ENABLED", false),
		APIPort:            getEnv("API_PORT", "8080"),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		TempDir: getEnv("TEMP_DIR", "temp"),
		DataDir: getEnv("DATA_DIR", "data"),

		BackgroundVideoURL: getEnv("BACKGROUND_VIDEO_URL", ""),
		BackgroundMusicURL: getEnv("BACKGROUND_MUSIC_URL", ""),
		PartDuration:       time.Duration(getEnvInt("PART_DURATION_SECONDS", 150)) * time.Second,

		MinShowMinutes: getEnvInt("MIN_SHOW_DURATION_MINUTES", 8),
		MaxShowMinutes: getEnvInt("MAX_SHOW_DURATION_MINUTES", 12),
	}

	cfg.CharactersJSONPath = getEnv("CHARACTERS_JSON_PATH", filepath.Join(cfg.DataDir, "characters.json"))

	// Validate required fields
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}

	if cfg.ElevenLabsKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is required for TTS")
	}

	if cfg.BackgroundVideoURL == "" || cfg.BackgroundMusicURL == "" {
		return nil, fmt.Errorf("BACKGROUND_VIDEO_URL and BACKGROUND_MUSIC_URL are required")
	}

	if cfg.PartDuration <= 0 {
		return nil, fmt.Errorf("PART_DURATION_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
