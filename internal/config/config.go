package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Speech   SpeechConfig
	Web      WebSearchConfig
	Cache    CacheConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	Version            string
	LogFilePath        string
	VoiceLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	AudioDir           string
	AudioRetention     time.Duration
	CleanupSchedule    string // cron spec
	IndexTopic         string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string
	LLMBaseURL        string
	EmbeddingProvider string // "ollama" or "openai"
	EmbeddingModel    string
	EmbeddingDims     int
	OllamaBaseURL     string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	RetrievalK        int
	EnrichCatalog     bool // fill missing category/brand/material with the LLM
}

type SpeechConfig struct {
	TTSModel string
	TTSVoice string
	ASRModel string
	Language string
}

type WebSearchConfig struct {
	// SearchURL contains one %s for the escaped query. Empty means the stub retriever.
	SearchURL        string
	ItemSelector     string
	TitleSelector    string
	PriceSelector    string
	LinkSelector     string
	BrandSelector    string
	MaterialSelector string
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			VoiceLogFilePath:   getEnv("VOICE_LOG_FILE_PATH", "logs/voice.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			AudioDir:           getEnv("AUDIO_DIR", "audio_output"),
			AudioRetention:     getEnvAsDuration("AUDIO_RETENTION", 24*time.Hour),
			CleanupSchedule:    getEnv("AUDIO_CLEANUP_SCHEDULE", "@hourly"),
			IndexTopic:         getEnv("CATALOG_INDEX_TOPIC", "CATALOG_INDEX_PRODUCT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "qwen2.5:7b"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDims:     getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			RetrievalK:        getEnvAsInt("RETRIEVAL_K", 5),
			EnrichCatalog:     getEnvAsBool("CATALOG_ENRICH", true),
		},
		Speech: SpeechConfig{
			TTSModel: getEnv("TTS_MODEL", "tts-1"),
			TTSVoice: getEnv("TTS_VOICE", "alloy"),
			ASRModel: getEnv("ASR_MODEL", "whisper-1"),
			Language: getEnv("ASR_LANGUAGE", "en"),
		},
		Web: WebSearchConfig{
			SearchURL:        getEnv("WEB_SEARCH_URL", ""),
			ItemSelector:     getEnv("WEB_SEARCH_ITEM_SELECTOR", "[data-product]"),
			TitleSelector:    getEnv("WEB_SEARCH_TITLE_SELECTOR", "[data-title]"),
			PriceSelector:    getEnv("WEB_SEARCH_PRICE_SELECTOR", "[data-price]"),
			LinkSelector:     getEnv("WEB_SEARCH_LINK_SELECTOR", "a[href]"),
			BrandSelector:    getEnv("WEB_SEARCH_BRAND_SELECTOR", "[data-brand]"),
			MaterialSelector: getEnv("WEB_SEARCH_MATERIAL_SELECTOR", "[data-material]"),
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("ANSWER_CACHE_ENABLED", false),
			TTL:     getEnvAsDuration("ANSWER_CACHE_TTL", 10*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
