package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Paths     PathsConfig
	History   HistoryConfig
	Mistral   MistralConfig
	LandingAI LandingAIConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Marker    MarkerConfig
}

// PathsConfig holds input/output directory configuration
type PathsConfig struct {
	InputDir    string
	OutputDir   string
	PricingFile string
}

// HistoryConfig holds run-history index configuration
type HistoryConfig struct {
	DBPath string
}

// MistralConfig holds Mistral OCR configuration
type MistralConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	USDPer1KPages  float64
	RequestTimeout time.Duration
}

// LandingAIConfig holds Landing AI ADE Parse configuration
type LandingAIConfig struct {
	APIKey         string
	ParseURL       string
	Model          string
	Split          string
	CreditToUSD    float64
	RequestTimeout time.Duration
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	RequestTimeout time.Duration
}

// GeminiConfig holds Vertex AI Gemini configuration
type GeminiConfig struct {
	ProjectID string
	Region    string
	Model     string
}

// MarkerConfig holds Datalab Marker API configuration
type MarkerConfig struct {
	APIKey         string
	BaseURL        string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:    getEnv("INPUT_DIR", "sample_pdfs"),
			OutputDir:   getEnv("OUTPUT_DIR", "output"),
			PricingFile: getEnv("PRICING_FILE", ""),
		},
		History: HistoryConfig{
			DBPath: getEnv("HISTORY_DB", ""),
		},
		Mistral: MistralConfig{
			APIKey:         getEnv("MISTRAL_API_KEY", ""),
			BaseURL:        getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
			Model:          getEnv("MISTRAL_OCR_MODEL", "mistral-ocr-latest"),
			USDPer1KPages:  getEnvAsFloat64("MISTRAL_USD_PER_1000_PAGES", 2),
			RequestTimeout: getEnvAsDuration("MISTRAL_TIMEOUT", 180*time.Second),
		},
		LandingAI: LandingAIConfig{
			APIKey:         getEnv("LANDING_AI_API_KEY", ""),
			ParseURL:       getEnv("LANDING_AI_PARSE_URL", "https://api.va.landing.ai/v1/ade/parse"),
			Model:          getEnv("LANDING_AI_MODEL", ""),
			Split:          getEnv("LANDING_AI_SPLIT", ""),
			CreditToUSD:    getEnvAsFloat64("LANDING_AI_CREDIT_TO_USD", 0),
			RequestTimeout: getEnvAsDuration("LANDING_AI_TIMEOUT", 180*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RequestTimeout: getEnvAsDuration("OPENAI_TIMEOUT", 180*time.Second),
		},
		Gemini: GeminiConfig{
			ProjectID: getEnv("GCP_PROJECT_ID", ""),
			Region:    getEnv("VERTEX_AI_REGION", "us-central1"),
			Model:     getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		},
		Marker: MarkerConfig{
			APIKey:         getEnv("MARKER_API_KEY", ""),
			BaseURL:        getEnv("MARKER_API_URL", "https://www.datalab.to/api/v1/marker"),
			PollInterval:   getEnvAsDuration("MARKER_POLL_INTERVAL", 2*time.Second),
			RequestTimeout: getEnvAsDuration("MARKER_TIMEOUT", 300*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
