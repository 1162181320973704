package config

import (
	"os"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	DatabaseURL string
	TablePrefix string
	// Provider configuration
	GeminiAPIKey        string
	GeminiModel         string
	OpenAICompatBaseURL string
	OpenAICompatModel   string
	SelfHostedBaseURL   string
	SelfHostedModel     string
	HFBaseURL           string
	HFModelID           string
	HFAPIKey            string
	DefaultProvider     string
	// Store configuration
	StoreStepDelay time.Duration
	// Logging
	LogDir string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		// Provider configuration. API_KEY is the hosted Gemini credential.
		GeminiAPIKey:        getEnv("API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAICompatBaseURL: getEnv("OPENAI_COMPAT_BASE_URL", ""),
		OpenAICompatModel:   getEnv("OPENAI_COMPAT_MODEL", ""),
		SelfHostedBaseURL:   getEnv("SELF_HOSTED_BASE_URL", ""),
		SelfHostedModel:     getEnv("SELF_HOSTED_MODEL", ""),
		HFBaseURL:           getEnv("HF_BASE_URL", ""),
		HFModelID:           getEnv("HF_MODEL_ID", ""),
		HFAPIKey:            getEnv("HF_API_KEY", ""),
		DefaultProvider:     getEnv("DEFAULT_PROVIDER", "gemini"),
		StoreStepDelay:      getDuration("STORE_STEP_DELAY", 2500*time.Millisecond),
		LogDir:              getEnv("LOG_DIR", ""),
		// Debug defaults to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
