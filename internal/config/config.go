package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Upstream completion API
	APIKey             string
	BaseURL            string
	RequestTimeoutSecs int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  getEnvOrDefault("ENV", "development"),
		// Not required at startup: a missing key surfaces as a 500 on
		// the chat route instead of a crash loop.
		APIKey:             getEnvOrDefault("AIML_API_KEY", ""),
		BaseURL:            getEnvOrDefault("AIML_BASE_URL", "https://api.aimlapi.com"),
		RequestTimeoutSecs: getEnvAsIntOrDefault("REQUEST_TIMEOUT_SECONDS", 30),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
