package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// Exchange rate provider settings.
	ExchangeRateAPIURL     string
	ExchangeRateAPIKey     string
	ExchangeRateAPITimeout time.Duration

	// Currency all portfolio values are reported in.
	HomeCurrency string

	// How long fetched rate tables stay cached. Zero means for the
	// lifetime of the process.
	RateCacheTTL time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	apiKey := getEnv("EXCHANGE_RATE_API_KEY", "")
	if apiKey == "" {
		log.Println("WARNING: EXCHANGE_RATE_API_KEY is not set. Currency conversion will be unavailable and portfolio values will be reported without converted prices.")
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./investfolio.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		ExchangeRateAPIURL:     getEnv("EXCHANGE_RATE_API_URL", "https://v6.exchangerate-api.com/v6"),
		ExchangeRateAPIKey:     apiKey,
		ExchangeRateAPITimeout: getEnvAsDuration("EXCHANGE_RATE_API_TIMEOUT", 5*time.Second),

		HomeCurrency: getEnv("HOME_CURRENCY", "DKK"),
		RateCacheTTL: getEnvAsDuration("RATE_CACHE_TTL", 0),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, HomeCurrency=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.HomeCurrency)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
