package config

import (
	"log"
	"strconv"
	"time"

	"wardrobeapi/services"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	// Server
	Port string
	Env  string

	JWTSecret string
	LogLevel  string
	SentryDSN string

	// Storage
	StoreBackend string
	StoreCache   bool

	// Inference simulation
	InferenceDelay      time.Duration
	ConfidenceThreshold float64

	// Queue
	AsyncBrokerAddress string

	// R2 image bucket
	BucketName string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using process environment")
	}

	return &Config{
		Port:                services.GetEnv("PORT", "8083"),
		Env:                 services.GetEnv("ENV", "local"),
		JWTSecret:           services.GetEnv("JWT_SECRET", ""),
		LogLevel:            services.GetEnv("LOG_LEVEL", "info"),
		SentryDSN:           services.GetEnv("SENTRY_DSN", ""),
		StoreBackend:        services.GetEnv("STORE_BACKEND", StoreMemory),
		StoreCache:          getBoolEnv("STORE_CACHE", true),
		InferenceDelay:      time.Duration(getIntEnv("INFERENCE_DELAY_MS", 1500)) * time.Millisecond,
		ConfidenceThreshold: getFloatEnv("CONFIDENCE_THRESHOLD", 0.75),
		AsyncBrokerAddress:  services.GetEnv("ASYNC_BROKER_ADDRESS", ""),
		BucketName:          services.GetEnv("R2_BUCKET_NAME", ""),
	}
}

func getIntEnv(key string, fallback int) int {
	value, err := strconv.Atoi(services.GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getFloatEnv(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(services.GetEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getBoolEnv(key string, fallback bool) bool {
	value, err := strconv.ParseBool(services.GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
