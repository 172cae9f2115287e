package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bensgilbert/Collaborate/internal/models"
)

// Config holds process configuration, loaded from environment variables.
type Config struct {
	Port             string
	RedisAddr        string // empty disables the room notifier
	SendTimeout      time.Duration
	MaxDocumentBytes int
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	sendTimeoutMS, err := getEnvInt("SEND_TIMEOUT_MS", 5000)
	if err != nil {
		return nil, err
	}
	maxDocBytes, err := getEnvInt("MAX_DOCUMENT_BYTES", models.DefaultMaxDocumentBytes)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		SendTimeout:      time.Duration(sendTimeoutMS) * time.Millisecond,
		MaxDocumentBytes: maxDocBytes,
	}
	if cfg.SendTimeout <= 0 {
		return nil, fmt.Errorf("SEND_TIMEOUT_MS must be positive, got %d", sendTimeoutMS)
	}
	if cfg.MaxDocumentBytes <= 0 {
		return nil, fmt.Errorf("MAX_DOCUMENT_BYTES must be positive, got %d", maxDocBytes)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return i, nil
}
