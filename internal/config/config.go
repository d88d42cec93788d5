// Package config loads Signboard configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the dashboard service.
type Config struct {
	Addr           string        // Listen address for the dashboard server
	BackendURL     string        // Base URL of the detection backend
	StaticDir      string        // Directory with dashboard assets; empty means auto-discover
	LogDir         string        // Directory for rotating log files; empty disables file logging
	TrayEnabled    bool          // Run the system tray control surface
	RequestTimeout time.Duration // Per-request timeout for backend calls

	FramePollInterval      time.Duration // How often to fetch frames while detecting
	PredictionPollInterval time.Duration // How often to fetch predictions while detecting
	StatusPollInterval     time.Duration // How often to refresh backend status

	HistoryLimit int           // Maximum retained prediction history entries
	ToastTTL     time.Duration // How long a notification stays visible
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	return &Config{
		Addr:           getEnv("SIGNBOARD_ADDR", ":8080"),
		BackendURL:     getEnv("SIGNBOARD_BACKEND_URL", "http://localhost:8000"),
		StaticDir:      getEnv("SIGNBOARD_STATIC_DIR", ""),
		LogDir:         getEnv("SIGNBOARD_LOG_DIR", ""),
		TrayEnabled:    getEnvAsBool("SIGNBOARD_TRAY", false),
		RequestTimeout: getEnvAsMillis("SIGNBOARD_REQUEST_TIMEOUT_MS", 5000),

		FramePollInterval:      getEnvAsMillis("SIGNBOARD_FRAME_POLL_MS", 100),
		PredictionPollInterval: getEnvAsMillis("SIGNBOARD_PREDICTION_POLL_MS", 500),
		StatusPollInterval:     getEnvAsMillis("SIGNBOARD_STATUS_POLL_MS", 5000),

		HistoryLimit: getEnvAsInt("SIGNBOARD_HISTORY_LIMIT", 20),
		ToastTTL:     getEnvAsMillis("SIGNBOARD_TOAST_TTL_MS", 5000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}
