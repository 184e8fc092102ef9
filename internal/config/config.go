package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Promo    PromoConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type DataConfig struct {
	Dir             string
	DishesFile      string
	RestaurantsFile string
}

type PromoConfig struct {
	// Paths of newline-delimited promo-code files (plain or gzipped).
	// Empty means promo codes are disabled: every code is invalid.
	Files []string
}

// Load reads configuration from environment variables. A .env file in
// the working directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is fine; env vars alone are enough.
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Data: DataConfig{
			Dir:             dataDir,
			DishesFile:      getEnv("DISHES_FILE", filepath.Join(dataDir, "dishes.csv")),
			RestaurantsFile: getEnv("RESTAURANTS_FILE", filepath.Join(dataDir, "restaurants.csv")),
		},
		Promo: PromoConfig{
			Files: getEnvAsSlice("PROMO_FILES", nil),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Data.DishesFile == "" || c.Data.RestaurantsFile == "" {
		return fmt.Errorf("dishes and restaurants file paths are required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
