package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// BackendURL points at the Supabase-style data API. Ignored when
	// DatabaseURL is set, in which case products and sales are stored
	// directly in Postgres.
	BackendURL    string `envconfig:"BACKEND_URL"`
	BackendAPIKey string `envconfig:"BACKEND_API_KEY"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	AuthURL       string `envconfig:"AUTH_URL"`
	StorageURL    string `envconfig:"STORAGE_URL"`
	StorageBucket string `envconfig:"STORAGE_BUCKET" default:"product-images"`

	Port     string `envconfig:"POS_SERVICE_PORT" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL"        default:"info"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Port=%s, LogLevel=%s", config.Port, config.LogLevel)
		if config.DatabaseURL != "" {
			logger.Info("Configuration loaded: DatabaseURL is set, using Postgres store")
		} else if config.BackendURL != "" {
			logger.Infof("Configuration loaded: using REST backend at %s", config.BackendURL)
		} else {
			logger.Fatal("Configuration error: neither DATABASE_URL nor BACKEND_URL is set")
		}
	})
	return &config
}
