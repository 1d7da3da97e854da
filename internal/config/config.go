package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries every environment-derived setting. It is built once in main
// and handed to each component, so nothing reads the environment after
// startup.
type Config struct {
	Env         string
	Port        string
	FrontendURL string

	DatabaseURL  string
	GeminiAPIKey string

	// Optional ops webhook for error / quiz-created events.
	OpsWebhookURL string

	// Optional S3-compatible archive for uploaded source documents. Uploads
	// are skipped when any of these is empty.
	ArchiveEndpoint        string
	ArchiveBucket          string
	ArchiveAccessKeyID     string
	ArchiveSecretAccessKey string
}

// Load reads .env (when present) and the process environment. A missing .env
// file is fine; a malformed one is not.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading .env file: %w", err)
		}
		log.Println("no .env file found, relying on process environment")
	}

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		OpsWebhookURL: os.Getenv("OPS_WEBHOOK_URL"),

		ArchiveEndpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
		ArchiveBucket:          os.Getenv("ARCHIVE_BUCKET"),
		ArchiveAccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
		ArchiveSecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return cfg, nil
}

// ArchiveEnabled reports whether the source-document archive is fully
// configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveEndpoint != "" && c.ArchiveBucket != "" &&
		c.ArchiveAccessKeyID != "" && c.ArchiveSecretAccessKey != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
