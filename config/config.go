package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment. It is
// built once in main and passed down explicitly; nothing reads os.Getenv
// after startup.
type Config struct {
	Port        string
	Env         string
	AppURL      string
	DatabaseURL string
	JWTSecret   string
	GCSBucket   string

	// Optional: Google OAuth sign-in is enabled only when both are set.
	GoogleClientID     string
	GoogleClientSecret string
}

func Load() (*Config, error) {
	// A missing .env file is fine in deployed environments where the
	// variables come from the platform.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getenv("PORT", "3000"),
		Env:         getenv("APP_ENV", "development"),
		AppURL:      getenv("APP_URL", "http://localhost:3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		GCSBucket:   os.Getenv("GCS_BUCKET_NAME"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}

	for name, val := range map[string]string{
		"DATABASE_URL":    cfg.DatabaseURL,
		"JWT_SECRET":      cfg.JWTSecret,
		"GCS_BUCKET_NAME": cfg.GCSBucket,
	} {
		if val == "" {
			return nil, fmt.Errorf("%s not set", name)
		}
	}

	return cfg, nil
}

// IsDevelopment gates diagnostics that must not reach production builds.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
