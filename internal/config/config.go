package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config selects the backend and carries the ambient settings. Exactly one of
// DatabaseURL (Postgres) or MongoURI (document store) must be set.
type Config struct {
	Port        string
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDB:     getEnv("MONGO_DB", "futnova"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}
	if cfg.DatabaseURL == "" && cfg.MongoURI == "" {
		return Config{}, errors.New("configura DATABASE_URL o MONGO_URI")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("configura JWT_SECRET")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
