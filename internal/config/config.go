package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         string
	DatabaseURL  string
	JWTSecret    string
	TurnDuration int // seconds
	PrerollDelay int // seconds
	TurnGrace    int // seconds
	RoundCount   int
}

func Load() Config {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    getEnv("JWT_SECRET", "default"),
		TurnDuration: getEnvInt("TURN_DURATION", 30),
		PrerollDelay: getEnvInt("PREROLL_DELAY", 3),
		TurnGrace:    getEnvInt("TURN_GRACE", 2),
		RoundCount:   getEnvInt("ROUND_COUNT", 2),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
