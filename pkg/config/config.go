package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	// APIBaseURL is the booking backend the client talks to.
	APIBaseURL string
	// WSURL is the notification socket endpoint.
	WSURL string

	HTTPTimeout time.Duration

	// Redis backs the durable session store; empty addr means in-memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Sim SimConfig
}

// SimConfig configures the dev gateway simulator.
type SimConfig struct {
	HTTPAddr  string
	JWTSecret string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	return Config{
		AppEnv:      env("APP_ENV", "dev"),
		APIBaseURL:  env("API_BASE_URL", "http://localhost:8081"),
		WSURL:       env("WS_URL", "ws://localhost:8081/ws"),
		HTTPTimeout: envDuration("HTTP_TIMEOUT", 20*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		Sim: SimConfig{
			HTTPAddr:  env("SIM_HTTP_ADDR", ":8081"),
			JWTSecret: env("SIM_JWT_SECRET", "dev-only-secret"),
		},
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return fallback
		}
		n = n*10 + int(v[i]-'0')
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
