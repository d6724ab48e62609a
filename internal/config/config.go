package config

import (
	"os"
	"strings"
)

type Config struct {
	Addr        string
	StorageType string // "postgres" или "in-memory"
	DatabaseURL string
	Migrations  string
	RedisAddr   string // пусто - кэш в памяти процесса
	SessionKey  string
	Env         string // "local" или "prod"
}

func Load() Config {
	return Config{
		Addr:        getEnv("ADDR", ":8080"),
		StorageType: getEnv("STORAGE_TYPE", "in-memory"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Migrations:  getEnv("MIGRATIONS_DIR", "migrations"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		SessionKey:  getEnv("SESSION_KEY", "SESSION_KEY"),
		Env:         getEnv("APP_ENV", "local"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
