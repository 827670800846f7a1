package config

import (
	"os"
	"strings"
	"time"
)

type Env struct {
	AppAddr         string
	GinMode         string
	MySQLDSN        string
	JWTSecret       string
	RedisAddr       string
	LogLevel        string
	CleanupInterval time.Duration
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "super-secret-key-change-me"
	}

	interval := time.Hour
	if v := strings.TrimSpace(os.Getenv("CLEANUP_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	return Env{
		AppAddr:         appAddr,
		GinMode:         strings.TrimSpace(os.Getenv("GIN_MODE")),
		MySQLDSN:        strings.TrimSpace(os.Getenv("MYSQL_DSN")),
		JWTSecret:       secret,
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		LogLevel:        strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		CleanupInterval: interval,
	}
}
