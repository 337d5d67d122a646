package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RedisAddr              string
	UseRedisNotifier       bool
	SessionFile            string
	JWTSecret              string
	SessionTTLHours        int
	InitTimeoutSeconds     int
	ToastSeconds           int
	RateLimit              int
	ShutdownTimeoutSeconds int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "choremate.db"),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		UseRedisNotifier:       getEnvAsBool("USE_REDIS_NOTIFIER", false),
		SessionFile:            getEnv("SESSION_FILE", ".choremate-session"),
		JWTSecret:              getEnv("JWT_SECRET", "dev-only-secret"),
		SessionTTLHours:        getEnvAsInt("SESSION_TTL_HOURS", 24),
		InitTimeoutSeconds:     getEnvAsInt("INIT_TIMEOUT_SECONDS", 1),
		ToastSeconds:           getEnvAsInt("TOAST_SECONDS", 3),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must not be empty")
	}
	if cfg.SessionTTLHours <= 0 {
		log.Fatal("SESSION_TTL_HOURS must be greater than 0")
	}
	if cfg.InitTimeoutSeconds <= 0 {
		log.Fatal("INIT_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.ToastSeconds <= 0 {
		log.Fatal("TOAST_SECONDS must be greater than 0")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("invalid boolean value for %s", key)
		}
		return b
	}
	return defaultVal
}
