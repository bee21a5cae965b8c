// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env       string
	Port      string
	PublicURL string
	LogLevel  slog.Level

	DatabaseURL   string
	MigrateOnBoot bool

	NATSURL      string
	NATSCred     string
	NATSUser     string
	NATSPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers       []string
	KafkaAlertTopic    string
	KafkaUser          string
	KafkaPassword      string
	KafkaSASLMechanism string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AdminEmail    string
	AdminPassword string

	MercadoPagoToken string
	MercadoPagoURL   string

	RTMPHost string
	RTSPHost string
}

// Load reads the environment. Call godotenv.Load first to pick up a .env
// file.
func Load() (*Config, error) {
	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		LogLevel:  parseLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL:   os.Getenv("DB_URL"),
		MigrateOnBoot: getEnvBool("DB_MIGRATE", true),

		NATSURL:      os.Getenv("NATS_URL"),
		NATSCred:     os.Getenv("NATS_CRED"),
		NATSUser:     os.Getenv("NATS_USER"),
		NATSPassword: os.Getenv("NATS_PASSWORD"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic:    getEnv("KAFKA_ALERT_TOPIC", "neighborhood-alerts"),
		KafkaUser:          os.Getenv("KAFKA_USER"),
		KafkaPassword:      os.Getenv("KAFKA_PASSWORD"),
		KafkaSASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  getEnvDuration("JWT_TTL", 5*time.Minute),
		RefreshTTL: getEnvDuration("REFRESH_TTL", 7*24*time.Hour),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		MercadoPagoToken: os.Getenv("MP_ACCESS_TOKEN"),
		MercadoPagoURL:   getEnv("MP_API_URL", "https://api.mercadopago.com"),

		RTMPHost: getEnv("RTMP_HOST", "stream.atalaia.app"),
		RTSPHost: getEnv("RTSP_HOST", "stream.atalaia.app"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DB_URL environment variable is not set")
	}
	if cfg.NATSURL == "" {
		return nil, errors.New("NATS_URL environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
