package config

import (
	"os"
	"strings"
	"time"
)

// Server captures everything the API binary needs from the environment so
// main stays lean. Empty DSN/URL values select the in-memory fallbacks.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	JWTSigningKey string
	SessionTTL    time.Duration
	OTPTTL        time.Duration
}

// Client captures the client binary's view of the world.
type Client struct {
	BaseURL string
}

func FromEnv() Server {
	addr := os.Getenv("GOGGINS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("GOGGINS_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if v := os.Getenv("GOGGINS_KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("GOGGINS_POSTGRES_DSN"),
		RedisURL:      os.Getenv("GOGGINS_REDIS_URL"),
		KafkaBrokers:  brokers,
		JWTSigningKey: jwtSigningKey,
		SessionTTL:    durationFromEnv("GOGGINS_SESSION_TTL", 24*time.Hour),
		OTPTTL:        durationFromEnv("GOGGINS_OTP_TTL", 10*time.Minute),
	}
}

func ClientFromEnv() Client {
	base := os.Getenv("GOGGINS_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return Client{BaseURL: base}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
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
