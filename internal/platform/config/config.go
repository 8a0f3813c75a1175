package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration sourced from the environment so
// main stays lean.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  string
	SMSTopic      string
	AuditTopic    string
	JWTSigningKey string

	// IdvMaxAttempts is the number of vendor-stage submissions a user may make
	// before the proofing flow locks them out.
	IdvMaxAttempts int

	// VendorBaseURL is the proofing vendor endpoint. Empty means the
	// deterministic mock vendor is used (dev and test).
	VendorBaseURL string
	VendorTimeout time.Duration

	// SessionTTL bounds how long a checkpointed proofing session survives in
	// Redis before the flow must restart.
	SessionTTL time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("IDPORT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	smsTopic := os.Getenv("SMS_TOPIC")
	if smsTopic == "" {
		smsTopic = "notifications.sms"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "audit.events"
	}

	return Server{
		Addr:           addr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		SMSTopic:       smsTopic,
		AuditTopic:     auditTopic,
		JWTSigningKey:  jwtSigningKey,
		IdvMaxAttempts: envInt("IDV_MAX_ATTEMPTS", 3),
		VendorBaseURL:  os.Getenv("VENDOR_BASE_URL"),
		VendorTimeout:  envDuration("VENDOR_TIMEOUT", 10*time.Second),
		SessionTTL:     envDuration("IDV_SESSION_TTL", 30*time.Minute),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
