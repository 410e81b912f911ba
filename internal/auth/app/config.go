package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer  string // Issuer claim for session tokens (default: payday-auth)
	AppName string // Branding for TOTP provisioning and email (default: Payday)

	SigningKeyFile string // Optional: path to Ed25519 PKCS8 PEM; empty means ephemeral keys
	DatabaseFile   string // Path to SQLite database file (default: ./auth.db)
	PepperFile     string // Path to file containing pepper for password hashing (default: ./pepper)

	SessionTTL    time.Duration // Session token lifetime (default: 12h)
	TicketTTL     time.Duration // Login ticket lifetime (default: 5m)
	EmailCodeTTL  time.Duration // Email one-time code lifetime (default: 10m)
	EnrollmentTTL time.Duration // Pending TOTP setup window (default: 15m)

	SMTPHost     string // SMTP relay host; empty means codes are logged (dev)
	SMTPPort     int    // SMTP relay port (default: 587)
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string // From address (defaults to SMTPUser)

	SeedEmail    string // Optional: dev account to create on an empty database
	SeedPassword string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-row sweep interval (default: 15m)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:  getEnvOrDefault("AUTH_ISSUER", "payday-auth"),
		AppName: getEnvOrDefault("AUTH_APP_NAME", "Payday"),

		SigningKeyFile: os.Getenv("AUTH_SIGNING_KEY_FILE"), // Optional: ephemeral when unset
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		SessionTTL:    getEnvDurationOrDefault("AUTH_SESSION_TTL", 12*time.Hour),
		TicketTTL:     getEnvDurationOrDefault("AUTH_TICKET_TTL", 5*time.Minute),
		EmailCodeTTL:  getEnvDurationOrDefault("AUTH_EMAIL_CODE_TTL", 10*time.Minute),
		EnrollmentTTL: getEnvDurationOrDefault("AUTH_ENROLLMENT_TTL", 15*time.Minute),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		SeedEmail:    os.Getenv("AUTH_SEED_EMAIL"),
		SeedPassword: os.Getenv("AUTH_SEED_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Duration string first (e.g. "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are treated as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
