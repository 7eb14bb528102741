package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string        // Optional: issuer claim for sessions (default: tenancy)
	SigningKeyFile string        // Optional: PKCS8 PEM Ed25519 key; generated on startup when empty
	SessionTTL     time.Duration // Optional: session lifetime (default: 168h)
	MasterKeyPath  string        // Optional: path to master key that seals MFA secrets
	DatabaseFile   string        // Optional: path to SQLite database file (default: ./tenancy.db)
	PepperFile     string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	RedisURL       string        // Optional: session denylist backend; in-memory when empty

	FrontendURL string // Base URL used in invite links (default: http://localhost:3000)
	CORSOrigin  string // Allowed browser origin (default: FrontendURL)

	SMTPHost     string // Optional: invite emails are logged when empty
	SMTPPort     int    // (default: 587)
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	Seed bool // Seed demo data into an empty database (default: false)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading a .env file if one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Issuer:         getEnvOrDefault("TENANCY_ISSUER", "tenancy"),
		SigningKeyFile: os.Getenv("TENANCY_SIGNING_KEY_FILE"),
		SessionTTL:     getEnvDurationOrDefault("TENANCY_SESSION_TTL", 7*24*time.Hour),
		MasterKeyPath:  os.Getenv("TENANCY_MASTER_KEY_PATH"),
		DatabaseFile:   getEnvOrDefault("TENANCY_DATABASE_FILE", "tenancy.db"),
		PepperFile:     getEnvOrDefault("TENANCY_PEPPER_FILE", "pepper"),
		RedisURL:       os.Getenv("REDIS_URL"),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@tenancy.local"),

		Seed: getEnvBoolOrDefault("TENANCY_SEED", false),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
	cfg.CORSOrigin = getEnvOrDefault("CORS_ORIGIN", cfg.FrontendURL)

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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
