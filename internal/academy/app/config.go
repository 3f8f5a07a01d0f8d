package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AdminName  string // Required: administrator display name
	AdminPhone string // Required: administrator phone number

	ActivationCode string // Optional: manual unlock code; empty disables the path

	RemoteBackend string // Approval backend binding (airtable, sheets, supabase, none) (default: none)

	AirtableBaseURL string // Optional: Airtable API root (default: https://api.airtable.com/v1)
	AirtableToken   string // Required for airtable backend
	AirtableBaseID  string // Required for airtable backend
	AirtableTable   string // Optional: table name (default: Profiles)

	SheetsScriptURL string // Required for sheets backend: deployed script URL

	SupabaseURL string // Required for supabase backend: project URL
	SupabaseKey string // Required for supabase backend: publishable API key

	JoinLinkBaseURL string        // Base URL embedded in teacher join links (default: http://localhost:8080/join)
	DatabaseFile    string        // Path to SQLite database file (default: ./academy.db)
	RemoteTimeout   time.Duration // Per-pass reconciliation deadline (default: 15s)
	SweepInterval   time.Duration // Pending-owner sweep interval (default: 10m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		AdminName:  getEnvOrDefault("ACADEMY_ADMIN_NAME", "suhaspatilsir"),
		AdminPhone: getEnvOrDefault("ACADEMY_ADMIN_PHONE", "9834252755"),

		ActivationCode: os.Getenv("ACADEMY_ACTIVATION_CODE"),

		RemoteBackend: getEnvOrDefault("ACADEMY_REMOTE_BACKEND", "none"),

		AirtableBaseURL: getEnvOrDefault("ACADEMY_AIRTABLE_BASE_URL", "https://api.airtable.com/v1"),
		AirtableToken:   os.Getenv("ACADEMY_AIRTABLE_TOKEN"),
		AirtableBaseID:  os.Getenv("ACADEMY_AIRTABLE_BASE_ID"),
		AirtableTable:   getEnvOrDefault("ACADEMY_AIRTABLE_TABLE", "Profiles"),

		SheetsScriptURL: os.Getenv("ACADEMY_SHEETS_SCRIPT_URL"),

		SupabaseURL: os.Getenv("ACADEMY_SUPABASE_URL"),
		SupabaseKey: os.Getenv("ACADEMY_SUPABASE_KEY"),

		JoinLinkBaseURL: getEnvOrDefault("ACADEMY_JOIN_LINK_BASE_URL", "http://localhost:8080/join"),
		DatabaseFile:    getEnvOrDefault("ACADEMY_DATABASE_FILE", "academy.db"),
		RemoteTimeout:   getEnvDurationOrDefault("ACADEMY_REMOTE_TIMEOUT", 15*time.Second),
		SweepInterval:   getEnvDurationOrDefault("ACADEMY_SWEEP_INTERVAL", 10*time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
