package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Session credential signing key
	AccessTokenSecret string

	DBType         string // postgres, mysql or sqlite
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int

	// Wrap the insert/delete + counter update pair in one database transaction
	LedgerTransactional bool
	// Require a session for the per-email listing routes
	ProtectOwnerRoutes bool
	// How often stored counters are recomputed from live records; 0 disables
	ReconcileInterval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "5000"),
		Environment:         strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AccessTokenSecret:   getEnv("ACCESS_TOKEN_SECRET", "your-secret-key-change-in-production"),
		DBType:              strings.ToLower(getEnv("DB_TYPE", "postgres")),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASS", ""),
		DBName:              getEnv("DB_NAME", "recommendations"),
		DBSSLMode:           getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:      getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		LedgerTransactional: getEnvAsBool("LEDGER_TRANSACTIONAL", false),
		ProtectOwnerRoutes:  getEnvAsBool("PROTECT_OWNER_ROUTES", false),
		ReconcileInterval:   getEnvAsDuration("LEDGER_RECONCILE_INTERVAL", 0),
	}
}

// IsProduction reports whether cookies must be issued as Secure + SameSite=None.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
