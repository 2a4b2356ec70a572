// Package config provides configuration for all binaries.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration shared by the bot and the collaborator
// services.
type Config struct {
	// Server ports
	GatewayPort  int
	CurrencyPort int
	LedgerPort   int
	RolePort     int

	// Database
	DBPath string

	// Collaborator base URLs (as seen from the bot)
	CurrencyURL string
	LedgerURL   string
	RoleURL     string

	// Timeouts
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	SweepInterval  time.Duration

	// Admin chat ids seeded into the role store at startup
	AdminIDs []string
}

// Load loads configuration from the environment, reading a .env file first
// when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		GatewayPort:    getEnvInt("GATEWAY_PORT", 8080),
		CurrencyPort:   getEnvInt("CURRENCY_PORT", 5001),
		LedgerPort:     getEnvInt("LEDGER_PORT", 5002),
		RolePort:       getEnvInt("ROLE_PORT", 5003),
		DBPath:         getEnv("DB_PATH", "./data/bot.db"),
		CurrencyURL:    getEnv("CURRENCY_URL", "http://localhost:5001"),
		LedgerURL:      getEnv("LEDGER_URL", "http://localhost:5002"),
		RoleURL:        getEnv("ROLE_URL", "http://localhost:5003"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 5000)) * time.Millisecond,
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MIN", 10)) * time.Minute,
		SweepInterval:  time.Duration(getEnvInt("SWEEP_INTERVAL_SEC", 60)) * time.Second,
		AdminIDs:       splitList(getEnv("ADMIN_IDS", "")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
