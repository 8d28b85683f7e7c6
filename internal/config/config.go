package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CompensationMode controls what the instant-debit flow does when the local
// credit fails after the external authorization already went through.
type CompensationMode string

const (
	// CompensationRetry retries the local credit with backoff before escalating.
	CompensationRetry CompensationMode = "retry"
	// CompensationEscalate gives up immediately and flags the request for
	// manual reconciliation.
	CompensationEscalate CompensationMode = "escalate"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	// Balance granted to the account created at registration.
	InitialBalance decimal.Decimal

	// Instant-debit settings.
	DebinMaxAmount    decimal.Decimal
	DebinAllowedBanks []string
	BankAPIBaseURL    string
	BankAPITimeout    time.Duration

	DebinCompensation      CompensationMode
	CreditRetryMaxAttempts int
}

// Load reads configuration from the environment, falling back to development
// defaults.
func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "wallet_ledger"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		InitialBalance: getEnvDecimal("INITIAL_BALANCE", "50000"),

		DebinMaxAmount:    getEnvDecimal("DEBIN_MAX_AMOUNT", "100000"),
		DebinAllowedBanks: getEnvList("DEBIN_ALLOWED_BANKS", "galicia,santander,bbva"),
		BankAPIBaseURL:    getEnv("BANK_API_BASE_URL", "http://localhost:9090"),
		BankAPITimeout:    getEnvDuration("BANK_API_TIMEOUT", 5*time.Second),

		DebinCompensation:      compensationMode(getEnv("DEBIN_COMPENSATION", string(CompensationRetry))),
		CreditRetryMaxAttempts: getEnvInt("CREDIT_RETRY_MAX_ATTEMPTS", 3),
	}
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func compensationMode(raw string) CompensationMode {
	if CompensationMode(raw) == CompensationEscalate {
		return CompensationEscalate
	}
	return CompensationRetry
}
