package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Binance USDT-M futures API
	BaseURL   string
	APIKey    string
	SecretKey string

	// Signed-request receive window in ms (0 omits the parameter).
	RecvWindow int

	// Per-request timeout.
	RequestTimeout time.Duration

	// TradingLimitsPath points to an optional yaml file overriding the
	// built-in validation limits.
	TradingLimitsPath string

	// JournalPath is the sqlite order journal ("" disables it).
	JournalPath string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BaseURL:   envStr("BINANCE_TESTNET_URL", "https://testnet.binancefuture.com"),
		APIKey:    envStr("BINANCE_API_KEY", ""),
		SecretKey: envStr("BINANCE_SECRET_KEY", ""),

		RecvWindow:     envInt("BINANCE_RECV_WINDOW", 5000),
		RequestTimeout: time.Duration(envInt("BINANCE_TIMEOUT_SEC", 30)) * time.Second,

		TradingLimitsPath: envStr("TRADING_LIMITS_PATH", ""),
		JournalPath:       envStr("ORDER_JOURNAL_PATH", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
