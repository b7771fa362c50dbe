package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything main needs to wire the service
type Config struct {
	ListenAddr  string
	MetricsAddr string

	GeminiAPIKey string
	GeminiModel  string

	RatePerMinute int

	CrtShBaseURL string
	RDAPBaseURL  string

	// CollectorTimeout caps the network clients underneath the per-call
	// deadlines the service applies
	CollectorTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first as a convenience for local runs.
func Load() Config {
	_ = godotenv.Load() // silently ignore if .env is missing in prod

	return Config{
		ListenAddr:       getenv("LISTEN_ADDR", "127.0.0.1:5000"),
		MetricsAddr:      getenv("METRICS_ADDR", "127.0.0.1:9090"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		RatePerMinute:    getenvInt("RATE_PER_MINUTE", 10),
		CrtShBaseURL:     getenv("CRTSH_BASE_URL", "https://crt.sh"),
		RDAPBaseURL:      getenv("RDAP_BASE_URL", "https://rdap.org"),
		CollectorTimeout: getenvDuration("COLLECTOR_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(v); err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if out, err := time.ParseDuration(v); err == nil {
			return out
		}
	}
	return def
}
