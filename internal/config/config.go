package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL string
	Parallelism int
	Timeout     time.Duration
	UserAgent   string
	Fetcher     string
	OutputPath  string
	Proxy       string
	LogLevel    string
	InsecureTLS bool
}

// Load reads configuration from environment variables and applies sane
// defaults. An empty DATABASE_URL disables the Postgres store; an empty
// CONTATOS_OUTPUT leaves the export path to the file store default.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Parallelism: parseInt(getEnv("CONTATOS_PARALLELISM", "5")),
		Timeout:     parseDuration(getEnv("CONTATOS_TIMEOUT", "15s")),
		UserAgent:   getEnv("CONTATOS_USER_AGENT", "cnpj-contatos/1.0"),
		OutputPath:  os.Getenv("CONTATOS_OUTPUT"),
		Proxy:       os.Getenv("CONTATOS_PROXY"),
		LogLevel:    getEnv("CONTATOS_LOG_LEVEL", "info"),
		InsecureTLS: parseBool(getEnv("CONTATOS_INSECURE_TLS", "false")),
	}

	mode, err := parseFetcherMode(getEnv("CONTATOS_FETCHER", "http"))
	if err != nil {
		return nil, err
	}
	cfg.Fetcher = mode

	return cfg, nil
}

func parseFetcherMode(value string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(value))
	switch mode {
	case "http", "browser", "auto":
		return mode, nil
	}
	return "", fmt.Errorf("CONTATOS_FETCHER inválido: %q (use http, browser ou auto)", value)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseInt(input string) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

func parseBool(input string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return false
	}
	return b
}
