package enricher

import "time"

// Config holds all configuration for an enrichment session.
type Config struct {
	// Processing control
	Parallelism int

	// Request options
	UserAgent     string
	Timeout       time.Duration
	MaxBodySize   int
	Proxy         string
	CustomHeaders []string
	InsecureTLS   bool

	// Fetcher selection
	FetcherMode FetcherMode

	// Internal
	BrowserTimeout time.Duration
	PageTimeout    time.Duration
}

// FetcherMode controls which fetcher to use.
type FetcherMode string

const (
	FetcherHTTP    FetcherMode = "http"
	FetcherBrowser FetcherMode = "browser"
	FetcherAuto    FetcherMode = "auto"
)

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Parallelism:    5,
		UserAgent:      "cnpj-contatos/1.0",
		Timeout:        15 * time.Second,
		MaxBodySize:    4194304, // 4MB
		FetcherMode:    FetcherHTTP,
		BrowserTimeout: 30 * time.Second,
		PageTimeout:    15 * time.Second,
	}
}
