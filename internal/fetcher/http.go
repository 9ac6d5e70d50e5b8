package fetcher

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// HTTPFetcher downloads pages with plain HTTP requests via Colly.
type HTTPFetcher struct {
	collector *colly.Collector
	headers   []string
	log       zerolog.Logger
}

// HTTPFetcherConfig holds configuration for the HTTP fetcher.
type HTTPFetcherConfig struct {
	Timeout       time.Duration
	UserAgent     string
	Proxy         string
	MaxBodySize   int
	InsecureTLS   bool
	CustomHeaders []string
	Logger        zerolog.Logger
}

// NewHTTPFetcher creates a new Colly-based HTTP fetcher.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	c := colly.NewCollector(
		colly.Async(false), // concurrency is controlled by the enricher pool
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	)
	c.IgnoreRobotsTxt = true

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	c.SetRequestTimeout(timeout)

	if cfg.Proxy != "" {
		c.SetProxy(cfg.Proxy)
	}

	if cfg.MaxBodySize > 0 {
		c.MaxBodySize = cfg.MaxBodySize
	}

	// Many small company sites carry broken certificate chains.
	if cfg.InsecureTLS {
		c.WithTransport(&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	log := cfg.Logger
	if log.GetLevel() == zerolog.Disabled {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return &HTTPFetcher{
		collector: c,
		headers:   cfg.CustomHeaders,
		log:       log.With().Str("fetcher", "http").Logger(),
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*contact.Page, error) {
	start := time.Now()

	page := &contact.Page{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: "http",
		FetchedAt:   start,
	}

	if err := ctx.Err(); err != nil {
		page.Error = err.Error()
		return page, err
	}

	f.log.Info().Str("url", targetURL).Msg("Iniciando download")

	// Clone the collector for this individual fetch so callbacks don't stack
	c := f.collector.Clone()

	if len(f.headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for _, h := range f.headers {
				parts := strings.SplitN(h, ":", 2)
				if len(parts) == 2 {
					r.Headers.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
				}
			}
		})
	}

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.Body = string(r.Body)
		page.ResponseSize = len(r.Body)
		page.FinalURL = r.Request.URL.String()
		page.ContentType = r.Headers.Get("Content-Type")
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			page.StatusCode = r.StatusCode
			if r.Request != nil && r.Request.URL != nil {
				page.FinalURL = r.Request.URL.String()
			}
		}
		page.Error = err.Error()
	})

	err := c.Visit(targetURL)
	if err != nil && !strings.Contains(err.Error(), "already visited") {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		f.log.Error().Err(err).Str("url", targetURL).Msg("Falha no download")
		return page, err
	}

	c.Wait()
	page.FetchDuration = time.Since(start)

	if fetchErr != nil {
		f.log.Error().Err(fetchErr).Str("url", targetURL).Msg("Falha no download")
		return page, fetchErr
	}

	f.log.Info().Int("status", page.StatusCode).Str("url", targetURL).Msg("Download concluído")
	return page, nil
}

func (f *HTTPFetcher) Close() error {
	return nil
}
