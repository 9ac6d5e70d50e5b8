package fetcher

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// BrowserFetcher renders JavaScript-heavy pages in headless Chrome via Rod.
type BrowserFetcher struct {
	browser     *rod.Browser
	timeout     time.Duration
	pageTimeout time.Duration
	userAgent   string
	log         zerolog.Logger
}

// BrowserFetcherConfig holds configuration for the browser fetcher.
type BrowserFetcherConfig struct {
	Timeout     time.Duration
	PageTimeout time.Duration
	UserAgent   string
	Logger      zerolog.Logger
}

// NewBrowserFetcher launches a headless browser and connects to it.
func NewBrowserFetcher(cfg BrowserFetcherConfig) (*BrowserFetcher, error) {
	u, err := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	pageTimeout := cfg.PageTimeout
	if pageTimeout == 0 {
		pageTimeout = 15 * time.Second
	}

	log := cfg.Logger
	if log.GetLevel() == zerolog.Disabled {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return &BrowserFetcher{
		browser:     browser,
		timeout:     timeout,
		pageTimeout: pageTimeout,
		userAgent:   cfg.UserAgent,
		log:         log.With().Str("fetcher", "browser").Logger(),
	}, nil
}

func (f *BrowserFetcher) Name() string { return "browser" }

func (f *BrowserFetcher) Fetch(ctx context.Context, targetURL string) (*contact.Page, error) {
	start := time.Now()

	page := &contact.Page{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: "browser",
		FetchedAt:   start,
	}

	if err := ctx.Err(); err != nil {
		page.Error = err.Error()
		return page, err
	}

	f.log.Info().Str("url", targetURL).Msg("Iniciando download")

	rodPage, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		f.log.Error().Err(err).Str("url", targetURL).Msg("Falha no download")
		return page, err
	}
	defer rodPage.Close()

	rodPage = rodPage.Context(ctx).Timeout(f.timeout)

	if f.userAgent != "" {
		_ = rodPage.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: f.userAgent,
		})
	}

	if err := rodPage.Navigate(targetURL); err != nil {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		f.log.Error().Err(err).Str("url", targetURL).Msg("Falha no download")
		return page, err
	}

	// Wait for dynamic content to settle
	if err := rodPage.WaitStable(f.pageTimeout); err != nil {
		// Partial content is still usable, only note it
		if !strings.Contains(err.Error(), "context canceled") {
			page.Error = "página não estabilizou: " + err.Error()
		}
	}

	if info, err := rodPage.Info(); err == nil {
		page.FinalURL = info.URL
	}

	html, err := rodPage.HTML()
	if err != nil {
		page.Error = err.Error()
		page.FetchDuration = time.Since(start)
		f.log.Error().Err(err).Str("url", targetURL).Msg("Falha no download")
		return page, err
	}

	page.StatusCode = 200 // navigation succeeded
	page.Body = html
	page.ResponseSize = len(html)
	page.ContentType = "text/html"
	page.FetchDuration = time.Since(start)

	f.log.Info().Int("status", page.StatusCode).Str("url", targetURL).Msg("Download concluído")
	return page, nil
}

func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}
