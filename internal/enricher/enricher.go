package enricher

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cnpj-contatos/internal/extractor"
	"cnpj-contatos/internal/fetcher"
	"cnpj-contatos/pkg/contact"
)

// Enricher orchestrates the pipeline for each company: validate the CNPJ,
// download the site, extract contacts and persist the record.
type Enricher struct {
	config    *Config
	httpFetch contact.Fetcher
	browFetch contact.Fetcher
	registry  *extractor.Registry
	store     contact.Store
	log       zerolog.Logger

	// OnOutcome, when set before Run, is called for every finished
	// subject. Callbacks run on worker goroutines.
	OnOutcome func(contact.Outcome)
}

// New creates an Enricher. A nil store disables persistence; extraction
// results still come back in the outcomes.
func New(config *Config, store contact.Store, logger zerolog.Logger) *Enricher {
	if config == nil {
		config = DefaultConfig()
	}
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return &Enricher{
		config: config,
		store:  store,
		log:    logger,
	}
}

// Init builds the fetchers and extractor registry. When the browser cannot
// be launched the enricher degrades to HTTP-only instead of failing.
func (e *Enricher) Init() error {
	e.httpFetch = fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
		Timeout:       e.config.Timeout,
		UserAgent:     e.config.UserAgent,
		Proxy:         e.config.Proxy,
		MaxBodySize:   e.config.MaxBodySize,
		InsecureTLS:   e.config.InsecureTLS,
		CustomHeaders: e.config.CustomHeaders,
		Logger:        e.log,
	})

	if e.config.FetcherMode == FetcherBrowser || e.config.FetcherMode == FetcherAuto {
		bf, err := fetcher.NewBrowserFetcher(fetcher.BrowserFetcherConfig{
			Timeout:     e.config.BrowserTimeout,
			PageTimeout: e.config.PageTimeout,
			UserAgent:   e.config.UserAgent,
			Logger:      e.log,
		})
		if err != nil {
			e.log.Warn().Err(err).Msg("Navegador indisponível, usando somente HTTP")
			e.config.FetcherMode = FetcherHTTP
		} else {
			e.browFetch = bf
		}
	}

	e.registry = extractor.NewRegistry()
	e.log.Debug().Strs("extratores", e.registry.Names()).Msg("Extratores registrados")
	return nil
}

// EnrichOne runs the full pipeline for a single company.
func (e *Enricher) EnrichOne(ctx context.Context, subject contact.Subject) contact.Outcome {
	start := time.Now()
	outcome := contact.Outcome{Subject: subject}

	log := e.log.With().Str("empresa", subjectName(subject)).Logger()

	fail := func(stage string, err error) contact.Outcome {
		outcome.Stage = stage
		outcome.Err = err
		outcome.Duration = time.Since(start)
		log.Error().Err(err).Str("etapa", stage).Msg("Falha no enriquecimento")
		return outcome
	}

	cnpj, err := contact.NormalizeCNPJ(subject.CNPJ)
	if err != nil {
		return fail(contact.StageValidate, err)
	}
	if subject.URL == "" {
		return fail(contact.StageValidate, errors.New("url ausente"))
	}
	subject.CNPJ = cnpj
	outcome.Subject = subject

	log.Info().Str("cnpj", contact.FormatCNPJ(cnpj)).Str("url", subject.URL).Msg("Iniciando enriquecimento")

	page, err := e.fetch(ctx, subject.URL)
	if err != nil {
		return fail(contact.StageFetch, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return fail(contact.StageExtract, err)
	}

	log.Info().Str("url", page.FinalURL).Msg("Iniciando extração de contatos")
	findings := e.registry.ExtractAll(doc, log)
	contacts := extractor.Aggregate(findings, nil, log)

	record := &contact.Record{
		CNPJ:        cnpj,
		RazaoSocial: subject.RazaoSocial,
		Contacts:    contacts,
	}
	outcome.Record = record

	if e.store != nil {
		if err := e.store.Save(ctx, record); err != nil {
			return fail(contact.StagePersist, err)
		}
	}

	outcome.Duration = time.Since(start)
	log.Info().
		Int("telefones", len(contacts.Phones)).
		Int("emails", len(contacts.Emails)).
		Bool("whatsapp", contacts.WhatsApp != nil).
		Dur("duracao", outcome.Duration).
		Msg("Enriquecimento concluído")
	return outcome
}

// Run processes the subjects with a bounded worker pool. Cancelling the
// context stops new launches; subjects already in flight run to completion.
// One outcome is returned per processed subject.
func (e *Enricher) Run(ctx context.Context, subjects []contact.Subject) []contact.Outcome {
	runID := uuid.NewString()
	log := e.log.With().Str("execucao", runID).Logger()

	log.Info().
		Int("empresas", len(subjects)).
		Int("paralelismo", e.config.Parallelism).
		Msg("Iniciando processamento em lote")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = make([]contact.Outcome, 0, len(subjects))
	)
	sem := make(chan struct{}, e.config.Parallelism)

launch:
	for _, subject := range subjects {
		if ctx.Err() != nil {
			log.Warn().Msg("Cancelamento recebido, aguardando processamentos em andamento")
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			log.Warn().Msg("Cancelamento recebido, aguardando processamentos em andamento")
			break launch
		}

		wg.Add(1)
		go func(subject contact.Subject) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := e.EnrichOne(ctx, subject)

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()

			if e.OnOutcome != nil {
				e.OnOutcome(outcome)
			}
		}(subject)
	}

	wg.Wait()

	succeeded := 0
	for _, o := range outcomes {
		if o.OK() {
			succeeded++
		}
	}
	log.Info().
		Int("processadas", len(outcomes)).
		Int("sucessos", succeeded).
		Int("falhas", len(outcomes)-succeeded).
		Msg("Processamento em lote concluído")

	return outcomes
}

// fetch picks the fetcher for the configured mode. Auto mode retries with
// the browser when the HTTP body looks like a client-side shell.
func (e *Enricher) fetch(ctx context.Context, url string) (*contact.Page, error) {
	switch e.config.FetcherMode {
	case FetcherBrowser:
		if e.browFetch != nil {
			return e.browFetch.Fetch(ctx, url)
		}
		return e.httpFetch.Fetch(ctx, url)
	case FetcherAuto:
		page, err := e.httpFetch.Fetch(ctx, url)
		if err != nil {
			return page, err
		}
		if fetcher.LooksLikeShell(page) && e.browFetch != nil {
			e.log.Info().Str("url", url).Msg("Conteúdo renderizado via JavaScript, repetindo com navegador")
			return e.browFetch.Fetch(ctx, url)
		}
		return page, nil
	default:
		return e.httpFetch.Fetch(ctx, url)
	}
}

// Close releases the fetchers. The store is owned by the caller.
func (e *Enricher) Close() error {
	if e.httpFetch != nil {
		e.httpFetch.Close()
	}
	if e.browFetch != nil {
		return e.browFetch.Close()
	}
	return nil
}

func subjectName(subject contact.Subject) string {
	if subject.RazaoSocial != "" {
		return subject.RazaoSocial
	}
	if subject.CNPJ != "" {
		return subject.CNPJ
	}
	return contact.SystemSubject
}
