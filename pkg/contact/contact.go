// Package contact defines the public types and interfaces of the
// enrichment pipeline. External tools can import this package to plug in
// custom fetchers, extractors, or stores without forking the project.
package contact

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// SystemSubject is the log tag for events not tied to a single company.
const SystemSubject = "SISTEMA"

// ---------- Core Data Types ----------

// Platforms is the fixed set of tracked social networks, in output order.
var Platforms = []string{"facebook", "instagram", "linkedin", "youtube"}

// SocialLinks maps each known platform to at most one URL.
type SocialLinks struct {
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
	LinkedIn  *string `json:"linkedin"`
	YouTube   *string `json:"youtube"`
}

// Link returns the stored URL for a platform, or nil.
func (s *SocialLinks) Link(platform string) *string {
	switch platform {
	case "facebook":
		return s.Facebook
	case "instagram":
		return s.Instagram
	case "linkedin":
		return s.LinkedIn
	case "youtube":
		return s.YouTube
	}
	return nil
}

// Fill stores a URL for a platform if its slot is still empty.
// It reports whether the value was stored; a filled slot is never overwritten.
func (s *SocialLinks) Fill(platform, url string) bool {
	if url == "" || s.Link(platform) != nil {
		return false
	}
	switch platform {
	case "facebook":
		s.Facebook = &url
	case "instagram":
		s.Instagram = &url
	case "linkedin":
		s.LinkedIn = &url
	case "youtube":
		s.YouTube = &url
	default:
		return false
	}
	return true
}

// Contacts is the wire-format bundle of extracted contact fields.
// Build it with NewContacts so empty phone/email sets marshal as [] and
// not null.
type Contacts struct {
	Phones   []string    `json:"telefones"`
	WhatsApp *string     `json:"whatsapp"`
	Emails   []string    `json:"emails"`
	Address  *string     `json:"endereco"`
	Social   SocialLinks `json:"redes_sociais"`
}

// NewContacts returns an empty Contacts with initialized collections.
func NewContacts() Contacts {
	return Contacts{
		Phones: []string{},
		Emails: []string{},
	}
}

// Record is the unit of output per subject: one company's contact data,
// keyed by its normalized CNPJ.
type Record struct {
	CNPJ        string `json:"cnpj"`
	RazaoSocial string `json:"razao_social"`
	Contacts
	UpdatedAt time.Time `json:"data_atualizacao"`
}

// Subject identifies one company to enrich.
type Subject struct {
	CNPJ        string
	RazaoSocial string
	URL         string
}

// Page represents a fetched web page.
type Page struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url"`
	StatusCode    int           `json:"status_code"`
	Body          string        `json:"-"`
	ContentType   string        `json:"content_type"`
	FetchedAt     time.Time     `json:"fetched_at"`
	FetchDuration time.Duration `json:"fetch_duration"`
	FetcherUsed   string        `json:"fetcher_used"`
	Error         string        `json:"error,omitempty"`
	ResponseSize  int           `json:"response_size"`
}

// Finding kinds emitted by extractors.
const (
	KindPhone    = "phone"
	KindWhatsApp = "whatsapp"
	KindEmail    = "email"
	KindSocial   = "social"
	KindAddress  = "address"
)

// Finding is a single candidate value located by an extractor.
type Finding struct {
	Kind  string            `json:"kind"`
	Value string            `json:"value"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Pipeline stages reported in outcomes.
const (
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageExtract  = "extract"
	StagePersist  = "persist"
)

// Outcome is the per-subject result of an enrichment run. A batch returns
// one Outcome per subject; one subject's failure never aborts the others.
type Outcome struct {
	Subject  Subject
	Record   *Record
	Stage    string
	Err      error
	Duration time.Duration
}

// OK reports whether the subject was enriched and persisted.
func (o Outcome) OK() bool { return o.Err == nil }

// ---------- Plugin Interfaces ----------

// Fetcher defines how pages are retrieved.
type Fetcher interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Fetch retrieves the page at the given URL. A non-2xx status or
	// transport error yields a page with Error set and a non-nil error.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Extractor derives one category of contact data from a parsed page.
// Extractors are read-only over the document and independent of each
// other; candidates are emitted in document order.
type Extractor interface {
	// Name returns a human-readable identifier (e.g., "telefones").
	Name() string

	// Extract finds candidate values in the document. The logger carries
	// the subject context for per-candidate audit entries.
	Extract(doc *goquery.Document, log zerolog.Logger) ([]Finding, error)
}

// Store persists enrichment records keyed by CNPJ.
type Store interface {
	// Name returns a human-readable identifier for this store.
	Name() string

	// Save upserts the record: the first write for a CNPJ inserts it,
	// later writes overwrite every field group.
	Save(ctx context.Context, rec *Record) error

	// Close releases any resources held by the store.
	Close() error
}
