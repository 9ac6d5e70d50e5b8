package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// Registry holds the contact extractors in their fixed execution order.
type Registry struct {
	extractors []contact.Extractor
}

// NewRegistry creates a registry with all built-in extractors. The order
// mirrors the aggregation rules: the WhatsApp number lands first in the
// phone list and first-match-wins fields resolve deterministically.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []contact.Extractor{
			NewWhatsAppExtractor(),
			NewPhonesExtractor(),
			NewEmailsExtractor(),
			NewSocialExtractor(),
			NewAddressExtractor(),
		},
	}
}

// Register adds a custom extractor to the registry.
func (r *Registry) Register(ext contact.Extractor) {
	r.extractors = append(r.extractors, ext)
}

// ExtractAll runs all registered extractors over the same parsed document.
func (r *Registry) ExtractAll(doc *goquery.Document, log zerolog.Logger) []contact.Finding {
	var all []contact.Finding
	for _, ext := range r.extractors {
		findings, err := ext.Extract(doc, log)
		if err != nil {
			// log but don't abort, other extractors should still run
			log.Error().Err(err).Str("extrator", ext.Name()).Msg("Falha na extração")
			continue
		}
		all = append(all, findings...)
	}
	return all
}

// Names returns the names of all registered extractors.
func (r *Registry) Names() []string {
	names := make([]string, len(r.extractors))
	for i, ext := range r.extractors {
		names[i] = ext.Name()
	}
	return names
}
