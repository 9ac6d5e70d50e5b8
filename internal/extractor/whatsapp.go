package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// WhatsAppExtractor locates a labeled WhatsApp number in the page text.
// Only the first label is honored.
type WhatsAppExtractor struct {
	pattern *regexp.Regexp
}

func NewWhatsAppExtractor() *WhatsAppExtractor {
	return &WhatsAppExtractor{
		pattern: regexp.MustCompile(`(?i)WhatsApp:\s*([+\d\s\-()]+)`),
	}
}

func (e *WhatsAppExtractor) Name() string {
	return "whatsapp"
}

func (e *WhatsAppExtractor) Extract(doc *goquery.Document, log zerolog.Logger) ([]contact.Finding, error) {
	match := e.pattern.FindStringSubmatch(doc.Text())
	if match == nil {
		return nil, nil
	}

	number := completeNumber(match[1])
	if number == "" {
		return nil, nil
	}

	log.Info().Str("numero", number).Msg("WhatsApp detectado")

	return []contact.Finding{{Kind: contact.KindWhatsApp, Value: number}}, nil
}

// completeNumber turns a captured token into a full international number
// without the leading plus. Brazilian numbers written without the country
// code get it prefixed; tokens libphonenumber rejects fall back to a plain
// digit strip so a deep link can still be built.
func completeNumber(raw string) string {
	parsed, err := phonenumbers.Parse(raw, "BR")
	if err == nil && phonenumbers.IsValidNumber(parsed) {
		return strings.TrimPrefix(phonenumbers.Format(parsed, phonenumbers.E164), "+")
	}
	return normalizePhone(raw)
}
