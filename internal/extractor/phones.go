package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// PhonesExtractor extracts phone numbers from text content and tel: links.
type PhonesExtractor struct {
	pattern *regexp.Regexp
}

func NewPhonesExtractor() *PhonesExtractor {
	return &PhonesExtractor{
		// Labeled numbers ("Tel: ...") or bare Brazilian shapes
		// like (11) 4002-8922 and 11 99999-9999.
		pattern: regexp.MustCompile(`(?i)(?:tel|phone|telefone|fone)[\s:]*([+\d\s\-()]{8,})|(\(?\d{2,3}\)?[\s\-]?\d{4,5}[\s\-]?\d{4})`),
	}
}

func (e *PhonesExtractor) Name() string { return "telefones" }

func (e *PhonesExtractor) Extract(doc *goquery.Document, log zerolog.Logger) ([]contact.Finding, error) {
	seen := make(map[string]bool)
	var findings []contact.Finding

	addPhone := func(raw, source string) {
		// Normalize for dedup: remove all non-digit chars except a leading +
		normalized := normalizePhone(raw)
		if normalized == "" || seen[normalized] {
			return
		}
		seen[normalized] = true
		switch source {
		case "link":
			log.Info().Str("telefone", normalized).Msg("Telefone em link detectado")
		default:
			log.Debug().Str("telefone", normalized).Msg("Telefone encontrado")
		}
		findings = append(findings, contact.Finding{
			Kind:  contact.KindPhone,
			Value: normalized,
			Meta:  map[string]string{"source": source},
		})
	}

	doc.Find("p, div, span, li").Each(func(_ int, s *goquery.Selection) {
		for _, match := range e.pattern.FindAllStringSubmatch(s.Text(), -1) {
			for _, group := range match[1:] {
				if group != "" {
					addPhone(group, "texto")
				}
			}
		}
	})

	doc.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addPhone(strings.TrimPrefix(href, "tel:"), "link")
	})

	return findings, nil
}

// normalizePhone reduces a raw token to digits plus at most one leading +.
func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if (r == '+' && i == 0) || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
