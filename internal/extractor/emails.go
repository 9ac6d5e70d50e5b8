package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// EmailsExtractor extracts email addresses from text content and mailto: links.
type EmailsExtractor struct {
	pattern *regexp.Regexp
}

func NewEmailsExtractor() *EmailsExtractor {
	return &EmailsExtractor{
		pattern: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	}
}

func (e *EmailsExtractor) Name() string { return "emails" }

func (e *EmailsExtractor) Extract(doc *goquery.Document, log zerolog.Logger) ([]contact.Finding, error) {
	seen := make(map[string]bool)
	var findings []contact.Finding

	addEmail := func(raw, source string) {
		email := normalizeEmail(raw)
		if email == "" || seen[email] {
			return
		}
		// Asset paths picked up by the pattern are not addresses.
		if strings.HasSuffix(email, ".png") ||
			strings.HasSuffix(email, ".jpg") ||
			strings.HasSuffix(email, ".gif") ||
			strings.HasSuffix(email, ".css") ||
			strings.HasSuffix(email, ".js") {
			return
		}
		seen[email] = true
		switch source {
		case "link":
			log.Info().Str("email", email).Msg("E-mail em link detectado")
		default:
			log.Debug().Str("email", email).Msg("E-mail encontrado")
		}
		findings = append(findings, contact.Finding{
			Kind:  contact.KindEmail,
			Value: email,
			Meta:  map[string]string{"source": source},
		})
	}

	doc.Find("a, p, div, span").Each(func(_ int, s *goquery.Selection) {
		for _, match := range e.pattern.FindAllString(s.Text(), -1) {
			addEmail(match, "texto")
		}
	})

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		email := strings.TrimPrefix(href, "mailto:")
		// Drop query params (e.g. ?subject=...)
		if idx := strings.Index(email, "?"); idx != -1 {
			email = email[:idx]
		}
		addEmail(email, "link")
	})

	return findings, nil
}

// normalizeEmail trims surrounding space and lowercases the domain part.
// The local part keeps its case.
func normalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at+1] + strings.ToLower(s[at+1:])
}
