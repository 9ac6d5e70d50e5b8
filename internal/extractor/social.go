package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// socialHosts maps each tracked platform to the host fragments that
// identify it. Extraction iterates contact.Platforms, which fixes the
// order when one anchor matches several platforms.
var socialHosts = map[string][]string{
	"facebook":  {"facebook.com"},
	"instagram": {"instagram.com"},
	"linkedin":  {"linkedin.com"},
	"youtube":   {"youtube.com", "youtu.be"},
}

// SocialExtractor extracts social media profile links from anchors.
type SocialExtractor struct{}

func NewSocialExtractor() *SocialExtractor {
	return &SocialExtractor{}
}

func (e *SocialExtractor) Name() string { return "redes_sociais" }

func (e *SocialExtractor) Extract(doc *goquery.Document, log zerolog.Logger) ([]contact.Finding, error) {
	seen := make(map[string]bool)
	var findings []contact.Finding

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}

		lower := strings.ToLower(href)
		for _, platform := range contact.Platforms {
			for _, pattern := range socialHosts[platform] {
				if !strings.Contains(lower, pattern) {
					continue
				}
				key := platform + "|" + href
				if seen[key] {
					break
				}
				seen[key] = true
				findings = append(findings, contact.Finding{
					Kind:  contact.KindSocial,
					Value: href,
					Meta:  map[string]string{"platform": platform},
				})
				break
			}
		}
	})

	return findings, nil
}
