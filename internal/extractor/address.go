package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// AddressExtractor locates postal addresses with layered heuristics: text
// elements carrying address keywords, elements whose class hints at an
// address, and Elementor icon-list spans common on Brazilian company sites.
type AddressExtractor struct {
	keywords  *regexp.Regexp
	classHint *regexp.Regexp
	iconList  *regexp.Regexp
}

func NewAddressExtractor() *AddressExtractor {
	return &AddressExtractor{
		keywords:  regexp.MustCompile(`(?i)rua|avenida|av\.|bairro|cep|\d{5}-\d{3}`),
		classHint: regexp.MustCompile(`(?i)address|endereco|local`),
		iconList:  regexp.MustCompile(`(?i)elementor-icon-list-text`),
	}
}

func (e *AddressExtractor) Name() string { return "endereco" }

func (e *AddressExtractor) Extract(doc *goquery.Document, log zerolog.Logger) ([]contact.Finding, error) {
	seen := make(map[string]bool)
	var findings []contact.Finding

	addCandidate := func(text, source string) {
		text = collapseSpace(text)
		if !validAddress(text) || seen[text] {
			return
		}
		seen[text] = true
		switch source {
		case "elementor":
			log.Info().Str("endereco", truncate(text, 50)).Msg("Endereço em Elementor")
		default:
			log.Debug().Str("endereco", truncate(text, 50)).Msg("Endereço potencial")
		}
		findings = append(findings, contact.Finding{
			Kind:  contact.KindAddress,
			Value: text,
			Meta:  map[string]string{"source": source},
		})
	}

	// Leaf elements whose own text carries an address keyword. Restricting
	// to childless nodes keeps page-wide containers out of the candidates.
	candidates := doc.Find("p, div, li, ul").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Children().Length() == 0 && e.keywords.MatchString(s.Text())
	})
	if candidates.Length() == 0 {
		candidates = doc.Find("p, div, li").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return e.classHint.MatchString(s.AttrOr("class", ""))
		})
	}
	candidates.Each(func(_ int, s *goquery.Selection) {
		addCandidate(s.Text(), "texto")
	})

	doc.Find("span[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return e.iconList.MatchString(s.AttrOr("class", ""))
	}).Each(func(_ int, s *goquery.Selection) {
		addCandidate(s.Text(), "elementor")
	})

	return findings, nil
}

// validAddress rejects fragments too short or too vague to be a street
// address: it must carry a digit, an address keyword and at least five
// words.
func validAddress(text string) bool {
	if !strings.ContainsAny(text, "0123456789") {
		return false
	}
	lower := strings.ToLower(text)
	hasKeyword := false
	for _, kw := range []string{"rua", "av", "avenida", "bairro", "cep"} {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}
	return len(strings.Fields(text)) >= 5
}

// collapseSpace trims a string and folds internal whitespace runs into
// single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens a string to maxLen, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
