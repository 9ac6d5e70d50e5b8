package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cnpj-contatos/pkg/contact"
)

// shellTextThreshold is the minimum amount of visible text below which a
// page is assumed to be rendered client-side.
const shellTextThreshold = 200

// LooksLikeShell reports whether a fetched body appears to be an empty
// JavaScript shell that needs a real browser to render. Auto mode uses it
// to decide when the HTTP response is worth extracting from.
func LooksLikeShell(page *contact.Page) bool {
	if page == nil || strings.TrimSpace(page.Body) == "" {
		return true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return false
	}

	// Scripts and styles don't count as visible text.
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	text := strings.TrimSpace(body.Text())

	if len(text) < shellTextThreshold {
		return true
	}

	lower := strings.ToLower(text)
	return strings.Contains(lower, "enable javascript") ||
		strings.Contains(lower, "ative o javascript") ||
		strings.Contains(lower, "habilite o javascript")
}
