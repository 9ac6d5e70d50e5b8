package extractor

import (
	"testing"

	"github.com/rs/zerolog"
)

func extractAddresses(t *testing.T, html string) []string {
	t.Helper()
	findings, err := NewAddressExtractor().Extract(docFromHTML(t, html), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addrs := make([]string, 0, len(findings))
	for _, f := range findings {
		addrs = append(addrs, f.Value)
	}
	return addrs
}

func TestAddressExtractor_StreetAddress(t *testing.T) {
	addrs := extractAddresses(t, `<p>Rua das Flores, 123 - Centro - CEP 01000-000</p>`)
	if len(addrs) != 1 || addrs[0] != "Rua das Flores, 123 - Centro - CEP 01000-000" {
		t.Fatalf("expected street address, got %v", addrs)
	}
}

func TestAddressExtractor_VagueTextIgnored(t *testing.T) {
	addrs := extractAddresses(t, `<p>Fale conosco</p>`)
	if len(addrs) != 0 {
		t.Fatalf("expected no address, got %v", addrs)
	}
}

func TestAddressExtractor_KeywordWithoutDigitIgnored(t *testing.T) {
	addrs := extractAddresses(t, `<p>Estamos na rua principal do bairro mais antigo</p>`)
	if len(addrs) != 0 {
		t.Fatalf("expected no address without digits, got %v", addrs)
	}
}

func TestAddressExtractor_TooFewTokensIgnored(t *testing.T) {
	addrs := extractAddresses(t, `<p>Rua A, 1</p>`)
	if len(addrs) != 0 {
		t.Fatalf("expected short fragment rejected, got %v", addrs)
	}
}

func TestAddressExtractor_PageContainersSkipped(t *testing.T) {
	// The wrapping div also contains the address text but is not a leaf.
	html := `
	<div>
		<h1>Institucional</h1>
		<p>Rua das Flores, 123 - Centro - CEP 01000-000</p>
	</div>`
	addrs := extractAddresses(t, html)
	if len(addrs) != 1 {
		t.Fatalf("expected only the leaf paragraph, got %v", addrs)
	}
	if addrs[0] != "Rua das Flores, 123 - Centro - CEP 01000-000" {
		t.Errorf("unexpected address %q", addrs[0])
	}
}

func TestAddressExtractor_ClassFallback(t *testing.T) {
	html := `<div class="endereco"><span>Av. Paulista, 1000 - Bela Vista - São Paulo</span></div>`
	addrs := extractAddresses(t, html)
	if len(addrs) != 1 {
		t.Fatalf("expected class fallback to find address, got %v", addrs)
	}
	if addrs[0] != "Av. Paulista, 1000 - Bela Vista - São Paulo" {
		t.Errorf("unexpected address %q", addrs[0])
	}
}

func TestAddressExtractor_ElementorSpan(t *testing.T) {
	html := `<span class="elementor-icon-list-text">Rua Sete de Setembro, 100 - Centro - Fortaleza</span>`
	addrs := extractAddresses(t, html)
	if len(addrs) != 1 {
		t.Fatalf("expected elementor span address, got %v", addrs)
	}
	if addrs[0] != "Rua Sete de Setembro, 100 - Centro - Fortaleza" {
		t.Errorf("unexpected address %q", addrs[0])
	}
}

func TestAddressExtractor_ElementorMixedCaseClass(t *testing.T) {
	html := `<span class="Elementor-Icon-List-Text">Av. Paulista, 1000 - Bela Vista - CEP 01310-100</span>`
	addrs := extractAddresses(t, html)
	if len(addrs) != 1 {
		t.Fatalf("expected mixed-case elementor class matched, got %v", addrs)
	}
	if addrs[0] != "Av. Paulista, 1000 - Bela Vista - CEP 01310-100" {
		t.Errorf("unexpected address %q", addrs[0])
	}
}

func TestAddressExtractor_WhitespaceCollapsed(t *testing.T) {
	html := "<p>Rua das\n\t\tFlores,   123 - Centro - CEP 01000-000</p>"
	addrs := extractAddresses(t, html)
	if len(addrs) != 1 || addrs[0] != "Rua das Flores, 123 - Centro - CEP 01000-000" {
		t.Fatalf("expected collapsed whitespace, got %v", addrs)
	}
}

func TestValidAddress(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Rua das Flores, 123 - Centro - CEP 01000-000", true},
		{"Avenida Brasil, 500 - Jardim América", true},
		{"Fale conosco", false},
		{"Rua A, 1", false},
		{"rua sem numero nenhum aqui presente", false},
		{"12345 67890 11121 31415 16171", false},
	}
	for _, tt := range tests {
		if got := validAddress(tt.text); got != tt.want {
			t.Errorf("validAddress(%q) = %v, expected %v", tt.text, got, tt.want)
		}
	}
}
