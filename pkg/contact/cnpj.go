package contact

import (
	"errors"
	"fmt"
	"strings"
)

const cnpjLength = 14

// ErrInvalidCNPJ is returned for identifiers that do not normalize to 14 digits.
var ErrInvalidCNPJ = errors.New("cnpj inválido")

// NormalizeCNPJ strips formatting from a CNPJ and zero-pads it to 14 digits.
// Inputs with no digits, or more than 14, are rejected. Check digits are not
// verified: registry exports carry identifiers that do not always satisfy
// them, and the store key only needs to be stable.
func NormalizeCNPJ(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" || len(digits) > cnpjLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidCNPJ, raw)
	}
	if len(digits) < cnpjLength {
		digits = strings.Repeat("0", cnpjLength-len(digits)) + digits
	}
	return digits, nil
}

// FormatCNPJ renders a CNPJ with the standard XX.XXX.XXX/XXXX-XX mask.
// Values that do not normalize are returned unchanged.
func FormatCNPJ(raw string) string {
	cnpj, err := NormalizeCNPJ(raw)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", cnpj[:2], cnpj[2:5], cnpj[5:8], cnpj[8:12], cnpj[12:])
}
