package utils

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents remove acentos e diacríticos preservando o caso.
// Exemplo: "Maçã" -> "Maca", "Orgânico" -> "Organico"
func StripAccents(s string) string {
	if s == "" {
		return s
	}
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return stripped
}
