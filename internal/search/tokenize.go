package search

import (
	"regexp"
	"strings"
)

// wordPattern captura sequências de letras, incluindo acentuadas.
var wordPattern = regexp.MustCompile(`[a-zA-ZÀ-ÖØ-öø-ÿ]+`)

const minTokenLen = 3

// tokenize quebra a query em palavras candidatas para a sondagem por
// token. Palavras com menos de 3 runas (de, o, em) são descartadas por
// gerarem correspondências sem valor.
func tokenize(query string) []string {
	words := wordPattern.FindAllString(strings.ToLower(query), -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) >= minTokenLen {
			tokens = append(tokens, w)
		}
	}
	return tokens
}
