package models

import (
	"bytes"
	"strconv"
	"strings"
)

// FlexFloat aceita valores numéricos enviados como número ou como string
// ("30" e 30 são equivalentes). A API de LLM às vezes retorna preços como
// string, e isso não deve invalidar o payload inteiro.
type FlexFloat float64

// UnmarshalJSON implementa json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Float64 retorna o valor como float64.
func (f FlexFloat) Float64() float64 {
	return float64(f)
}

// AIFilters é o conjunto esparso de filtros extraídos de uma query em
// linguagem natural pela API de LLM. Todos os campos são independentes e
// opcionais.
type AIFilters struct {
	SearchTerm string     `json:"search_term,omitempty"`
	Category   string     `json:"category,omitempty"`
	PriceMin   *FlexFloat `json:"price_min,omitempty"`
	PriceMax   *FlexFloat `json:"price_max,omitempty"`
}

// Sufficient informa se os filtros justificam uma busca estruturada.
// Um search_term sozinho não é suficiente: sem categoria ou faixa de preço
// a busca estruturada não agrega nada sobre a escada textual.
func (f *AIFilters) Sufficient() bool {
	if f == nil {
		return false
	}
	return f.Category != "" || f.PriceMin != nil || f.PriceMax != nil
}

// SearchResponse é a resposta padronizada da busca inteligente.
//
// Invariante para buscas executadas: AIUsed=false implica
// FallbackApplied=true. AIUsed=true com FallbackApplied=true é um estado
// válido (a IA extraiu filtros, a busca estruturada não retornou linhas e
// a escada textual resgatou a query). A resposta fixa de query vazia é a
// exceção: nenhuma busca roda e ambos ficam false.
type SearchResponse struct {
	Interpretation  string    `json:"interpretation"`
	AIUsed          bool      `json:"ai_used"`
	FallbackApplied bool      `json:"fallback_applied"`
	Data            []Product `json:"data"`
}
