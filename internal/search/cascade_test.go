package search

import (
	"context"
	"errors"
	"testing"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
)

// fakeCatalog registra as chamadas recebidas e responde com mapas fixos.
type fakeCatalog struct {
	filterResults   []models.Product
	filterErr       error
	fullTextResults map[string][]models.Product
	fullTextErr     error
	textResults     map[string][]models.Product
	textErr         error

	filterCalls   []*models.AIFilters
	fullTextCalls []string
	textCalls     []string
}

func (f *fakeCatalog) FindByFilters(ctx context.Context, filters *models.AIFilters) ([]models.Product, error) {
	f.filterCalls = append(f.filterCalls, filters)
	return f.filterResults, f.filterErr
}

func (f *fakeCatalog) FindByTextFullText(ctx context.Context, query string) ([]models.Product, error) {
	f.fullTextCalls = append(f.fullTextCalls, query)
	return f.fullTextResults[query], f.fullTextErr
}

func (f *fakeCatalog) FindByText(ctx context.Context, term string) ([]models.Product, error) {
	f.textCalls = append(f.textCalls, term)
	return f.textResults[term], f.textErr
}

func produto(id int64, name string) models.Product {
	return models.Product{ID: id, Name: name}
}

func floatPtr(v float64) *models.FlexFloat {
	f := models.FlexFloat(v)
	return &f
}

func TestCascadeTextLadderFullTextWins(t *testing.T) {
	repo := &fakeCatalog{
		fullTextResults: map[string][]models.Product{
			"tomate orgânico": {produto(1, "Tomate Orgânico")},
		},
		textResults: map[string][]models.Product{},
	}
	c := NewCascade(repo, testLogger())

	resp, err := c.Search(context.Background(), "tomate orgânico", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AIUsed {
		t.Error("ai_used should be false without filters")
	}
	if !resp.FallbackApplied {
		t.Error("fallback_applied should be true without filters")
	}
	if resp.Interpretation != `Buscando por texto: "tomate orgânico"` {
		t.Errorf("unexpected interpretation: %q", resp.Interpretation)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != 1 {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
	// o degrau seguinte não deve ter sido sondado
	if len(repo.textCalls) != 0 {
		t.Errorf("substring tier should not run after full-text hit: %v", repo.textCalls)
	}
}

func TestCascadeTextLadderFallsToSubstring(t *testing.T) {
	repo := &fakeCatalog{
		fullTextResults: map[string][]models.Product{},
		textResults: map[string][]models.Product{
			"tomate": {produto(2, "Tomate Italiano")},
		},
	}
	c := NewCascade(repo, testLogger())

	resp, err := c.Search(context.Background(), "tomate", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != 2 {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
}

func TestCascadeTokenizedTier(t *testing.T) {
	repo := &fakeCatalog{
		fullTextResults: map[string][]models.Product{},
		textResults: map[string][]models.Product{
			"suco": {produto(7, "Suco de Laranja"), produto(7, "Suco de Laranja"), produto(9, "Suco de Uva")},
		},
	}
	c := NewCascade(repo, testLogger())

	resp, err := c.Search(context.Background(), "um suco de fruta", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "um" e "de" são curtos demais; "suco" é o primeiro token sondado
	if len(resp.Data) != 2 {
		t.Fatalf("expected deduplicated results, got %+v", resp.Data)
	}
	if resp.Data[0].ID != 7 || resp.Data[1].ID != 9 {
		t.Errorf("order must be preserved: %+v", resp.Data)
	}
	// a query inteira falhou no substring antes de tokenizar
	if repo.textCalls[0] != "um suco de fruta" {
		t.Errorf("unexpected probe order: %v", repo.textCalls)
	}
	if repo.textCalls[1] != "suco" {
		t.Errorf("expected token probe after whole-query probe: %v", repo.textCalls)
	}
}

func TestCascadeZeroResultsIsSuccess(t *testing.T) {
	repo := &fakeCatalog{
		fullTextResults: map[string][]models.Product{},
		textResults:     map[string][]models.Product{},
	}
	c := NewCascade(repo, testLogger())

	resp, err := c.Search(context.Background(), "xyzabc", nil)
	if err != nil {
		t.Fatalf("exhausted ladder must not error: %v", err)
	}
	if resp.Data == nil {
		t.Error("data must be an empty slice, not nil")
	}
	if len(resp.Data) != 0 {
		t.Errorf("expected empty data, got %+v", resp.Data)
	}
}

func TestCascadeCatalogErrorPropagates(t *testing.T) {
	cause := errors.New("connection refused")
	repo := &fakeCatalog{fullTextErr: cause}
	c := NewCascade(repo, testLogger())

	_, err := c.Search(context.Background(), "tomate", nil)
	if err == nil {
		t.Fatal("catalog failure must propagate")
	}
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("error must wrap ErrCatalogUnavailable: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error must keep the underlying cause: %v", err)
	}
}

func TestCascadeStructuredErrorWrapsSentinel(t *testing.T) {
	repo := &fakeCatalog{filterErr: errors.New("timeout")}
	c := NewCascade(repo, testLogger())

	filters := &models.AIFilters{Category: "Frutas"}
	_, err := c.Search(context.Background(), "frutas", filters)
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("error must wrap ErrCatalogUnavailable: %v", err)
	}
}

func TestCascadeStructuredSearch(t *testing.T) {
	repo := &fakeCatalog{
		filterResults: []models.Product{produto(3, "Tomate Cereja")},
	}
	c := NewCascade(repo, testLogger())

	filters := &models.AIFilters{
		SearchTerm: "tomate",
		Category:   "Legumes",
		PriceMax:   floatPtr(30),
	}
	resp, err := c.Search(context.Background(), "tomate de até 30 reais", filters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.AIUsed {
		t.Error("ai_used should be true")
	}
	if resp.FallbackApplied {
		t.Error("fallback_applied should be false when filters return rows")
	}
	want := "Buscando por: Termo='tomate', Categoria='Legumes', Preço Máx.='30'"
	if resp.Interpretation != want {
		t.Errorf("interpretation = %q, want %q", resp.Interpretation, want)
	}
	if len(repo.fullTextCalls)+len(repo.textCalls) != 0 {
		t.Error("text ladder must not run when filters return rows")
	}
}

func TestCascadeStructuredEmptyRescuedByLadder(t *testing.T) {
	repo := &fakeCatalog{
		filterResults:   nil,
		fullTextResults: map[string][]models.Product{},
		textResults: map[string][]models.Product{
			"caqui": {produto(5, "Caqui Fuyu")},
		},
	}
	c := NewCascade(repo, testLogger())

	filters := &models.AIFilters{SearchTerm: "caqui", Category: "Frutas"}
	resp, err := c.Search(context.Background(), "caqui da categoria frutas", filters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.AIUsed {
		t.Error("ai_used stays true when filters were applied")
	}
	if !resp.FallbackApplied {
		t.Error("fallback_applied should be true after ladder rescue")
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != 5 {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
	// a escada usa o termo extraído, não a query original
	if repo.fullTextCalls[0] != "caqui" {
		t.Errorf("ladder should probe the extracted term: %v", repo.fullTextCalls)
	}
}

func TestCascadeStructuredEmptyWithoutTermStaysEmpty(t *testing.T) {
	repo := &fakeCatalog{
		filterResults: nil,
	}
	c := NewCascade(repo, testLogger())

	filters := &models.AIFilters{Category: "Frutas", PriceMin: floatPtr(100)}
	resp, err := c.Search(context.Background(), "frutas caras", filters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.FallbackApplied {
		t.Error("no term to rescue with, fallback_applied must stay false")
	}
	if len(resp.Data) != 0 {
		t.Errorf("expected empty data, got %+v", resp.Data)
	}
	if len(repo.fullTextCalls)+len(repo.textCalls) != 0 {
		t.Error("ladder must not run without a search term")
	}
}

func TestCascadeSearchTermAloneIsInsufficient(t *testing.T) {
	repo := &fakeCatalog{
		fullTextResults: map[string][]models.Product{
			"banana prata": {produto(8, "Banana Prata")},
		},
	}
	c := NewCascade(repo, testLogger())

	// só search_term: trata como busca textual pura, sem consulta
	// estruturada
	filters := &models.AIFilters{SearchTerm: "banana"}
	resp, err := c.Search(context.Background(), "banana prata", filters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AIUsed {
		t.Error("ai_used must be false for insufficient filters")
	}
	if len(repo.filterCalls) != 0 {
		t.Error("structured query must not run for insufficient filters")
	}
	// a escada recebe a query original
	if repo.fullTextCalls[0] != "banana prata" {
		t.Errorf("ladder should probe the raw query: %v", repo.fullTextCalls)
	}
}

func TestDescribeFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters *models.AIFilters
		want    string
	}{
		{
			name:    "all fields",
			filters: &models.AIFilters{SearchTerm: "tomate", Category: "Legumes", PriceMin: floatPtr(5), PriceMax: floatPtr(30)},
			want:    "Buscando por: Termo='tomate', Categoria='Legumes', Preço Mín.='5', Preço Máx.='30'",
		},
		{
			name:    "category and max only",
			filters: &models.AIFilters{Category: "Frutas", PriceMax: floatPtr(12.5)},
			want:    "Buscando por: Categoria='Frutas', Preço Máx.='12.5'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeFilters(tt.filters); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"um suco de fruta", []string{"suco", "fruta"}},
		{"Maçã Fuji!", []string{"maçã", "fuji"}},
		{"a b cd", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := tokenize(tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
			}
		}
	}
}
