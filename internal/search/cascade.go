package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
)

// CatalogRepository é o contrato com o serviço de consulta ao catálogo.
// Zero linhas é resultado válido em todas as operações; erro indica falha
// de infraestrutura.
type CatalogRepository interface {
	// FindByFilters busca por filtros estruturados (termo, categoria,
	// faixa de preço), todos opcionais e combinados com AND.
	FindByFilters(ctx context.Context, filters *models.AIFilters) ([]models.Product, error)
	// FindByTextFullText busca por relevância full-text em português.
	FindByTextFullText(ctx context.Context, query string) ([]models.Product, error)
	// FindByText busca por contenção de substring, insensível a caso e
	// acento, em nome, descrição e categoria.
	FindByText(ctx context.Context, term string) ([]models.Product, error)
}

// textTier é um degrau da escada textual: estratégias executadas em ordem,
// parando na primeira que retorna resultados.
type textTier struct {
	name string
	run  func(ctx context.Context, query string) ([]models.Product, error)
}

// Cascade decide o caminho da busca a partir dos filtros extraídos (ou da
// ausência deles) e executa a escada de fallback textual.
type Cascade struct {
	repo   CatalogRepository
	logger *slog.Logger
	tiers  []textTier
}

// NewCascade cria a cascata sobre o repositório de catálogo.
func NewCascade(repo CatalogRepository, logger *slog.Logger) *Cascade {
	c := &Cascade{repo: repo, logger: logger}
	c.tiers = []textTier{
		{name: "fulltext", run: repo.FindByTextFullText},
		{name: "substring", run: repo.FindByText},
		{name: "tokenized", run: c.tokenizedSearch},
	}
	return c
}

// Search executa a busca para a query dada usando os filtros extraídos
// pela IA (nil quando a interpretação falhou). A resposta nunca é nil em
// sucesso; erro só ocorre por falha do catálogo.
func (c *Cascade) Search(ctx context.Context, query string, filters *models.AIFilters) (*models.SearchResponse, error) {
	ctx, span := otel.Tracer("search").Start(ctx, "cascade.Search")
	defer span.End()

	// Sem filtros utilizáveis a busca é puramente textual.
	if !filters.Sufficient() {
		products, err := c.runTextLadder(ctx, query)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.String("search.mode", "text"))
		return &models.SearchResponse{
			Interpretation:  fmt.Sprintf(`Buscando por texto: "%s"`, query),
			AIUsed:          false,
			FallbackApplied: true,
			Data:            products,
		}, nil
	}

	products, err := c.repo.FindByFilters(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("busca por filtros: %w: %w", ErrCatalogUnavailable, err)
	}

	resp := &models.SearchResponse{
		Interpretation: describeFilters(filters),
		AIUsed:         true,
		Data:           products,
	}

	// Filtros válidos mas sem linhas: se há um termo, a escada textual
	// ainda pode resgatar a busca. Sem termo, vazio é a resposta final.
	if len(products) == 0 && filters.SearchTerm != "" {
		c.logger.Info("structured search empty, falling back to text ladder",
			"term", filters.SearchTerm)
		rescued, err := c.runTextLadder(ctx, filters.SearchTerm)
		if err != nil {
			return nil, err
		}
		resp.Data = rescued
		resp.FallbackApplied = true
	}

	span.SetAttributes(
		attribute.String("search.mode", "filters"),
		attribute.Bool("search.fallback", resp.FallbackApplied),
	)
	return resp, nil
}

// runTextLadder percorre os degraus em ordem e para no primeiro que
// retorna resultados. Todos vazios é sucesso com lista vazia.
func (c *Cascade) runTextLadder(ctx context.Context, query string) ([]models.Product, error) {
	ctx, span := otel.Tracer("search").Start(ctx, "cascade.runTextLadder")
	defer span.End()

	for _, tier := range c.tiers {
		products, err := tier.run(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("busca textual (%s): %w: %w", tier.name, ErrCatalogUnavailable, err)
		}
		if len(products) > 0 {
			span.SetAttributes(attribute.String("search.tier", tier.name))
			return products, nil
		}
	}

	span.SetAttributes(attribute.String("search.tier", "none"))
	return []models.Product{}, nil
}

// tokenizedSearch sonda cada palavra significativa da query isoladamente
// e retorna os resultados do primeiro token que encontrar algo.
func (c *Cascade) tokenizedSearch(ctx context.Context, query string) ([]models.Product, error) {
	for _, token := range tokenize(query) {
		products, err := c.repo.FindByText(ctx, token)
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			return uniqueByID(products), nil
		}
	}
	return nil, nil
}

// uniqueByID remove duplicatas preservando a ordem original.
func uniqueByID(products []models.Product) []models.Product {
	seen := make(map[int64]bool, len(products))
	out := products[:0]
	for _, p := range products {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

// describeFilters monta a frase de interpretação exibida ao cliente,
// listando apenas os filtros presentes.
func describeFilters(f *models.AIFilters) string {
	parts := make([]string, 0, 4)
	if f.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("Termo='%s'", f.SearchTerm))
	}
	if f.Category != "" {
		parts = append(parts, fmt.Sprintf("Categoria='%s'", f.Category))
	}
	if f.PriceMin != nil {
		parts = append(parts, fmt.Sprintf("Preço Mín.='%v'", f.PriceMin.Float64()))
	}
	if f.PriceMax != nil {
		parts = append(parts, fmt.Sprintf("Preço Máx.='%v'", f.PriceMax.Float64()))
	}
	return "Buscando por: " + strings.Join(parts, ", ")
}
