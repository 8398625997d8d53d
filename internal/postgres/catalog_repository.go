package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
	"github.com/feiralivre/app-busca-catalogo/internal/utils"
)

const resultLimit = 50

const productColumns = `p.id, p.name, p.description, p.price, c.name AS category,
	p.image_url, p.stock_qty, p.weight_grams, p.organization_id`

// CatalogRepository consulta o catálogo de produtos no Postgres.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository cria o repositório sobre o pool dado.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// FindByFilters busca por filtros estruturados combinados com AND. Todos
// os filtros são opcionais; sem nenhum, retorna os produtos mais recentes.
func (r *CatalogRepository) FindByFilters(ctx context.Context, filters *models.AIFilters) ([]models.Product, error) {
	conditions, args := filterConditions(filters)

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.id DESC
		LIMIT %d`, productColumns, where, resultLimit)

	return r.queryProducts(ctx, query, args...)
}

// filterConditions monta as cláusulas WHERE e os argumentos posicionais
// para os filtros presentes. Categoria também é por contenção: o filtro
// 'Doce' deve alcançar a categoria 'Doces'.
func filterConditions(filters *models.AIFilters) ([]string, []any) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filters.SearchTerm != "" {
		args = append(args, "%"+filters.SearchTerm+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}
	if filters.Category != "" {
		args = append(args, "%"+filters.Category+"%")
		conditions = append(conditions, fmt.Sprintf("c.name ILIKE $%d", len(args)))
	}
	if filters.PriceMin != nil {
		args = append(args, filters.PriceMin.Float64())
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", len(args)))
	}
	if filters.PriceMax != nil {
		args = append(args, filters.PriceMax.Float64())
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", len(args)))
	}

	return conditions, args
}

// FindByTextFullText busca por relevância full-text em português,
// ordenando por rank e desempatando pelo id mais recente.
func (r *CatalogRepository) FindByTextFullText(ctx context.Context, query string) ([]models.Product, error) {
	sql := fmt.Sprintf(`
		SELECT %s,
			ts_rank(p.search_vector, plainto_tsquery('portuguese', $1)) AS rank
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.search_vector @@ plainto_tsquery('portuguese', $1)
		ORDER BY rank DESC, p.id DESC
		LIMIT %d`, productColumns, resultLimit)

	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("busca full-text: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var rank float64
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.ImageURL, &p.StockQty, &p.WeightGrams, &p.OrganizationID, &rank); err != nil {
			return nil, fmt.Errorf("ler produto: %w", err)
		}
		p.Description = utils.StripMarkdown(p.Description)
		p.Rank = &rank
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("busca full-text: %w", err)
	}
	return products, nil
}

// FindByText busca por contenção de substring em nome, descrição e
// categoria, insensível a caso e acento. O padrão é comparado contra as
// colunas sem acento no banco, com o termo também sem acento.
func (r *CatalogRepository) FindByText(ctx context.Context, term string) ([]models.Product, error) {
	pattern := "%" + utils.StripAccents(term) + "%"

	sql := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE unaccent(p.name) ILIKE $1
			OR unaccent(p.description) ILIKE $1
			OR unaccent(c.name) ILIKE $1
		ORDER BY p.id DESC
		LIMIT %d`, productColumns, resultLimit)

	return r.queryProducts(ctx, sql, pattern)
}

func (r *CatalogRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("consultar produtos: %w", err)
	}
	defer rows.Close()

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Product, error) {
		var p models.Product
		err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.ImageURL, &p.StockQty, &p.WeightGrams, &p.OrganizationID)
		p.Description = utils.StripMarkdown(p.Description)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("ler produtos: %w", err)
	}
	return products, nil
}
