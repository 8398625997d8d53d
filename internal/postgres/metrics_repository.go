package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
)

// MetricsRepository é o store append-only das métricas de busca e clique.
type MetricsRepository struct {
	pool *pgxpool.Pool
}

// NewMetricsRepository cria o repositório sobre o pool dado.
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

// InsertSearch grava o registro imutável de uma busca.
func (r *MetricsRepository) InsertSearch(ctx context.Context, m *models.SearchMetric) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO search_metrics
			(id, query, ai_used, fallback_applied, results_count, zero_results, latency_ms, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`,
		m.ID, m.Query, m.AIUsed, m.FallbackApplied, m.ResultsCount, m.ZeroResults,
		m.LatencyMs, m.UserID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserir métrica de busca: %w", err)
	}
	return nil
}

// InsertClick grava um clique vinculado a uma busca registrada.
func (r *MetricsRepository) InsertClick(ctx context.Context, c *models.ClickMetric) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO search_clicks (id, search_metric_id, product_id, position, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.SearchMetricID, c.ProductID, c.Position, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserir métrica de clique: %w", err)
	}
	return nil
}

// CountSearches conta as buscas na janela e quantas delas tiveram zero
// resultados.
func (r *MetricsRepository) CountSearches(ctx context.Context, since time.Time) (int, int, error) {
	var total, zero int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE zero_results)
		FROM search_metrics
		WHERE created_at >= $1`, since).Scan(&total, &zero)
	if err != nil {
		return 0, 0, fmt.Errorf("contar buscas: %w", err)
	}
	return total, zero, nil
}

// CountSearchesWithClicks conta as buscas da janela com pelo menos um
// clique, e o total da janela.
func (r *MetricsRepository) CountSearchesWithClicks(ctx context.Context, since time.Time) (int, int, error) {
	var withClicks, total int
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM search_clicks c WHERE c.search_metric_id = m.id
			)),
			COUNT(*)
		FROM search_metrics m
		WHERE m.created_at >= $1`, since).Scan(&withClicks, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("contar buscas com clique: %w", err)
	}
	return withClicks, total, nil
}

// AverageLatency calcula a latência média em ms na janela. aiUsed nil
// agrega todas as buscas; não-nil filtra pelo valor.
func (r *MetricsRepository) AverageLatency(ctx context.Context, since time.Time, aiUsed *bool) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(latency_ms), 0)
		FROM search_metrics
		WHERE created_at >= $1
			AND ($2::boolean IS NULL OR ai_used = $2)`, since, aiUsed).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("latência média: %w", err)
	}
	return avg, nil
}
