package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchMetric é o registro persistido de uma busca concluída. Criado uma
// única vez por busca e nunca mutado; ZeroResults é derivado no momento da
// escrita, não recalculado depois.
type SearchMetric struct {
	ID              uuid.UUID `json:"id"`
	Query           string    `json:"query"`
	AIUsed          bool      `json:"ai_used"`
	FallbackApplied bool      `json:"fallback_applied"`
	ResultsCount    int       `json:"results_count"`
	ZeroResults     bool      `json:"zero_results"`
	LatencyMs       int64     `json:"latency_ms"`
	UserID          string    `json:"user_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ClickMetric registra o clique de um cliente em um resultado de busca.
// Referencia exatamente um SearchMetric.
type ClickMetric struct {
	ID             uuid.UUID `json:"id"`
	SearchMetricID uuid.UUID `json:"search_metric_id"`
	ProductID      int64     `json:"product_id"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
}
