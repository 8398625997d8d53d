// Package metrics computa os indicadores de qualidade da busca a partir
// dos registros imutáveis de buscas e cliques. As fórmulas vivem aqui; o
// Store apenas responde contagens por janela.
package metrics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
)

// Store é o armazenamento append-only das métricas de busca.
type Store interface {
	InsertSearch(ctx context.Context, metric *models.SearchMetric) error
	InsertClick(ctx context.Context, click *models.ClickMetric) error
	// CountSearches retorna (total, comZeroResultados) na janela.
	CountSearches(ctx context.Context, since time.Time) (total int, zero int, err error)
	// CountSearchesWithClicks retorna (buscasComPeloMenosUmClique, total)
	// na janela.
	CountSearchesWithClicks(ctx context.Context, since time.Time) (withClicks int, total int, err error)
	// AverageLatency retorna a latência média em ms na janela; aiUsed nil
	// agrega tudo, caso contrário filtra pelo valor.
	AverageLatency(ctx context.Context, since time.Time, aiUsed *bool) (float64, error)
}

// Dashboard agrega os indicadores de uma janela de tempo.
type Dashboard struct {
	WindowHours        int     `json:"window_hours"`
	TotalSearches      int     `json:"total_searches"`
	ZeroResultRate     float64 `json:"zero_result_rate"`
	ClickThroughRate   float64 `json:"click_through_rate"`
	AvgLatencyMs       float64 `json:"avg_latency_ms"`
	AvgLatencyAIMs     float64 `json:"avg_latency_ai_ms"`
	AvgLatencyLadderMs float64 `json:"avg_latency_ladder_ms"`
	QualityScore       float64 `json:"quality_score"`
}

// Engine grava métricas de busca e clique e deriva os indicadores de
// qualidade.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine cria o motor de métricas sobre o store dado.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// TrackSearch persiste o registro de uma busca concluída. zero_results é
// derivado aqui, no momento da escrita.
func (e *Engine) TrackSearch(ctx context.Context, query string, aiUsed, fallbackApplied bool, resultsCount int, latency time.Duration, userID string) error {
	metric := &models.SearchMetric{
		ID:              uuid.New(),
		Query:           query,
		AIUsed:          aiUsed,
		FallbackApplied: fallbackApplied,
		ResultsCount:    resultsCount,
		ZeroResults:     resultsCount == 0,
		LatencyMs:       latency.Milliseconds(),
		UserID:          userID,
		CreatedAt:       e.now(),
	}
	if err := e.store.InsertSearch(ctx, metric); err != nil {
		return fmt.Errorf("registrar métrica de busca: %w", err)
	}
	return nil
}

// TrackClick persiste o clique em um resultado, vinculado à busca que o
// produziu.
func (e *Engine) TrackClick(ctx context.Context, searchMetricID uuid.UUID, productID int64, position int) error {
	click := &models.ClickMetric{
		ID:             uuid.New(),
		SearchMetricID: searchMetricID,
		ProductID:      productID,
		Position:       position,
		CreatedAt:      e.now(),
	}
	if err := e.store.InsertClick(ctx, click); err != nil {
		return fmt.Errorf("registrar métrica de clique: %w", err)
	}
	return nil
}

// ZeroResultRate é o percentual de buscas sem resultados na janela.
// Janela vazia retorna 0.
func (e *Engine) ZeroResultRate(ctx context.Context, window time.Duration) (float64, error) {
	total, zero, err := e.store.CountSearches(ctx, e.now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("taxa de zero resultados: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(zero) / float64(total) * 100, nil
}

// ClickThroughRate é o percentual de buscas com pelo menos um clique na
// janela. Janela vazia retorna 0.
func (e *Engine) ClickThroughRate(ctx context.Context, window time.Duration) (float64, error) {
	withClicks, total, err := e.store.CountSearchesWithClicks(ctx, e.now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("taxa de cliques: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(withClicks) / float64(total) * 100, nil
}

// AverageLatency é a latência média em ms na janela, opcionalmente
// filtrada por uso de IA.
func (e *Engine) AverageLatency(ctx context.Context, window time.Duration, aiUsed *bool) (float64, error) {
	avg, err := e.store.AverageLatency(ctx, e.now().Add(-window), aiUsed)
	if err != nil {
		return 0, fmt.Errorf("latência média: %w", err)
	}
	return avg, nil
}

// QualityScore combina a taxa de zero resultados e o CTR em um score de 0
// a 100, arredondado a duas casas:
//
//	score = (100 - zeroResultRate)*0.5 + clickThroughRate*0.5
func (e *Engine) QualityScore(ctx context.Context, window time.Duration) (float64, error) {
	zeroRate, err := e.ZeroResultRate(ctx, window)
	if err != nil {
		return 0, err
	}
	ctr, err := e.ClickThroughRate(ctx, window)
	if err != nil {
		return 0, err
	}
	score := (100-zeroRate)*0.5 + ctr*0.5
	return math.Round(score*100) / 100, nil
}

// BuildDashboard agrega todos os indicadores de uma janela em horas.
func (e *Engine) BuildDashboard(ctx context.Context, hours int) (*Dashboard, error) {
	window := time.Duration(hours) * time.Hour
	since := e.now().Add(-window)

	total, _, err := e.store.CountSearches(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("montar dashboard: %w", err)
	}

	zeroRate, err := e.ZeroResultRate(ctx, window)
	if err != nil {
		return nil, err
	}
	ctr, err := e.ClickThroughRate(ctx, window)
	if err != nil {
		return nil, err
	}
	avgAll, err := e.AverageLatency(ctx, window, nil)
	if err != nil {
		return nil, err
	}
	aiTrue := true
	avgAI, err := e.AverageLatency(ctx, window, &aiTrue)
	if err != nil {
		return nil, err
	}
	aiFalse := false
	avgLadder, err := e.AverageLatency(ctx, window, &aiFalse)
	if err != nil {
		return nil, err
	}
	score, err := e.QualityScore(ctx, window)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		WindowHours:        hours,
		TotalSearches:      total,
		ZeroResultRate:     zeroRate,
		ClickThroughRate:   ctr,
		AvgLatencyMs:       avgAll,
		AvgLatencyAIMs:     avgAI,
		AvgLatencyLadderMs: avgLadder,
		QualityScore:       score,
	}, nil
}
