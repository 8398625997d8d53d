package search

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
)

// FilterInterpreter extrai filtros estruturados de uma query. nil indica
// que a interpretação falhou e a busca deve seguir puramente textual.
type FilterInterpreter interface {
	Interpret(ctx context.Context, query string) *models.AIFilters
}

// MetricsRecorder recebe a telemetria de buscas concluídas.
type MetricsRecorder interface {
	TrackSearch(ctx context.Context, query string, aiUsed, fallbackApplied bool, resultsCount int, latency time.Duration, userID string) error
}

const trackTimeout = 5 * time.Second

// Service orquestra o pipeline completo de uma busca: interpretação,
// cascata e emissão assíncrona de métricas.
type Service struct {
	interpreter FilterInterpreter
	cascade     *Cascade
	metrics     MetricsRecorder
	logger      *slog.Logger

	// onTracked é chamado após cada tentativa de registro de métrica.
	// Usado em testes para sincronizar com a goroutine de telemetria.
	onTracked func(err error)
}

// NewService monta o orquestrador da busca inteligente.
func NewService(interpreter FilterInterpreter, cascade *Cascade, metrics MetricsRecorder, logger *slog.Logger) *Service {
	return &Service{
		interpreter: interpreter,
		cascade:     cascade,
		metrics:     metrics,
		logger:      logger,
	}
}

// SearchProducts executa a busca inteligente de ponta a ponta. A resposta
// é computada antes de qualquer registro de métrica; a telemetria corre em
// segundo plano e nunca atrasa nem falha a busca.
func (s *Service) SearchProducts(ctx context.Context, query, userID string) (*models.SearchResponse, error) {
	ctx, span := otel.Tracer("search").Start(ctx, "service.SearchProducts")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	start := time.Now()

	filters := s.interpreter.Interpret(ctx, query)

	resp, err := s.cascade.Search(ctx, query, filters)
	if err != nil {
		return nil, err
	}

	latency := time.Since(start)

	s.logger.Info("smart search event",
		"input_text", query,
		"generated_filters", filters,
		"ai_success", filters != nil,
		"fallback_applied", resp.FallbackApplied,
		"results_count", len(resp.Data),
		"latency_ms", latency.Milliseconds(),
	)

	go s.track(query, resp.AIUsed, resp.FallbackApplied, len(resp.Data), latency, userID)

	return resp, nil
}

// track registra a métrica da busca fora do caminho da resposta. Falhas
// são apenas logadas.
func (s *Service) track(query string, aiUsed, fallbackApplied bool, resultsCount int, latency time.Duration, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	err := s.metrics.TrackSearch(ctx, query, aiUsed, fallbackApplied, resultsCount, latency, userID)
	if err != nil {
		s.logger.Error("failed to record search metric", "error", err, "query", query)
	}
	if s.onTracked != nil {
		s.onTracked(err)
	}
}
