package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
)

// Interpreter traduz queries em linguagem natural para filtros
// estruturados via a API externa de LLM. A interpretação é melhor-esforço:
// qualquer falha (timeout, erro de rede, status não-2xx, payload inválido)
// resulta em nil, nunca em erro, e a busca segue pela escada textual.
type Interpreter struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewInterpreter cria o interpretador apontando para a URL do serviço de
// LLM com o timeout configurado.
func NewInterpreter(url string, timeout time.Duration, logger *slog.Logger) *Interpreter {
	return &Interpreter{
		url:     url,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type interpretRequest struct {
	Query string `json:"query"`
}

// Interpret envia a query para a API de LLM e devolve os filtros
// extraídos. Retorna nil quando a interpretação falha por qualquer motivo;
// um objeto vazio bem-formado retorna filtros vazios não-nil.
func (i *Interpreter) Interpret(ctx context.Context, query string) *models.AIFilters {
	ctx, span := otel.Tracer("search").Start(ctx, "interpreter.Interpret")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	body, err := json.Marshal(interpretRequest{Query: query})
	if err != nil {
		i.logger.Warn("llm request marshal failed", "error", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(body))
	if err != nil {
		i.logger.Warn("llm request build failed", "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		// Timeout ou falha de rede: a resposta tardia é descartada junto
		// com o contexto cancelado.
		i.logger.Warn("llm request failed", "error", err)
		span.SetAttributes(attribute.Bool("ai.success", false))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		i.logger.Warn("llm returned non-2xx status", "status", resp.StatusCode)
		span.SetAttributes(attribute.Bool("ai.success", false))
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		i.logger.Warn("llm response read failed", "error", err)
		return nil
	}

	var filters models.AIFilters
	if err := json.Unmarshal(data, &filters); err != nil {
		i.logger.Warn("llm response parse failed", "error", fmt.Errorf("unmarshal filters: %w", err))
		span.SetAttributes(attribute.Bool("ai.success", false))
		return nil
	}

	span.SetAttributes(attribute.Bool("ai.success", true))
	return &filters
}
