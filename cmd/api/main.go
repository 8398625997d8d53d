package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	_ "github.com/feiralivre/app-busca-catalogo/docs"
	"github.com/feiralivre/app-busca-catalogo/internal/abuse"
	"github.com/feiralivre/app-busca-catalogo/internal/api/routes"
	"github.com/feiralivre/app-busca-catalogo/internal/config"
	"github.com/feiralivre/app-busca-catalogo/internal/metrics"
	"github.com/feiralivre/app-busca-catalogo/internal/observability"
	"github.com/feiralivre/app-busca-catalogo/internal/postgres"
	"github.com/feiralivre/app-busca-catalogo/internal/search"
)

// @title           Busca Inteligente de Catálogo API
// @version         1.0
// @description     API de busca de produtos com interpretação de linguagem natural via LLM, fallback textual em cascata e métricas de qualidade
// @termsOfService  http://swagger.io/terms/

// @contact.name   Feira Livre
// @contact.url    https://feiralivre.app
// @contact.email  contato@feiralivre.app

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      api.feiralivre.app/app-busca-catalogo

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadConfig()

	observability.InitTracer(cfg)
	defer observability.ShutdownTracer()

	pool, err := postgres.Connect(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("Erro ao conectar no banco: %v", err)
	}
	defer pool.Close()

	catalogRepo := postgres.NewCatalogRepository(pool)
	metricsRepo := postgres.NewMetricsRepository(pool)

	engine := metrics.NewEngine(metricsRepo)
	interpreter := search.NewInterpreter(cfg.LLMAPIURL, cfg.LLMTimeout, logger)
	cascade := search.NewCascade(catalogRepo, logger)
	svc := search.NewService(interpreter, cascade, engine, logger)

	guard := abuse.NewGuard()
	defer guard.Stop()

	r := routes.SetupRouter(svc, engine, guard, pool)

	log.Printf("Servidor iniciado na porta %s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}
}
