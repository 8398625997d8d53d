package main

import (
	"context"
	"log"
	"time"

	"github.com/feiralivre/app-busca-catalogo/internal/config"
	"github.com/feiralivre/app-busca-catalogo/internal/postgres"
)

// Instruções idempotentes: o binário pode rodar a cada deploy.
var statements = []string{
	`CREATE EXTENSION IF NOT EXISTS unaccent`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL,
		category_id BIGINT NOT NULL REFERENCES categories(id),
		image_url TEXT NOT NULL DEFAULT '',
		stock_qty INTEGER NOT NULL DEFAULT 0,
		weight_grams INTEGER NOT NULL DEFAULT 0,
		organization_id BIGINT NOT NULL,
		search_vector TSVECTOR,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE OR REPLACE FUNCTION products_search_vector_update() RETURNS trigger AS $$
	BEGIN
		NEW.search_vector := to_tsvector('portuguese',
			coalesce(NEW.name, '') || ' ' ||
			coalesce(NEW.description, '') || ' ' ||
			coalesce((SELECT name FROM categories WHERE id = NEW.category_id), ''));
		RETURN NEW;
	END
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS products_search_vector_trigger ON products`,

	`CREATE TRIGGER products_search_vector_trigger
		BEFORE INSERT OR UPDATE OF name, description, category_id ON products
		FOR EACH ROW EXECUTE FUNCTION products_search_vector_update()`,

	`CREATE INDEX IF NOT EXISTS idx_products_search_vector ON products USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_price ON products (price)`,

	`CREATE TABLE IF NOT EXISTS search_metrics (
		id UUID PRIMARY KEY,
		query TEXT NOT NULL,
		ai_used BOOLEAN NOT NULL,
		fallback_applied BOOLEAN NOT NULL,
		results_count INTEGER NOT NULL,
		zero_results BOOLEAN NOT NULL,
		latency_ms BIGINT NOT NULL,
		user_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_search_metrics_created_at ON search_metrics (created_at)`,

	`CREATE TABLE IF NOT EXISTS search_clicks (
		id UUID PRIMARY KEY,
		search_metric_id UUID NOT NULL REFERENCES search_metrics(id),
		product_id BIGINT NOT NULL,
		position INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_search_clicks_metric ON search_clicks (search_metric_id)`,
}

func main() {
	dbCfg := config.LoadDatabaseConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		log.Fatalf("Erro ao conectar no banco: %v", err)
	}
	defer pool.Close()

	for i, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("Erro na instrução %d: %v", i+1, err)
		}
	}

	log.Println("Migração concluída com sucesso")
}
