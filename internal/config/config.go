// Package config gerencia configurações da aplicação via variáveis de ambiente.
//
// # Variáveis de Ambiente
//
// ## LLM API
//   - LLM_API_URL: URL do serviço de extração de filtros (OBRIGATÓRIA)
//   - LLM_TIMEOUT_MS: Timeout da chamada em milissegundos (default: 2000)
//
// ## Servidor
//   - SERVER_PORT: Porta HTTP (default: 8080)
//
// ## Banco de dados
//   - DATABASE_HOST: Host do Postgres (default: localhost)
//   - DATABASE_PORT: Porta (default: 5432)
//   - DATABASE_USER: Usuário (default: postgres)
//   - DATABASE_PASSWORD: Senha
//   - DATABASE_NAME: Nome do banco (default: catalogo)
//   - DATABASE_SSLMODE: Modo SSL (default: disable)
//
// ## Tracing
//   - TRACING_ENABLED: Habilita tracing OTLP (default: false)
//   - TRACING_ENDPOINT: Endpoint gRPC do coletor (default: localhost:4317)
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig agrupa os parâmetros de conexão com o Postgres
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Config struct {
	ServerPort string

	// LLM API configuration
	LLMAPIURL  string
	LLMTimeout time.Duration

	// Database configuration
	Database DatabaseConfig

	// Tracing configuration
	TracingEnabled  bool
	TracingEndpoint string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		LLMAPIURL:  getEnv("LLM_API_URL", ""),
		LLMTimeout: time.Duration(getEnvInt("LLM_TIMEOUT_MS", 2000)) * time.Millisecond,

		Database: databaseFromEnv(),

		TracingEnabled:  getEnv("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),
	}

	// A interpretação de queries depende do serviço de LLM; sem a URL o
	// processo não deve subir.
	if cfg.LLMAPIURL == "" {
		log.Fatal("LLM_API_URL environment variable is required but not set")
	}

	return cfg
}

// LoadDatabaseConfig carrega apenas os parâmetros do banco. Para binários
// que não falam com o serviço de LLM (ex: migração de schema) e portanto
// não devem exigir LLM_API_URL.
func LoadDatabaseConfig() DatabaseConfig {
	_ = godotenv.Load()
	return databaseFromEnv()
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DATABASE_HOST", "localhost"),
		Port:     getEnvInt("DATABASE_PORT", 5432),
		User:     getEnv("DATABASE_USER", "postgres"),
		Password: getEnv("DATABASE_PASSWORD", ""),
		Name:     getEnv("DATABASE_NAME", "catalogo"),
		SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
