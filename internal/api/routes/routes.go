package routes

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/feiralivre/app-busca-catalogo/internal/abuse"
	"github.com/feiralivre/app-busca-catalogo/internal/api/handlers"
	"github.com/feiralivre/app-busca-catalogo/internal/metrics"
	middlewares "github.com/feiralivre/app-busca-catalogo/internal/middleware"
	"github.com/feiralivre/app-busca-catalogo/internal/search"
)

func SetupRouter(svc *search.Service, engine *metrics.Engine, guard *abuse.Guard, pool *pgxpool.Pool) *gin.Engine {
	registerValidations()

	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(middlewares.RequestTiming())
	r.Use(middlewares.ExtractUserContext())

	searchHandler := handlers.NewSearchHandler(svc)
	metricsHandler := handlers.NewMetricsHandler(engine)
	healthHandler := handlers.NewHealthHandler(pool)

	public := r.Group("/api/public")
	{
		// só a busca passa pelo controle de abuso; cliques não consomem cota
		public.GET("/search", middlewares.RateLimit(guard), searchHandler.Search)
		public.POST("/search/click", metricsHandler.TrackClick)
	}

	admin := r.Group("/api/admin")
	admin.Use(middlewares.RequireRole("ADMIN"))
	{
		admin.GET("/metrics/search", metricsHandler.Dashboard)
	}

	r.GET("/health", healthHandler.Health)
	r.GET("/liveness", healthHandler.Liveness)
	r.GET("/readiness", healthHandler.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// registerValidations adiciona validações customizadas ao binding do gin.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
