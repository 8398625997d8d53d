package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feiralivre/app-busca-catalogo/internal/metrics"
)

// MetricsHandler expõe o registro de cliques e o dashboard de qualidade
// da busca.
type MetricsHandler struct {
	engine *metrics.Engine
}

// NewMetricsHandler cria o handler sobre o motor de métricas.
func NewMetricsHandler(engine *metrics.Engine) *MetricsHandler {
	return &MetricsHandler{engine: engine}
}

type clickRequest struct {
	SearchMetricID string `json:"search_metric_id" binding:"required,notblank,uuid"`
	ProductID      int64  `json:"product_id" binding:"required"`
	Position       int    `json:"position" binding:"min=0"`
}

// TrackClick godoc
// @Summary Registra o clique em um resultado de busca
// @Tags metrics
// @Accept json
// @Produce json
// @Param click body clickRequest true "Clique"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/public/search/click [post]
func (h *MetricsHandler) TrackClick(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payload inválido: " + err.Error()})
		return
	}

	searchID, err := uuid.Parse(req.SearchMetricID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search_metric_id inválido"})
		return
	}

	if err := h.engine.TrackClick(c.Request.Context(), searchID, req.ProductID, req.Position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao registrar clique."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registrado"})
}

// Dashboard godoc
// @Summary Indicadores de qualidade da busca
// @Description Agrega taxa de zero resultados, CTR, latências médias e o score de qualidade da janela
// @Tags metrics
// @Produce json
// @Param hours query int false "Janela em horas (default 24)"
// @Success 200 {object} metrics.Dashboard
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/admin/metrics/search [get]
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetro hours inválido"})
			return
		}
		hours = parsed
	}

	dashboard, err := h.engine.BuildDashboard(c.Request.Context(), hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao montar o dashboard."})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
