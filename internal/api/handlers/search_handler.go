package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "github.com/feiralivre/app-busca-catalogo/internal/middleware"
	"github.com/feiralivre/app-busca-catalogo/internal/models"
	"github.com/feiralivre/app-busca-catalogo/internal/search"
)

// SearchHandler expõe a busca inteligente de produtos.
type SearchHandler struct {
	service *search.Service
}

// NewSearchHandler cria o handler sobre o orquestrador de busca.
func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search godoc
// @Summary Busca inteligente de produtos
// @Description Interpreta a query em linguagem natural, extrai filtros via IA e busca no catálogo com fallback textual
// @Tags search
// @Produce json
// @Param q query string false "Query em linguagem natural"
// @Success 200 {object} models.SearchResponse
// @Failure 429 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/public/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")

	// Query vazia tem resposta fixa: não é erro nem consulta ao catálogo,
	// e nenhum fallback chegou a rodar.
	if query == "" {
		c.JSON(http.StatusOK, models.SearchResponse{
			Interpretation:  "Nenhum termo de busca fornecido.",
			AIUsed:          false,
			FallbackApplied: false,
			Data:            []models.Product{},
		})
		return
	}

	resp, err := h.service.SearchProducts(c.Request.Context(), query, middlewares.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Erro ao realizar a busca. Tente novamente.",
		})
		return
	}

	if resp.Data == nil {
		resp.Data = []models.Product{}
	}
	c.JSON(http.StatusOK, resp)
}
