package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feiralivre/app-busca-catalogo/internal/abuse"
)

// RateLimit aplica o controle de abuso à rota de busca. A decisão usa o
// IP do cliente, o usuário autenticado (se houver) e a query; rejeições
// viram 429 com a mensagem e a sugestão de espera do guard.
func RateLimit(guard *abuse.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		err := guard.Admit(c.ClientIP(), GetUserID(c), query)
		if err != nil {
			var rej *abuse.RejectionError
			if errors.As(err, &rej) {
				c.Header("Retry-After", fmt.Sprintf("%d", int(rej.RetryAfter.Seconds())))
				c.JSON(http.StatusTooManyRequests, gin.H{
					"error":  rej.Message,
					"reason": rej.Reason,
				})
			} else {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Muitas requisições."})
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
