package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

// ExtractUserContext extrai a identidade do usuário dos headers injetados
// pelo gateway. A autenticação em si acontece antes de chegar aqui; o
// gateway injeta após validar o JWT:
// - X-User-ID: ID do usuário (extraído de sub)
// - X-User-Role: Role do usuário (ADMIN ou USER)
// Sem headers, a requisição segue como anônima.
func ExtractUserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(UserIDKey, userID)
		}

		if role := c.GetHeader("X-User-Role"); role != "" {
			c.Set(UserRoleKey, strings.ToUpper(role))
		}

		c.Next()
	}
}

// GetUserID retorna o ID único do usuário, ou vazio para anônimos.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get(UserIDKey); exists {
		if userIDStr, ok := userID.(string); ok {
			return userIDStr
		}
	}
	return ""
}

// GetUserRole retorna o role do usuário (ADMIN ou USER).
func GetUserRole(c *gin.Context) string {
	if role, exists := c.Get(UserRoleKey); exists {
		if roleStr, ok := role.(string); ok {
			return roleStr
		}
	}
	return ""
}

// RequireRole middleware que verifica se o usuário tem uma das roles
// necessárias.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := GetUserRole(c)

		hasRole := false
		for _, role := range roles {
			if userRole == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":          "Acesso negado: permissão insuficiente",
				"roles_required": roles,
				"user_role":      userRole,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
