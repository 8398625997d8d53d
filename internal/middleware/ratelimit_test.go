package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/feiralivre/app-busca-catalogo/internal/abuse"
)

func newLimitedRouter(guard *abuse.Guard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ExtractUserContext())
	r.GET("/search", RateLimit(guard), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimitRejectsDuplicateQuery(t *testing.T) {
	guard := abuse.NewGuard()
	defer guard.Stop()
	r := newLimitedRouter(guard)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/search?q=tomate", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third duplicate must be 429, got %d", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header must be set")
	}

	var body map[string]any
	if err := json.Unmarshal(last.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["error"] != "Query duplicada detectada. Aguarde 5 segundos." {
		t.Errorf("unexpected error message: %v", body["error"])
	}
	if body["reason"] != "duplicate_query" {
		t.Errorf("unexpected reason: %v", body["reason"])
	}
}

func TestRateLimitUsesUserIdentityFromGatewayHeader(t *testing.T) {
	guard := abuse.NewGuard()
	defer guard.Stop()
	r := newLimitedRouter(guard)

	// 11 buscas distintas do mesmo IP, mas autenticadas: o limite anônimo
	// de 10/min não se aplica
	for i := 0; i < 11; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/search?q=busca+"+string(rune('a'+i)), nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-User-ID", "user-42")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}
}
