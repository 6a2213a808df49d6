package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"velum-go/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/items/:id", func(c *gin.Context) {
		auth.SetClaims(c, &auth.Claims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}})
		c.Status(http.StatusForbidden)
	})

	for _, path := range []string{"/health", "/items/42", "/missing"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Request-ID", "req-"+path)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2 (health skipped)", len(entries))
	}

	item := entries[0].ContextMap()
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("403 logged at %v, want warn", entries[0].Level)
	}
	if item["route"] != "/items/:id" || item["user"] != "7" || item["role"] != "user" || item["request_id"] != "req-/items/42" {
		t.Errorf("fields = %v", item)
	}

	if got := entries[1].ContextMap()["route"]; got != "unmatched" {
		t.Errorf("route for unknown path = %v, want unmatched", got)
	}
}
