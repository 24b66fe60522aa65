package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-platform/internal/config"
	"quiz-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	userID := primitive.NewObjectID().Hex()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", userID, "--admin"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	auth := middleware.NewAuthenticator("cli-secret", time.Hour, false)
	claims, err := auth.ValidateToken(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("validate minted token: %v", err)
	}
	if claims.UserID != userID || !claims.IsAdmin() {
		t.Errorf("Unexpected claims %+v", claims)
	}
}

func TestTokenCommandRejectsBadUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--user", "alice"})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for non-hex user id")
	}
}

func TestWireMemoryStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageMemory
	cfg.Auth.JWTSecret = "wire-secret"

	a, err := wire(context.Background(), cfg)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer a.close()
	engine := a.router.Engine()

	token, _ := middleware.NewAuthenticator("wire-secret", time.Hour, false).GenerateToken(primitive.NewObjectID().Hex(), "", false)
	req := httptest.NewRequest(http.MethodGet, "/api/quiz/all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected empty list, got %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected healthy memory store, got %d", w.Code)
	}
}

func TestLoadConfigPortFlag(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("PORT", "7000")
	cfg, err := loadConfig("", "9090")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected flag to win, got %s", cfg.Server.Port)
	}
}

func TestWireMemoryStorageSeedsUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	seeded := primitive.NewObjectID()
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageMemory
	cfg.Storage.SeedUsers = []config.SeedUser{{ID: seeded.Hex(), Name: "Alice", Email: "alice@example.com"}}
	cfg.Auth.JWTSecret = "wire-secret"

	a, err := wire(context.Background(), cfg)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer a.close()
	engine := a.router.Engine()
	auth := middleware.NewAuthenticator("wire-secret", time.Hour, false)
	quizID := primitive.NewObjectID().Hex()

	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"seeded user", seeded.Hex(), http.StatusOK},
		{"unknown user", primitive.NewObjectID().Hex(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _ := auth.GenerateToken(tt.userID, "", false)
			req := httptest.NewRequest(http.MethodPost, "/api/quiz/terminate/"+quizID, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}
