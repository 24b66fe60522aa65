package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "7000"
  request_timeout: 3s
storage:
  driver: memory
redis:
  addr: "cache:6379"
  ttl: 45s
auth:
  jwt_secret: from-yaml
`)
	t.Setenv("PORT", "7100")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "7100" {
		t.Errorf("Expected env port 7100, got %s", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("Expected env secret to win, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("Expected memory storage, got %s", cfg.Storage.Driver)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.TTL != 45*time.Second {
		t.Errorf("Expected redis settings from yaml, got %+v", cfg.Redis)
	}
	if cfg.Server.RequestTimeout != 3*time.Second {
		t.Errorf("Expected request timeout 3s, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Mongo.Database != "quiz_platform" {
		t.Errorf("Expected default database to survive, got %s", cfg.Mongo.Database)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: sqlite\nauth:\n  jwt_secret: s\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for unknown storage driver")
	}
}

func TestLoadRequiresSecretOrGateway(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\n")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error without a JWT secret")
	}

	t.Setenv("TRUST_GATEWAY_HEADERS", "true")
	if _, err := Load(path); err != nil {
		t.Fatalf("Expected gateway mode to load without a secret, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestCORSOriginsFromEnv(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\nauth:\n  jwt_secret: s\n")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.IsProduction() {
		t.Error("Expected production environment")
	}
}

func TestExampleConfigLoads(t *testing.T) {
	t.Setenv("JWT_SECRET", "example")
	cfg, err := Load(filepath.Join("..", "..", "config", "config.example.yaml"))
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	if cfg.Mongo.ConnectTimeout != 10*time.Second || cfg.Redis.TTL != 30*time.Second {
		t.Errorf("Unexpected durations %v %v", cfg.Mongo.ConnectTimeout, cfg.Redis.TTL)
	}
	if cfg.Storage.Driver != StorageMongo || len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("Unexpected example config %+v", cfg)
	}
}

func TestSeedUsers(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: memory
  seed_users:
    - id: 65f1c0a2b3c4d5e6f7a8b9c0
      name: Alice
      email: alice@example.com
auth:
  jwt_secret: s
`)
	t.Setenv("SEED_USERS", "65f1c0a2b3c4d5e6f7a8b9c1, ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	users := cfg.Storage.SeedUsers
	if len(users) != 2 {
		t.Fatalf("Expected yaml and env seed users, got %+v", users)
	}
	if users[0].Name != "Alice" || users[0].Email != "alice@example.com" {
		t.Errorf("Unexpected yaml seed user %+v", users[0])
	}
	if users[1].ID != "65f1c0a2b3c4d5e6f7a8b9c1" {
		t.Errorf("Unexpected env seed user %+v", users[1])
	}
}

func TestSeedUsersRejectMalformedID(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\nauth:\n  jwt_secret: s\n")
	t.Setenv("SEED_USERS", "alice")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for a seed user id that is not an object id")
	}
}
