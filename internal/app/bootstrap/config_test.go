package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeFile(t, "default.yaml", `
service:
  http_port: 8181
dependencies:
  postgres_url: postgres://file/db
  redis_url: redis://file:6379/0
auth:
  session_ttl_hours: 4
intake:
  visitor_cookie_days: 30
  cookie_secure: true
outbox:
  batch_size: 10
`)
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("DB_URL", "postgres://env/db")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 9191 {
		t.Fatalf("env should win over file: got=%d want=9191", cfg.HTTPPort)
	}
	if cfg.DatabaseURL != "postgres://env/db" || cfg.RedisURL != "redis://file:6379/0" {
		t.Fatalf("unexpected dependency urls: %s %s", cfg.DatabaseURL, cfg.RedisURL)
	}
	if cfg.SessionTTL != 4*time.Hour || cfg.VisitorCookieTTL != 30*24*time.Hour || !cfg.CookieSecure {
		t.Fatalf("unexpected session settings: %+v", cfg)
	}
	if cfg.OutboxBatchSize != 10 || cfg.OutboxMaxRetries != 5 {
		t.Fatalf("unexpected outbox settings: batch=%d retries=%d", cfg.OutboxBatchSize, cfg.OutboxMaxRetries)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}

func TestLoadConfigRequiresStorageForPostgres(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("POSTGRES_URL", "")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error without database url")
	}

	t.Setenv("STORAGE_DRIVER", "memory")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("memory driver should not need urls: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected driver: got=%s", cfg.StorageDriver)
	}

	t.Setenv("STORAGE_DRIVER", "sqlite")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestLoadConfigRejectsMissingKeysWithoutEphemeral(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_ALLOW_EPHEMERAL", "false")
	t.Setenv("JWT_PUBLIC_KEY_PEM", "")
	t.Setenv("JWT_PRIVATE_KEY_PEM", "")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error without jwt keys")
	}
}

func TestLoadPolicyFromFileAndDefault(t *testing.T) {
	policy, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("default policy: %v", err)
	}
	if got := len(policy.Groups()); got != 2 {
		t.Fatalf("unexpected default groups: got=%d want=2", got)
	}

	path := writeFile(t, "groups.yaml", `
groups:
  - name: Operadores
    access_level: superadmin
    grants:
      user_report: [view]
`)
	policy, err = LoadPolicy(path)
	if err != nil {
		t.Fatalf("file policy: %v", err)
	}
	if name, ok := policy.GroupName("superadmin"); !ok || name != "Operadores" {
		t.Fatalf("unexpected group name: %s %v", name, ok)
	}
	if _, ok := policy.GroupName("admin"); ok {
		t.Fatalf("admin level should be unbound")
	}

	bad := writeFile(t, "bad.yaml", `
groups:
  - name: Otros
    access_level: owner
`)
	if _, err := LoadPolicy(bad); err == nil {
		t.Fatalf("expected error for unknown access level")
	}
}

func TestOpenCoreWithMemoryStorage(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_ALLOW_EPHEMERAL", "true")
	t.Setenv("GROUPS_CONFIG", "")

	core, err := OpenCore(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("open core: %v", err)
	}
	defer core.Close()
	if core.Signer == nil || core.Verifier == nil {
		t.Fatalf("ephemeral keys should provide signer and verifier")
	}
	publisher, closePublisher, err := core.Publisher()
	if err != nil || publisher == nil {
		t.Fatalf("publisher: %v", err)
	}
	closePublisher()

	res, err := core.Service.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.CatalogRows != 6 || !res.AdministratorAdded {
		t.Fatalf("unexpected seed result: %+v", res)
	}
}
