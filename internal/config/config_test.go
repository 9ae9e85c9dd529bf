package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.StoreDriver != StoreMemory || cfg.DBDriver != "pgx" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ApplyRateLimitPerMin != 3 || cfg.CASMaxRetries != 5 || cfg.AllowApplicationsWhenFilled {
		t.Fatalf("unexpected lifecycle defaults: %+v", cfg)
	}
	if cfg.RequestTimeout != 10*time.Second || len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected http defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/sitterboard")
	t.Setenv("DB_DRIVER", "pq")
	t.Setenv("ALLOW_APPLICATIONS_WHEN_FILLED", "true")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StorePostgres || cfg.DBDriver != "postgres" || !cfg.AllowApplicationsWhenFilled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RequestTimeout != 3*time.Second || len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected parsed values: %+v", cfg)
	}
}

func TestLoadReportsMissingValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, key := range []string{"JWT_SECRET", "DATABASE_URL"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err)
		}
	}
}

func TestLoadReportsInvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("APPLY_RATE_LIMIT_PER_MIN", "0")
	t.Setenv("CAS_MAX_RETRIES", "-1")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, key := range []string{"STORE_DRIVER", "APPLY_RATE_LIMIT_PER_MIN", "CAS_MAX_RETRIES"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err)
		}
	}
}

func TestLoadFileBelowEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitterboard.yaml")
	content := "jwt_secret: from-file\nhttp_port: \"9000\"\nstore_driver: bolt\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret != "from-file" || cfg.HTTPPort != "9100" || cfg.StoreDriver != StoreBolt {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
