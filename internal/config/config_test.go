package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agenda.yaml")
	yml := `
app:
  name: consultorio
http:
  port: "9000"
storage:
  driver: sqlite
  sqlite_path: /tmp/agenda.db
calendar:
  reveal_interval: 50ms
roster:
  concurrency: 2
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := load(path, envMap(map[string]string{
		"PORT":               "9100",
		"ROSTER_CONCURRENCY": "8",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Name != "consultorio" {
		t.Fatalf("expected app name from file, got %q", cfg.App.Name)
	}
	if cfg.HTTP.Port != "9100" {
		t.Fatalf("expected env to override port, got %q", cfg.HTTP.Port)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.SQLitePath != "/tmp/agenda.db" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Calendar.RevealInterval != 50*time.Millisecond {
		t.Fatalf("expected 50ms reveal interval, got %s", cfg.Calendar.RevealInterval)
	}
	if cfg.Roster.Concurrency != 8 {
		t.Fatalf("expected env concurrency 8, got %d", cfg.Roster.Concurrency)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level to survive, got %q", cfg.Log.Level)
	}
}

func TestLoad_RejectsUnknownYAMLField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agenda.yaml")
	_ = os.WriteFile(path, []byte("storage:\n  drvier: sqlite\n"), 0o600)

	if _, err := load(path, envMap(nil)); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoad_DSNImpliesPostgres(t *testing.T) {
	cfg, err := load("", envMap(map[string]string{"DB_DSN": "postgres://x"}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Storage.Driver)
	}

	cfg, _ = load("", envMap(map[string]string{"DB_DSN": "postgres://x", "DB_DRIVER": "memory"}))
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("explicit DB_DRIVER must win, got %q", cfg.Storage.Driver)
	}
}

func TestLoad_BadEnvValues(t *testing.T) {
	for _, key := range []string{"CALENDAR_REVEAL_INTERVAL", "ROSTER_CONCURRENCY", "AUTH_TOKEN_TTL", "AUTH_COOKIE_SECURE"} {
		if _, err := load("", envMap(map[string]string{key: "nope"})); err == nil {
			t.Fatalf("expected error for bad %s", key)
		}
	}
}

func TestValidate_Combinations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad driver", func(c *Config) { c.Storage.Driver = "mysql" }, "storage.driver"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "storage.dsn"},
		{"local without secret", func(c *Config) { c.Auth.Mode = AuthLocal }, "jwt_secret"},
		{"remote without url", func(c *Config) { c.Auth.Mode = AuthRemote }, "auth.remote"},
		{"bad port", func(c *Config) { c.HTTP.Port = "http" }, "http.port"},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Base" }, "app.timezone"},
		{"zero concurrency", func(c *Config) { c.Roster.Concurrency = 0 }, "roster.concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_LocalAuthComplete(t *testing.T) {
	cfg := Default()
	cfg.Auth.Mode = AuthLocal
	cfg.Auth.JWTSecret = "0123456789abcdef"
	cfg.Auth.Operator = OperatorConfig{ID: "op-1", Email: "ana@example.com", PasswordHash: "$2a$10$x"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid local config, got %v", err)
	}
}
