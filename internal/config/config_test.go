package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

const validConfig = `
server:
  host: 127.0.0.1
  port: 8080
database:
  host: localhost
  port: 5432
  name: fortivus
  user: fortivus
  password: secret
auth:
  admin_api_key: test-admin-key
planner:
  base_url: http://planner.local
  api_key: planner-key
  model: coach-v1
admin:
  base_url: http://useradmin.local
  api_key: admin-key
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "fortivus" {
		t.Errorf("database.name = %q, want fortivus", cfg.Database.Name)
	}
	if cfg.Planner.Model != "coach-v1" {
		t.Errorf("planner.model = %q, want coach-v1", cfg.Planner.Model)
	}
	if cfg.Tailscale.Enabled {
		t.Error("tailscale should default to disabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, validConfig)

	t.Setenv("FORTIVUS_SERVER_PORT", "9090")
	t.Setenv("FORTIVUS_DB_PASSWORD", "env-secret")
	t.Setenv("FORTIVUS_AUTH_ADMIN_API_KEY", "env-admin-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Password != "env-secret" {
		t.Errorf("database.password = %q, want env-secret", cfg.Database.Password)
	}
	if cfg.Auth.AdminAPIKey != "env-admin-key" {
		t.Errorf("auth.admin_api_key = %q, want env-admin-key", cfg.Auth.AdminAPIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing server port", `
server:
  host: 127.0.0.1
database:
  host: localhost
  port: 5432
  name: fortivus
  user: fortivus
auth:
  admin_api_key: k
planner:
  base_url: http://planner.local
admin:
  base_url: http://useradmin.local
`},
		{"missing database name", `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  user: fortivus
auth:
  admin_api_key: k
planner:
  base_url: http://planner.local
admin:
  base_url: http://useradmin.local
`},
		{"missing admin api key", `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  name: fortivus
  user: fortivus
planner:
  base_url: http://planner.local
admin:
  base_url: http://useradmin.local
`},
		{"missing planner base url", `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  name: fortivus
  user: fortivus
auth:
  admin_api_key: k
admin:
  base_url: http://useradmin.local
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.local",
		Port:     5433,
		Name:     "fortivus",
		User:     "app",
		Password: "pw",
	}
	want := "postgres://app:pw@db.local:5433/fortivus?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.SSLMode = "require"
	if got := d.DSN(); got != "postgres://app:pw@db.local:5433/fortivus?sslmode=require" {
		t.Errorf("DSN() with sslmode = %q", got)
	}
}
