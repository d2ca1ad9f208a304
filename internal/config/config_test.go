package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvConfigPath, "AISCHOOL_ENV", "AISCHOOL_ADDR", "AISCHOOL_DB",
		"AISCHOOL_REDIS_ADDR", "AISCHOOL_REDIS_DB", "AISCHOOL_CACHE_BACKEND",
		"AISCHOOL_SESSION_IDLE_TIMEOUT", "AISCHOOL_SESSION_SWEEP_INTERVAL",
		"AISCHOOL_CORS_ORIGINS", "AISCHOOL_REDIS_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Session.IdleTimeout != 30*time.Minute {
		t.Errorf("IdleTimeout = %s, want 30m", cfg.Session.IdleTimeout)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AISCHOOL_ADDR", ":9090")
	t.Setenv("AISCHOOL_REDIS_ADDR", "localhost:6379")
	t.Setenv("AISCHOOL_REDIS_DB", "2")
	t.Setenv("AISCHOOL_SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("AISCHOOL_CORS_ORIGINS", "http://a, http://b")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("Redis.DB = %d, want 2", cfg.Redis.DB)
	}
	if cfg.Session.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %s", cfg.Session.IdleTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "aischool.yaml")
	yml := "env: production\nserver:\n  addr: \":7000\"\nsession:\n  idle_timeout: 10m\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AISCHOOL_ADDR", ":7001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction = false, want true")
	}
	if cfg.Server.Addr != ":7001" {
		t.Errorf("Addr = %q, env should win over file", cfg.Server.Addr)
	}
	if cfg.Session.IdleTimeout != 10*time.Minute {
		t.Errorf("IdleTimeout = %s, want 10m", cfg.Session.IdleTimeout)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		path string
	}{
		{"missing explicit file", nil, "/nonexistent/aischool.yaml"},
		{"bad duration", map[string]string{"AISCHOOL_SESSION_IDLE_TIMEOUT": "soon"}, ""},
		{"bad int", map[string]string{"AISCHOOL_REDIS_DB": "x"}, ""},
		{"unknown backend", map[string]string{"AISCHOOL_CACHE_BACKEND": "memcached"}, ""},
		{"redis without addr", map[string]string{"AISCHOOL_CACHE_BACKEND": "redis"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tt.path); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}
