package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goborsa/borsa/internal/core"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.TTL.Realtime != 60*time.Second {
		t.Errorf("realtime ttl = %s, want 60s", cfg.TTL.Realtime)
	}
	if cfg.TTL.Reference != 24*time.Hour {
		t.Errorf("reference ttl = %s, want 24h", cfg.TTL.Reference)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero http timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"zero stream timeout", func(c *Config) { c.Stream.Timeout = 0 }},
		{"zero batch concurrency", func(c *Config) { c.Batch.Concurrency = 0 }},
		{"negative ttl", func(c *Config) { c.TTL.History = -time.Second }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, core.ErrConfigInvalid) {
				t.Errorf("error = %v, want CONFIG_INVALID", err)
			}
		})
	}
}

func TestLoad_FileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "borsa.yaml")
	content := `
http:
  timeout: 5s
ttl:
  realtime: 30s
endpoints:
  isyatirim: http://localhost:9999
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", cfg.HTTP.Timeout)
	}
	if cfg.TTL.Realtime != 30*time.Second {
		t.Errorf("realtime ttl = %s, want 30s", cfg.TTL.Realtime)
	}
	// Untouched values keep their defaults.
	if cfg.TTL.Reference != 24*time.Hour {
		t.Errorf("reference ttl = %s, want default 24h", cfg.TTL.Reference)
	}
	if got := cfg.Endpoint("isyatirim", "https://real"); got != "http://localhost:9999" {
		t.Errorf("endpoint override = %q", got)
	}
	if got := cfg.Endpoint("tefas", "https://real"); got != "https://real" {
		t.Errorf("endpoint fallback = %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/borsa.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
