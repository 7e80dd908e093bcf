package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CacheSize != 512 {
		t.Errorf("CacheSize = %d, want 512", cfg.CacheSize)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	want := "host=localhost port=5432 user=matchminds password=matchminds dbname=matchminds sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"bad cache size", map[string]string{"JWT_SECRET": "s", "CACHE_SIZE": "lots"}},
		{"bad insight mode", map[string]string{"JWT_SECRET": "s", "INSIGHT_MODE": "cli"}},
		{"api mode without key", map[string]string{"JWT_SECRET": "s", "INSIGHT_MODE": "api", "ANTHROPIC_API_KEY": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestLoadAnthropicKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("INSIGHT_MODE", "api")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("AnthropicAPIKey = %q, want sk-test", cfg.AnthropicAPIKey)
	}
}
