package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "clinic_test")
	t.Setenv("JWT_SECRET", "0123456789abcdefghijklmnopqrstuv")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected development env, got %s", cfg.Env)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("expected 7 day token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Errorf("expected 15m cache ttl, got %v", cfg.CacheTTL)
	}
}

func TestLoad_RequiresMongoURI(t *testing.T) {
	setRequired(t)
	t.Setenv("MONGODB_URI", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when MONGODB_URI is missing")
	}
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "too-short")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRES_IN", "12h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || !cfg.IsProduction() || cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	origins := cfg.Origins()
	if len(origins) != 2 || origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", origins)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"3600", time.Hour, false},
		{"", 0, true},
		{"xd", 0, true},
		{"forever", 0, true},
		{"0", 0, true},
		{"-1h", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
