package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_REQUIRED", "")
	t.Setenv("BARCODE_CACHE_TTL_SECONDS", "")

	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.Address() != ":3000" {
		t.Fatalf("Address() = %q", cfg.Address())
	}
	if cfg.AuthRequired {
		t.Fatal("AuthRequired defaults to true, want false")
	}
	if cfg.BarcodeCacheTTLSeconds != 300 {
		t.Fatalf("BarcodeCacheTTLSeconds = %d, want 300", cfg.BarcodeCacheTTLSeconds)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "60")
	t.Setenv("BARCODE_CACHE_TTL_SECONDS", "bogus")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if !cfg.AuthRequired {
		t.Fatal("AuthRequired = false, want true")
	}
	if cfg.AccessTokenTTLMinutes != 60 {
		t.Fatalf("AccessTokenTTLMinutes = %d, want 60", cfg.AccessTokenTTLMinutes)
	}
	// Unparseable TTL falls back to the default.
	if cfg.BarcodeCacheTTLSeconds != 300 {
		t.Fatalf("BarcodeCacheTTLSeconds = %d, want 300", cfg.BarcodeCacheTTLSeconds)
	}
}
