package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.LedgerName != "kittie" {
		t.Fatalf("ledger name = %q", cfg.LedgerName)
	}
	if !cfg.IsDev() {
		t.Fatal("development should be dev")
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("address = %q", cfg.Address())
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadProductionRequiresBackends(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL in production")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/kittie")
	t.Setenv("STRIPE_SECRET_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without Stripe credentials in production")
	}
}
