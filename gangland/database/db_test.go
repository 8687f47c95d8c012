package database

import "testing"

func TestBuildConnString(t *testing.T) {
	t.Setenv("PG_SSLMODE", "")
	cfg := DBConfig{Host: "db", Port: 5432, User: "gang", Password: "pw", Database: "gangland"}

	want := "postgres://gang:pw@db:5432/gangland?connect_timeout=5&sslmode=disable"
	if got := buildConnString(cfg); got != want {
		t.Errorf("buildConnString() = %q, want %q", got, want)
	}

	cfg.SSLMode = "require"
	want = "postgres://gang:pw@db:5432/gangland?connect_timeout=5&sslmode=require"
	if got := buildConnString(cfg); got != want {
		t.Errorf("buildConnString() = %q, want %q", got, want)
	}
}

func TestSSLModeFromEnv(t *testing.T) {
	t.Setenv("PG_SSLMODE", "verify-full")
	if got := sslMode(DBConfig{}); got != "verify-full" {
		t.Errorf("sslMode() = %q, want verify-full", got)
	}
}

func TestJoinIdentifiers(t *testing.T) {
	if got := joinIdentifiers([]string{"players", "car_listings"}); got != `"players", "car_listings"` {
		t.Errorf("joinIdentifiers() = %s", got)
	}
}
