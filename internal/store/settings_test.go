package store

import (
	"testing"
	"time"

	"github.com/pvieira/tarefinha/internal/database"
)

func setupSettingsTestDB(t *testing.T) *SettingsStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSettingsStore(db)
}

func TestSettingsSetGet(t *testing.T) {
	ss := setupSettingsTestDB(t)

	if err := ss.Set("timezone", "America/Sao_Paulo"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := ss.Get("timezone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "America/Sao_Paulo" {
		t.Errorf("value = %q", got)
	}

	// Upsert
	if err := ss.Set("timezone", "UTC"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	got, _ = ss.Get("timezone")
	if got != "UTC" {
		t.Errorf("value after upsert = %q", got)
	}
}

func TestSettingsGetMissing(t *testing.T) {
	ss := setupSettingsTestDB(t)
	if _, err := ss.Get("nonexistent"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestSettingsDigestKeys(t *testing.T) {
	ss := setupSettingsTestDB(t)

	ss.Set("digest_enabled", "true")
	ss.Set("digest_email", "familia@example.com")
	ss.Set("timezone", "UTC") // unrelated key

	digest, err := ss.GetDigestSettings()
	if err != nil {
		t.Fatalf("get digest settings: %v", err)
	}
	if len(digest) != 2 {
		t.Errorf("expected 2 digest settings, got %d", len(digest))
	}
	if digest["digest_email"] != "familia@example.com" {
		t.Errorf("digest_email = %q", digest["digest_email"])
	}
}

func TestSettingsTimezone(t *testing.T) {
	ss := setupSettingsTestDB(t)

	// Unset: falls back to UTC
	if loc := ss.Timezone(); loc != time.UTC {
		t.Errorf("timezone = %v, want UTC", loc)
	}

	ss.Set("timezone", "America/Sao_Paulo")
	if loc := ss.Timezone(); loc.String() != "America/Sao_Paulo" {
		t.Errorf("timezone = %v", loc)
	}

	// Invalid value: falls back to UTC
	ss.Set("timezone", "Not/AZone")
	if loc := ss.Timezone(); loc != time.UTC {
		t.Errorf("timezone for invalid value = %v, want UTC", loc)
	}
}
