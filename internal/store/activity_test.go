package store

import (
	"testing"

	"github.com/pvieira/tarefinha/internal/database"
	"github.com/pvieira/tarefinha/internal/model"
)

func setupActivityTestDB(t *testing.T) (*ActivityStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	member, err := NewFamilyMemberStore(db).Create("Louise", "#F59E0B", "👸", nil, true, nil)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return NewActivityStore(db), member.ID
}

func TestActivityCreate(t *testing.T) {
	as, memberID := setupActivityTestDB(t)

	a, err := as.Create(memberID, model.ActivityTask, "2026-03-09", 1, "Arrumou a cama", "🛏️")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Type != model.ActivityTask || a.Points != 1 {
		t.Errorf("activity = %+v", a)
	}
	if a.Date != "2026-03-09" {
		t.Errorf("date = %q", a.Date)
	}
}

func TestActivityListByMemberDateRange(t *testing.T) {
	as, memberID := setupActivityTestDB(t)

	as.Create(memberID, model.ActivityTask, "2026-03-09", 1, "Arrumou a cama", "🛏️")
	as.Create(memberID, model.ActivityPenalty, "2026-03-11", -2, "Não obedeceu", "🙉")
	as.Create(memberID, model.ActivityTask, "2026-03-20", 1, "Escovou os dentes", "🪥") // outside range

	got, err := as.ListByMemberDateRange(memberID, "2026-03-09", "2026-03-15")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(got))
	}
	// Newest first
	if got[0].Date != "2026-03-11" {
		t.Errorf("first activity date = %q, want 2026-03-11", got[0].Date)
	}
	if got[0].Type != model.ActivityPenalty {
		t.Errorf("first activity type = %q", got[0].Type)
	}
}
