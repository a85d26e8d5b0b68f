package store

import (
	"testing"

	"github.com/pvieira/tarefinha/internal/database"
)

func setupScoreTestDB(t *testing.T) (*ScoreStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	member, err := NewFamilyMemberStore(db).Create("Benicio", "#10B981", "🧒", nil, true, nil)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return NewScoreStore(db), member.ID
}

func TestCreditTaskIdempotent(t *testing.T) {
	ss, memberID := setupScoreTestDB(t)

	awarded, err := ss.CreditTask(memberID, "2026-W10", 42)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if !awarded {
		t.Fatal("first credit should award a point")
	}

	// Same task again: no double count
	awarded, err = ss.CreditTask(memberID, "2026-W10", 42)
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if awarded {
		t.Error("second credit for the same task should be a no-op")
	}

	score, err := ss.Get(memberID, "2026-W10")
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if score.Points != 1 {
		t.Errorf("points = %d, want 1", score.Points)
	}
	if score.TasksCompleted != 1 {
		t.Errorf("tasks completed = %d, want 1", score.TasksCompleted)
	}
}

func TestCreditDistinctTasks(t *testing.T) {
	ss, memberID := setupScoreTestDB(t)

	ss.CreditTask(memberID, "2026-W10", 1)
	ss.CreditTask(memberID, "2026-W10", 2)
	ss.CreditTask(memberID, "2026-W10", 3)

	score, _ := ss.Get(memberID, "2026-W10")
	if score.Points != 3 {
		t.Errorf("points = %d, want 3", score.Points)
	}
	if score.TasksCompleted != 3 {
		t.Errorf("tasks completed = %d, want 3", score.TasksCompleted)
	}
}

func TestCreditSameTaskDifferentWeeks(t *testing.T) {
	ss, memberID := setupScoreTestDB(t)

	// A recurring task completed in two different weeks counts in both
	ss.CreditTask(memberID, "2026-W10", 7)
	awarded, err := ss.CreditTask(memberID, "2026-W11", 7)
	if err != nil {
		t.Fatalf("credit next week: %v", err)
	}
	if !awarded {
		t.Error("same task in a new week should credit again")
	}
}

func TestApplyPenaltySignCoercion(t *testing.T) {
	ss, memberID := setupScoreTestDB(t)

	// Positive input is negated, not rejected
	delta, err := ss.ApplyPenalty(memberID, "2026-W10", 3)
	if err != nil {
		t.Fatalf("penalty: %v", err)
	}
	if delta != -3 {
		t.Errorf("delta = %d, want -3", delta)
	}

	delta, err = ss.ApplyPenalty(memberID, "2026-W10", -3)
	if err != nil {
		t.Fatalf("penalty: %v", err)
	}
	if delta != -3 {
		t.Errorf("delta = %d, want -3", delta)
	}

	score, _ := ss.Get(memberID, "2026-W10")
	if score.Points != -6 {
		t.Errorf("points = %d, want -6", score.Points)
	}
	if score.TasksCompleted != 0 {
		t.Errorf("tasks completed = %d, want 0", score.TasksCompleted)
	}
}

func TestApplyPenaltyAfterCredits(t *testing.T) {
	ss, memberID := setupScoreTestDB(t)

	ss.CreditTask(memberID, "2026-W10", 1)
	ss.CreditTask(memberID, "2026-W10", 2)
	ss.ApplyPenalty(memberID, "2026-W10", -1)

	score, _ := ss.Get(memberID, "2026-W10")
	if score.Points != 1 {
		t.Errorf("points = %d, want 1", score.Points)
	}
	if score.TasksCompleted != 2 {
		t.Errorf("tasks completed = %d, want 2", score.TasksCompleted)
	}
}

func TestGetMissingScore(t *testing.T) {
	ss, memberID := setupScoreTestDB(t)

	score, err := ss.Get(memberID, "2026-W01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if score != nil {
		t.Error("expected nil for missing score record")
	}
}

func TestListByWeek(t *testing.T) {
	ss, memberID := setupScoreTestDB(t)

	ss.CreditTask(memberID, "2026-W10", 1)
	ss.CreditTask(memberID, "2026-W11", 2)

	scores, err := ss.ListByWeek("2026-W10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	if scores[0].Week != "2026-W10" {
		t.Errorf("week = %q", scores[0].Week)
	}
}
