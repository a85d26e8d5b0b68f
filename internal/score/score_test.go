package score

import (
	"testing"

	"github.com/pvieira/tarefinha/internal/database"
	"github.com/pvieira/tarefinha/internal/store"
)

func TestRankCompetition(t *testing.T) {
	entries := []Entry{
		{Name: "Ana", Points: 10},
		{Name: "Bia", Points: 10},
		{Name: "Caio", Points: 7},
		{Name: "Duda", Points: 7},
		{Name: "Enzo", Points: 3},
	}
	Rank(entries)

	want := []int{1, 1, 3, 3, 5}
	for i, e := range entries {
		if e.Rank != want[i] {
			t.Errorf("entry %d (%s): rank = %d, want %d", i, e.Name, e.Rank, want[i])
		}
	}
}

func TestRankEmpty(t *testing.T) {
	Rank(nil)
	Rank([]Entry{})
}

func TestRankSingle(t *testing.T) {
	entries := []Entry{{Name: "Ana", Points: 0}}
	Rank(entries)
	if entries[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", entries[0].Rank)
	}
}

func setupScoreService(t *testing.T) (*Service, *store.ScoreStore, *store.FamilyMemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	scores := store.NewScoreStore(db)
	members := store.NewFamilyMemberStore(db)
	return NewService(scores, members), scores, members
}

func TestStandingsFullRoster(t *testing.T) {
	svc, scores, members := setupScoreService(t)

	ana, _ := members.Create("Ana", "#ff6b6b", "🦊", nil, true, nil)
	bia, _ := members.Create("Bia", "#4ecdc4", "🐰", nil, true, nil)
	caio, _ := members.Create("Caio", "#45b7d1", "🐻", nil, false, nil)

	const week = "2026-W11"
	scores.CreditTask(ana.ID, week, 1)
	scores.CreditTask(ana.ID, week, 2)
	scores.CreditTask(bia.ID, week, 3)
	scores.CreditTask(bia.ID, week, 4)
	// Caio has no record at all this week.

	entries, err := svc.Standings(week)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if entries[0].Rank != 1 || entries[1].Rank != 1 {
		t.Errorf("tied leaders should both rank 1, got %d and %d", entries[0].Rank, entries[1].Rank)
	}
	if entries[2].MemberID != caio.ID {
		t.Errorf("last entry = member %d, want %d", entries[2].MemberID, caio.ID)
	}
	if entries[2].Points != 0 || entries[2].TasksCompleted != 0 {
		t.Errorf("scoreless member should show zeros, got %d pts / %d tasks", entries[2].Points, entries[2].TasksCompleted)
	}
	if entries[2].Rank != 3 {
		t.Errorf("scoreless member rank = %d, want 3", entries[2].Rank)
	}
}

func TestStandingsPenaltyOrdering(t *testing.T) {
	svc, scores, members := setupScoreService(t)

	ana, _ := members.Create("Ana", "#ff6b6b", "🦊", nil, true, nil)
	bia, _ := members.Create("Bia", "#4ecdc4", "🐰", nil, true, nil)

	const week = "2026-W12"
	scores.CreditTask(ana.ID, week, 1)
	scores.ApplyPenalty(bia.ID, week, 3)

	entries, err := svc.Standings(week)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if entries[0].MemberID != ana.ID || entries[0].Points != 1 {
		t.Errorf("leader = member %d with %d pts", entries[0].MemberID, entries[0].Points)
	}
	if entries[1].Points != -3 {
		t.Errorf("penalized member points = %d, want -3", entries[1].Points)
	}
	if entries[1].Rank != 2 {
		t.Errorf("penalized member rank = %d, want 2", entries[1].Rank)
	}
}
