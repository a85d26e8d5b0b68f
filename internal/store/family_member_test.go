package store

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pvieira/tarefinha/internal/database"
)

func setupMemberTestDB(t *testing.T) *FamilyMemberStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFamilyMemberStore(db)
}

func TestMemberCRUD(t *testing.T) {
	ms := setupMemberTestDB(t)

	birth := "2018-05-12"
	m, err := ms.Create("Benicio", "#10B981", "🧒", nil, true, &birth)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Name != "Benicio" || !m.IsChild {
		t.Errorf("member = %+v", m)
	}
	if m.BirthDate == nil || *m.BirthDate != birth {
		t.Errorf("birth_date = %v, want %q", m.BirthDate, birth)
	}
	if m.HasPIN {
		t.Error("new member should have no PIN")
	}

	photo := "https://example.com/benicio.jpg"
	updated, err := ms.Update(m.ID, "Benício", "#10B981", "🧒", &photo, true, &birth)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Benício" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.PhotoURL == nil || *updated.PhotoURL != photo {
		t.Errorf("photo_url = %v", updated.PhotoURL)
	}

	if err := ms.Delete(m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := ms.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted member")
	}
}

func TestMemberSortOrderAssignment(t *testing.T) {
	ms := setupMemberTestDB(t)

	a, _ := ms.Create("Prin", "#EC4899", "👩", nil, false, nil)
	b, _ := ms.Create("Jon", "#3B82F6", "👨", nil, false, nil)

	if a.SortOrder != 0 || b.SortOrder != 1 {
		t.Errorf("sort orders = %d, %d, want 0, 1", a.SortOrder, b.SortOrder)
	}

	if err := ms.UpdateSortOrder([]int64{b.ID, a.ID}); err != nil {
		t.Fatalf("update sort order: %v", err)
	}
	members, _ := ms.List()
	if members[0].ID != b.ID {
		t.Errorf("first member = %d, want %d", members[0].ID, b.ID)
	}
}

func TestMemberPIN(t *testing.T) {
	ms := setupMemberTestDB(t)
	m, _ := ms.Create("Prin", "#EC4899", "👩", nil, false, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	if err := ms.SetPIN(m.ID, string(hash)); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	got, _ := ms.GetByID(m.ID)
	if !got.HasPIN {
		t.Error("has_pin should be true after SetPIN")
	}

	stored, err := ms.GetPINHash(m.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("1234")); err != nil {
		t.Errorf("stored hash does not match PIN: %v", err)
	}

	if err := ms.ClearPIN(m.ID); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	stored, _ = ms.GetPINHash(m.ID)
	if stored != "" {
		t.Error("pin hash should be empty after ClearPIN")
	}
}

func TestMemberNameExists(t *testing.T) {
	ms := setupMemberTestDB(t)
	m, _ := ms.Create("Louise", "#F59E0B", "👸", nil, true, nil)

	exists, err := ms.NameExists("Louise", 0)
	if err != nil {
		t.Fatalf("name exists: %v", err)
	}
	if !exists {
		t.Error("expected name to exist")
	}

	// Excluding the member itself
	exists, _ = ms.NameExists("Louise", m.ID)
	if exists {
		t.Error("name should not conflict with itself")
	}
}
