package store

import (
	"testing"
	"time"

	"github.com/pvieira/tarefinha/internal/database"
	"github.com/pvieira/tarefinha/internal/model"
)

func setupTaskTestDB(t *testing.T) (*TaskStore, *FamilyMemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTaskStore(db), NewFamilyMemberStore(db)
}

func TestTaskCreateAndGet(t *testing.T) {
	ts, ms := setupTaskTestDB(t)

	member, err := ms.Create("Benicio", "#10B981", "🧒", nil, true, nil)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	tod := model.TimeMorning
	task, err := ts.Create("Escovar os dentes", "🪥", model.CategoryChild, &member.ID, "daily", &tod, "Prin")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if task.Title != "Escovar os dentes" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if task.AssignedTo == nil || *task.AssignedTo != member.ID {
		t.Errorf("assigned_to = %v, want %d", task.AssignedTo, member.ID)
	}
	if task.TimeOfDay == nil || *task.TimeOfDay != model.TimeMorning {
		t.Errorf("time_of_day = %v, want morning", task.TimeOfDay)
	}
	if task.CompletedBy != nil || task.CompletedAt != nil {
		t.Error("new task should have no completion fields")
	}
	if task.LastResetAt.Before(task.CreatedAt) {
		t.Error("last_reset_at must not be older than created_at")
	}
}

func TestTaskCompleteOnlyOnce(t *testing.T) {
	ts, ms := setupTaskTestDB(t)
	member, _ := ms.Create("Jon", "#3B82F6", "👨", nil, false, nil)
	task, _ := ts.Create("Lavar a louça", "🍽️", model.CategoryAdult, &member.ID, "daily", nil, "Jon")

	now := time.Now()
	ok, err := ts.Complete(task.ID, member.ID, now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !ok {
		t.Fatal("first complete should succeed")
	}

	// Double submit: the status guard rejects it
	ok, err = ts.Complete(task.ID, member.ID, now)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if ok {
		t.Error("second complete should be a no-op")
	}

	got, _ := ts.GetByID(task.ID)
	if got.Status != model.StatusDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.CompletedBy == nil || *got.CompletedBy != member.ID {
		t.Errorf("completed_by = %v, want %d", got.CompletedBy, member.ID)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at should be set")
	}
}

func TestTaskReset(t *testing.T) {
	ts, ms := setupTaskTestDB(t)
	member, _ := ms.Create("Louise", "#F59E0B", "👸", nil, true, nil)
	task, _ := ts.Create("Arrumar a cama", "🛏️", model.CategoryChild, &member.ID, "daily", nil, "Prin")

	if _, err := ts.Complete(task.ID, member.ID, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	now := time.Now()
	ok, err := ts.Reset(task.ID, now)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !ok {
		t.Fatal("reset of done task should succeed")
	}

	got, _ := ts.GetByID(task.ID)
	if got.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo", got.Status)
	}
	if got.CompletedBy != nil || got.CompletedAt != nil {
		t.Error("completion fields should be cleared after reset")
	}

	// Second reset is a no-op: the row is already pending
	ok, err = ts.Reset(task.ID, now)
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if ok {
		t.Error("reset of a pending task should be a no-op")
	}
}

func TestTaskReopen(t *testing.T) {
	ts, ms := setupTaskTestDB(t)
	member, _ := ms.Create("Prin", "#EC4899", "👩", nil, false, nil)
	task, _ := ts.Create("Regar as plantas", "🪴", model.CategoryAdult, &member.ID, "", nil, "Prin")

	before, _ := ts.GetByID(task.ID)
	ts.Complete(task.ID, member.ID, time.Now())
	if err := ts.Reopen(task.ID); err != nil {
		t.Fatalf("reopen: %v", err)
	}

	got, _ := ts.GetByID(task.ID)
	if got.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo", got.Status)
	}
	if got.CompletedBy != nil || got.CompletedAt != nil {
		t.Error("completion fields should be cleared after reopen")
	}
	if !got.LastResetAt.Equal(before.LastResetAt) {
		t.Error("reopen must not touch last_reset_at")
	}
}

func TestTaskDeleteGroup(t *testing.T) {
	ts, ms := setupTaskTestDB(t)
	a, _ := ms.Create("Benicio", "#10B981", "🧒", nil, true, nil)
	b, _ := ms.Create("Louise", "#F59E0B", "👸", nil, true, nil)

	// Two instances of the same template plus one unrelated task
	ts.Create("Guardar os brinquedos", "🧸", model.CategoryChild, &a.ID, "daily", nil, "Prin")
	ts.Create("Guardar os brinquedos", "🧸", model.CategoryChild, &b.ID, "daily", nil, "Prin")
	ts.Create("Passear com o cachorro", "🐕", model.CategoryChild, &a.ID, "daily", nil, "Prin")

	n, err := ts.DeleteGroup("Guardar os brinquedos", "🧸", "daily")
	if err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d tasks, want 2", n)
	}

	remaining, _ := ts.List()
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining task, got %d", len(remaining))
	}
	if remaining[0].Title != "Passear com o cachorro" {
		t.Errorf("remaining task = %q", remaining[0].Title)
	}
}

func TestTaskListDone(t *testing.T) {
	ts, ms := setupTaskTestDB(t)
	member, _ := ms.Create("Jon", "#3B82F6", "👨", nil, false, nil)

	t1, _ := ts.Create("Tirar o lixo", "🗑️", model.CategoryAdult, &member.ID, "daily", nil, "Jon")
	ts.Create("Fazer compras", "🛒", model.CategoryAdult, &member.ID, "weekly:6", nil, "Jon")

	ts.Complete(t1.ID, member.ID, time.Now())

	done, err := ts.ListDone()
	if err != nil {
		t.Fatalf("list done: %v", err)
	}
	if len(done) != 1 {
		t.Fatalf("expected 1 done task, got %d", len(done))
	}
	if done[0].ID != t1.ID {
		t.Errorf("done task id = %d, want %d", done[0].ID, t1.ID)
	}
}

func TestTaskUpdateSortOrder(t *testing.T) {
	ts, ms := setupTaskTestDB(t)
	member, _ := ms.Create("Prin", "#EC4899", "👩", nil, false, nil)

	t1, _ := ts.Create("A", "🧹", model.CategoryAdult, &member.ID, "", nil, "Prin")
	t2, _ := ts.Create("B", "🧺", model.CategoryAdult, &member.ID, "", nil, "Prin")
	t3, _ := ts.Create("C", "🪣", model.CategoryAdult, &member.ID, "", nil, "Prin")

	if err := ts.UpdateSortOrder([]int64{t3.ID, t1.ID, t2.ID}); err != nil {
		t.Fatalf("update sort order: %v", err)
	}

	tasks, _ := ts.List()
	wantOrder := []int64{t3.ID, t1.ID, t2.ID}
	for i, id := range wantOrder {
		if tasks[i].ID != id {
			t.Errorf("tasks[%d].ID = %d, want %d", i, tasks[i].ID, id)
		}
	}
}
