package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pvieira/tarefinha/internal/database"
	"github.com/pvieira/tarefinha/internal/model"
	"github.com/pvieira/tarefinha/internal/store"
)

func setupTaskHandlerTest(t *testing.T) (*TaskHandler, *store.TaskStore, *store.FamilyMemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tasks := store.NewTaskStore(db)
	members := store.NewFamilyMemberStore(db)
	scores := store.NewScoreStore(db)
	activities := store.NewActivityStore(db)
	settings := store.NewSettingsStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewTaskHandler(tasks, members, scores, activities, settings, nil, nil, logger)
	return h, tasks, members
}

func TestTaskCreateRejectsZeroAssignees(t *testing.T) {
	h, tasks, _ := setupTaskHandlerTest(t)

	body := `{"title":"Arrumar a cama","category":"child","assigned_to":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "at least one assignee is required" {
		t.Errorf("error = %q", resp["error"])
	}

	all, err := tasks.List()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected create wrote %d task(s)", len(all))
	}
}

func TestTaskCreateMissingAssignedToField(t *testing.T) {
	h, tasks, _ := setupTaskHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks",
		strings.NewReader(`{"title":"Lavar a louça","category":"adult"}`))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	all, err := tasks.List()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected create wrote %d task(s)", len(all))
	}
}

func TestTaskCreateOnePerAssignee(t *testing.T) {
	h, tasks, members := setupTaskHandlerTest(t)

	ana, err := members.Create("Ana", "#F59E0B", "👧", nil, true, nil)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	leo, err := members.Create("Leo", "#10B981", "👦", nil, true, nil)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	body := fmt.Sprintf(`{"title":"Guardar os brinquedos","emoji":"🧸","category":"child","recurrence_rule":"daily","assigned_to":[%d,%d]}`,
		ana.ID, leo.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created []model.Task
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d task(s), want 2", len(created))
	}
	for _, task := range created {
		if task.AssignedTo == nil {
			t.Errorf("task %d has no assignee", task.ID)
		}
	}

	all, err := tasks.List()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("stored %d task(s), want 2", len(all))
	}
}
