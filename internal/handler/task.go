package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pvieira/tarefinha/internal/model"
	"github.com/pvieira/tarefinha/internal/recurrence"
	"github.com/pvieira/tarefinha/internal/store"
	"github.com/pvieira/tarefinha/internal/sweep"
	"github.com/pvieira/tarefinha/internal/week"
	"github.com/pvieira/tarefinha/internal/websocket"
)

type TaskHandler struct {
	tasks      *store.TaskStore
	members    *store.FamilyMemberStore
	scores     *store.ScoreStore
	activities *store.ActivityStore
	settings   *store.SettingsStore
	sweeper    *sweep.Sweeper
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, members *store.FamilyMemberStore, scores *store.ScoreStore, activities *store.ActivityStore, settings *store.SettingsStore, sweeper *sweep.Sweeper, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:      tasks,
		members:    members,
		scores:     scores,
		activities: activities,
		settings:   settings,
		sweeper:    sweeper,
		hub:        hub,
		logger:     logger.With("component", "handler"),
	}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type taskRequest struct {
	Title          string           `json:"title"`
	Emoji          string           `json:"emoji"`
	Category       string           `json:"category"`
	AssignedTo     []int64          `json:"assigned_to"`
	RecurrenceRule string           `json:"recurrence_rule"`
	TimeOfDay      *model.TimeOfDay `json:"time_of_day"`
	CreatedBy      string           `json:"created_by"`
}

func (req *taskRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if len(req.AssignedTo) == 0 {
		return "at least one assignee is required"
	}
	switch model.TaskCategory(req.Category) {
	case model.CategoryAdult, model.CategoryChild:
	default:
		return "category must be adult or child"
	}
	if _, err := recurrence.Parse(req.RecurrenceRule); err != nil {
		return "invalid recurrence rule"
	}
	if req.TimeOfDay != nil {
		switch *req.TimeOfDay {
		case model.TimeMorning, model.TimeAfternoon, model.TimeNight:
		default:
			return "time_of_day must be morning, afternoon, or night"
		}
	}
	return ""
}

// Create makes one task instance per assignee. All instances share title,
// emoji, and rule, so they can later be deleted as a group.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	if req.Emoji == "" {
		req.Emoji = "📝"
	}

	for _, memberID := range req.AssignedTo {
		member, err := h.members.GetByID(memberID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check family member"})
			return
		}
		if member == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family member not found"})
			return
		}
	}

	var created []model.Task
	category := model.TaskCategory(req.Category)
	for _, memberID := range req.AssignedTo {
		id := memberID
		task, err := h.tasks.Create(req.Title, req.Emoji, category, &id, req.RecurrenceRule, req.TimeOfDay, req.CreatedBy)
		if err != nil {
			h.logger.Error("create task", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
			return
		}
		created = append(created, *task)
	}

	for _, t := range created {
		h.broadcast(websocket.NewMessage("task", "created", t.ID, nil))
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns all tasks, or only the ones due today when ?due=today is set.
// The due view first runs a sweep so a board opened after a reset boundary
// never shows stale completions.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}

	if r.URL.Query().Get("due") == "today" {
		if h.sweeper != nil && h.sweeper.Run(time.Now()) > 0 {
			tasks, err = h.tasks.List()
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
				return
			}
		}
		today := time.Now().In(h.settings.Timezone()).Weekday()
		due := tasks[:0]
		for _, t := range tasks {
			rule, err := recurrence.Parse(t.RecurrenceRule)
			if err != nil {
				continue
			}
			if rule.IsDueOn(today) {
				due = append(due, t)
			}
		}
		tasks = due
	}

	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	if req.Emoji == "" {
		req.Emoji = existing.Emoji
	}

	task, err := h.tasks.Update(id, req.Title, req.Emoji, model.TaskCategory(req.Category), req.RecurrenceRule, req.TimeOfDay)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))
	writeJSON(w, http.StatusOK, task)
}

// Complete marks the task done and credits one point to the completer for
// the current week. Completing an already-done task is a conflict and never
// double-credits.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	var req struct {
		CompletedBy int64 `json:"completed_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CompletedBy == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "completed_by is required"})
		return
	}

	member, err := h.members.GetByID(req.CompletedBy)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check family member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family member not found"})
		return
	}

	now := time.Now()
	ok, err := h.tasks.Complete(id, req.CompletedBy, now)
	if err != nil {
		h.logger.Error("complete task", "task_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete task"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "task is already done"})
		return
	}

	local := now.In(h.settings.Timezone())
	weekStr := week.Of(local)
	credited, err := h.scores.CreditTask(req.CompletedBy, weekStr, id)
	if err != nil {
		h.logger.Error("credit task", "task_id", id, "error", err)
	}
	if credited {
		if _, err := h.activities.Create(req.CompletedBy, model.ActivityTask, local.Format("2006-01-02"), 1, task.Title, task.Emoji); err != nil {
			h.logger.Error("record activity", "task_id", id, "error", err)
		}
		h.broadcast(websocket.NewMessage("score", "updated", req.CompletedBy, map[string]any{"week": weekStr}))
	}

	h.broadcast(websocket.NewMessage("task", "completed", id, nil))

	updated, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Reopen puts a done task back to pending. The week's point stays on the
// ledger: reopening is for mistaken taps, not score reversal.
func (h *TaskHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	if err := h.tasks.Reopen(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reopen task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "reopened", id, nil))

	updated, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGroup removes every instance created from the same template (same
// title, emoji, and recurrence rule across assignees).
func (h *TaskHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string `json:"title"`
		Emoji          string `json:"emoji"`
		RecurrenceRule string `json:"recurrence_rule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	n, err := h.tasks.DeleteGroup(req.Title, req.Emoji, req.RecurrenceRule)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task group"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", 0, map[string]any{"count": n}))
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *TaskHandler) UpdateSortOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids are required"})
		return
	}

	if err := h.tasks.UpdateSortOrder(req.IDs); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update sort order"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "reordered", 0, nil))
	w.WriteHeader(http.StatusNoContent)
}
