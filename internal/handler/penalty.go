package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pvieira/tarefinha/internal/model"
	"github.com/pvieira/tarefinha/internal/push"
	"github.com/pvieira/tarefinha/internal/store"
	"github.com/pvieira/tarefinha/internal/week"
	"github.com/pvieira/tarefinha/internal/websocket"
)

type PenaltyHandler struct {
	penalties  *store.PenaltyStore
	members    *store.FamilyMemberStore
	scores     *store.ScoreStore
	activities *store.ActivityStore
	settings   *store.SettingsStore
	hub        *websocket.Hub
	push       *push.Service
	logger     *slog.Logger
}

func NewPenaltyHandler(penalties *store.PenaltyStore, members *store.FamilyMemberStore, scores *store.ScoreStore, activities *store.ActivityStore, settings *store.SettingsStore, hub *websocket.Hub, pushSvc *push.Service, logger *slog.Logger) *PenaltyHandler {
	return &PenaltyHandler{
		penalties:  penalties,
		members:    members,
		scores:     scores,
		activities: activities,
		settings:   settings,
		hub:        hub,
		push:       pushSvc,
		logger:     logger.With("component", "handler"),
	}
}

func (h *PenaltyHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *PenaltyHandler) ListReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := h.penalties.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list penalty reasons"})
		return
	}
	if reasons == nil {
		reasons = []model.PenaltyReason{}
	}
	writeJSON(w, http.StatusOK, reasons)
}

type penaltyReasonRequest struct {
	Emoji  string `json:"emoji"`
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

func (h *PenaltyHandler) CreateReason(w http.ResponseWriter, r *http.Request) {
	var req penaltyReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason is required"})
		return
	}
	if req.Emoji == "" {
		req.Emoji = "⚠️"
	}

	reason, err := h.penalties.Create(req.Emoji, req.Reason, req.Points)
	if err != nil {
		h.logger.Error("create penalty reason", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create penalty reason"})
		return
	}

	h.broadcast(websocket.NewMessage("penalty_reason", "created", reason.ID, nil))
	writeJSON(w, http.StatusCreated, reason)
}

func (h *PenaltyHandler) UpdateReason(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.penalties.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get penalty reason"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "penalty reason not found"})
		return
	}

	var req penaltyReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason is required"})
		return
	}
	if req.Emoji == "" {
		req.Emoji = existing.Emoji
	}

	reason, err := h.penalties.Update(id, req.Emoji, req.Reason, req.Points)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update penalty reason"})
		return
	}

	h.broadcast(websocket.NewMessage("penalty_reason", "updated", id, nil))
	writeJSON(w, http.StatusOK, reason)
}

func (h *PenaltyHandler) DeleteReason(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.penalties.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get penalty reason"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "penalty reason not found"})
		return
	}

	if err := h.penalties.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete penalty reason"})
		return
	}

	h.broadcast(websocket.NewMessage("penalty_reason", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Apply charges a catalog penalty to a member for the current week. The
// deduction lands on the ledger, the timeline, and the member's devices.
func (h *PenaltyHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID int64 `json:"member_id"`
		ReasonID int64 `json:"reason_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	member, err := h.members.GetByID(req.MemberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check family member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "family member not found"})
		return
	}

	reason, err := h.penalties.GetByID(req.ReasonID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get penalty reason"})
		return
	}
	if reason == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "penalty reason not found"})
		return
	}

	local := time.Now().In(h.settings.Timezone())
	weekStr := week.Of(local)
	applied, err := h.scores.ApplyPenalty(req.MemberID, weekStr, reason.Points)
	if err != nil {
		h.logger.Error("apply penalty", "member_id", req.MemberID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to apply penalty"})
		return
	}

	if _, err := h.activities.Create(req.MemberID, model.ActivityPenalty, local.Format("2006-01-02"), applied, reason.Reason, reason.Emoji); err != nil {
		h.logger.Error("record penalty activity", "member_id", req.MemberID, "error", err)
	}

	h.broadcast(websocket.NewMessage("score", "updated", req.MemberID, map[string]any{"week": weekStr}))

	if h.push != nil {
		h.push.NotifyMember(req.MemberID, push.Payload{
			Title: "Pontos perdidos",
			Body:  fmt.Sprintf("%s %s (%d pontos)", reason.Emoji, reason.Reason, applied),
			URL:   "/pontos",
			Tag:   "penalty",
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"member_id": req.MemberID,
		"week":      weekStr,
		"points":    applied,
	})
}
