package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/pvieira/tarefinha/internal/model"
	"github.com/pvieira/tarefinha/internal/store"
)

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type ActivityHandler struct {
	activities *store.ActivityStore
	members    *store.FamilyMemberStore
}

func NewActivityHandler(activities *store.ActivityStore, members *store.FamilyMemberStore) *ActivityHandler {
	return &ActivityHandler{activities: activities, members: members}
}

// List returns a member's point timeline between ?start= and ?end=
// (inclusive, YYYY-MM-DD).
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	memberID, err := strconv.ParseInt(q.Get("member_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "member_id is required"})
		return
	}

	start, end := q.Get("start"), q.Get("end")
	if !dateRegexp.MatchString(start) || !dateRegexp.MatchString(end) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start and end must be YYYY-MM-DD"})
		return
	}

	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check family member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "family member not found"})
		return
	}

	activities, err := h.activities.ListByMemberDateRange(memberID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list activities"})
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}
