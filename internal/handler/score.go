package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pvieira/tarefinha/internal/score"
	"github.com/pvieira/tarefinha/internal/store"
	"github.com/pvieira/tarefinha/internal/week"
)

type ScoreHandler struct {
	service  *score.Service
	settings *store.SettingsStore
}

func NewScoreHandler(service *score.Service, settings *store.SettingsStore) *ScoreHandler {
	return &ScoreHandler{service: service, settings: settings}
}

// List returns the ranked standings for ?week=YYYY-Wnn, defaulting to the
// current week in the household timezone.
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	weekStr := r.URL.Query().Get("week")
	if weekStr == "" {
		weekStr = week.Of(time.Now().In(h.settings.Timezone()))
	} else if _, _, err := week.Range(weekStr); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week must look like 2026-W09"})
		return
	}

	entries, err := h.service.Standings(weekStr)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute standings"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"week":    weekStr,
		"entries": entries,
	})
}

type weekInfo struct {
	Week  string `json:"week"`
	Start string `json:"start"` // YYYY-MM-DD, Monday
	End   string `json:"end"`   // YYYY-MM-DD, Sunday
}

// Weeks lists the ISO weeks touching a calendar month, for the score screen's
// week picker. Defaults to the current month.
func (h *ScoreHandler) Weeks(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(h.settings.Timezone())
	year, month := now.Year(), int(now.Month())

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid year"})
			return
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be 1-12"})
			return
		}
		month = n
	}

	weeks := week.OfMonth(year, time.Month(month))
	infos := make([]weekInfo, 0, len(weeks))
	for _, ws := range weeks {
		start, end, err := week.Range(ws)
		if err != nil {
			continue
		}
		infos = append(infos, weekInfo{
			Week:  ws,
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}
