package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/pvieira/tarefinha/internal/store"
	"github.com/pvieira/tarefinha/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, hub: hub}
}

func (h *SettingsHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validateSettings(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	for key, value := range req {
		if err := h.settingsStore.Set(key, value); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
			return
		}
	}

	h.broadcast(websocket.NewMessage("settings", "updated", 0, nil))

	settings, err := h.settingsStore.GetAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func validateSettings(settings map[string]string) error {
	allowedKeys := map[string]bool{
		"timezone":              true,
		"digest_enabled":        true,
		"digest_email":          true,
		"backup_enabled":        true,
		"backup_schedule_hour":  true,
		"backup_retention_days": true,
	}

	for key, value := range settings {
		if !allowedKeys[key] {
			return fmt.Errorf("unknown setting: %s", key)
		}

		switch key {
		case "timezone":
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("timezone must be a valid IANA name (e.g. America/Sao_Paulo)")
			}
		case "digest_enabled", "backup_enabled":
			if value != "true" && value != "false" {
				return fmt.Errorf("%s must be \"true\" or \"false\"", key)
			}
		case "digest_email":
			if value != "" {
				if _, err := mail.ParseAddress(value); err != nil {
					return fmt.Errorf("digest_email must be a valid email address")
				}
			}
		case "backup_schedule_hour":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > 23 {
				return fmt.Errorf("backup_schedule_hour must be 0-23")
			}
		case "backup_retention_days":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 365 {
				return fmt.Errorf("backup_retention_days must be 1-365")
			}
		}
	}
	return nil
}
