package handler

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pvieira/tarefinha/internal/backup"
	"github.com/pvieira/tarefinha/internal/model"
	"github.com/pvieira/tarefinha/internal/store"
)

type BackupHandler struct {
	manager     *backup.Manager
	backupStore *store.BackupStore
	settings    *store.SettingsStore
	logger      *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, ss *store.SettingsStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backupStore: bs, settings: ss, logger: logger.With("component", "handler")}
}

// Status handles GET /api/backups/status
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.manager.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"state":       status.State,
		"last_backup": status.LastBackup,
		"error":       status.Error,
		"in_progress": status.InProgress,
		"key_cached":  h.manager.HasCachedKey(),
	})
}

// List handles GET /api/backups
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupStore.List(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

// Run handles POST /api/backups/run. The first run generates and stores the
// passphrase salt; later runs reuse it so old backups stay decryptable.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Passphrase) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase of at least 8 characters is required"})
		return
	}

	saltHex, _ := h.settings.Get("backup_passphrase_salt")
	if saltHex == "" {
		salt, err := backup.GenerateSalt()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate salt"})
			return
		}
		if err := h.settings.Set("backup_passphrase_salt", hex.EncodeToString(salt)); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store salt"})
			return
		}
	}

	id, err := h.manager.RunNow(r.Context(), req.Passphrase)
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]int64{"backup_id": id})
}

// Download handles GET /api/backups/{id}/download, streaming the encrypted
// archive as stored.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("download backup", "backup_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to download backup"})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="backup-%d.db.enc"`, id))
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	io.Copy(w, body)
}

// Restore handles POST /api/backups/{id}/restore. On success the process
// exits and comes back up on the restored database.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	if err := h.manager.Restore(r.Context(), id, req.Passphrase); err != nil {
		h.logger.Error("restore backup", "backup_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
}
