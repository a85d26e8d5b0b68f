package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pvieira/tarefinha/internal/backup"
	"github.com/pvieira/tarefinha/internal/email"
	"github.com/pvieira/tarefinha/internal/handler"
	"github.com/pvieira/tarefinha/internal/middleware"
	"github.com/pvieira/tarefinha/internal/push"
	"github.com/pvieira/tarefinha/internal/score"
	"github.com/pvieira/tarefinha/internal/store"
	"github.com/pvieira/tarefinha/internal/sweep"
	ws "github.com/pvieira/tarefinha/internal/websocket"
)

// Config holds everything the server needs beyond the database handle.
type Config struct {
	Backup backup.Config
	Push   push.Config
}

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	familyMemberH *handler.FamilyMemberHandler
	taskH         *handler.TaskHandler
	scoreH        *handler.ScoreHandler
	penaltyH      *handler.PenaltyHandler
	activityH     *handler.ActivityHandler
	settingsH     *handler.SettingsHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler

	rateLimiter    *middleware.RateLimiter
	sweepScheduler *sweep.Scheduler
	backupManager  *backup.Manager
	logger         *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)

	memberStore := store.NewFamilyMemberStore(db)
	taskStore := store.NewTaskStore(db)
	scoreStore := store.NewScoreStore(db)
	activityStore := store.NewActivityStore(db)
	penaltyStore := store.NewPenaltyStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	pushSvc := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, pushStore, logger)
	scoreSvc := score.NewService(scoreStore, memberStore)
	sweeper := sweep.New(taskStore, settingsStore, hub, pushSvc, logger)

	// The weekly digest fires when the sweep scheduler sees the ISO week
	// roll over.
	digest := func(weekStr string) {
		settings, err := settingsStore.GetDigestSettings()
		if err != nil || settings["digest_enabled"] != "true" || settings["digest_email"] == "" {
			return
		}
		if emailClient == nil || !emailClient.Configured() {
			return
		}
		entries, err := scoreSvc.Standings(weekStr)
		if err != nil {
			logger.Error("digest standings", "week", weekStr, "error", err)
			return
		}
		if err := emailClient.SendWeeklyDigest(settings["digest_email"], weekStr, entries); err != nil {
			logger.Error("send weekly digest", "week", weekStr, "error", err)
			return
		}
		logger.Info("weekly digest sent", "week", weekStr)
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, settingsStore, logger)

	return &Server{
		db:  db,
		hub: hub,

		familyMemberH: handler.NewFamilyMemberHandler(memberStore, hub, logger),
		taskH:         handler.NewTaskHandler(taskStore, memberStore, scoreStore, activityStore, settingsStore, sweeper, hub, logger),
		scoreH:        handler.NewScoreHandler(scoreSvc, settingsStore),
		penaltyH:      handler.NewPenaltyHandler(penaltyStore, memberStore, scoreStore, activityStore, settingsStore, hub, pushSvc, logger),
		activityH:     handler.NewActivityHandler(activityStore, memberStore),
		settingsH:     handler.NewSettingsHandler(settingsStore, hub),
		pushH:         handler.NewPushHandler(pushStore, pushSvc, logger),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, settingsStore, logger),

		rateLimiter:    middleware.NewRateLimiter(),
		sweepScheduler: sweep.NewScheduler(sweeper, settingsStore, digest),
		backupManager:  backupMgr,
		logger:         logger,
	}
}

// Start launches the background loops: the recurrence sweep and the backup
// schedule.
func (s *Server) Start(ctx context.Context) {
	s.sweepScheduler.Start(ctx)
	s.backupManager.Start(ctx)
}

// Stop shuts the background loops down and waits for them.
func (s *Server) Stop() {
	s.sweepScheduler.Stop()
	s.backupManager.Stop()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Family members
	mux.HandleFunc("GET /api/family-members", s.familyMemberH.List)
	mux.HandleFunc("POST /api/family-members", s.familyMemberH.Create)
	mux.HandleFunc("PUT /api/family-members/{id}", s.familyMemberH.Update)
	mux.HandleFunc("DELETE /api/family-members/{id}", s.familyMemberH.Delete)
	mux.HandleFunc("PUT /api/family-members/sort", s.familyMemberH.UpdateSortOrder)
	mux.HandleFunc("POST /api/family-members/{id}/pin", s.familyMemberH.SetPIN)
	mux.HandleFunc("DELETE /api/family-members/{id}/pin", s.familyMemberH.ClearPIN)
	mux.HandleFunc("POST /api/family-members/{id}/pin/verify", s.rateLimited(s.familyMemberH.VerifyPIN))

	// Tasks
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("DELETE /api/tasks/group", s.taskH.DeleteGroup)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/reopen", s.taskH.Reopen)
	mux.HandleFunc("PUT /api/tasks/sort", s.taskH.UpdateSortOrder)

	// Scores and weeks
	mux.HandleFunc("GET /api/scores", s.scoreH.List)
	mux.HandleFunc("GET /api/weeks", s.scoreH.Weeks)

	// Penalties
	mux.HandleFunc("GET /api/penalty-reasons", s.penaltyH.ListReasons)
	mux.HandleFunc("POST /api/penalty-reasons", s.penaltyH.CreateReason)
	mux.HandleFunc("PUT /api/penalty-reasons/{id}", s.penaltyH.UpdateReason)
	mux.HandleFunc("DELETE /api/penalty-reasons/{id}", s.penaltyH.DeleteReason)
	mux.HandleFunc("POST /api/penalties", s.rateLimited(s.penaltyH.Apply))

	// Activity timeline
	mux.HandleFunc("GET /api/activities", s.activityH.List)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backups/run", s.backupH.Run)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	limited := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)(h)
	return func(w http.ResponseWriter, r *http.Request) {
		limited.ServeHTTP(w, r)
	}
}
