package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pvieira/tarefinha/internal/backup"
	"github.com/pvieira/tarefinha/internal/database"
	"github.com/pvieira/tarefinha/internal/email"
	"github.com/pvieira/tarefinha/internal/logging"
	"github.com/pvieira/tarefinha/internal/push"
	"github.com/pvieira/tarefinha/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Missing .env is fine; everything falls back to real env vars.
	godotenv.Load()

	logger := logging.Setup(envOr("TAREFINHA_LOG_LEVEL", "info"))

	port := envOr("TAREFINHA_PORT", "8080")
	dbPath := envOr("TAREFINHA_DB_PATH", "tarefinha.db")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var emailClient *email.Client
	if token := os.Getenv("TAREFINHA_POSTMARK_TOKEN"); token != "" {
		emailClient = email.NewClient(token, envOr("TAREFINHA_EMAIL_FROM", "tarefinha@localhost"))
	}

	cfg := server.Config{
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("TAREFINHA_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("TAREFINHA_VAPID_PRIVATE_KEY"),
		},
		Backup: backup.Config{
			DBPath: dbPath,
			S3: backup.S3Config{
				Endpoint:  os.Getenv("TAREFINHA_S3_ENDPOINT"),
				Bucket:    os.Getenv("TAREFINHA_S3_BUCKET"),
				Region:    envOr("TAREFINHA_S3_REGION", "auto"),
				AccessKey: os.Getenv("TAREFINHA_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("TAREFINHA_S3_SECRET_KEY"),
			},
		},
	}

	srv := server.New(db, emailClient, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)
	defer srv.Stop()
	defer cancel()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Tarefinha running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
