package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/studycore/internal/database"
	"github.com/example/studycore/internal/remote"
	"github.com/example/studycore/internal/scheduler"
	"github.com/example/studycore/internal/study"
	syncer "github.com/example/studycore/internal/sync"
)

// main runs the reference host: it keeps the local progress cache
// reconciled with the remote snapshot store for one user. UI hosts embed
// the same packages directly instead.
func main() {
	// Optional .env configuration
	_ = godotenv.Load()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	userID := os.Getenv("STUDY_USER_ID")
	if userID == "" {
		log.Fatal("STUDY_USER_ID environment variable is not set")
	}

	settings, err := database.NewSettingsRepository().Get(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to load user settings: %v", err)
	}

	client, err := remote.NewClientFromEnv(settings.DeviceID)
	if err != nil {
		log.Fatalf("Failed to create progress API client: %v", err)
	}

	reconciler := syncer.NewReconciler(client, userID)
	defer reconciler.Close()
	store := study.NewStore(reconciler)

	// Hydrate the local cache from the remote snapshot before anything
	// else runs, mirroring the sign-in pull of the UI client.
	if err := reconciler.Pull(ctx); err != nil {
		log.Printf("Initial progress pull failed: %v", err)
	}

	sched := scheduler.New(reconciler, store, nil, userID)
	sched.Start()

	log.Println("Study progress daemon started. Press Ctrl+C to stop.")
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)

	sched.Stop()

	// Push whatever is still pending before exiting.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := reconciler.Flush(flushCtx); err != nil {
		log.Printf("Could not flush study progress: %v", err)
	}
	log.Println("Daemon stopped successfully")
}
