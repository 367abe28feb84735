package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/studycore/internal/study"
	syncer "github.com/example/studycore/internal/sync"
)

// Default cadence for background jobs.
const (
	DefaultSyncIntervalMinutes = 15
	cleanupTime                = "03:30"
	jobTimeout                 = 2 * time.Minute
)

// PackLister reports which packs still exist for a user. Pack management is
// an external feature; the scheduler only needs the ids to prune stale
// cache entries.
type PackLister interface {
	ListPackIDs(ctx context.Context, userID string) ([]string, error)
}

// Scheduler manages background tasks for a user session: periodic full
// reconciliation against the remote store and a daily cache cleanup.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	reconciler *syncer.Reconciler
	store      *study.Store
	packs      PackLister
	userID     string
}

// New creates a new scheduler instance. packs may be nil when no pack
// listing is available; cleanup is skipped in that case.
func New(reconciler *syncer.Reconciler, store *study.Store, packs PackLister, userID string) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		reconciler: reconciler,
		store:      store,
		packs:      packs,
		userID:     userID,
	}
}

// Start begins running all scheduled tasks.
func (s *Scheduler) Start() {
	interval := DefaultSyncIntervalMinutes
	if raw := os.Getenv("SYNC_INTERVAL_MINUTES"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	s.scheduler.Every(interval).Minutes().Do(s.reconcile)
	s.scheduler.Every(1).Day().At(cleanupTime).Do(s.cleanup)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow forces one reconciliation pass outside the schedule.
func (s *Scheduler) RunNow() {
	s.reconcile()
}

// reconcile pulls the remote snapshot, merges it, and schedules an
// all-packs push so both sides converge on the merged state.
func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.reconciler.Pull(ctx); err != nil {
		log.Printf("Error reconciling study progress for user %s: %v", s.userID, err)
		return
	}
	s.reconciler.RequestSync(true)
}

// cleanup prunes cached card state for packs that no longer exist.
func (s *Scheduler) cleanup() {
	if s.packs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	packIDs, err := s.packs.ListPackIDs(ctx, s.userID)
	if err != nil {
		log.Printf("Error listing packs for user %s: %v", s.userID, err)
		return
	}
	removed, err := s.store.CleanupKnownPacks(ctx, s.userID, packIDs)
	if err != nil {
		log.Printf("Error cleaning up pack caches for user %s: %v", s.userID, err)
		return
	}
	if len(removed) > 0 {
		log.Printf("Removed cached state for %d deleted packs", len(removed))
	}
}
