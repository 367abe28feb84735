// Package sync reconciles the device-local progress cache with the remote
// snapshot store. It is the only component allowed to talk to the remote
// copy: pulls merge field-by-field with local precedence, pushes are
// debounced, coalesced and single-flight.
package sync

import (
	"context"
	"log"
	gosync "sync"
	"time"

	"github.com/example/studycore/internal/calendar"
	"github.com/example/studycore/internal/database"
	"github.com/example/studycore/pkg/models"
)

// DefaultDebounce is the quiet window after the last mutation before a push
// goes out.
const DefaultDebounce = 700 * time.Millisecond

// defaultPushTimeout bounds a background push request.
const defaultPushTimeout = 30 * time.Second

// RemoteStore is the contract with the remote snapshot store. Fetch must be
// idempotent and side-effect-free; a nil snapshot means first use.
type RemoteStore interface {
	Fetch(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	Push(ctx context.Context, userID string, snapshot *models.ProgressSnapshot) error
}

// syncState is the push state machine:
// idle -> pending (debounce armed) -> inFlight -> idle, with
// inFlightQueued capturing mutations that arrive mid-push so the cycle
// re-arms instead of dropping them.
type syncState int

const (
	stateIdle syncState = iota
	statePending
	stateInFlight
	stateInFlightQueued
)

// Reconciler merges remote snapshots into the local cache and pushes local
// changes back out. One reconciler serves one user session.
type Reconciler struct {
	remote   RemoteStore
	cards    *database.CardStateRepository
	streaks  *database.StreakRepository
	settings *database.SettingsRepository

	userID      string
	debounce    time.Duration
	pushTimeout time.Duration

	mu         gosync.Mutex
	state      syncState
	timer      *time.Timer
	allPacks   bool // sticky until the next push goes out
	activePack string
	closed     bool
}

// NewReconciler creates a reconciler for a user session.
func NewReconciler(remote RemoteStore, userID string) *Reconciler {
	return &Reconciler{
		remote:      remote,
		cards:       database.NewCardStateRepository(),
		streaks:     database.NewStreakRepository(),
		settings:    database.NewSettingsRepository(),
		userID:      userID,
		debounce:    DefaultDebounce,
		pushTimeout: defaultPushTimeout,
	}
}

// SetDebounce overrides the debounce window. Tests use short windows.
func (r *Reconciler) SetDebounce(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debounce = d
}

// SetActivePack names the pack whose states a pack-scoped push carries.
func (r *Reconciler) SetActivePack(packID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activePack = packID
}

// RequestSync schedules a debounced push. Repeated calls within the window
// coalesce into one request; a call during an in-flight push re-arms the
// cycle after the push completes. allPacks widens the next push to every
// tracked pack and stays sticky until that push leaves.
func (r *Reconciler) RequestSync(allPacks bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if allPacks {
		r.allPacks = true
	}
	switch r.state {
	case stateIdle:
		r.state = statePending
		r.timer = time.AfterFunc(r.debounce, r.fire)
	case statePending:
		r.timer.Reset(r.debounce)
	case stateInFlight:
		r.state = stateInFlightQueued
	case stateInFlightQueued:
		// Already captured.
	}
}

// fire runs when the debounce window closes.
func (r *Reconciler) fire() {
	r.mu.Lock()
	if r.closed || r.state == stateInFlight || r.state == stateInFlightQueued {
		r.mu.Unlock()
		return
	}
	r.state = stateInFlight
	allPacks := r.allPacks
	r.allPacks = false
	activePack := r.activePack
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.pushTimeout)
	r.push(ctx, allPacks, activePack)
	cancel()

	r.mu.Lock()
	if r.state == stateInFlightQueued && !r.closed {
		// A mutation arrived mid-push; re-arm with the latest state.
		r.state = statePending
		r.timer = time.AfterFunc(r.debounce, r.fire)
	} else {
		r.state = stateIdle
	}
	r.mu.Unlock()
}

// push assembles and sends a snapshot. Failures are logged and dropped; the
// next mutation's debounce cycle re-attempts with fresher state.
func (r *Reconciler) push(ctx context.Context, allPacks bool, activePack string) {
	snapshot, err := r.buildSnapshot(ctx, allPacks, activePack)
	if err != nil {
		log.Printf("Could not assemble study progress snapshot: %v", err)
		return
	}
	if err := r.remote.Push(ctx, r.userID, snapshot); err != nil {
		log.Printf("Could not sync study progress: %v", err)
	}
}

// buildSnapshot reads the push payload from the local cache: goal, streak,
// timezone, and either the active pack's card states or all tracked packs'.
func (r *Reconciler) buildSnapshot(ctx context.Context, allPacks bool, activePack string) (*models.ProgressSnapshot, error) {
	settings, err := r.settings.Get(ctx, r.userID)
	if err != nil {
		return nil, err
	}
	streak, err := r.streaks.Get(ctx, r.userID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.ProgressSnapshot{
		DailyGoal:  settings.DailyGoal,
		StreakData: streak,
		Timezone:   settings.Timezone,
		CardStates: map[string]models.PackStates{},
	}

	if !allPacks && activePack != "" {
		states, err := r.cards.GetPack(ctx, r.userID, activePack)
		if err != nil {
			return nil, err
		}
		snapshot.CardStates[activePack] = states
		return snapshot, nil
	}

	packIDs, err := r.cards.TrackedPacks(ctx, r.userID)
	if err != nil {
		return nil, err
	}
	for _, packID := range packIDs {
		states, err := r.cards.GetPack(ctx, r.userID, packID)
		if err != nil {
			return nil, err
		}
		if len(states) > 0 {
			snapshot.CardStates[packID] = states
		}
	}
	return snapshot, nil
}

// Pull fetches the remote snapshot and merges it into the local cache. A
// failed fetch is logged and leaves local state as the sole source of truth
// for the session.
func (r *Reconciler) Pull(ctx context.Context) error {
	remote, err := r.remote.Fetch(ctx, r.userID)
	if err != nil {
		log.Printf("Could not load remote study progress: %v", err)
		return nil
	}
	if remote == nil {
		return nil
	}
	return r.merge(ctx, remote)
}

// merge applies the remote snapshot field by field. The remote copy never
// blindly overwrites local state: each field has its own precedence rule.
func (r *Reconciler) merge(ctx context.Context, remote *models.ProgressSnapshot) error {
	// Timezone: adopt only a valid zone name.
	if tz := calendar.Normalize(remote.Timezone); tz != "" {
		if err := r.settings.PutTimezone(ctx, r.userID, tz); err != nil {
			return err
		}
	}

	// Daily goal: adopt any positive value, clamped by the repository.
	if remote.DailyGoal > 0 {
		if err := r.settings.PutDailyGoal(ctx, r.userID, remote.DailyGoal); err != nil {
			return err
		}
	}

	// Streak: adopt wholesale only when local has never studied, or the
	// remote day is no older and its daily counter no smaller. Anything
	// else would regress the currently active device.
	local, err := r.streaks.Get(ctx, r.userID)
	if err != nil {
		return err
	}
	remoteStreak := remote.StreakData.Normalize()
	adopt := local.LastStudyDate == "" ||
		(remoteStreak.DailyProgressDate != "" &&
			remoteStreak.DailyProgressDate >= local.DailyProgressDate &&
			remoteStreak.DailyProgressCount >= local.DailyProgressCount)
	if adopt && remoteStreak != (models.StreakData{}) {
		if err := r.streaks.Put(ctx, r.userID, remoteStreak); err != nil {
			return err
		}
	}

	// Card states: per pack, remote wins only where local has nothing
	// cached; any local state makes the pack local-authoritative.
	for packID, remoteStates := range remote.CardStates {
		if packID == "" || len(remoteStates) == 0 {
			continue
		}
		localStates, err := r.cards.GetPack(ctx, r.userID, packID)
		if err != nil {
			return err
		}
		if len(localStates) > 0 {
			continue
		}
		if err := r.cards.PutPack(ctx, r.userID, packID, remoteStates); err != nil {
			return err
		}
	}
	return nil
}

// Flush pushes the full snapshot immediately, bypassing the debounce. Used
// on shutdown and when the host loses foreground. A push already in flight
// is left to finish instead.
func (r *Reconciler) Flush(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	if r.state == stateInFlight || r.state == stateInFlightQueued {
		r.mu.Unlock()
		return nil
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.state = stateInFlight
	r.allPacks = false
	r.mu.Unlock()

	snapshot, err := r.buildSnapshot(ctx, true, "")
	if err == nil {
		err = r.remote.Push(ctx, r.userID, snapshot)
	}

	r.mu.Lock()
	r.state = stateIdle
	r.mu.Unlock()
	return err
}

// Close stops the debounce timer. Pending work is discarded; callers that
// care flush first.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
	}
	r.state = stateIdle
}
