// Package study is the mutation core of the review scheduler: it owns all
// writes to per-card review state and to the streak/daily-goal record.
// Every mutation is synchronous against the local cache; network work is
// only ever requested through the Syncer, never performed here.
package study

import (
	"context"

	"github.com/example/studycore/internal/calendar"
	"github.com/example/studycore/internal/database"
	"github.com/example/studycore/internal/spaced_repetition"
	"github.com/example/studycore/pkg/models"
)

// Session identifies the user and pack a mutation applies to. It replaces
// the ambient current-user/current-pack globals of the original client.
type Session struct {
	UserID string
	PackID string
}

// Syncer receives sync requests after local mutations. allPacks widens the
// next push from the current pack to every tracked pack.
type Syncer interface {
	RequestSync(allPacks bool)
}

type nopSyncer struct{}

func (nopSyncer) RequestSync(bool) {}

// Store coordinates card-state mutations, streak bookkeeping and sync
// requests over the local cache repositories.
type Store struct {
	cards    *database.CardStateRepository
	streaks  *database.StreakRepository
	settings *database.SettingsRepository
	syncer   Syncer
}

// NewStore creates a store. A nil syncer disables sync requests (offline or
// test use).
func NewStore(syncer Syncer) *Store {
	if syncer == nil {
		syncer = nopSyncer{}
	}
	return &Store{
		cards:    database.NewCardStateRepository(),
		streaks:  database.NewStreakRepository(),
		settings: database.NewSettingsRepository(),
		syncer:   syncer,
	}
}

// Timezone returns the user's progress timezone ("" means process-local).
func (s *Store) Timezone(ctx context.Context, userID string) string {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return calendar.Normalize(settings.Timezone)
}

// MarkReviewed records a graded answer for a card: counters, next interval,
// review dates and mastery level. Returns the updated state.
func (s *Store) MarkReviewed(ctx context.Context, sess Session, cardID string, correct bool) (models.CardState, error) {
	if cardID == "" {
		return models.CardState{}, nil
	}
	state, _, err := s.cards.Get(ctx, sess.UserID, sess.PackID, cardID)
	if err != nil {
		return models.CardState{}, err
	}

	tz := s.Timezone(ctx, sess.UserID)
	state.Seen++
	if correct {
		state.Correct++
	} else {
		state.Wrong++
	}
	state.IntervalDays = spaced_repetition.NextInterval(state.IntervalDays, correct, state.Difficulty)
	state.LastReviewDate = calendar.Today(tz)
	state.NextReviewDate = calendar.AddDays(state.LastReviewDate, state.IntervalDays)
	state.Level = models.LevelForInterval(state.IntervalDays, state.Seen)

	if err := s.cards.Put(ctx, sess.UserID, sess.PackID, cardID, state); err != nil {
		return models.CardState{}, err
	}
	if _, err := s.RecordActivity(ctx, sess.UserID); err != nil {
		return models.CardState{}, err
	}
	s.syncer.RequestSync(false)
	return state, nil
}

// MarkViewed records a card flip without a grade: the card counts as seen
// and moves off "new", but the schedule is untouched.
func (s *Store) MarkViewed(ctx context.Context, sess Session, cardID string) (models.CardState, error) {
	if cardID == "" {
		return models.CardState{}, nil
	}
	state, _, err := s.cards.Get(ctx, sess.UserID, sess.PackID, cardID)
	if err != nil {
		return models.CardState{}, err
	}

	state.Seen++
	state.LastReviewDate = calendar.Today(s.Timezone(ctx, sess.UserID))
	if state.Level != models.LevelMastered {
		state.Level = models.LevelFamiliar
	}

	if err := s.cards.Put(ctx, sess.UserID, sess.PackID, cardID, state); err != nil {
		return models.CardState{}, err
	}
	if _, err := s.RecordActivity(ctx, sess.UserID); err != nil {
		return models.CardState{}, err
	}
	s.syncer.RequestSync(false)
	return state, nil
}

// SetDifficulty updates a card's difficulty label. Counters and schedule are
// untouched; an unknown difficulty is a no-op.
func (s *Store) SetDifficulty(ctx context.Context, sess Session, cardID string, difficulty models.Difficulty) error {
	if cardID == "" {
		return nil
	}
	switch difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return nil
	}
	state, _, err := s.cards.Get(ctx, sess.UserID, sess.PackID, cardID)
	if err != nil {
		return err
	}
	state.Difficulty = difficulty
	if err := s.cards.Put(ctx, sess.UserID, sess.PackID, cardID, state); err != nil {
		return err
	}
	s.syncer.RequestSync(false)
	return nil
}

// RecordActivity applies the streak rules for one gradable interaction:
// streak extends only from exactly yesterday, the daily counter resets on
// date change, and each call adds exactly one to the daily counter.
func (s *Store) RecordActivity(ctx context.Context, userID string) (models.StreakData, error) {
	data, err := s.streaks.Get(ctx, userID)
	if err != nil {
		return models.StreakData{}, err
	}

	today := calendar.Today(s.Timezone(ctx, userID))
	yesterday := calendar.AddDays(today, -1)

	if data.LastStudyDate != today {
		if data.LastStudyDate == yesterday {
			data.CurrentStreak++
			if data.CurrentStreak < 1 {
				data.CurrentStreak = 1
			}
		} else {
			data.CurrentStreak = 1
		}
		data.LastStudyDate = today
	}
	if data.DailyProgressDate != today {
		data.DailyProgressDate = today
		data.DailyProgressCount = 0
	}
	data.DailyProgressCount++

	if err := s.streaks.Put(ctx, userID, data); err != nil {
		return models.StreakData{}, err
	}
	return data, nil
}

// SetDailyGoal persists the user's daily goal and schedules a sync.
func (s *Store) SetDailyGoal(ctx context.Context, userID string, goal int) error {
	if err := s.settings.PutDailyGoal(ctx, userID, goal); err != nil {
		return err
	}
	s.syncer.RequestSync(false)
	return nil
}

// SetAlgorithm persists the session ordering preference. Session preferences
// stay device-local; no sync is scheduled.
func (s *Store) SetAlgorithm(ctx context.Context, userID string, algo models.SessionAlgorithm, preset string) error {
	return s.settings.PutAlgorithm(ctx, userID, algo, preset)
}

// DueCount returns the number of due, graded flashcards in the session's
// pack.
func (s *Store) DueCount(ctx context.Context, sess Session) (int, error) {
	today := calendar.Today(s.Timezone(ctx, sess.UserID))
	return s.cards.DueCount(ctx, sess.UserID, sess.PackID, today)
}

// DueCountAll sums due flashcards across every tracked pack.
func (s *Store) DueCountAll(ctx context.Context, userID string) (int, error) {
	packIDs, err := s.cards.TrackedPacks(ctx, userID)
	if err != nil {
		return 0, err
	}
	today := calendar.Today(s.Timezone(ctx, userID))
	total := 0
	for _, packID := range packIDs {
		count, err := s.cards.DueCount(ctx, userID, packID, today)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// RemovePack purges the pack's cached state after the pack itself was
// deleted upstream, then schedules an all-packs push so the remote snapshot
// drops the pack too.
func (s *Store) RemovePack(ctx context.Context, sess Session) error {
	if err := s.cards.DeletePack(ctx, sess.UserID, sess.PackID); err != nil {
		return err
	}
	s.syncer.RequestSync(true)
	return nil
}

// CleanupKnownPacks drops cached state for packs no longer in the user's
// pack list. Returns the ids that were purged.
func (s *Store) CleanupKnownPacks(ctx context.Context, userID string, knownPackIDs []string) ([]string, error) {
	known := make(map[string]bool, len(knownPackIDs))
	for _, id := range knownPackIDs {
		known[id] = true
	}
	tracked, err := s.cards.TrackedPacks(ctx, userID)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, packID := range tracked {
		if known[packID] {
			continue
		}
		if err := s.cards.DeletePack(ctx, userID, packID); err != nil {
			return removed, err
		}
		removed = append(removed, packID)
	}
	if len(removed) > 0 {
		s.syncer.RequestSync(true)
	}
	return removed, nil
}
