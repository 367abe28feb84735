package study

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/studycore/internal/calendar"
	"github.com/example/studycore/internal/database"
	"github.com/example/studycore/pkg/models"
)

type recordingSyncer struct {
	calls    int
	allPacks bool
}

func (r *recordingSyncer) RequestSync(allPacks bool) {
	r.calls++
	if allPacks {
		r.allPacks = true
	}
}

func newTestStore(t *testing.T) (*Store, *recordingSyncer) {
	t.Helper()
	require.NoError(t, database.ConnectMemory())
	t.Cleanup(func() { database.Close() })
	syncer := &recordingSyncer{}
	return NewStore(syncer), syncer
}

var sess = Session{UserID: "u1", PackID: "p1"}

func TestMarkReviewedNewCard(t *testing.T) {
	store, syncer := newTestStore(t)
	ctx := context.Background()

	state, err := store.MarkReviewed(ctx, sess, "fc_0", true)
	require.NoError(t, err)

	today := calendar.Today("")
	require.Equal(t, 1, state.Seen)
	require.Equal(t, 1, state.Correct)
	require.Equal(t, 0, state.Wrong)
	require.Equal(t, 1, state.IntervalDays)
	require.Equal(t, models.LevelFamiliar, state.Level)
	require.Equal(t, models.DifficultyMedium, state.Difficulty)
	require.Equal(t, today, state.LastReviewDate)
	require.Equal(t, calendar.AddDays(today, 1), state.NextReviewDate)
	require.Equal(t, 1, syncer.calls)
	require.False(t, syncer.allPacks)
}

func TestMarkReviewedGrowthSequence(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	intervals := []int{1, 2, 4}
	for _, want := range intervals {
		state, err := store.MarkReviewed(ctx, sess, "fc_0", true)
		require.NoError(t, err)
		require.Equal(t, want, state.IntervalDays)
		require.Equal(t, models.LevelFamiliar, state.Level)
	}
}

func TestMasteryThreshold(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed := models.CardState{
		Seen: 5, Correct: 5,
		Level: models.LevelFamiliar, Difficulty: models.DifficultyMedium,
		IntervalDays: 13,
	}
	repo := database.NewCardStateRepository()
	require.NoError(t, repo.Put(ctx, sess.UserID, sess.PackID, "fc_0", seed))

	// 13 days correct at medium: max(14, 26) = 26 -> mastered.
	state, err := store.MarkReviewed(ctx, sess, "fc_0", true)
	require.NoError(t, err)
	require.Equal(t, 26, state.IntervalDays)
	require.Equal(t, models.LevelMastered, state.Level)

	// A failing review shrinks below the threshold and demotes.
	state, err = store.MarkReviewed(ctx, sess, "fc_0", false)
	require.NoError(t, err)
	require.Equal(t, 12, state.IntervalDays)
	require.Equal(t, models.LevelFamiliar, state.Level)
}

func TestMarkViewed(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state, err := store.MarkViewed(ctx, sess, "fc_0")
	require.NoError(t, err)
	require.Equal(t, 1, state.Seen)
	require.Equal(t, 0, state.Correct)
	require.Equal(t, models.LevelFamiliar, state.Level)
	require.Equal(t, 0, state.IntervalDays)
	require.Empty(t, state.NextReviewDate, "flipping must not schedule a review")
}

func TestMarkViewedNeverDowngradesMastered(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	repo := database.NewCardStateRepository()
	require.NoError(t, repo.Put(ctx, sess.UserID, sess.PackID, "fc_0", models.CardState{
		Seen: 9, Level: models.LevelMastered, Difficulty: models.DifficultyMedium,
		IntervalDays: 20, NextReviewDate: "2099-01-01",
	}))

	state, err := store.MarkViewed(ctx, sess, "fc_0")
	require.NoError(t, err)
	require.Equal(t, models.LevelMastered, state.Level)
	require.Equal(t, 20, state.IntervalDays)
	require.Equal(t, "2099-01-01", state.NextReviewDate)
}

func TestSetDifficulty(t *testing.T) {
	store, syncer := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetDifficulty(ctx, sess, "fc_0", models.DifficultyHard))

	repo := database.NewCardStateRepository()
	state, found, err := repo.Get(ctx, sess.UserID, sess.PackID, "fc_0")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.DifficultyHard, state.Difficulty)
	require.Equal(t, 0, state.Seen, "difficulty is pure metadata")
	require.Equal(t, 1, syncer.calls)

	// Unknown difficulty is ignored entirely.
	require.NoError(t, store.SetDifficulty(ctx, sess, "fc_0", models.Difficulty("brutal")))
	state, _, err = repo.Get(ctx, sess.UserID, sess.PackID, "fc_0")
	require.NoError(t, err)
	require.Equal(t, models.DifficultyHard, state.Difficulty)
	require.Equal(t, 1, syncer.calls)
}

func TestRecordActivityFirstEver(t *testing.T) {
	store, _ := newTestStore(t)

	data, err := store.RecordActivity(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, data.CurrentStreak)
	require.Equal(t, 1, data.DailyProgressCount)
	require.Equal(t, calendar.Today(""), data.LastStudyDate)
}

func TestRecordActivityExtendsFromYesterday(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	today := calendar.Today("")
	yesterday := calendar.AddDays(today, -1)
	repo := database.NewStreakRepository()
	require.NoError(t, repo.Put(ctx, "u1", models.StreakData{
		LastStudyDate: yesterday, CurrentStreak: 6,
		DailyProgressDate: yesterday, DailyProgressCount: 30,
	}))

	data, err := store.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 7, data.CurrentStreak)
	require.Equal(t, 1, data.DailyProgressCount, "daily counter resets on a new day")
	require.Equal(t, today, data.DailyProgressDate)
}

func TestRecordActivityResetsAfterGap(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	threeDaysAgo := calendar.AddDays(calendar.Today(""), -3)
	repo := database.NewStreakRepository()
	require.NoError(t, repo.Put(ctx, "u1", models.StreakData{
		LastStudyDate: threeDaysAgo, CurrentStreak: 11,
		DailyProgressDate: threeDaysAgo, DailyProgressCount: 5,
	}))

	data, err := store.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, data.CurrentStreak)
	require.Equal(t, 1, data.DailyProgressCount)
}

func TestRecordActivitySameDay(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.RecordActivity(ctx, "u1")
	require.NoError(t, err)
	second, err := store.RecordActivity(ctx, "u1")
	require.NoError(t, err)

	require.Equal(t, first.CurrentStreak, second.CurrentStreak)
	require.Equal(t, first.DailyProgressCount+1, second.DailyProgressCount)
}

func TestRemovePack(t *testing.T) {
	store, syncer := newTestStore(t)
	ctx := context.Background()

	_, err := store.MarkReviewed(ctx, sess, "fc_0", true)
	require.NoError(t, err)

	require.NoError(t, store.RemovePack(ctx, sess))
	require.True(t, syncer.allPacks, "pack removal forces an all-packs push")

	repo := database.NewCardStateRepository()
	packs, err := repo.TrackedPacks(ctx, sess.UserID)
	require.NoError(t, err)
	require.Empty(t, packs)
}

func TestCleanupKnownPacks(t *testing.T) {
	store, syncer := newTestStore(t)
	ctx := context.Background()

	_, err := store.MarkReviewed(ctx, Session{UserID: "u1", PackID: "keep"}, "fc_0", true)
	require.NoError(t, err)
	_, err = store.MarkReviewed(ctx, Session{UserID: "u1", PackID: "stale"}, "fc_0", true)
	require.NoError(t, err)
	syncer.allPacks = false

	removed, err := store.CleanupKnownPacks(ctx, "u1", []string{"keep"})
	require.NoError(t, err)
	require.Equal(t, []string{"stale"}, removed)
	require.True(t, syncer.allPacks)

	repo := database.NewCardStateRepository()
	packs, err := repo.TrackedPacks(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"keep"}, packs)
}

func TestDueCountAll(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// A freshly reviewed wrong answer is due again tomorrow at the
	// earliest, so seed overdue rows directly.
	repo := database.NewCardStateRepository()
	overdue := models.CardState{
		Seen: 1, Wrong: 1, Level: models.LevelFamiliar,
		Difficulty: models.DifficultyMedium, IntervalDays: 1,
		NextReviewDate: calendar.AddDays(calendar.Today(""), -1),
	}
	require.NoError(t, repo.Put(ctx, "u1", "p1", "fc_0", overdue))
	require.NoError(t, repo.Put(ctx, "u1", "p2", "fc_0", overdue))
	require.NoError(t, repo.Put(ctx, "u1", "p2", "fc_1", overdue))

	total, err := store.DueCountAll(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 3, total)
}
