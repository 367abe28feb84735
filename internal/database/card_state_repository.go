package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/studycore/pkg/models"
)

// CardStateRepository handles database operations for per-card review state.
// Rows are namespaced by (user_id, pack_id), so card ids from different packs
// can never collide.
type CardStateRepository struct{}

// NewCardStateRepository creates a new repository instance
func NewCardStateRepository() *CardStateRepository {
	return &CardStateRepository{}
}

type cardStateRow struct {
	CardID string `db:"card_id"`
	models.CardState
}

// Get returns the state for one card. The second result is false when the
// card has never been touched.
func (r *CardStateRepository) Get(ctx context.Context, userID, packID, cardID string) (models.CardState, bool, error) {
	query := DB.Rebind(`
		SELECT card_id, seen, correct, wrong, level, difficulty,
		       interval_days, last_review_date, next_review_date
		FROM card_states
		WHERE user_id = ? AND pack_id = ? AND card_id = ?
	`)
	var row cardStateRow
	err := DB.GetContext(ctx, &row, query, userID, packID, cardID)
	if err == sql.ErrNoRows {
		return models.NewCardState(), false, nil
	}
	if err != nil {
		return models.CardState{}, false, fmt.Errorf("failed to get card state: %v", err)
	}
	return row.CardState.Normalize(), true, nil
}

// GetPack returns all cached card states for a pack keyed by card id. An
// untracked pack yields an empty map, not an error.
func (r *CardStateRepository) GetPack(ctx context.Context, userID, packID string) (models.PackStates, error) {
	query := DB.Rebind(`
		SELECT card_id, seen, correct, wrong, level, difficulty,
		       interval_days, last_review_date, next_review_date
		FROM card_states
		WHERE user_id = ? AND pack_id = ?
	`)
	var rows []cardStateRow
	if err := DB.SelectContext(ctx, &rows, query, userID, packID); err != nil {
		return nil, fmt.Errorf("failed to get pack card states: %v", err)
	}
	states := make(models.PackStates, len(rows))
	for _, row := range rows {
		states[row.CardID] = row.CardState.Normalize()
	}
	return states, nil
}

// Put upserts the state for one card.
func (r *CardStateRepository) Put(ctx context.Context, userID, packID, cardID string, state models.CardState) error {
	state = state.Normalize()
	query := DB.Rebind(`
		INSERT INTO card_states (
			user_id, pack_id, card_id, seen, correct, wrong, level,
			difficulty, interval_days, last_review_date, next_review_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, pack_id, card_id) DO UPDATE SET
			seen = excluded.seen,
			correct = excluded.correct,
			wrong = excluded.wrong,
			level = excluded.level,
			difficulty = excluded.difficulty,
			interval_days = excluded.interval_days,
			last_review_date = excluded.last_review_date,
			next_review_date = excluded.next_review_date,
			updated_at = CURRENT_TIMESTAMP
	`)
	_, err := DB.ExecContext(ctx, query,
		userID, packID, cardID,
		state.Seen, state.Correct, state.Wrong,
		state.Level, state.Difficulty, state.IntervalDays,
		state.LastReviewDate, state.NextReviewDate,
	)
	if err != nil {
		return fmt.Errorf("failed to put card state: %v", err)
	}
	return nil
}

// PutPack replaces the cached state for a pack wholesale. Used when adopting
// a remote snapshot for a pack with no local state.
func (r *CardStateRepository) PutPack(ctx context.Context, userID, packID string, states models.PackStates) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	del := tx.Rebind(`DELETE FROM card_states WHERE user_id = ? AND pack_id = ?`)
	if _, err := tx.ExecContext(ctx, del, userID, packID); err != nil {
		return fmt.Errorf("failed to clear pack card states: %v", err)
	}

	ins := tx.Rebind(`
		INSERT INTO card_states (
			user_id, pack_id, card_id, seen, correct, wrong, level,
			difficulty, interval_days, last_review_date, next_review_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for cardID, state := range states {
		if cardID == "" {
			continue
		}
		state = state.Normalize()
		_, err := tx.ExecContext(ctx, ins,
			userID, packID, cardID,
			state.Seen, state.Correct, state.Wrong,
			state.Level, state.Difficulty, state.IntervalDays,
			state.LastReviewDate, state.NextReviewDate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert card state: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pack card states: %v", err)
	}
	return nil
}

// DeletePack purges all cached state for a pack.
func (r *CardStateRepository) DeletePack(ctx context.Context, userID, packID string) error {
	query := DB.Rebind(`DELETE FROM card_states WHERE user_id = ? AND pack_id = ?`)
	if _, err := DB.ExecContext(ctx, query, userID, packID); err != nil {
		return fmt.Errorf("failed to delete pack card states: %v", err)
	}
	return nil
}

// TrackedPacks returns the ids of packs that have any cached state for the
// user. This is the cache index used to assemble snapshots.
func (r *CardStateRepository) TrackedPacks(ctx context.Context, userID string) ([]string, error) {
	query := DB.Rebind(`
		SELECT DISTINCT pack_id FROM card_states
		WHERE user_id = ?
		ORDER BY pack_id
	`)
	var packIDs []string
	if err := DB.SelectContext(ctx, &packIDs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tracked packs: %v", err)
	}
	return packIDs, nil
}

// DueCount counts due flashcards in a pack as of the given calendar day.
// Only graded flashcard entries count, matching the dashboard due badge.
func (r *CardStateRepository) DueCount(ctx context.Context, userID, packID, today string) (int, error) {
	query := DB.Rebind(`
		SELECT COUNT(*) FROM card_states
		WHERE user_id = ? AND pack_id = ?
		AND card_id LIKE 'fc%'
		AND seen > 0
		AND (next_review_date = '' OR next_review_date <= ?)
	`)
	var count int
	if err := DB.GetContext(ctx, &count, query, userID, packID, today); err != nil {
		return 0, fmt.Errorf("failed to count due cards: %v", err)
	}
	return count, nil
}
