package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/studycore/pkg/models"
)

// StreakRepository handles database operations for streak data.
type StreakRepository struct{}

// NewStreakRepository creates a new repository instance
func NewStreakRepository() *StreakRepository {
	return &StreakRepository{}
}

// Get returns the streak record for a user. A user with no activity yet
// yields the zero value, not an error.
func (r *StreakRepository) Get(ctx context.Context, userID string) (models.StreakData, error) {
	query := DB.Rebind(`
		SELECT last_study_date, current_streak, daily_progress_date, daily_progress_count
		FROM streaks
		WHERE user_id = ?
	`)
	var data models.StreakData
	err := DB.GetContext(ctx, &data, query, userID)
	if err == sql.ErrNoRows {
		return models.StreakData{}, nil
	}
	if err != nil {
		return models.StreakData{}, fmt.Errorf("failed to get streak data: %v", err)
	}
	return data.Normalize(), nil
}

// Put upserts the streak record for a user.
func (r *StreakRepository) Put(ctx context.Context, userID string, data models.StreakData) error {
	data = data.Normalize()
	query := DB.Rebind(`
		INSERT INTO streaks (
			user_id, last_study_date, current_streak, daily_progress_date, daily_progress_count
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			last_study_date = excluded.last_study_date,
			current_streak = excluded.current_streak,
			daily_progress_date = excluded.daily_progress_date,
			daily_progress_count = excluded.daily_progress_count,
			updated_at = CURRENT_TIMESTAMP
	`)
	_, err := DB.ExecContext(ctx, query,
		userID, data.LastStudyDate, data.CurrentStreak,
		data.DailyProgressDate, data.DailyProgressCount,
	)
	if err != nil {
		return fmt.Errorf("failed to put streak data: %v", err)
	}
	return nil
}
