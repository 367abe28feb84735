package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/studycore/pkg/models"
)

// UserSettings holds per-user preferences. The device id identifies this
// installation's cache to the remote store.
type UserSettings struct {
	UserID     string `db:"user_id"`
	DailyGoal  int    `db:"daily_goal"`
	Timezone   string `db:"timezone"`
	Algorithm  string `db:"algorithm"`
	AlgoPreset string `db:"algo_preset"`
	DeviceID   string `db:"device_id"`
}

// SessionAlgorithm decodes the stored slot sequence, falling back to the
// balanced preset for missing or malformed values.
func (s *UserSettings) SessionAlgorithm() models.SessionAlgorithm {
	if s.Algorithm == "" {
		if preset, ok := models.Presets[s.AlgoPreset]; ok {
			return preset
		}
		return models.DefaultAlgorithm()
	}
	return models.ParseAlgorithm(s.Algorithm)
}

// SettingsRepository handles database operations for user settings.
type SettingsRepository struct{}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Get returns the settings for a user, inserting a default row (with a fresh
// device id) on first read.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*UserSettings, error) {
	query := DB.Rebind(`
		SELECT user_id, daily_goal, timezone, algorithm, algo_preset, device_id
		FROM user_settings
		WHERE user_id = ?
	`)
	settings := &UserSettings{}
	err := DB.GetContext(ctx, settings, query, userID)
	if err == sql.ErrNoRows {
		settings = &UserSettings{
			UserID:     userID,
			DailyGoal:  models.DefaultDailyGoal,
			AlgoPreset: "balanced",
			DeviceID:   uuid.NewString(),
		}
		insert := DB.Rebind(`
			INSERT INTO user_settings (user_id, daily_goal, timezone, algorithm, algo_preset, device_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if _, err := DB.ExecContext(ctx, insert,
			settings.UserID, settings.DailyGoal, settings.Timezone,
			settings.Algorithm, settings.AlgoPreset, settings.DeviceID,
		); err != nil {
			return nil, fmt.Errorf("failed to insert default settings: %v", err)
		}
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user settings: %v", err)
	}
	settings.DailyGoal = models.ClampDailyGoal(settings.DailyGoal)
	return settings, nil
}

// PutDailyGoal stores the user's daily goal. Non-positive values are
// ignored; oversized values are clamped to the maximum.
func (r *SettingsRepository) PutDailyGoal(ctx context.Context, userID string, goal int) error {
	if goal <= 0 {
		return nil
	}
	if goal > models.MaxDailyGoal {
		goal = models.MaxDailyGoal
	}
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}
	query := DB.Rebind(`
		UPDATE user_settings
		SET daily_goal = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`)
	if _, err := DB.ExecContext(ctx, query, goal, userID); err != nil {
		return fmt.Errorf("failed to update daily goal: %v", err)
	}
	return nil
}

// PutTimezone stores the user's progress timezone. Callers pass a normalized
// IANA name or "" for process-local time.
func (r *SettingsRepository) PutTimezone(ctx context.Context, userID, tz string) error {
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}
	query := DB.Rebind(`
		UPDATE user_settings
		SET timezone = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`)
	if _, err := DB.ExecContext(ctx, query, tz, userID); err != nil {
		return fmt.Errorf("failed to update timezone: %v", err)
	}
	return nil
}

// PutAlgorithm stores the user's session algorithm and the preset name it
// came from ("" for a custom sequence).
func (r *SettingsRepository) PutAlgorithm(ctx context.Context, userID string, algo models.SessionAlgorithm, preset string) error {
	if _, err := r.Get(ctx, userID); err != nil {
		return err
	}
	query := DB.Rebind(`
		UPDATE user_settings
		SET algorithm = ?, algo_preset = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`)
	if _, err := DB.ExecContext(ctx, query, algo.String(), preset, userID); err != nil {
		return fmt.Errorf("failed to update session algorithm: %v", err)
	}
	return nil
}
