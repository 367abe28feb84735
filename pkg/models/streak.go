package models

// StreakData tracks the consecutive-day study streak and the per-day
// progress counter for a user. Dates are calendar-day strings (YYYY-MM-DD).
type StreakData struct {
	LastStudyDate      string `json:"last_study_date" db:"last_study_date"`
	CurrentStreak      int    `json:"current_streak" db:"current_streak"`
	DailyProgressDate  string `json:"daily_progress_date" db:"daily_progress_date"`
	DailyProgressCount int    `json:"daily_progress_count" db:"daily_progress_count"`
}

// Normalize clamps negative counters from malformed persisted data.
func (s StreakData) Normalize() StreakData {
	if s.CurrentStreak < 0 {
		s.CurrentStreak = 0
	}
	if s.DailyProgressCount < 0 {
		s.DailyProgressCount = 0
	}
	return s
}
