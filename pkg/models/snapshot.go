package models

// PackStates maps card ids (fc_<i> for flashcards, q_<i> for questions) to
// their review state within a single pack.
type PackStates map[string]CardState

// ProgressSnapshot is the complete serializable progress state exchanged
// between a device and the remote store.
type ProgressSnapshot struct {
	DailyGoal  int                   `json:"daily_goal"`
	StreakData StreakData            `json:"streak_data"`
	CardStates map[string]PackStates `json:"card_states"`
	Timezone   string                `json:"timezone"`
}

// Daily goal bounds. Values outside are clamped on adoption, never rejected
// as errors.
const (
	DefaultDailyGoal = 20
	MinDailyGoal     = 1
	MaxDailyGoal     = 500
)

// ClampDailyGoal forces a goal into [1,500]; non-positive input yields the
// default.
func ClampDailyGoal(goal int) int {
	if goal <= 0 {
		return DefaultDailyGoal
	}
	if goal < MinDailyGoal {
		return MinDailyGoal
	}
	if goal > MaxDailyGoal {
		return MaxDailyGoal
	}
	return goal
}
