package models

// MasteryLevel is the coarse bucket a card sits in, derived from its review
// history and current interval.
type MasteryLevel string

const (
	LevelNew      MasteryLevel = "new"
	LevelFamiliar MasteryLevel = "familiar"
	LevelMastered MasteryLevel = "mastered"
)

// Difficulty is the user-assigned difficulty of a card.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// MasteredIntervalDays is the interval at which a card counts as mastered.
const MasteredIntervalDays = 14

// ParseLevel normalizes a persisted level string. Unknown values map to "new".
func ParseLevel(value string) MasteryLevel {
	switch MasteryLevel(value) {
	case LevelFamiliar:
		return LevelFamiliar
	case LevelMastered:
		return LevelMastered
	default:
		return LevelNew
	}
}

// ParseDifficulty normalizes a persisted difficulty string. Unknown values
// map to "medium".
func ParseDifficulty(value string) Difficulty {
	switch Difficulty(value) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Multiplier returns the interval growth factor for the difficulty.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyEasy:
		return 2.4
	case DifficultyHard:
		return 1.45
	default:
		return 2.0
	}
}

// CardState tracks review progress for a single card within a pack.
// Dates are calendar-day strings (YYYY-MM-DD) in the user's timezone;
// an empty date means "never scheduled" and the card counts as due.
type CardState struct {
	Seen           int          `json:"seen" db:"seen"`
	Correct        int          `json:"correct" db:"correct"`
	Wrong          int          `json:"wrong" db:"wrong"`
	Level          MasteryLevel `json:"level" db:"level"`
	Difficulty     Difficulty   `json:"difficulty" db:"difficulty"`
	IntervalDays   int          `json:"interval_days" db:"interval_days"`
	LastReviewDate string       `json:"last_review_date" db:"last_review_date"`
	NextReviewDate string       `json:"next_review_date" db:"next_review_date"`
}

// NewCardState returns the zero-progress state for an untouched card.
func NewCardState() CardState {
	return CardState{
		Level:      LevelNew,
		Difficulty: DifficultyMedium,
	}
}

// Normalize coerces persisted values into the closed enums and clamps
// negative counters, so callers can assume a valid state.
func (s CardState) Normalize() CardState {
	s.Level = ParseLevel(string(s.Level))
	s.Difficulty = ParseDifficulty(string(s.Difficulty))
	if s.Seen < 0 {
		s.Seen = 0
	}
	if s.Correct < 0 {
		s.Correct = 0
	}
	if s.Wrong < 0 {
		s.Wrong = 0
	}
	if s.IntervalDays < 0 {
		s.IntervalDays = 0
	}
	return s
}

// LevelForInterval derives the mastery level from the current interval and
// seen count: mastered at 14 days or more, familiar once seen, new otherwise.
func LevelForInterval(intervalDays, seen int) MasteryLevel {
	if intervalDays >= MasteredIntervalDays {
		return LevelMastered
	}
	if seen > 0 {
		return LevelFamiliar
	}
	return LevelNew
}
