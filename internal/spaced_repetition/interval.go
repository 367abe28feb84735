package spaced_repetition

import (
	"math"

	"github.com/example/studycore/pkg/models"
)

// Interval bounds in days.
const (
	MinIntervalDays = 1
	MaxIntervalDays = 120
)

// shrinkFactor is applied to the current interval on a wrong answer.
const shrinkFactor = 0.45

// ClampIntervalDays rounds a raw interval and forces it into [1,120].
func ClampIntervalDays(value float64) int {
	parsed := int(math.Round(value))
	if parsed < MinIntervalDays {
		return MinIntervalDays
	}
	if parsed > MaxIntervalDays {
		return MaxIntervalDays
	}
	return parsed
}

// NextInterval maps the current interval, answer correctness and card
// difficulty to the next review interval in days.
//
// This is a deliberately simplified SM-2 variant: the growth factor is a
// fixed per-difficulty multiplier rather than a learned easiness factor.
func NextInterval(currentDays int, correct bool, difficulty models.Difficulty) int {
	current := currentDays
	if current < 0 {
		current = 0
	}
	difficulty = models.ParseDifficulty(string(difficulty))

	if !correct {
		if current <= 1 {
			return MinIntervalDays
		}
		return ClampIntervalDays(float64(current) * shrinkFactor)
	}

	// First successful review.
	if current <= 0 {
		if difficulty == models.DifficultyEasy {
			return 2
		}
		return 1
	}

	growth := math.Max(float64(current+1), float64(current)*difficulty.Multiplier())
	if difficulty == models.DifficultyEasy {
		growth = math.Max(growth, float64(current+2))
	}
	return ClampIntervalDays(growth)
}
