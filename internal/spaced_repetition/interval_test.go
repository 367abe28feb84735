package spaced_repetition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studycore/pkg/models"
)

func TestFirstSuccessfulReview(t *testing.T) {
	require.Equal(t, 2, NextInterval(0, true, models.DifficultyEasy))
	require.Equal(t, 1, NextInterval(0, true, models.DifficultyMedium))
	require.Equal(t, 1, NextInterval(0, true, models.DifficultyHard))
}

func TestWrongAnswerFloorsAtMinimum(t *testing.T) {
	require.Equal(t, 1, NextInterval(1, false, models.DifficultyMedium))
	require.Equal(t, 1, NextInterval(0, false, models.DifficultyEasy))
}

func TestWrongAnswerShrinks(t *testing.T) {
	// round(10 * 0.45) = 5, round(20 * 0.45) = 9
	require.Equal(t, 5, NextInterval(10, false, models.DifficultyMedium))
	require.Equal(t, 9, NextInterval(20, false, models.DifficultyHard))
}

func TestMediumGrowthSequence(t *testing.T) {
	// From a fresh card: 1 -> 2 -> 4 using max(days+1, days*2.0).
	days := NextInterval(0, true, models.DifficultyMedium)
	require.Equal(t, 1, days)
	days = NextInterval(days, true, models.DifficultyMedium)
	require.Equal(t, 2, days)
	days = NextInterval(days, true, models.DifficultyMedium)
	require.Equal(t, 4, days)
}

func TestEasyGrowthFloor(t *testing.T) {
	// Easy growth is floored at current+2 even when the multiplier is
	// already larger; at 1 day the multiplier gives 2.4 -> round 2, but
	// the floor lifts it to 3.
	require.Equal(t, 3, NextInterval(1, true, models.DifficultyEasy))
}

func TestUnknownDifficultyCoercedToMedium(t *testing.T) {
	require.Equal(t, NextInterval(5, true, models.DifficultyMedium), NextInterval(5, true, models.Difficulty("banana")))
}

func TestClampBounds(t *testing.T) {
	require.Equal(t, MaxIntervalDays, NextInterval(120, true, models.DifficultyEasy))
	require.Equal(t, MaxIntervalDays, NextInterval(119, true, models.DifficultyMedium))
	require.Equal(t, 1, ClampIntervalDays(-4))
	require.Equal(t, 120, ClampIntervalDays(4000))
}

func TestMonotonicityAcrossRange(t *testing.T) {
	for days := 1; days <= MaxIntervalDays; days++ {
		grown := NextInterval(days, true, models.DifficultyEasy)
		assert.GreaterOrEqual(t, grown, days, "correct review shrank the interval at %d", days)
		assert.LessOrEqual(t, grown, MaxIntervalDays)

		for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
			shrunk := NextInterval(days, false, d)
			assert.LessOrEqual(t, shrunk, days, "wrong review grew the interval at %d (%s)", days, d)
			assert.GreaterOrEqual(t, shrunk, MinIntervalDays)
		}
	}
}
