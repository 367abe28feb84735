package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pinClock(t *testing.T, instant time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return instant }
	t.Cleanup(func() { nowFunc = time.Now })
}

func TestTodayResolvesTimezone(t *testing.T) {
	// 23:30 UTC on March 10th is already March 11th in Tokyo.
	pinClock(t, time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC))

	require.Equal(t, "2024-03-10", Today("UTC"))
	require.Equal(t, "2024-03-11", Today("Asia/Tokyo"))
}

func TestTodayFallsBackOnBadZone(t *testing.T) {
	pinClock(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	// Unknown and empty zone names resolve to the process-local zone
	// rather than erroring.
	require.Equal(t, Today(""), Today("Mars/Olympus"))
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "Europe/Berlin", Normalize("Europe/Berlin"))
	require.Equal(t, "", Normalize(""))
	require.Equal(t, "", Normalize("Not/AZone"))
}

func TestAddDays(t *testing.T) {
	require.Equal(t, "2024-02-29", AddDays("2024-02-28", 1))
	require.Equal(t, "2024-03-01", AddDays("2024-02-29", 1))
	require.Equal(t, "2024-03-09", AddDays("2024-03-10", -1))
	require.Equal(t, "2024-04-09", AddDays("2024-03-10", 30))
}

func TestAddDaysInvalidDateYieldsToday(t *testing.T) {
	pinClock(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	require.Equal(t, Today(""), AddDays("not-a-date", 3))
}

func TestIsDue(t *testing.T) {
	pinClock(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	require.True(t, IsDue("", "UTC"), "unscheduled cards are always due")
	require.True(t, IsDue("garbage", "UTC"), "unparseable dates count as unscheduled")
	require.True(t, IsDue("2024-03-10", "UTC"))
	require.True(t, IsDue("2023-12-01", "UTC"))
	require.False(t, IsDue("2024-03-11", "UTC"))
}
