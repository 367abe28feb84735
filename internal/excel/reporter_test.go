package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/studycore/internal/calendar"
	"github.com/example/studycore/internal/database"
	"github.com/example/studycore/pkg/models"
)

func TestWriteReport(t *testing.T) {
	require.NoError(t, database.ConnectMemory())
	t.Cleanup(func() { database.Close() })
	ctx := context.Background()

	cards := database.NewCardStateRepository()
	require.NoError(t, cards.Put(ctx, "u1", "p1", "fc_0", models.CardState{
		Seen: 4, Correct: 4, Level: models.LevelMastered,
		Difficulty: models.DifficultyMedium, IntervalDays: 20,
		NextReviewDate: calendar.AddDays(calendar.Today(""), 10),
	}))
	require.NoError(t, cards.Put(ctx, "u1", "p1", "fc_1", models.CardState{
		Seen: 1, Wrong: 1, Level: models.LevelFamiliar,
		Difficulty: models.DifficultyMedium, IntervalDays: 1,
		NextReviewDate: calendar.AddDays(calendar.Today(""), -1),
	}))
	require.NoError(t, database.NewStreakRepository().Put(ctx, "u1", models.StreakData{
		LastStudyDate: calendar.Today(""), CurrentStreak: 3,
		DailyProgressDate: calendar.Today(""), DailyProgressCount: 9,
	}))

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(ctx, "u1", DefaultReportConfig(path)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	streak, err := f.GetCellValue("Progress", "B2")
	require.NoError(t, err)
	require.Equal(t, "3", streak)

	studied, err := f.GetCellValue("Progress", "B4")
	require.NoError(t, err)
	require.Equal(t, "9", studied)

	due, err := f.GetCellValue("Progress", "B5")
	require.NoError(t, err)
	require.Equal(t, "1", due)

	packCell, err := f.GetCellValue("Progress", "A8")
	require.NoError(t, err)
	require.Equal(t, "p1", packCell)

	mastered, err := f.GetCellValue("Progress", "D8")
	require.NoError(t, err)
	require.Equal(t, "1", mastered)
}
