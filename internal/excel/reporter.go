// Package excel writes an offline spreadsheet report of study progress: the
// headless counterpart of the product's mastery dashboard.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/example/studycore/internal/calendar"
	"github.com/example/studycore/internal/database"
	"github.com/example/studycore/pkg/models"
)

// ReportConfig defines the report output
type ReportConfig struct {
	FilePath  string // Path to the .xlsx file to write
	SheetName string // Name of the sheet holding the report
}

// DefaultReportConfig returns the default report configuration
func DefaultReportConfig(path string) ReportConfig {
	return ReportConfig{
		FilePath:  path,
		SheetName: "Progress",
	}
}

// packSummary aggregates one pack's cached state for the report.
type packSummary struct {
	packID   string
	tracked  int
	due      int
	mastered int
	familiar int
	fresh    int
}

// WriteReport renders the user's progress into an Excel workbook: streak and
// goal summary on top, one row per tracked pack below.
func WriteReport(ctx context.Context, userID string, config ReportConfig) error {
	cards := database.NewCardStateRepository()
	streaks := database.NewStreakRepository()
	settings := database.NewSettingsRepository()

	userSettings, err := settings.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load settings: %v", err)
	}
	streak, err := streaks.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load streak data: %v", err)
	}

	tz := calendar.Normalize(userSettings.Timezone)
	today := calendar.Today(tz)

	packIDs, err := cards.TrackedPacks(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list tracked packs: %v", err)
	}

	summaries := make([]packSummary, 0, len(packIDs))
	totalDue := 0
	for _, packID := range packIDs {
		states, err := cards.GetPack(ctx, userID, packID)
		if err != nil {
			return fmt.Errorf("failed to load pack %s: %v", packID, err)
		}
		due, err := cards.DueCount(ctx, userID, packID, today)
		if err != nil {
			return fmt.Errorf("failed to count due cards for pack %s: %v", packID, err)
		}
		summary := packSummary{packID: packID, tracked: len(states), due: due}
		for _, state := range states {
			switch state.Level {
			case models.LevelMastered:
				summary.mastered++
			case models.LevelFamiliar:
				summary.familiar++
			default:
				summary.fresh++
			}
		}
		summaries = append(summaries, summary)
		totalDue += due
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := config.SheetName
	if sheet == "" {
		sheet = "Progress"
	}
	f.SetSheetName("Sheet1", sheet)

	// Summary block
	f.SetCellValue(sheet, "A1", "Report date")
	f.SetCellValue(sheet, "B1", today)
	f.SetCellValue(sheet, "A2", "Current streak (days)")
	f.SetCellValue(sheet, "B2", streak.CurrentStreak)
	f.SetCellValue(sheet, "A3", "Daily goal")
	f.SetCellValue(sheet, "B3", userSettings.DailyGoal)
	f.SetCellValue(sheet, "A4", "Cards studied today")
	if streak.DailyProgressDate == today {
		f.SetCellValue(sheet, "B4", streak.DailyProgressCount)
	} else {
		f.SetCellValue(sheet, "B4", 0)
	}
	f.SetCellValue(sheet, "A5", "Due today (all packs)")
	f.SetCellValue(sheet, "B5", totalDue)

	// Per-pack table
	headerRow := 7
	headers := []string{"Pack", "Tracked cards", "Due", "Mastered", "Familiar", "New"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %v", err)
		}
		f.SetCellValue(sheet, cell, header)
	}
	for rowOffset, summary := range summaries {
		values := []interface{}{
			summary.packID, summary.tracked, summary.due,
			summary.mastered, summary.familiar, summary.fresh,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, headerRow+1+rowOffset)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %v", err)
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	if err := f.SaveAs(config.FilePath); err != nil {
		return fmt.Errorf("failed to save report: %v", err)
	}
	return nil
}
