package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kr1x/gh-renovate/internal/models"
)

const sheet = "Merge Report"

// WriteExcel exports a batch summary as an .xlsx workbook at the given path.
func WriteExcel(path, repository string, summary *models.BatchSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	mode := "live"
	if summary.DryRun {
		mode = "dry-run"
	}
	f.SetCellValue(sheet, "A1", "Repository")
	f.SetCellValue(sheet, "B1", repository)
	f.SetCellValue(sheet, "A2", "Mode")
	f.SetCellValue(sheet, "B2", mode)
	f.SetCellValue(sheet, "A3", "Processed")
	f.SetCellValue(sheet, "B3", summary.Processed)
	f.SetCellValue(sheet, "A4", "Merged")
	f.SetCellValue(sheet, "B4", summary.Merged)
	f.SetCellValue(sheet, "A5", "Skipped")
	f.SetCellValue(sheet, "B5", summary.Skipped)
	f.SetCellValue(sheet, "A6", "Failed")
	f.SetCellValue(sheet, "B6", summary.Failed)

	headers := []string{"PR", "Title", "Outcome", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 8)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, bold)
	}

	for i, result := range summary.Results {
		row := 9 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), result.PRNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), result.Title)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(result.Outcome))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), result.Reason)
	}

	if err := f.SetColWidth(sheet, "B", "B", 60); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
