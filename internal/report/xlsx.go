package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/grade-pilot/gradepilot/internal/scoring"
)

const (
	sheetSummary  = "Summary"
	sheetCriteria = "Criteria"
)

// WriteResults renders assessment results as an XLSX workbook: one summary
// row per submission plus a per-criterion breakdown sheet.
func WriteResults(w io.Writer, results []scoring.AssessmentResult) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetSummary)
	if _, err := f.NewSheet(sheetCriteria); err != nil {
		return fmt.Errorf("xlsx report: %w", err)
	}

	summaryHeader := []interface{}{"Assessment ID", "Rubric", "Version", "Submission", "Student", "Course", "Earned", "Possible", "Overall Band", "Diagnostics"}
	if err := f.SetSheetRow(sheetSummary, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("xlsx report: %w", err)
	}
	criteriaHeader := []interface{}{"Assessment ID", "Student", "Criterion", "Name", "Earned", "Possible", "Selected Level", "Feedback"}
	if err := f.SetSheetRow(sheetCriteria, "A1", &criteriaHeader); err != nil {
		return fmt.Errorf("xlsx report: %w", err)
	}

	critRow := 2
	for i, res := range results {
		row := []interface{}{
			res.ID, res.RubricID, res.RubricVersion, res.SubmissionID, res.StudentID, res.CourseID,
			res.TotalPointsEarned, res.TotalPointsPossible, res.OverallBand, len(res.Diagnostics),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx report: %w", err)
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("xlsx report: %w", err)
		}

		for _, cr := range res.Criteria {
			crow := []interface{}{
				res.ID, res.StudentID, cr.CriterionID, cr.Name,
				cr.PointsEarned, cr.PointsPossible, cr.SelectedLevel, cr.Feedback,
			}
			cell, err := excelize.CoordinatesToCellName(1, critRow)
			if err != nil {
				return fmt.Errorf("xlsx report: %w", err)
			}
			if err := f.SetSheetRow(sheetCriteria, cell, &crow); err != nil {
				return fmt.Errorf("xlsx report: %w", err)
			}
			critRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx report: %w", err)
	}
	return nil
}
