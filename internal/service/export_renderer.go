package service

import (
	"fmt"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	gradebookSheet = "Gradebook"
	settingsSheet  = "Settings"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var gradebookHeader = []interface{}{"Student", "Email", "Assignments %", "Quizzes %", "Final %"}

// RenderGradebook writes the gradebook as an xlsx workbook: one row per
// student, empty cells where a percent is null.
func RenderGradebook(gb *models.GradebookResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(gradebookSheet, "A1", &gradebookHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(gradebookSheet, "A1", "E1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, st := range gb.Students {
		row := i + 2

		name := st.DisplayName
		if name == "" {
			name = st.Email
		}
		if err := setCell(f, 1, row, name); err != nil {
			return nil, err
		}
		if err := setCell(f, 2, row, st.Email); err != nil {
			return nil, err
		}

		for col, v := range []*float64{st.AssignmentsPercent, st.QuizzesPercent, st.FinalPercent} {
			if v == nil {
				continue
			}
			if err := setCell(f, col+3, row, *v); err != nil {
				return nil, err
			}
		}
	}

	if n := len(gb.Students); n > 0 {
		if err := f.SetCellStyle(gradebookSheet, "C2", fmt.Sprintf("E%d", n+1), percentStyle); err != nil {
			return nil, fmt.Errorf("failed to style percents: %w", err)
		}
	}
	_ = f.SetColWidth(gradebookSheet, "A", "B", 32)
	_ = f.SetColWidth(gradebookSheet, "C", "E", 14)

	if err := renderSettings(f, gb); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func renderSettings(f *excelize.File, gb *models.GradebookResponse) error {
	if _, err := f.NewSheet(settingsSheet); err != nil {
		return fmt.Errorf("failed to create settings sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Classroom", gb.ClassroomID},
		{"Use weights", gb.Settings.UseWeights},
		{"Assignments weight", gb.Settings.AssignmentsWeight},
		{"Quizzes weight", gb.Settings.QuizzesWeight},
		{"Students", gb.Counts.Students},
		{"Assignments", gb.Counts.Assignments},
		{"Quizzes", gb.Counts.Quizzes},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(settingsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(gradebookSheet, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	return nil
}
