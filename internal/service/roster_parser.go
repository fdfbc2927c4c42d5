package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedRosterFormat = errors.New("roster must be a .csv or .xlsx file")

var (
	nameColumns  = []string{"name", "display_name", "student", "student_name", "full_name"}
	emailColumns = []string{"email", "e-mail", "email_address"}
)

// ParseRoster reads the header row and returns one entry per data row.
// Blank rows are skipped; row numbers are 1-based and count the header.
func ParseRoster(fileName string, data []byte) ([]models.RosterEntry, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx":
		rows, err = readXLSX(data)
	default:
		return nil, ErrUnsupportedRosterFormat
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, models.NewValidationError("file", "roster file is empty")
	}

	// Parse header to find column indices
	columnMap := make(map[string]int)
	for i, col := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, exists := columnMap[key]; !exists {
			columnMap[key] = i
		}
	}

	emailIdx := findColumn(columnMap, emailColumns)
	if emailIdx < 0 {
		return nil, models.NewValidationError("file", "roster header must contain an email column")
	}
	nameIdx := findColumn(columnMap, nameColumns)

	entries := make([]models.RosterEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		entries = append(entries, models.RosterEntry{
			Row:         i + 2,
			DisplayName: cell(row, nameIdx),
			Email:       strings.ToLower(cell(row, emailIdx)),
		})
	}

	return entries, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, models.NewValidationError("file", fmt.Sprintf("invalid csv: %v", err))
		}
		// csv.Reader drops empty lines; pad so row numbers match the file.
		line, _ := r.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, nil)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("file", "failed to open Excel file")
	}
	defer file.Close()

	// Берём первый лист
	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, models.NewValidationError("file", "workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func findColumn(columnMap map[string]int, names []string) int {
	for _, n := range names {
		if idx, ok := columnMap[n]; ok {
			return idx
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
