// Package xlsx reads school lists from and writes ranked results to Excel
// workbooks, the format the district education office distributes.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
)

// Required input columns, matched case-insensitively in the header row.
const (
	colSchool   = "school"
	colMandal   = "mandal"
	colCategory = "category"
)

// MissingColumnsError reports required columns absent from the uploaded
// workbook. It is a fatal input-validation error; no geocoding is attempted.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("input file must contain columns: %s", strings.Join(e.Columns, ", "))
}

// ReadSchools parses the first sheet of a workbook into school records, one
// per data row. Duplicate rows are preserved. Rows with an empty school name
// and Mandal are skipped (trailing blank rows are common in exported sheets).
func ReadSchools(r io.Reader) ([]domain.School, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Columns: []string{"School", "Mandal", "Category"}}
	}

	schoolCol, mandalCol, categoryCol := -1, -1, -1
	for i, cell := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case colSchool:
			schoolCol = i
		case colMandal:
			mandalCol = i
		case colCategory:
			categoryCol = i
		}
	}

	var missing []string
	if schoolCol == -1 {
		missing = append(missing, "School")
	}
	if mandalCol == -1 {
		missing = append(missing, "Mandal")
	}
	if categoryCol == -1 {
		missing = append(missing, "Category")
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	schools := make([]domain.School, 0, len(rows)-1)
	for _, row := range rows[1:] {
		s := domain.School{
			Name:     cellAt(row, schoolCol),
			Mandal:   cellAt(row, mandalCol),
			Category: cellAt(row, categoryCol),
		}
		if s.Name == "" && s.Mandal == "" {
			continue
		}
		schools = append(schools, s)
	}
	return schools, nil
}

// cellAt returns the trimmed cell value, tolerating ragged rows.
func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
