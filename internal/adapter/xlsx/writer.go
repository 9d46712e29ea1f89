package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kanishkseth/APTeachersTransfers/internal/domain"
)

// Output column order.
var outputHeader = []string{"School", "Mandal", "Category", "Distance_km"}

// WriteRanked builds a workbook holding the ranked school list in output
// order. The Distance_km cell is left blank for unresolved rows. The caller
// owns the returned file: SaveAs for disk, WriteTo for a download response.
func WriteRanked(schools []domain.School) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for col, name := range outputHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("write header %s: %w", name, err)
		}
	}

	for i, s := range schools {
		row := i + 2
		values := []any{s.Name, s.Mandal, s.Category}
		if s.DistanceKm != nil {
			values = append(values, *s.DistanceKm)
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("cell for row %d: %w", row, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	return f, nil
}
