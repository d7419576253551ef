package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheet is one worksheet's content.
type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

// render writes s as the only sheet of a right-to-left workbook.
func render(s sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	idx, err := f.GetSheetIndex(s.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	f.SetActiveSheet(idx)

	rtl := true
	if err := f.SetSheetView(s.name, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbook, err)
	}

	for i, h := range s.headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(s.name, cell, h); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWorkbook, err)
		}
	}
	for r, row := range s.rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(s.name, cell, v); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrWorkbook, err)
			}
		}
	}
	for i, w := range s.widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(s.name, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	return buf.Bytes(), nil
}
