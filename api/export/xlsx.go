package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"TmhnaDash/api/model"
)

const sheetName = "Export"

// XLSX writes the same columns as CSV into a single-sheet workbook.
// Amounts become numeric cells when they parse.
func XLSX[T any](rows []T, cols []Column[T]) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, c.Header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, bold); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for i, c := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(c.Value(row))); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case model.Amount:
		if d, ok := t.Decimal(); ok {
			f, _ := d.Float64()
			return f
		}
		return t.String()
	case model.Confidence:
		return float64(t)
	}
	return FormatValue(v)
}
