// Package mapping reads mapping tables from uploaded spreadsheets into the
// editable account and cost-center tables. Imported rows are never saved
// here; saving goes through the normal mutation action.
package mapping

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
)

// MaxUpload bounds the size of an imported file.
const MaxUpload = 5 << 20

var ErrUnsupported = errors.New(constants.ErrUnsupportedFile)

// ReadRows parses a .csv, .xlsx or .xls file into rows of cells. Only the
// first sheet of a workbook is read.
func ReadRows(filename string, r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUpload))
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		cr := csv.NewReader(bytes.NewReader(data))
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		return cr.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	case ".xls":
		return readXLS(data)
	}
	return nil, ErrUnsupported
}

func readXLS(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no sheets found")
	}
	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		var cells []string
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// triples keeps the first three cells of every non-blank row, dropping a
// leading header row.
func triples(rows [][]string) [][3]string {
	var out [][3]string
	for i, row := range rows {
		var t [3]string
		for j := 0; j < 3 && j < len(row); j++ {
			t[j] = strings.TrimSpace(row[j])
		}
		if t[0] == "" && t[1] == "" && t[2] == "" {
			continue
		}
		if i == 0 && isHeader(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isHeader(t [3]string) bool {
	first := strings.ToLower(t[0])
	return strings.Contains(first, "source") || strings.Contains(strings.ToLower(t[1]), "unified")
}

// AccountMappings converts rows of source name, unified number, unified
// name. Incomplete rows are kept so the user can fix them before saving.
func AccountMappings(rows [][]string) ([]model.AccountMapping, error) {
	ts := triples(rows)
	if len(ts) == 0 {
		return nil, errors.New(constants.ErrEmptyUpload)
	}
	out := make([]model.AccountMapping, len(ts))
	for i, t := range ts {
		out[i] = model.AccountMapping{SourceAccountName: t[0], UnifiedAccountNumber: t[1], UnifiedAccountName: t[2]}
	}
	return out, nil
}

func CostCenterMappings(rows [][]string) ([]model.CostCenterMapping, error) {
	ts := triples(rows)
	if len(ts) == 0 {
		return nil, errors.New(constants.ErrEmptyUpload)
	}
	out := make([]model.CostCenterMapping, len(ts))
	for i, t := range ts {
		out[i] = model.CostCenterMapping{SourceCostCenter: t[0], UnifiedCostCenter: t[1], UnifiedCostCenterName: t[2]}
	}
	return out, nil
}
