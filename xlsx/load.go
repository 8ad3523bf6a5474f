// Package xlsx moves smart tables in and out of Excel workbooks. Merged cells
// map to user merge ranges in both directions.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kungfusheep/smarttable"
)

// ErrNoSheet is returned when the requested sheet does not exist.
var ErrNoSheet = errors.New("sheet not found")

// Load reads a sheet as table data. The first row names the columns; every
// further row is a record. Merged cells below the header become user ranges.
// An empty sheet name reads the first sheet.
func Load(r io.Reader, sheet string) (*smarttable.TableData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return load(f, sheet)
}

// LoadFile is Load over a file path.
func LoadFile(path, sheet string) (*smarttable.TableData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return load(f, sheet)
}

func load(f *excelize.File, sheet string) (*smarttable.TableData, error) {
	sheets := f.GetSheetList()
	if sheet == "" && len(sheets) > 0 {
		sheet = sheets[0]
	}
	found := false
	for _, s := range sheets {
		found = found || s == sheet
	}
	if !found {
		return nil, fmt.Errorf("load %q: %w", sheet, ErrNoSheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return smarttable.NewTableData(sheet), nil
	}

	header := rows[0]
	cols := make([]*smarttable.Column, len(header))
	for i, name := range header {
		if name = strings.TrimSpace(name); name == "" {
			name, _ = excelize.ColumnNumberToName(i + 1)
		}
		cols[i] = smarttable.NewColumn(name, fieldKey(i))
	}
	data := smarttable.NewTableData(sheet, cols...)

	for _, row := range rows[1:] {
		rec := make(map[string]any, len(cols))
		for i := range cols {
			if i < len(row) {
				rec[fieldKey(i)] = cellValue(row[i])
			}
		}
		data.Records = append(data.Records, rec)
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merges of %q: %w", sheet, err)
	}
	for _, m := range merges {
		r, err := mergeRange(m.GetStartAxis(), m.GetEndAxis())
		if err != nil {
			return nil, err
		}
		// header merges have no place among data rows
		if r.FirstRow < 0 || r.FirstCol >= len(cols) {
			continue
		}
		r.LastCol = min(r.LastCol, len(cols)-1)
		data.UserRanges = append(data.UserRanges, r)
	}
	return data, nil
}

func fieldKey(i int) string { return "c" + strconv.Itoa(i) }

// cellValue keeps numbers numeric so they sort and count as numbers.
func cellValue(s string) any {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	if s == "" {
		return nil
	}
	return s
}

// mergeRange converts a merge's corner cells to data coordinates, where row 0
// is the first row under the header.
func mergeRange(start, end string) (smarttable.CellRange, error) {
	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return smarttable.CellRange{}, fmt.Errorf("merge %s:%s: %w", start, end, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return smarttable.CellRange{}, fmt.Errorf("merge %s:%s: %w", start, end, err)
	}
	return smarttable.NewCellRange(r1-2, r2-2, c1-1, c2-1), nil
}
