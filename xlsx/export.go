package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kungfusheep/smarttable"
)

// ExportOptions controls how pixel sizes map onto Excel units.
type ExportOptions struct {
	Sheet string
	// PixelsPerChar converts column widths to Excel character units.
	PixelsPerChar float64
	// PointsPerPixel converts row heights to points.
	PointsPerPixel float64
}

// DefaultExportOptions matches Excel at 96 DPI with its default font.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Sheet: "Sheet1", PixelsPerChar: 7, PointsPerPixel: 0.75}
}

// Export writes a measured table as a workbook: the column tree as merged
// header rows, then every physical row, with the table's merges, column widths
// and row heights carried over. The count row follows the data when the table
// has one.
func Export(w io.Writer, tbl *smarttable.Table, opts ExportOptions) error {
	f, err := Build(tbl, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build is Export without the write, for callers that add sheets of their own.
func Build(tbl *smarttable.Table, opts ExportOptions) (*excelize.File, error) {
	info := tbl.Info()
	if !info.Measured() {
		return nil, smarttable.ErrNotMeasured
	}
	def := DefaultExportOptions()
	if opts.Sheet == "" {
		opts.Sheet = def.Sheet
	}
	if opts.PixelsPerChar <= 0 {
		opts.PixelsPerChar = def.PixelsPerChar
	}
	if opts.PointsPerPixel <= 0 {
		opts.PointsPerPixel = def.PointsPerPixel
	}

	f := excelize.NewFile()
	x := &exporter{f: f, sheet: opts.Sheet, opts: opts}
	if err := f.SetSheetName("Sheet1", opts.Sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := x.run(tbl); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

type exporter struct {
	f     *excelize.File
	sheet string
	opts  ExportOptions
	err   error
}

// cell names 0-based coordinates, excelize being 1-based.
func cell(row, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

func (x *exporter) check(err error) {
	if x.err == nil && err != nil {
		x.err = err
	}
}

func (x *exporter) set(row, col int, v any) {
	x.check(x.f.SetCellValue(x.sheet, cell(row, col), v))
}

func (x *exporter) merge(r smarttable.CellRange, rowOffset int) {
	if r.Rows() == 1 && r.Cols() == 1 {
		return
	}
	x.check(x.f.MergeCell(x.sheet,
		cell(r.FirstRow+rowOffset, r.FirstCol),
		cell(r.LastRow+rowOffset, r.LastCol)))
}

func (x *exporter) run(tbl *smarttable.Table) error {
	data, info := tbl.Data(), tbl.Info()
	levels := max(data.MaxLevel(), 1)

	headerStyle, err := x.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for _, c := range data.Columns {
		x.header(c, 0, levels)
	}
	if last := len(data.Leaves()) - 1; last >= 0 {
		x.check(x.f.SetCellStyle(x.sheet, cell(0, 0), cell(levels-1, last), headerStyle))
	}

	grid := tbl.Grid()
	for row := 0; row < info.LineSize; row++ {
		for col, c := range data.Leaves() {
			if o := grid.Origin(row, col); o.Row != row || o.Col != col {
				continue
			}
			value, text, ok := c.At(row)
			if !ok {
				continue
			}
			x.set(levels+row, col, exportValue(c, value, text))
		}
	}
	for _, r := range grid.Ranges() {
		x.merge(r, levels)
	}

	if info.CountHeight > 0 {
		countRow := levels + info.LineSize
		label := tbl.Config().CountLabel
		for col, c := range data.Leaves() {
			if s := c.CountText(); s != "" {
				x.set(countRow, col, s)
			} else if col == 0 {
				x.set(countRow, col, label)
			}
		}
		x.check(x.f.SetCellStyle(x.sheet, cell(countRow, 0), cell(countRow, len(data.Leaves())-1), headerStyle))
	}

	for col, w := range info.Widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		x.check(x.f.SetColWidth(x.sheet, name, name, float64(w)/x.opts.PixelsPerChar))
	}
	for row, h := range info.LineHeights {
		x.check(x.f.SetRowHeight(x.sheet, levels+row+1, float64(h)*x.opts.PointsPerPixel))
	}
	if x.err != nil {
		return fmt.Errorf("export %q: %w", data.Name, x.err)
	}
	return nil
}

// header writes c at header row level and returns its leaf span. Parents span
// their leaves; leaves stretch down to the last header row.
func (x *exporter) header(c *smarttable.Column, level, levels int) (first, last int) {
	if !c.IsParent() {
		first, last = c.Index(), c.Index()
		x.set(level, first, c.Name)
		x.merge(smarttable.NewCellRange(level, levels-1, first, last), 0)
		return first, last
	}
	first, last = -1, -1
	for _, child := range c.Children {
		f, l := x.header(child, level+1, levels)
		if first < 0 {
			first = f
		}
		last = l
	}
	if first >= 0 {
		x.set(level, first, c.Name)
		x.merge(smarttable.NewCellRange(level, level, first, last), 0)
	}
	return first, last
}

// exportValue keeps unformatted numbers numeric so Excel can compute on them.
func exportValue(c *smarttable.Column, value any, text string) any {
	if c.Format != nil {
		return text
	}
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return value
	}
	return text
}
