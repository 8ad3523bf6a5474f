package xlsx

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kungfusheep/smarttable"
)

type runeMeasurer struct{}

func (runeMeasurer) MeasureText(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size
}

func (runeMeasurer) Metrics(size float64) smarttable.FontMetrics {
	return smarttable.FontMetrics{Ascent: size * 0.8, Descent: size * 0.2}
}

func ordersTable(t *testing.T) *smarttable.Table {
	t.Helper()
	data := smarttable.NewTableData("orders",
		smarttable.NewColumn("Customer", "name"),
		smarttable.Group("Order",
			smarttable.NewColumn("ID", "orders[].id"),
			smarttable.NewColumn("Qty", "orders[].qty", smarttable.AutoCount()),
		),
	)
	tbl := smarttable.New(runeMeasurer{}, data)
	require.NoError(t, tbl.SetData([]map[string]any{
		{"name": "ann", "orders": []any{
			map[string]any{"id": "O1", "qty": 1},
			map[string]any{"id": "O2", "qty": 2},
		}},
		{"name": "bob", "orders": []any{
			map[string]any{"id": "O3", "qty": 5},
		}},
	}))
	return tbl
}

func merges(t *testing.T, f *excelize.File, sheet string) []string {
	t.Helper()
	mc, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	out := make([]string, len(mc))
	for i, m := range mc {
		out[i] = m.GetStartAxis() + ":" + m.GetEndAxis()
	}
	return out
}

func TestExport(t *testing.T) {
	tbl := ordersTable(t)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, tbl, ExportOptions{Sheet: "Orders"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Orders"}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue("Orders", cell)
		require.NoError(t, err)
		return v
	}

	// two header rows: the group over its leaves, leaves under it
	assert.Equal(t, "Customer", get("A1"))
	assert.Equal(t, "Order", get("B1"))
	assert.Equal(t, "ID", get("B2"))
	assert.Equal(t, "Qty", get("C2"))

	assert.Equal(t, "ann", get("A3"))
	// member cells are not written; reading A4 resolves to the merge origin
	typ, err := f.GetCellType("Orders", "A4")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeUnset, typ, "merged member left unwritten")
	assert.Equal(t, "bob", get("A5"))
	assert.Equal(t, []string{"O1", "O2", "O3"}, []string{get("B3"), get("B4"), get("B5")})
	assert.Equal(t, "5", get("C5"))

	assert.Equal(t, "Total", get("A6"))
	assert.NotEmpty(t, get("C6"))

	assert.ElementsMatch(t, []string{"A1:A2", "B1:C1", "A3:A4"}, merges(t, f, "Orders"))

	w, err := f.GetColWidth("Orders", "A")
	require.NoError(t, err)
	assert.InDelta(t, float64(tbl.Info().Widths[0])/7, w, 0.01)
}

func TestExportNotMeasured(t *testing.T) {
	data := smarttable.NewTableData("empty", smarttable.NewColumn("A", "a"))
	tbl := smarttable.New(runeMeasurer{}, data)
	err := Export(&bytes.Buffer{}, tbl, DefaultExportOptions())
	assert.ErrorIs(t, err, smarttable.ErrNotMeasured)
}

func workbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range map[string]any{
		"A1": "Name", "B1": "Score",
		"A2": "ann", "B2": 10,
		"A3": "bob", "B3": 20,
		"B4": 30,
	} {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	require.NoError(t, f.MergeCell("Sheet1", "A3", "A4"))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestLoad(t *testing.T) {
	data, err := Load(workbook(t), "")
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", data.Name)
	require.Len(t, data.Columns, 2)
	assert.Equal(t, "Name", data.Columns[0].Name)
	assert.Equal(t, "Score", data.Columns[1].Name)

	require.Len(t, data.Records, 3)
	assert.Equal(t, map[string]any{"c0": "ann", "c1": 10.0}, data.Records[0])
	assert.Equal(t, map[string]any{"c0": nil, "c1": 30.0}, data.Records[2])
	assert.Equal(t, []smarttable.CellRange{smarttable.NewCellRange(1, 2, 0, 0)}, data.UserRanges)

	tbl := smarttable.New(runeMeasurer{}, data)
	require.NoError(t, tbl.NotifyDataChanged())
	o := tbl.Grid().Origin(2, 0)
	assert.Equal(t, 1, o.Row)
	assert.Equal(t, 2, o.RowSpan)
}

func TestLoadMissingSheet(t *testing.T) {
	_, err := Load(workbook(t), "Nope")
	assert.ErrorIs(t, err, ErrNoSheet)
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	data, err := Load(workbook(t), "Sheet1")
	require.NoError(t, err)
	tbl := smarttable.New(runeMeasurer{}, data)
	require.NoError(t, tbl.NotifyDataChanged())
	require.NoError(t, Export(&buf, tbl, DefaultExportOptions()))

	again, err := Load(&buf, "")
	require.NoError(t, err)
	assert.Equal(t, data.Records, again.Records)
	assert.Equal(t, data.UserRanges, again.UserRanges)
}
