package smarttable

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func measure(cfg Config, text TextMeasurer, records []any, cols ...*Column) (*TableData, *TableInfo) {
	data, grid := parse(records, cols...)
	info := &TableInfo{}
	NewTableMeasurer(text).Measure(data, grid, cfg, info)
	return data, info
}

func sum(vals []int) int {
	total := 0
	for _, v := range vals {
		total += v
	}
	return total
}

func TestMeasureBasic(t *testing.T) {
	records := []any{row("name", "ann", "qty", 1), row("name", "bobby", "qty", 22)}
	_, info := measure(testConfig(), monoMeasurer{}, records, NewColumn("Name", "name"), NewColumn("Qty", "qty"))

	// "bobby" is 50 + 10 padding; "Qty" header 30 + 10 beats "22"
	assert.Equal(t, []int{60, 40}, info.Widths)
	assert.Equal(t, []int{20, 20}, info.LineHeights)
	assert.Equal(t, 20, info.TitleRowHeight)
	assert.Equal(t, 20, info.TitleHeight)
	assert.Equal(t, []int{0, 60, 100}, info.ColumnLefts)

	rect, ok := info.TableRect()
	require.True(t, ok)
	assert.Equal(t, NewRect(0, 0, 100, 60), rect)
}

func TestMeasureSumProperty(t *testing.T) {
	cfg := testConfig()
	cfg.TableName = "Orders"
	cfg.ShowXSequence = true
	cfg.ShowYSequence = true
	cols := []*Column{
		Group("Customer", NewColumn("Name", "name", AutoMerge(0))),
		NewColumn("Order", "orders[].id"),
		NewColumn("SKU", "orders[].items[].sku", AutoCount()),
	}
	_, info := measure(cfg, monoMeasurer{}, orderRecords(), cols...)

	rect, ok := info.TableRect()
	require.True(t, ok)
	bands := info.TableTitleHeight + info.XSequenceHeight + info.TitleHeight + info.CountHeight
	assert.Equal(t, float64(sum(info.LineHeights)+bands), rect.Height())
	assert.Equal(t, float64(sum(info.Widths)+info.YSequenceWidth), rect.Width())
	assert.Positive(t, info.CountHeight)
	assert.Positive(t, info.YSequenceWidth)
	assert.Equal(t, 2*info.TitleRowHeight, info.TitleHeight)
}

func TestMeasureIdempotent(t *testing.T) {
	cols := []*Column{
		NewColumn("Name", "name", AutoMerge(0)),
		NewColumn("Order", "orders[].id"),
		NewColumn("SKU", "orders[].items[].sku"),
	}
	data, grid := parse(orderRecords(), cols...)
	m := NewTableMeasurer(monoMeasurer{})
	cfg := testConfig()

	again, once := &TableInfo{}, &TableInfo{}
	m.Measure(data, grid, cfg, again)
	m.Measure(data, grid, cfg, again)
	m.Measure(data, grid, cfg, once)

	opts := []cmp.Option{cmp.AllowUnexported(TableInfo{}), cmpopts.IgnoreFields(ColumnInfo{}, "Column")}
	if diff := cmp.Diff(once, again, opts...); diff != "" {
		t.Errorf("second measure drifted (-once +twice):\n%s", diff)
	}
}

func TestMeasureMergeShare(t *testing.T) {
	records := []any{row("b", "x", "c", "1"), row("b", "x", "c", "2")}
	_, info := measure(testConfig(), monoMeasurer{}, records,
		NewColumn("B", "b", AutoMerge(0), MinHeight(50)),
		NewColumn("C", "c"),
	)
	// the merged origin is 50 tall and spread over two rows
	assert.Equal(t, []int{25, 25}, info.LineHeights)

	// an odd height rounds up on every row the merge spans
	_, info = measure(testConfig(), monoMeasurer{}, records,
		NewColumn("B", "b", AutoMerge(0), MinHeight(51)),
		NewColumn("C", "c"),
	)
	assert.Equal(t, []int{26, 26}, info.LineHeights)
}

func TestMeasureMultiline(t *testing.T) {
	_, info := measure(testConfig(), monoMeasurer{}, []any{row("a", "one\ntwo\nthree")}, NewColumn("A", "a"))
	assert.Equal(t, []int{40}, info.LineHeights)
	assert.Equal(t, []int{60}, info.Widths)
}

func TestMeasureFloors(t *testing.T) {
	records := []any{row("a", "x", "b", "a long value")}
	_, info := measure(testConfig(), monoMeasurer{}, records,
		NewColumn("A", "a", MinWidth(80)),
		NewColumn("B", "b", Width(30)),
	)
	assert.Equal(t, []int{80, 30}, info.Widths)
}

func TestMeasureParentSpread(t *testing.T) {
	_, info := measure(testConfig(), monoMeasurer{}, []any{row("b", "1", "c", "2")},
		Group("A wide parent title", NewColumn("B", "b"), NewColumn("C", "c")),
	)
	// title is 19 runes: 190 + 10 padding
	assert.Equal(t, 200, sum(info.Widths))
	parent := info.ColumnInfos[0]
	assert.Equal(t, -1, parent.Parent)
	assert.Equal(t, 200, parent.Width)
	assert.Equal(t, 0, info.ColumnInfos[1].Parent)
	assert.Equal(t, 20, info.ColumnInfos[1].Top)
	assert.Equal(t, 20, info.ColumnInfos[1].Height)
}

func TestMeasureLeafHeaderSpansLevels(t *testing.T) {
	_, info := measure(testConfig(), monoMeasurer{}, nil,
		Group("G", NewColumn("B", "b")), NewColumn("D", "d"),
	)
	var d ColumnInfo
	for _, ci := range info.ColumnInfos {
		if ci.Title == "D" {
			d = ci
		}
	}
	assert.Equal(t, 0, d.Top)
	assert.Equal(t, 40, d.Height)
	assert.Equal(t, 0, info.LineSize)
}

func TestMeasureMinTableWidth(t *testing.T) {
	cfg := testConfig()
	cfg.MinTableWidth = 200
	_, info := measure(cfg, monoMeasurer{}, []any{row()}, NewColumn("A", "a", Width(40)), NewColumn("B", "b", Width(60)))
	assert.Equal(t, []int{80, 120}, info.Widths)

	cfg.MinTableWidth = 50
	_, info = measure(cfg, monoMeasurer{}, []any{row()}, NewColumn("A", "a", Width(40)), NewColumn("B", "b", Width(60)))
	assert.Equal(t, []int{40, 60}, info.Widths, "already wide enough")

	cfg.MinTableWidth = 301
	_, info = measure(cfg, monoMeasurer{}, []any{row()}, NewColumn("A", "a", Width(40)), NewColumn("B", "b", Width(60)))
	assert.Equal(t, 301, sum(info.Widths), "remainder goes to the last column")
}

func TestMeasureClampsNaN(t *testing.T) {
	_, info := measure(testConfig(), nanMeasurer{}, []any{row("a", "bad")}, NewColumn("A", "a", MinWidth(25)))
	assert.Equal(t, []int{25}, info.Widths)
	rect, _ := info.TableRect()
	assert.False(t, math.IsNaN(rect.Width()))
	assert.False(t, math.IsNaN(rect.Height()))
}

func TestMeasureHiddenTitle(t *testing.T) {
	cfg := testConfig()
	cfg.HideColumnTitle = true
	_, info := measure(cfg, monoMeasurer{}, []any{row("a", "x")}, NewColumn("A long title", "a"))
	assert.Equal(t, 0, info.TitleHeight)
	assert.Equal(t, []int{20}, info.Widths)
}

func TestTableInfoLookup(t *testing.T) {
	info := &TableInfo{LineSize: 3, RowTops: []int{0, 10, 30, 35}, ColumnSize: 2, ColumnLefts: []int{0, 50, 60}}
	assert.Equal(t, 0, info.rowAt(-5))
	assert.Equal(t, 0, info.rowAt(9.9))
	assert.Equal(t, 1, info.rowAt(10))
	assert.Equal(t, 2, info.rowAt(1000))
	assert.Equal(t, 1, info.columnAt(55))
	assert.Equal(t, 35, info.ContentHeight())
}

func TestCachedMeasurer(t *testing.T) {
	cm, err := NewCachedMeasurer(monoMeasurer{}, 2)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cm.MeasureText("abc", 10))
	assert.Equal(t, 30.0, cm.MeasureText("abc", 10))
	cm.MeasureText("d", 10)
	cm.MeasureText("e", 10)
	assert.Equal(t, 2, cm.Len())
	assert.Equal(t, 10.0, cm.Metrics(10).Height())

	_, err = NewCachedMeasurer(monoMeasurer{}, 0)
	assert.Error(t, err)
}
