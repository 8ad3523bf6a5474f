package smarttable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafNames(data *TableData) []string {
	var out []string
	for _, c := range data.Leaves() {
		out = append(out, c.Name)
	}
	return out
}

func TestParseFlattensTree(t *testing.T) {
	a := Group("A", NewColumn("B", "b"), Group("C", NewColumn("C1", "c1"), NewColumn("C2", "c2")))
	d := NewColumn("D", "d")
	data, _ := parse(nil, a, d)

	assert.Equal(t, []string{"B", "C1", "C2", "D"}, leafNames(data))
	assert.Equal(t, 3, data.MaxLevel())
	assert.Equal(t, 3, a.Level())
	assert.Equal(t, 1, d.Level())
	assert.Equal(t, -1, a.Index())
	assert.Equal(t, 3, d.Index())
	assert.Len(t, data.AllColumns(), 6)
}

func TestParseAutoMerge(t *testing.T) {
	records := func() []any {
		var out []any
		for _, v := range []string{"x", "x", "y", "y", "y"} {
			out = append(out, row("b", v, "c", 1, "d", v))
		}
		return out
	}

	t.Run("cap then reset", func(t *testing.T) {
		b := NewColumn("B", "b", AutoMerge(3))
		_, grid := parse(records(), Group("A", b, NewColumn("C", "c")), NewColumn("D", "d"))

		want := []CellRange{NewCellRange(0, 1, 0, 0), NewCellRange(2, 3, 0, 0)}
		if diff := cmp.Diff(want, sortedRanges(grid)); diff != "" {
			t.Errorf("merge ranges (-want +got):\n%s", diff)
		}
	})

	t.Run("unbounded", func(t *testing.T) {
		b := NewColumn("B", "b", AutoMerge(0))
		_, grid := parse(records(), b)
		want := []CellRange{NewCellRange(0, 1, 0, 0), NewCellRange(2, 4, 0, 0)}
		assert.Equal(t, want, sortedRanges(grid))
	})

	t.Run("empty values never merge", func(t *testing.T) {
		b := NewColumn("B", "missing", AutoMerge(0))
		_, grid := parse(records(), b)
		assert.Empty(t, grid.Ranges())
	})

	t.Run("user ranges survive reparse and win", func(t *testing.T) {
		b := NewColumn("B", "b", AutoMerge(0))
		data := NewTableData("t", b, NewColumn("C", "c"))
		data.Records = records()
		data.UserRanges = []CellRange{NewCellRange(1, 2, 0, 1)}
		grid := NewMergeGrid()
		p := NewTableParser(nil, nil)
		p.Parse(data, grid)
		p.Parse(data, grid)

		// [0,1] and [2,4] both touch the user range and are skipped
		assert.Equal(t, []CellRange{NewCellRange(1, 2, 0, 1)}, sortedRanges(grid))
	})
}

func TestAutoMergeRuns(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		max   int
		want  [][2]int
	}{
		{"no repeats", []string{"a", "b", "c"}, 10, nil},
		{"run at end", []string{"a", "b", "b"}, 10, [][2]int{{1, 2}}},
		{"cap of one disables", []string{"a", "a"}, 1, nil},
		{"cap splits long run", []string{"a", "a", "a", "a", "a"}, 2, [][2]int{{0, 1}, {2, 3}}},
		{"blanks break runs", []string{"a", "", "", "a"}, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, autoMergeRuns(tt.texts, tt.max))
		})
	}
}

func TestParseArrays(t *testing.T) {
	name := NewColumn("Name", "name")
	order := NewColumn("Order", "orders[].id")
	sku := NewColumn("SKU", "orders[].items[].sku")
	data, grid := parse(orderRecords(), name, order, sku)

	require.Same(t, sku, data.Bottom())
	assert.True(t, sku.IsBottom())
	assert.Equal(t, ColumnArray, order.Kind)
	assert.Equal(t, 2, sku.ArrayLevel())
	assert.Equal(t, 1, order.Depth())
	assert.Equal(t, 0, name.Depth())

	assert.Equal(t, 4, data.LineSize())
	assert.Equal(t, []int{3, 1}, data.ArrayLineSize())

	assert.Equal(t, []string{"ann", "bob"}, name.Texts())
	assert.Equal(t, []string{"o1", "o2", ""}, order.Texts())
	assert.Equal(t, []string{"a", "b", "c", ""}, sku.Texts())

	want := []CellRange{NewCellRange(0, 2, 0, 0), NewCellRange(0, 1, 1, 1)}
	if diff := cmp.Diff(want, sortedRanges(grid)); diff != "" {
		t.Errorf("array merges (-want +got):\n%s", diff)
	}

	assert.Equal(t, 0, data.LogicalRow(2))
	assert.Equal(t, 1, data.LogicalRow(3))
}

func TestParseOffChainFlattens(t *testing.T) {
	sku := NewColumn("SKU", "orders[].items[].sku")
	tags := NewColumn("Tags", "orders[].tags[]")
	_, _ = parse(orderRecords(), sku, tags)

	assert.Equal(t, 1, tags.Depth())
	assert.Equal(t, []string{"x, y", "", ""}, tags.Texts())
}

func TestParseWithoutArrays(t *testing.T) {
	data, grid := parse([]any{row("a", 1), row("a", nil), row()}, NewColumn("A", "a"))
	assert.Nil(t, data.Bottom())
	assert.Equal(t, 3, data.LineSize())
	assert.Nil(t, data.ArrayLineSize())
	assert.Equal(t, []string{"1", "", ""}, data.Leaves()[0].Texts())
	assert.Equal(t, 0, grid.Len())
	assert.Equal(t, -1, data.LogicalRow(3))
}

func TestParseStructs(t *testing.T) {
	type item struct{ SKU string }
	type order struct {
		ID    string
		Items []item
	}
	type customer struct {
		Name   string
		Orders []*order
	}
	records := []customer{{Name: "ann", Orders: []*order{{ID: "o1", Items: []item{{"a"}, {"b"}}}}}}

	sku := NewColumn("SKU", "orders[].items[].sku")
	name := NewColumn("Name", "name")
	data := NewTableData("t", name, sku)
	data.Records = toRecords(records)
	NewTableParser(nil, nil).Parse(data, NewMergeGrid())

	assert.Equal(t, []string{"ann"}, name.Texts())
	assert.Equal(t, []string{"a", "b"}, sku.Texts())
}

func TestParseSort(t *testing.T) {
	records := func() []any {
		return []any{
			row("n", 3, "tag", "first"),
			row("n", nil, "tag", "null"),
			row("n", 1, "tag", "one"),
			row("n", 3, "tag", "second"),
		}
	}
	tags := func(data *TableData) []string { return data.Leaves()[1].Texts() }

	t.Run("ascending puts nulls first and keeps ties stable", func(t *testing.T) {
		n := NewColumn("N", "n")
		data := NewTableData("t", n, NewColumn("Tag", "tag"))
		data.Records = records()
		data.sortColumn = n
		NewTableParser(nil, nil).Parse(data, NewMergeGrid())
		assert.Equal(t, []string{"null", "one", "first", "second"}, tags(data))
	})

	t.Run("descending puts nulls last", func(t *testing.T) {
		n := NewColumn("N", "n")
		data := NewTableData("t", n, NewColumn("Tag", "tag"))
		data.Records = records()
		data.sortColumn, data.sortReverse = n, true
		NewTableParser(nil, nil).Parse(data, NewMergeGrid())
		assert.Equal(t, []string{"first", "second", "one", "null"}, tags(data))
	})

	t.Run("custom comparator", func(t *testing.T) {
		byTag := NewColumn("Tag", "tag", CompareWith(func(a, b any) int {
			return len(a.(string)) - len(b.(string))
		}))
		data := NewTableData("t", NewColumn("N", "n"), byTag)
		data.Records = records()
		data.sortColumn = byTag
		NewTableParser(nil, nil).Parse(data, NewMergeGrid())
		assert.Equal(t, []string{"one", "null", "first", "second"}, tags(data))
	})
}

func TestAddDataMatchesFullParse(t *testing.T) {
	columns := func() []*Column {
		return []*Column{
			NewColumn("Name", "name", AutoMerge(0)),
			NewColumn("Order", "orders[].id"),
			NewColumn("SKU", "orders[].items[].sku"),
		}
	}
	ann, bob := orderRecords()[0], orderRecords()[1]
	carl := row("name", "carl", "orders", []any{row("id", "o9", "items", []any{row("sku", "z"), row("sku", "y"), row("sku", "x")})})

	for _, tt := range []struct {
		name  string
		atEnd bool
		want  []any
	}{
		{"tail", true, []any{ann, bob, carl}},
		{"head", false, []any{bob, carl, ann}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTableParser(nil, nil)

			inc := NewTableData("t", columns()...)
			incGrid := NewMergeGrid()
			if tt.atEnd {
				inc.Records = []any{ann, bob}
				p.Parse(inc, incGrid)
				p.AddData(inc, []any{carl}, true, incGrid)
			} else {
				inc.Records = []any{ann}
				p.Parse(inc, incGrid)
				p.AddData(inc, []any{bob, carl}, false, incGrid)
			}

			full := NewTableData("t", columns()...)
			full.Records = tt.want
			fullGrid := NewMergeGrid()
			p.Parse(full, fullGrid)

			assert.Equal(t, full.LineSize(), inc.LineSize())
			assert.Equal(t, full.ArrayLineSize(), inc.ArrayLineSize())
			for i, c := range full.Leaves() {
				ic := inc.Leaves()[i]
				assert.Equal(t, c.Texts(), ic.Texts(), c.Name)
				if c.Structure() != nil {
					assert.Equal(t, c.Structure().Markers(1), ic.Structure().Markers(1), c.Name)
					assert.Equal(t, c.Structure().Markers(2), ic.Structure().Markers(2), c.Name)
				}
			}
			if diff := cmp.Diff(sortedRanges(fullGrid), sortedRanges(incGrid)); diff != "" {
				t.Errorf("merges (-full +incremental):\n%s", diff)
			}
		})
	}
}

func TestAddDataBeforeParse(t *testing.T) {
	data := NewTableData("t", NewColumn("A", "a"))
	NewTableParser(nil, nil).AddData(data, []any{row("a", 1)}, true, NewMergeGrid())
	assert.Equal(t, []string{"1"}, data.Leaves()[0].Texts())
}

func TestExprColumn(t *testing.T) {
	total, err := NewExprColumn("Total", "price * qty", Number(2))
	require.NoError(t, err)
	data, _ := parse([]any{row("price", 2.5, "qty", 4), row("price", 1.0)}, total)

	assert.Equal(t, ColumnExpr, total.Kind)
	assert.Equal(t, []string{"10.00", ""}, data.Leaves()[0].Texts())

	_, err = NewExprColumn("Bad", "price *")
	assert.Error(t, err)
}

func TestAutoCount(t *testing.T) {
	qty := NewColumn("Qty", "qty", AutoCount())
	data, _ := parse([]any{row("qty", 2), row("qty", 3.5), row("qty", "n/a")}, NewColumn("Name", "name"), qty)
	assert.Equal(t, "5.5", qty.CountText())
	assert.Equal(t, "Total", countText(data, DefaultConfig(), 0))
	assert.Equal(t, "5.5", countText(data, DefaultConfig(), 1))
}
