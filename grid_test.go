package smarttable

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func sortedRanges(g *MergeGrid) []CellRange {
	out := g.Ranges()
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstCol != out[j].FirstCol {
			return out[i].FirstCol < out[j].FirstCol
		}
		return out[i].FirstRow < out[j].FirstRow
	})
	return out
}

func TestMergeGridOrigins(t *testing.T) {
	g := NewMergeGrid()
	r := NewCellRange(1, 3, 2, 4)
	assert.True(t, g.AddCellRange(r))

	origin, ok := g.Get(1, 2)
	assert.True(t, ok)
	assert.True(t, origin.IsOrigin())
	assert.Equal(t, 3, origin.ColSpan)
	assert.Equal(t, 3, origin.RowSpan)

	// every member points at the same origin
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			assert.Equal(t, origin, g.Origin(row, col), "(%d,%d)", row, col)
		}
	}
	assert.Equal(t, 9, g.Len())

	// unmerged cells are their own 1x1 origin
	assert.Equal(t, Cell{Row: 0, Col: 0, ColSpan: 1, RowSpan: 1}, g.Origin(0, 0))
	_, ok = g.Get(0, 0)
	assert.False(t, ok)
}

func TestMergeGridRejects(t *testing.T) {
	g := NewMergeGrid()
	assert.False(t, g.AddCellRange(CellRange{FirstRow: 2, LastRow: 2, FirstCol: 1, LastCol: 1}), "single cell")
	assert.False(t, g.AddCellRange(CellRange{FirstRow: -1, LastRow: 2, FirstCol: 0, LastCol: 0}), "negative")
	assert.Equal(t, 0, g.Len())
}

func TestMergeGridOverlap(t *testing.T) {
	t.Run("last registered user range wins", func(t *testing.T) {
		g := NewMergeGrid()
		g.AddCellRange(NewCellRange(0, 2, 0, 0))
		g.AddCellRange(NewCellRange(5, 6, 0, 1))
		g.AddCellRange(NewCellRange(2, 3, 0, 1))

		want := []CellRange{NewCellRange(2, 3, 0, 1), NewCellRange(5, 6, 0, 1)}
		if diff := cmp.Diff(want, sortedRanges(g)); diff != "" {
			t.Errorf("ranges mismatch (-want +got):\n%s", diff)
		}
		// the dropped merge is gone whole, not trimmed
		_, ok := g.Get(0, 0)
		assert.False(t, ok)
	})

	t.Run("auto ranges never displace", func(t *testing.T) {
		g := NewMergeGrid()
		g.AddCellRange(NewCellRange(0, 1, 0, 0))
		assert.False(t, g.AddAutoRange(NewCellRange(1, 2, 0, 0)))
		assert.True(t, g.AddAutoRange(NewCellRange(2, 3, 0, 0)))
		assert.Len(t, g.Ranges(), 2)
	})

	t.Run("clear drops everything", func(t *testing.T) {
		g := NewMergeGrid()
		g.AddCellRange(NewCellRange(0, 1, 0, 1))
		g.Clear()
		assert.Equal(t, 0, g.Len())
	})
}

func TestCellRange(t *testing.T) {
	r := NewCellRange(4, 1, 3, 2)
	assert.Equal(t, CellRange{FirstRow: 1, LastRow: 4, FirstCol: 2, LastCol: 3}, r)
	assert.Equal(t, 4, r.Rows())
	assert.Equal(t, 2, r.Cols())
	assert.True(t, r.Contains(4, 3))
	assert.False(t, r.Contains(5, 3))
	assert.True(t, r.Overlaps(NewCellRange(4, 9, 0, 2)))
	assert.False(t, r.Overlaps(NewCellRange(5, 9, 0, 2)))
	assert.Equal(t, "[1:4, 2:3]", r.String())
}
