package smarttable

import "sort"

// ColumnInfo is the header layout of one column of the tree, in content pixels
// relative to the top-left of the column title band. The list lives in
// TableInfo; Parent indexes into it and is -1 for roots.
type ColumnInfo struct {
	Column *Column
	Title  string
	Left   int
	Top    int
	Width  int
	Height int
	Depth  int
	Parent int

	// leaf index range covered by the header
	FirstLeaf, LastLeaf int
}

// TableInfo is the measured layout of a table. Measure overwrites it in place.
type TableInfo struct {
	ColumnInfos []ColumnInfo
	LineHeights []int
	Widths      []int

	// prefix sums: ColumnLefts[i] is the left edge of leaf i relative to the
	// first column, RowTops[r] the top of row r relative to the first row.
	// Both carry one trailing entry holding the total.
	ColumnLefts []int
	RowTops     []int

	TableTitleHeight int
	XSequenceHeight  int
	TitleRowHeight   int
	TitleHeight      int
	CountHeight      int
	YSequenceWidth   int

	MaxLevel      int
	LineSize      int
	ColumnSize    int
	ArrayLineSize []int
	Zoom          float64

	tableRect Rect
	measured  bool
}

// TableRect is the content rectangle. ok is false before the first measure.
func (t *TableInfo) TableRect() (Rect, bool) {
	return t.tableRect, t.measured
}

// Measured reports whether Measure has run.
func (t *TableInfo) Measured() bool { return t.measured }

// ContentWidth is the sum of leaf column widths.
func (t *TableInfo) ContentWidth() int {
	if len(t.ColumnLefts) == 0 {
		return 0
	}
	return t.ColumnLefts[len(t.ColumnLefts)-1]
}

// ContentHeight is the sum of row heights.
func (t *TableInfo) ContentHeight() int {
	if len(t.RowTops) == 0 {
		return 0
	}
	return t.RowTops[len(t.RowTops)-1]
}

// HeaderHeight is everything above the first row.
func (t *TableInfo) HeaderHeight() int {
	return t.TableTitleHeight + t.XSequenceHeight + t.TitleHeight
}

// rowAt finds the row containing content offset y (relative to the first
// row), clamped to the valid range.
func (t *TableInfo) rowAt(y float64) int {
	if t.LineSize == 0 {
		return 0
	}
	i := sort.Search(t.LineSize, func(i int) bool { return float64(t.RowTops[i+1]) > y })
	return min(i, t.LineSize-1)
}

// columnAt is rowAt for leaf columns.
func (t *TableInfo) columnAt(x float64) int {
	if t.ColumnSize == 0 {
		return 0
	}
	i := sort.Search(t.ColumnSize, func(i int) bool { return float64(t.ColumnLefts[i+1]) > x })
	return min(i, t.ColumnSize-1)
}
