package smarttable

import "fmt"

// CellRange is an inclusive rectangle of physical rows and leaf columns.
type CellRange struct {
	FirstRow int `toml:"first_row" yaml:"first_row"`
	LastRow  int `toml:"last_row" yaml:"last_row"`
	FirstCol int `toml:"first_col" yaml:"first_col"`
	LastCol  int `toml:"last_col" yaml:"last_col"`
}

// NewCellRange builds a range, normalising swapped bounds.
func NewCellRange(firstRow, lastRow, firstCol, lastCol int) CellRange {
	if lastRow < firstRow {
		firstRow, lastRow = lastRow, firstRow
	}
	if lastCol < firstCol {
		firstCol, lastCol = lastCol, firstCol
	}
	return CellRange{FirstRow: firstRow, LastRow: lastRow, FirstCol: firstCol, LastCol: lastCol}
}

func (r CellRange) Rows() int { return r.LastRow - r.FirstRow + 1 }
func (r CellRange) Cols() int { return r.LastCol - r.FirstCol + 1 }

// Contains reports whether (row, col) lies inside the range.
func (r CellRange) Contains(row, col int) bool {
	return row >= r.FirstRow && row <= r.LastRow && col >= r.FirstCol && col <= r.LastCol
}

// Overlaps reports whether two ranges share a cell.
func (r CellRange) Overlaps(o CellRange) bool {
	return r.FirstRow <= o.LastRow && o.FirstRow <= r.LastRow &&
		r.FirstCol <= o.LastCol && o.FirstCol <= r.LastCol
}

func (r CellRange) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d]", r.FirstRow, r.LastRow, r.FirstCol, r.LastCol)
}

// Cell is the merge descriptor of one grid position. An origin carries its
// spans; a member carries zero spans and the coordinates of its origin.
type Cell struct {
	Row, Col         int // origin coordinates
	ColSpan, RowSpan int
}

// IsOrigin reports whether the cell is the top-left of a merge.
func (c Cell) IsOrigin() bool { return c.ColSpan >= 1 && c.RowSpan >= 1 }

// Range returns the merged rectangle of an origin cell.
func (c Cell) Range() CellRange {
	return CellRange{
		FirstRow: c.Row, LastRow: c.Row + max(c.RowSpan, 1) - 1,
		FirstCol: c.Col, LastCol: c.Col + max(c.ColSpan, 1) - 1,
	}
}

type gridPos struct{ row, col int }

// MergeGrid is the sparse record of merged positions. Positions that were
// never merged are absent.
//
// Overlaps resolve as last-registered-wins for AddCellRange: every earlier
// merge sharing a cell with the new range is removed whole. AddAutoRange never
// displaces an existing merge; it is skipped instead.
type MergeGrid struct {
	cells map[gridPos]Cell
}

// NewMergeGrid returns an empty grid.
func NewMergeGrid() *MergeGrid {
	return &MergeGrid{cells: make(map[gridPos]Cell)}
}

// Clear removes every merge.
func (g *MergeGrid) Clear() { clear(g.cells) }

// Len is the number of merged positions, origins included.
func (g *MergeGrid) Len() int { return len(g.cells) }

// Get returns the descriptor at (row, col); ok is false for unmerged cells.
func (g *MergeGrid) Get(row, col int) (Cell, bool) {
	c, ok := g.cells[gridPos{row, col}]
	return c, ok
}

// Origin resolves (row, col) to the origin of its merge. Unmerged positions
// are their own 1x1 origin.
func (g *MergeGrid) Origin(row, col int) Cell {
	c, ok := g.cells[gridPos{row, col}]
	if !ok {
		return Cell{Row: row, Col: col, ColSpan: 1, RowSpan: 1}
	}
	if c.IsOrigin() {
		return c
	}
	return g.cells[gridPos{c.Row, c.Col}]
}

// AddCellRange merges r, removing any earlier merge it overlaps. Single-cell
// and negative ranges are ignored.
func (g *MergeGrid) AddCellRange(r CellRange) bool {
	if !g.valid(r) {
		return false
	}
	for _, o := range g.overlapping(r) {
		g.remove(o)
	}
	g.mark(r)
	return true
}

// AddAutoRange merges r only when no cell of r is merged already.
func (g *MergeGrid) AddAutoRange(r CellRange) bool {
	if !g.valid(r) || len(g.overlapping(r)) > 0 {
		return false
	}
	g.mark(r)
	return true
}

// Ranges lists the merged rectangles in no particular order.
func (g *MergeGrid) Ranges() []CellRange {
	var out []CellRange
	for _, c := range g.cells {
		if c.IsOrigin() {
			out = append(out, c.Range())
		}
	}
	return out
}

func (g *MergeGrid) valid(r CellRange) bool {
	if r.FirstRow < 0 || r.FirstCol < 0 || r.LastRow < r.FirstRow || r.LastCol < r.FirstCol {
		return false
	}
	return r.Rows() > 1 || r.Cols() > 1
}

func (g *MergeGrid) mark(r CellRange) {
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			g.cells[gridPos{row, col}] = Cell{Row: r.FirstRow, Col: r.FirstCol}
		}
	}
	g.cells[gridPos{r.FirstRow, r.FirstCol}] = Cell{
		Row: r.FirstRow, Col: r.FirstCol, ColSpan: r.Cols(), RowSpan: r.Rows(),
	}
}

// overlapping returns the origins of merges sharing a cell with r.
func (g *MergeGrid) overlapping(r CellRange) []CellRange {
	seen := make(map[gridPos]bool)
	var out []CellRange
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			c, ok := g.cells[gridPos{row, col}]
			if !ok {
				continue
			}
			key := gridPos{c.Row, c.Col}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, g.cells[key].Range())
		}
	}
	return out
}

func (g *MergeGrid) remove(r CellRange) {
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			delete(g.cells, gridPos{row, col})
		}
	}
}
