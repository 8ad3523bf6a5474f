package smarttable

import (
	"math"
	"strconv"
	"strings"
)

// TableMeasurer turns parsed table data into a TableInfo.
type TableMeasurer struct {
	text TextMeasurer
}

// NewTableMeasurer returns a measurer over the host's text measurement.
func NewTableMeasurer(text TextMeasurer) *TableMeasurer {
	return &TableMeasurer{text: text}
}

// textBox measures multi-line text at size; an empty string is one empty line.
func (m *TableMeasurer) textBox(s string, size float64) (w, h int) {
	lineH := int(math.Ceil(sane(m.text.Metrics(size).Height(), 0)))
	lines := strings.Split(s, "\n")
	for _, line := range lines {
		lw := int(math.Ceil(sane(m.text.MeasureText(line, size), 0)))
		w = max(w, lw)
	}
	return w, lineH * len(lines)
}

// Measure computes widths, heights and bands. It only reads data, grid and cfg
// and rebuilds info from scratch, so repeated calls agree.
//
// A merged cell asks each row it spans for ceil(height/rowSpan), and each
// column for ceil(width/colSpan). The rounding can leave a merge a few pixels
// taller or wider than its origin's content needs.
func (m *TableMeasurer) Measure(data *TableData, grid *MergeGrid, cfg Config, info *TableInfo) {
	hpad, vpad := cfg.HorizontalPadding, cfg.VerticalPadding
	size, titleSize := cfg.Theme.FontSize, cfg.Theme.TitleFontSize
	leaves := data.leaves
	nCols, nRows := len(leaves), data.lineSize

	widths := make([]int, nCols)
	heights := make([]int, nRows)

	for _, c := range leaves {
		for i, text := range c.texts {
			row := c.itemStart[i]
			if row >= nRows {
				continue
			}
			colSpan, rowSpan := 1, 1
			if cell, ok := grid.Get(row, c.index); ok {
				if !cell.IsOrigin() {
					continue
				}
				colSpan, rowSpan = cell.ColSpan, cell.RowSpan
			}
			tw, th := m.textBox(text, size)
			cw := tw + 2*hpad
			ch := max(th+2*vpad, c.MinHeight)

			share := ceilDiv(cw, colSpan)
			for col := c.index; col < min(c.index+colSpan, nCols); col++ {
				widths[col] = max(widths[col], share)
			}
			share = ceilDiv(ch, rowSpan)
			for r := row; r < min(row+rowSpan, nRows); r++ {
				heights[r] = max(heights[r], share)
			}
		}
	}

	// empty rows still get one line
	_, lineH := m.textBox("", size)
	for r := range heights {
		if heights[r] == 0 {
			heights[r] = lineH + 2*vpad
		}
	}

	info.CountHeight = 0
	if data.hasCount {
		info.CountHeight = lineH + 2*vpad
		for i := range leaves {
			tw, _ := m.textBox(countText(data, cfg, i), size)
			widths[i] = max(widths[i], tw+2*hpad)
		}
	}

	// header floors
	titleRowH := 0
	if !cfg.HideColumnTitle {
		for _, c := range data.all {
			_, th := m.textBox(c.Name, titleSize)
			titleRowH = max(titleRowH, th+2*vpad)
		}
	}
	for i, c := range leaves {
		floor := c.MinWidth
		if !cfg.HideColumnTitle {
			tw, _ := m.textBox(c.Name, titleSize)
			floor = max(floor, tw+2*hpad)
		}
		widths[i] = max(widths[i], floor)
		if c.Width > 0 {
			widths[i] = c.Width
		}
	}
	if !cfg.HideColumnTitle {
		m.spreadParents(data.Columns, widths, titleSize, hpad)
	}

	info.XSequenceHeight = 0
	if cfg.ShowXSequence {
		info.XSequenceHeight = lineH + 2*vpad
	}
	info.YSequenceWidth = 0
	if cfg.ShowYSequence {
		tw, _ := m.textBox(strconv.Itoa(max(nRows, 10)), size)
		info.YSequenceWidth = tw + 2*hpad
	}
	info.TableTitleHeight = 0
	if cfg.TableName != "" {
		_, th := m.textBox(cfg.TableName, titleSize)
		info.TableTitleHeight = th + 2*vpad
	}

	if cfg.MinTableWidth > 0 {
		scaleWidths(widths, cfg.MinTableWidth-info.YSequenceWidth)
	}

	for i, c := range leaves {
		c.computeWidth = widths[i]
	}

	info.Widths = widths
	info.LineHeights = heights
	info.ColumnLefts = prefixSums(info.ColumnLefts, widths)
	info.RowTops = prefixSums(info.RowTops, heights)
	info.TitleRowHeight = titleRowH
	info.TitleHeight = titleRowH * data.maxLevel
	info.MaxLevel = data.maxLevel
	info.LineSize = nRows
	info.ColumnSize = nCols
	info.ArrayLineSize = append(info.ArrayLineSize[:0], data.lineSizes...)
	info.ColumnInfos = m.columnInfos(data, info)
	if info.Zoom == 0 {
		info.Zoom = 1
	}

	info.tableRect = NewRect(0, 0,
		float64(info.YSequenceWidth+info.ContentWidth()),
		float64(info.HeaderHeight()+info.ContentHeight()+info.CountHeight))
	info.measured = true
}

// spreadParents widens leaves under parent headers whose title does not fit.
// It returns the leaf index range of cols.
func (m *TableMeasurer) spreadParents(cols []*Column, widths []int, size float64, hpad int) (first, last int) {
	first, last = -1, -1
	for _, c := range cols {
		f, l := c.index, c.index
		if c.IsParent() {
			f, l = m.spreadParents(c.Children, widths, size, hpad)
			if f >= 0 {
				tw, _ := m.textBox(c.Name, size)
				spread(widths[f:l+1], tw+2*hpad)
			}
		}
		if f < 0 {
			continue
		}
		if first < 0 {
			first = f
		}
		last = l
	}
	return first, last
}

// spread grows widths evenly until they sum to at least need; the rounding
// remainder goes to the last entry.
func spread(widths []int, need int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	if total >= need || len(widths) == 0 {
		return
	}
	extra := need - total
	each := extra / len(widths)
	for i := range widths {
		widths[i] += each
	}
	widths[len(widths)-1] += extra - each*len(widths)
}

// scaleWidths scales widths up proportionally so they sum to target. Nothing
// changes when they already do.
func scaleWidths(widths []int, target int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	if total == 0 || total >= target {
		return
	}
	scale := float64(target) / float64(total)
	sum := 0
	for i, w := range widths {
		widths[i] = int(math.Floor(float64(w) * scale))
		sum += widths[i]
	}
	widths[len(widths)-1] += target - sum
}

func prefixSums(dst []int, vals []int) []int {
	dst = append(dst[:0], 0)
	acc := 0
	for _, v := range vals {
		acc += v
		dst = append(dst, acc)
	}
	return dst
}

func ceilDiv(a, b int) int {
	if b <= 1 {
		return a
	}
	return (a + b - 1) / b
}

// columnInfos lays out the header tree as an arena in preorder.
func (m *TableMeasurer) columnInfos(data *TableData, info *TableInfo) []ColumnInfo {
	out := info.ColumnInfos[:0]
	var visit func(cols []*Column, depth, parent int)
	visit = func(cols []*Column, depth, parent int) {
		for _, c := range cols {
			idx := len(out)
			out = append(out, ColumnInfo{Column: c, Title: c.Name, Depth: depth, Parent: parent})
			first, last := c.index, c.index
			if c.IsParent() {
				visit(c.Children, depth+1, idx)
				first, last = -1, -1
				for j := idx + 1; j < len(out); j++ {
					if out[j].Column.IsParent() {
						continue
					}
					if first < 0 {
						first = out[j].FirstLeaf
					}
					last = out[j].LastLeaf
				}
			}
			ci := &out[idx]
			ci.FirstLeaf, ci.LastLeaf = first, last
			ci.Top = depth * info.TitleRowHeight
			ci.Height = info.TitleRowHeight
			if !c.IsParent() {
				ci.Height = (data.maxLevel - depth) * info.TitleRowHeight
			}
			if first >= 0 {
				ci.Left = info.ColumnLefts[first]
				ci.Width = info.ColumnLefts[last+1] - info.ColumnLefts[first]
			}
		}
	}
	visit(data.Columns, 0, -1)
	return out
}

// countText is what the count row shows under leaf i: the column total, or
// the count label in the first column when it has no total of its own.
func countText(data *TableData, cfg Config, i int) string {
	c := data.leaves[i]
	if c.AutoCount {
		return c.count
	}
	if i == 0 {
		return cfg.CountLabel
	}
	return ""
}
