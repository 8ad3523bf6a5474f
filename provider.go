package smarttable

import (
	"strconv"
	"strings"
)

// CellClick describes a clicked cell. Row and Col are the merge origin.
type CellClick struct {
	Row, Col int
	Record   int // logical row, -1 when unknown
	Column   *Column
	Value    any
	Text     string
}

// provider walks the measured table once per frame. Drawing and hit-testing
// share the walk; a hit-test runs it on a nopCanvas.
type provider struct {
	data *TableData
	grid *MergeGrid
	info *TableInfo
	cfg  Config
	text TextMeasurer

	pending        bool
	fired          bool
	clickX, clickY float64
	onCell         func(CellClick)
	onTitle        func(*Column)

	seen     map[gridPos]struct{}
	leafLeft []float64

	// screen extent of the frozen columns in the last frame
	frozenArea Rect
}

func newProvider(data *TableData, grid *MergeGrid, info *TableInfo, text TextMeasurer) *provider {
	return &provider{data: data, grid: grid, info: info, text: text, seen: make(map[gridPos]struct{})}
}

// click queues a screen point for the next walk.
func (p *provider) click(x, y float64) {
	p.pending, p.fired = true, false
	p.clickX, p.clickY = x, y
}

// walk holds the per-frame geometry, all in screen pixels.
type walk struct {
	*provider
	cv   Canvas
	vr   Rect // viewport
	sr   Rect // scaled content
	z    float64
	clip Rect

	xFloor     float64 // left edge of the cell area
	scrollLeft float64 // left clip of non-frozen columns
	ySeqLeft   float64
	hasFrozen  bool

	tableTitleTop float64
	xSeqTop       float64
	titleTop      float64
	rowsTop       float64
	frozenTop     float64
	frozenRows    int
	rowsClipTop   float64
	rowsClipBot   float64
	countTop      float64
}

// render draws one frame: table title, x sequence, column titles, scrolling
// rows, frozen rows, count row, y sequence. A pending click fires at most one
// callback and is dropped afterwards whether it hit or not.
func (p *provider) render(cv Canvas, vr, sr Rect, fixedTranslateX float64) {
	w := &walk{provider: p, cv: cv, vr: vr, sr: sr, z: p.info.Zoom}
	if w.z <= 0 {
		w.z = 1
	}
	w.layout(fixedTranslateX)

	cv.PushClip(vr)
	w.tableTitle()
	w.xSequence()
	w.columnTitles()
	w.rows(false)
	w.rows(true)
	w.countRow()
	w.ySequence()
	cv.PopClip()

	p.pending = false
}

func (w *walk) layout(fixedTranslateX float64) {
	info, cfg, z := w.info, w.cfg, w.z

	// vertical bands, pinned ones stacking from the viewport top
	floor := w.vr.Top
	top := w.sr.Top
	w.tableTitleTop = top
	top += float64(info.TableTitleHeight) * z

	w.xSeqTop = top
	if cfg.FixedXSequence && info.XSequenceHeight > 0 {
		w.xSeqTop = max(top, floor)
		floor = w.xSeqTop + float64(info.XSequenceHeight)*z
	}
	top += float64(info.XSequenceHeight) * z

	w.titleTop = top
	if cfg.FixedTitle && info.TitleHeight > 0 {
		w.titleTop = max(top, floor)
		floor = w.titleTop + float64(info.TitleHeight)*z
	}
	top += float64(info.TitleHeight) * z

	w.rowsTop = top
	w.rowsClipTop = floor
	w.frozenRows = min(max(cfg.FixedRows, 0), info.LineSize)
	if w.frozenRows > 0 {
		w.frozenTop = max(top, floor)
		w.rowsClipTop = w.frozenTop + float64(info.RowTops[w.frozenRows])*z
	}
	w.countTop = top + float64(info.ContentHeight())*z
	w.rowsClipBot = w.vr.Bottom
	if cfg.FixedCountRow && info.CountHeight > 0 {
		w.countTop = max(min(w.countTop, w.vr.Bottom-float64(info.CountHeight)*z), w.rowsClipTop)
		w.rowsClipBot = w.countTop
	}

	// horizontal: y sequence, then frozen columns pinned left to right
	ysw := float64(info.YSequenceWidth) * z
	w.ySeqLeft = w.sr.Left
	w.xFloor = w.vr.Left
	if w.cfg.FixedYSequence && ysw > 0 {
		w.ySeqLeft = max(w.sr.Left, w.vr.Left)
		w.xFloor = w.ySeqLeft + ysw
	}

	leaves := w.data.leaves
	w.leafLeft = w.leafLeft[:0]
	colsLeft := w.sr.Left + ysw
	accum := 0.0
	pinnedRight := w.xFloor
	for i, c := range leaves {
		natural := colsLeft + float64(info.ColumnLefts[i])*z
		left := natural
		if c.Fixed {
			w.hasFrozen = true
			if pinned := w.xFloor + (accum+fixedTranslateX)*z; pinned > natural {
				left = pinned
				pinnedRight = max(pinnedRight, left+float64(info.Widths[i])*z)
			}
			accum += float64(info.Widths[i])
		}
		w.leafLeft = append(w.leafLeft, left)
	}
	w.scrollLeft = pinnedRight
	w.frozenArea = Rect{}
	if w.hasFrozen {
		w.frozenArea = Rect{Left: w.xFloor, Top: w.vr.Top, Right: pinnedRight, Bottom: w.vr.Bottom}
	}
}

// band runs fn for the frozen columns and then for the rest, each inside its
// own clip.
func (w *walk) band(top, bottom float64, fn func(frozen bool)) {
	if w.hasFrozen {
		w.pass(Rect{Left: w.xFloor, Top: top, Right: w.vr.Right, Bottom: bottom}, func() { fn(true) })
	}
	w.pass(Rect{Left: w.scrollLeft, Top: top, Right: w.vr.Right, Bottom: bottom}, func() { fn(false) })
}

func (w *walk) pass(clip Rect, fn func()) {
	clip = clip.Intersect(w.vr)
	if clip.Empty() {
		return
	}
	w.cv.PushClip(clip)
	w.clip = clip
	clear(w.seen)
	fn()
	w.cv.PopClip()
}

// span is the screen rect of leaves [col, col+n) between top and bottom.
func (w *walk) span(col, n int, top, bottom float64) Rect {
	lefts := w.info.ColumnLefts
	end := min(col+n, w.info.ColumnSize)
	return Rect{
		Left:   w.leafLeft[col],
		Top:    top,
		Right:  w.leafLeft[col] + float64(lefts[end]-lefts[col])*w.z,
		Bottom: bottom,
	}
}

// hit fires fn when the pending click lies inside r and the current clip.
func (w *walk) hit(r Rect, fn func()) {
	if !w.pending || !w.clip.Contains(w.clickX, w.clickY) || !r.Contains(w.clickX, w.clickY) {
		return
	}
	w.pending, w.fired = false, true
	fn()
}

func (w *walk) tableTitle() {
	h := float64(w.info.TableTitleHeight) * w.z
	if h == 0 {
		return
	}
	r := Rect{Left: w.sr.Left, Top: w.tableTitleTop, Right: w.sr.Right, Bottom: w.tableTitleTop + h}
	if !r.Intersects(w.vr) {
		return
	}
	th := w.cfg.Theme
	w.fill(r, th.TitleBackground)
	w.label(r, w.cfg.TableName, th.TitleFontSize, th.TitleColor, AlignCenter, th.TitleBold)
}

func (w *walk) xSequence() {
	h := float64(w.info.XSequenceHeight) * w.z
	if h == 0 {
		return
	}
	th := w.cfg.Theme
	w.band(w.xSeqTop, w.xSeqTop+h, func(frozen bool) {
		for i, c := range w.data.leaves {
			if c.Fixed != frozen {
				continue
			}
			r := w.span(i, 1, w.xSeqTop, w.xSeqTop+h)
			if !r.Intersects(w.clip) {
				continue
			}
			w.fill(r, th.SequenceBackground)
			w.label(r, letterSequence(i), th.FontSize, th.SequenceColor, AlignCenter, false)
			w.gridLines(r)
		}
	})
}

func (w *walk) columnTitles() {
	h := float64(w.info.TitleHeight) * w.z
	if h == 0 {
		return
	}
	th := w.cfg.Theme
	w.band(w.titleTop, w.titleTop+h, func(frozen bool) {
		for _, ci := range w.info.ColumnInfos {
			if ci.FirstLeaf < 0 || w.allFixed(ci) != frozen {
				continue
			}
			top := w.titleTop + float64(ci.Top)*w.z
			r := w.span(ci.FirstLeaf, ci.LastLeaf-ci.FirstLeaf+1, top, top+float64(ci.Height)*w.z)
			if !r.Intersects(w.clip) {
				continue
			}
			w.fill(r, th.TitleBackground)
			w.label(r, ci.Title, th.TitleFontSize, th.TitleColor, AlignCenter, th.TitleBold)
			w.gridLines(r)
			col := ci.Column
			w.hit(r, func() {
				if w.onTitle != nil {
					w.onTitle(col)
				}
			})
		}
	})
}

// columnVisible is the horizontal overlap test of leaf i against the clip.
func (w *walk) columnVisible(i int) bool {
	left := w.leafLeft[i]
	return left < w.clip.Right && left+float64(w.info.Widths[i])*w.z > w.clip.Left
}

func (w *walk) allFixed(ci ColumnInfo) bool {
	for i := ci.FirstLeaf; i <= ci.LastLeaf; i++ {
		if !w.data.leaves[i].Fixed {
			return false
		}
	}
	return true
}

// rows draws the scrolling rows, or with frozen set the pinned top rows.
func (w *walk) rows(frozen bool) {
	info := w.info
	if info.LineSize == 0 {
		return
	}
	var base, top, bottom float64
	var first, last int
	if frozen {
		if w.frozenRows == 0 {
			return
		}
		base, top, bottom = w.frozenTop, w.frozenTop, w.rowsClipTop
		first, last = 0, w.frozenRows-1
	} else {
		base, top, bottom = w.rowsTop, w.rowsClipTop, w.rowsClipBot
		if bottom <= top {
			return
		}
		first = max(info.rowAt((top-base)/w.z), w.frozenRows)
		last = info.rowAt((bottom - base) / w.z)
	}
	w.band(top, bottom, func(frozenCols bool) {
		for r := first; r <= last; r++ {
			for i, c := range w.data.leaves {
				if c.Fixed != frozenCols || !w.columnVisible(i) {
					continue
				}
				w.cell(r, i, base)
			}
		}
	})
}

// cell draws the merge covering (row, col) unless it was already drawn in
// this pass. Origins outside the visible window are drawn through their
// members.
func (w *walk) cell(row, col int, base float64) {
	o := w.grid.Origin(row, col)
	key := gridPos{o.Row, o.Col}
	if _, ok := w.seen[key]; ok {
		return
	}
	w.seen[key] = struct{}{}

	tops := w.info.RowTops
	end := min(o.Row+max(o.RowSpan, 1), w.info.LineSize)
	r := w.span(o.Col, max(o.ColSpan, 1), base+float64(tops[o.Row])*w.z, base+float64(tops[end])*w.z)
	if !r.Intersects(w.clip) {
		return
	}

	c := w.data.leaves[o.Col]
	value, text, _ := c.At(o.Row)

	th := w.cfg.Theme
	bg := th.Background.colorFor(o.Row)
	if c.Background != nil {
		bg = c.Background(value, o.Row)
	}
	align := th.Align
	if c.hasAlign {
		align = c.Align
	}
	w.fill(r, bg)
	w.label(r, text, th.FontSize, th.TextColor, align, false)
	w.gridLines(r)

	w.hit(r, func() {
		if w.onCell != nil {
			w.onCell(CellClick{
				Row: o.Row, Col: o.Col,
				Record: w.data.LogicalRow(o.Row),
				Column: c, Value: value, Text: text,
			})
		}
	})
}

func (w *walk) countRow() {
	h := float64(w.info.CountHeight) * w.z
	if h == 0 {
		return
	}
	th := w.cfg.Theme
	w.band(w.countTop, w.countTop+h, func(frozen bool) {
		for i, c := range w.data.leaves {
			if c.Fixed != frozen {
				continue
			}
			r := w.span(i, 1, w.countTop, w.countTop+h)
			if !r.Intersects(w.clip) {
				continue
			}
			align := th.Align
			if c.hasAlign {
				align = c.Align
			}
			w.fill(r, th.CountBackground)
			w.label(r, countText(w.data, w.cfg, i), th.FontSize, th.CountColor, align, th.TitleBold)
			w.gridLines(r)
		}
	})
}

func (w *walk) ySequence() {
	width := float64(w.info.YSequenceWidth) * w.z
	if width == 0 {
		return
	}
	th := w.cfg.Theme
	left, right := w.ySeqLeft, w.ySeqLeft+width

	// corner above the row numbers
	corner := Rect{Left: left, Top: w.xSeqTop, Right: right, Bottom: w.titleTop + float64(w.info.TitleHeight)*w.z}
	w.pass(corner, func() { w.fill(corner, th.SequenceBackground) })

	numbers := func(base, top, bottom float64, first, last int) {
		w.pass(Rect{Left: left, Top: top, Right: right, Bottom: bottom}, func() {
			for r := first; r <= last; r++ {
				rr := Rect{
					Left: left, Right: right,
					Top:    base + float64(w.info.RowTops[r])*w.z,
					Bottom: base + float64(w.info.RowTops[r+1])*w.z,
				}
				w.fill(rr, th.SequenceBackground)
				w.label(rr, strconv.Itoa(r+1), th.FontSize, th.SequenceColor, AlignCenter, false)
				w.gridLines(rr)
			}
		})
	}
	if w.info.LineSize == 0 {
		return
	}
	if w.rowsClipBot > w.rowsClipTop {
		first := max(w.info.rowAt((w.rowsClipTop-w.rowsTop)/w.z), w.frozenRows)
		last := w.info.rowAt((w.rowsClipBot - w.rowsTop) / w.z)
		numbers(w.rowsTop, w.rowsClipTop, w.rowsClipBot, first, last)
	}
	if w.frozenRows > 0 {
		numbers(w.frozenTop, w.frozenTop, w.rowsClipTop, 0, w.frozenRows-1)
	}
}

func (w *walk) fill(r Rect, c Color) {
	if c.Transparent() {
		return
	}
	w.cv.DrawRect(r, Paint{Color: c, Style: PaintFill})
}

// label draws possibly multi-line text vertically centred in r.
func (w *walk) label(r Rect, s string, size float64, c Color, align Align, bold bool) {
	if s == "" {
		return
	}
	size *= w.z
	fm := w.text.Metrics(size)
	lineH := sane(fm.Height(), 0)
	lines := strings.Split(s, "\n")
	y := r.Top + (r.Height()-lineH*float64(len(lines)))/2 + sane(fm.Ascent, 0)

	pad := float64(w.cfg.HorizontalPadding) * w.z
	x := r.Left + r.Width()/2
	switch align {
	case AlignLeft:
		x = r.Left + pad
	case AlignRight:
		x = r.Right - pad
	}
	paint := Paint{Color: c, TextSize: size, Align: align, Bold: bold}
	for _, line := range lines {
		w.cv.DrawText(line, x, y, paint)
		y += lineH
	}
}

// gridLines strokes the right and bottom edges of r, as the grid format allows.
func (w *walk) gridLines(r Rect) {
	th := w.cfg.Theme
	if th.Grid == GridNone || th.GridColor.Transparent() {
		return
	}
	paint := Paint{Color: th.GridColor, Style: PaintStroke, StrokeWidth: 1}
	if th.Grid == GridAll || th.Grid == GridHorizontal {
		w.cv.DrawLine(r.Left, r.Bottom, r.Right, r.Bottom, paint)
	}
	if th.Grid == GridAll || th.Grid == GridVertical {
		w.cv.DrawLine(r.Right, r.Top, r.Right, r.Bottom, paint)
	}
}
