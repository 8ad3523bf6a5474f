package term

import (
	"math"

	"github.com/kungfusheep/smarttable"
	"github.com/mattn/go-runewidth"
)

// span is a half-open range of cells: [x0, x1) by [y0, y1).
type span struct {
	x0, y0, x1, y1 int
}

func (s span) contains(x, y int) bool {
	return x >= s.x0 && x < s.x1 && y >= s.y0 && y < s.y1
}

func (s span) intersect(o span) span {
	out := span{max(s.x0, o.x0), max(s.y0, o.y0), min(s.x1, o.x1), min(s.y1, o.y1)}
	if out.x1 < out.x0 {
		out.x1 = out.x0
	}
	if out.y1 < out.y0 {
		out.y1 = out.y0
	}
	return out
}

// toSpan snaps a rect to whole cells. Edges round, so rects that share an edge
// share a cell boundary.
func toSpan(r smarttable.Rect) span {
	return span{
		x0: int(math.Round(r.Left)), y0: int(math.Round(r.Top)),
		x1: int(math.Round(r.Right)), y1: int(math.Round(r.Bottom)),
	}
}

// Canvas is a smarttable.Canvas over terminal cells, one unit per cell. It
// double buffers: a frame is drawn into the back buffer and only replaces the
// visible front buffer on CommitFrame. Drawing outside a frame goes straight
// to the front buffer.
type Canvas struct {
	front, back *Buffer
	clips       []span
	framing     bool
}

var (
	_ smarttable.Canvas = (*Canvas)(nil)
	_ smarttable.Framer = (*Canvas)(nil)
)

// NewCanvas creates a canvas of width by height cells.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{front: NewBuffer(width, height), back: NewBuffer(width, height)}
}

// Resize changes the canvas size, keeping what fits of the visible frame.
func (c *Canvas) Resize(width, height int) {
	c.front.Resize(width, height)
	c.back.Resize(width, height)
}

// Buffer returns the visible frame.
func (c *Canvas) Buffer() *Buffer { return c.front }

// Bounds is the canvas as a rect, suitable as a table viewport.
func (c *Canvas) Bounds() smarttable.Rect {
	return smarttable.NewRect(0, 0, float64(c.front.Width()), float64(c.front.Height()))
}

func (c *Canvas) target() *Buffer {
	if c.framing {
		return c.back
	}
	return c.front
}

func (c *Canvas) clip() span {
	if n := len(c.clips); n > 0 {
		return c.clips[n-1]
	}
	b := c.target()
	return span{0, 0, b.Width(), b.Height()}
}

func (c *Canvas) BeginFrame() {
	c.back.Resize(c.front.Width(), c.front.Height())
	c.back.Clear()
	c.clips = c.clips[:0]
	c.framing = true
}

func (c *Canvas) CommitFrame() {
	if !c.framing {
		return
	}
	c.front, c.back = c.back, c.front
	c.framing = false
	c.clips = c.clips[:0]
}

func (c *Canvas) DiscardFrame() {
	c.framing = false
	c.clips = c.clips[:0]
}

func (c *Canvas) PushClip(r smarttable.Rect) {
	c.clips = append(c.clips, c.clip().intersect(toSpan(r)))
}

func (c *Canvas) PopClip() {
	if n := len(c.clips); n > 0 {
		c.clips = c.clips[:n-1]
	}
}

func (c *Canvas) DrawRect(r smarttable.Rect, p smarttable.Paint) {
	if p.Color.Transparent() {
		return
	}
	if p.Style == smarttable.PaintStroke {
		c.DrawLine(r.Left, r.Top, r.Right, r.Top, p)
		c.DrawLine(r.Left, r.Bottom, r.Right, r.Bottom, p)
		c.DrawLine(r.Left, r.Top, r.Left, r.Bottom, p)
		c.DrawLine(r.Right, r.Top, r.Right, r.Bottom, p)
		return
	}
	b := c.target()
	s := toSpan(r).intersect(c.clip())
	bg := Style{BG: p.Color}
	for y := s.y0; y < s.y1; y++ {
		for x := s.x0; x < s.x1; x++ {
			b.Paint(x, y, bg)
		}
	}
}

// DrawText writes s on the row whose top is y minus the text size, the
// baseline convention of Measurer.
func (c *Canvas) DrawText(s string, x, y float64, p smarttable.Paint) {
	if s == "" {
		return
	}
	w := runewidth.StringWidth(s)
	col := int(math.Round(x))
	switch p.Align {
	case smarttable.AlignCenter:
		col = int(math.Round(x - float64(w)/2))
	case smarttable.AlignRight:
		col -= w
	}
	row := int(math.Floor(y - p.TextSize + 0.5))

	b, clip := c.target(), c.clip()
	style := Style{FG: p.Color, Bold: p.Bold}
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if clip.contains(col, row) && clip.contains(col+rw-1, row) {
			b.Set(col, row, NewCell(r, style))
			for i := 1; i < rw; i++ {
				b.Set(col+i, row, NewCell(0, style))
			}
		}
		col += rw
	}
}

// DrawLine draws horizontal and vertical lines with box runes. A line on an
// edge lands in the last cell before it, so a grid line at a cell's right or
// bottom edge stays inside that cell. Crossing lines merge into junctions.
func (c *Canvas) DrawLine(x1, y1, x2, y2 float64, p smarttable.Paint) {
	if p.Color.Transparent() {
		return
	}
	b, clip := c.target(), c.clip()
	style := Style{FG: p.Color}
	switch {
	case y1 == y2:
		row := int(math.Ceil(y1)) - 1
		from, to := int(math.Round(min(x1, x2))), int(math.Round(max(x1, x2)))
		for x := from; x < to; x++ {
			if clip.contains(x, row) {
				b.Set(x, row, NewCell(BoxHorizontal, style))
			}
		}
	case x1 == x2:
		col := int(math.Ceil(x1)) - 1
		from, to := int(math.Round(min(y1, y2))), int(math.Round(max(y1, y2)))
		for y := from; y < to; y++ {
			if clip.contains(col, y) {
				b.Set(col, y, NewCell(BoxVertical, style))
			}
		}
	}
}

// Measurer measures text in terminal cells: a rune is as wide as the terminal
// shows it, and a line is one cell tall at size 1.
type Measurer struct{}

var _ smarttable.TextMeasurer = Measurer{}

func (Measurer) MeasureText(s string, size float64) float64 {
	return float64(runewidth.StringWidth(s)) * size
}

func (Measurer) Metrics(size float64) smarttable.FontMetrics {
	return smarttable.FontMetrics{Ascent: size}
}
