package smarttable

import (
	"math"
	"strings"
	"unicode/utf8"
)

// monoMeasurer treats every rune as size pixels wide and a line as size tall.
type monoMeasurer struct{}

func (monoMeasurer) MeasureText(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size
}

func (monoMeasurer) Metrics(size float64) FontMetrics {
	return FontMetrics{Ascent: size * 0.8, Descent: size * 0.2}
}

// nanMeasurer returns NaN for any text containing "bad".
type nanMeasurer struct{ monoMeasurer }

func (m nanMeasurer) MeasureText(s string, size float64) float64 {
	if strings.Contains(s, "bad") {
		return math.NaN()
	}
	return m.monoMeasurer.MeasureText(s, size)
}

// testConfig: a rune is 10px, a line 10px, padding 5px all round, so a cell
// of n runes is 10n+10 wide and 20 tall.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Theme.FontSize = 10
	cfg.Theme.TitleFontSize = 10
	cfg.HorizontalPadding = 5
	cfg.VerticalPadding = 5
	return cfg
}

type drawnText struct {
	text string
	x, y float64
}

type recordCanvas struct {
	texts    []drawnText
	rects    []Rect
	lines    int
	clips    []Rect
	depth    int
	maxDepth int

	begun, committed, discarded int
	panicOn                     string
}

func (c *recordCanvas) DrawRect(r Rect, _ Paint) { c.rects = append(c.rects, r) }

func (c *recordCanvas) DrawText(s string, x, y float64, _ Paint) {
	if c.panicOn != "" && s == c.panicOn {
		panic("cannot draw " + s)
	}
	c.texts = append(c.texts, drawnText{s, x, y})
}

func (c *recordCanvas) DrawLine(_, _, _, _ float64, _ Paint) { c.lines++ }

func (c *recordCanvas) PushClip(r Rect) {
	c.clips = append(c.clips, r)
	c.depth++
	c.maxDepth = max(c.maxDepth, c.depth)
}

func (c *recordCanvas) PopClip() { c.depth-- }

func (c *recordCanvas) BeginFrame() {
	c.begun++
	c.texts = c.texts[:0]
	c.rects = c.rects[:0]
}
func (c *recordCanvas) CommitFrame()  { c.committed++ }
func (c *recordCanvas) DiscardFrame() { c.discarded++ }

func (c *recordCanvas) has(text string) bool {
	for _, t := range c.texts {
		if t.text == text {
			return true
		}
	}
	return false
}

func (c *recordCanvas) count(text string) int {
	n := 0
	for _, t := range c.texts {
		if t.text == text {
			n++
		}
	}
	return n
}

// row builds a map record from alternating keys and values.
func row(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

// parse runs the parser over records and returns data and grid.
func parse(records []any, cols ...*Column) (*TableData, *MergeGrid) {
	data := NewTableData("test", cols...)
	data.Records = records
	grid := NewMergeGrid()
	NewTableParser(nil, nil).Parse(data, grid)
	return data, grid
}

// orderRecords has two customers: ann with two orders (two items, then one)
// and bob with no orders at all.
func orderRecords() []any {
	return []any{
		row("name", "ann", "orders", []any{
			row("id", "o1", "tags", []any{"x", "y"}, "items", []any{row("sku", "a"), row("sku", "b")}),
			row("id", "o2", "items", []any{row("sku", "c")}),
		}),
		row("name", "bob", "orders", []any{}),
	}
}
