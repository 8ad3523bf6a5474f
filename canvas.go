package smarttable

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Canvas is the drawing surface a host hands to Table.Draw. Coordinates are
// screen pixels. DrawText places the baseline at y; x is the left edge, the
// centre or the right edge depending on paint.Align.
type Canvas interface {
	DrawRect(r Rect, paint Paint)
	DrawText(text string, x, y float64, paint Paint)
	DrawLine(x1, y1, x2, y2 float64, paint Paint)
	PushClip(r Rect)
	PopClip()
}

// Framer is implemented by canvases that can throw a frame away. Table.Draw
// begins a frame, and on failure discards it so the last committed frame stays
// visible.
type Framer interface {
	BeginFrame()
	CommitFrame()
	DiscardFrame()
}

// FontMetrics describes a font at one size, in pixels above and below the
// baseline.
type FontMetrics struct {
	Ascent  float64
	Descent float64
}

// Height is the line height of the font.
func (m FontMetrics) Height() float64 { return m.Ascent + m.Descent }

// TextMeasurer measures text for layout.
type TextMeasurer interface {
	MeasureText(s string, size float64) float64
	Metrics(size float64) FontMetrics
}

type measureKey struct {
	text string
	size float64
}

// CachedMeasurer memoises a TextMeasurer with a bounded LRU. Measuring the
// same labels every reparse is the common case.
type CachedMeasurer struct {
	inner   TextMeasurer
	widths  *lru.Cache[measureKey, float64]
	metrics map[float64]FontMetrics
}

// NewCachedMeasurer wraps inner with an LRU of the given size.
func NewCachedMeasurer(inner TextMeasurer, size int) (*CachedMeasurer, error) {
	cache, err := lru.New[measureKey, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedMeasurer{inner: inner, widths: cache, metrics: make(map[float64]FontMetrics)}, nil
}

func (m *CachedMeasurer) MeasureText(s string, size float64) float64 {
	key := measureKey{s, size}
	if w, ok := m.widths.Get(key); ok {
		return w
	}
	w := m.inner.MeasureText(s, size)
	m.widths.Add(key, w)
	return w
}

func (m *CachedMeasurer) Metrics(size float64) FontMetrics {
	if fm, ok := m.metrics[size]; ok {
		return fm
	}
	fm := m.inner.Metrics(size)
	m.metrics[size] = fm
	return fm
}

// Len reports the number of cached widths.
func (m *CachedMeasurer) Len() int { return m.widths.Len() }

// sane clamps malformed measurements: NaN, infinities and negatives become floor.
func sane(v, floor float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < floor {
		return floor
	}
	return v
}

// nopCanvas swallows drawing; the hit-test walk runs on it.
type nopCanvas struct{}

func (nopCanvas) DrawRect(Rect, Paint) {}
func (nopCanvas) DrawText(string, float64, float64, Paint) {}
func (nopCanvas) DrawLine(float64, float64, float64, float64, Paint) {}
func (nopCanvas) PushClip(Rect) {}
func (nopCanvas) PopClip() {}
