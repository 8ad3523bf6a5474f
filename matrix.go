package smarttable

import (
	"math"
	"time"
)

// ChangeListener receives every viewport change.
type ChangeListener func(zoom, translateX, translateY float64)

// Matrix is the viewport transform of a table: zoom, translation and the
// separate translation of the frozen columns. Translations are in scaled
// pixels relative to the centre-anchored zoom offset, so a translation of
// -viewport*(zoom-1)/2 shows the left or top edge of the content.
type Matrix struct {
	minZoom, maxZoom float64
	canZoom          bool
	minFixedWidth    float64
	minVelocity      float64

	zoom            float64
	translateX      float64
	translateY      float64
	fixedTranslateX float64 // content pixels, <= 0
	fixedWidth      float64 // total width of frozen columns, content pixels

	zooming      bool
	startZoom    float64
	atMax, atMin bool

	fling     *Fling
	viewport  Rect
	content   Rect
	listeners []ChangeListener
}

// NewMatrix returns an identity transform configured from cfg.
func NewMatrix(cfg Config) *Matrix {
	m := &Matrix{zoom: 1}
	m.Configure(cfg)
	return m
}

// Configure applies zoom bounds and fling tuning. The current zoom is clamped
// into the new bounds.
func (m *Matrix) Configure(cfg Config) {
	m.minZoom, m.maxZoom = cfg.MinZoom, cfg.MaxZoom
	m.canZoom = cfg.CanZoom
	m.minFixedWidth = float64(cfg.MinFixedColumnWidth)
	m.minVelocity = cfg.MinFlingVelocity * cfg.Density
	if m.fling == nil || !m.fling.Running() {
		m.fling = NewFling(cfg.Density, cfg.ScrollFriction)
	}
	if z := clampf(m.zoom, m.minZoom, m.maxZoom); z != m.zoom {
		m.setZoom(z)
	}
}

// OnTableChanged registers a listener for zoom and translation changes.
func (m *Matrix) OnTableChanged(fn ChangeListener) {
	m.listeners = append(m.listeners, fn)
}

func (m *Matrix) notify() {
	for _, fn := range m.listeners {
		fn(m.zoom, m.translateX, m.translateY)
	}
}

func (m *Matrix) Zoom() float64 { return m.zoom }

func (m *Matrix) Translate() (x, y float64) { return m.translateX, m.translateY }

// FixedTranslateX is the frozen-column shift in content pixels.
func (m *Matrix) FixedTranslateX() float64 { return m.fixedTranslateX }

func (m *Matrix) Zooming() bool { return m.zooming }

func (m *Matrix) Flinging() bool { return m.fling.Running() }

// AtMaxZoom reports whether the current gesture hit the zoom ceiling.
func (m *Matrix) AtMaxZoom() bool { return m.atMax }

// AtMinZoom reports whether the current gesture hit the zoom floor.
func (m *Matrix) AtMinZoom() bool { return m.atMin }

// SetFixedWidth records the total width of the frozen columns.
func (m *Matrix) SetFixedWidth(w float64) {
	m.fixedWidth = w
	m.clampFixed()
}

// offsets are the centre-anchor shifts for the last viewport.
func (m *Matrix) offsets() (x, y float64) {
	return m.viewport.Width() * (m.zoom - 1) / 2, m.viewport.Height() * (m.zoom - 1) / 2
}

// axisLimits returns the allowed translation range on one axis. Content that
// fits the viewport is pinned to the start, or may float anywhere inside the
// viewport while a zoom gesture runs.
func axisLimits(view, content, zoom float64, zooming bool) (lo, hi float64) {
	scaled := content * zoom
	off := view * (zoom - 1) / 2
	lo, hi = -off, scaled-view-off
	if hi < lo {
		if zooming {
			return hi, lo
		}
		return lo, lo
	}
	return lo, hi
}

// limits is the translation range as a rect: Left..Right for x, Top..Bottom
// for y.
func (m *Matrix) limits(zooming bool) Rect {
	lx, hx := axisLimits(m.viewport.Width(), m.content.Width(), m.zoom, zooming)
	ly, hy := axisLimits(m.viewport.Height(), m.content.Height(), m.zoom, zooming)
	return Rect{Left: lx, Top: ly, Right: hx, Bottom: hy}
}

func (m *Matrix) clamp() {
	b := m.limits(m.zooming)
	m.translateX = clampf(m.translateX, b.Left, b.Right)
	m.translateY = clampf(m.translateY, b.Top, b.Bottom)
	m.clampFixed()
}

// clampFixed keeps the frozen shift inside [-(fixedWidth-minFixedWidth), 0] and
// never further than the table itself is scrolled.
func (m *Matrix) clampFixed() {
	lo := math.Min(0, -(m.fixedWidth - m.minFixedWidth))
	offX, _ := m.offsets()
	scrolled := (m.translateX + offX) / m.zoom
	lo = math.Min(0, math.Max(lo, -scrolled))
	m.fixedTranslateX = clampf(m.fixedTranslateX, lo, 0)
}

// ZoomProviderRect positions the scaled content for a viewport and clamps the
// translation against it. The returned rect is in screen space.
func (m *Matrix) ZoomProviderRect(viewport, content Rect) Rect {
	m.viewport, m.content = viewport, content
	m.clamp()
	offX, offY := m.offsets()
	return NewRect(
		viewport.Left-offX-m.translateX,
		viewport.Top-offY-m.translateY,
		content.Width()*m.zoom,
		content.Height()*m.zoom,
	)
}

// Pan moves the content by a scroll distance in screen pixels; positive dx
// reveals content further right. A pan inside the frozen columns shifts only
// the frozen region horizontally.
func (m *Matrix) Pan(dx, dy float64, frozen bool) {
	m.fling.Cancel()
	if frozen && m.fixedWidth > m.minFixedWidth {
		m.fixedTranslateX -= dx / m.zoom
	} else {
		m.translateX += dx
	}
	m.translateY += dy
	m.clamp()
	m.notify()
}

// ScrollTo puts the content point (x, y), in content pixels, at the top-left
// of the viewport.
func (m *Matrix) ScrollTo(x, y float64) {
	m.fling.Cancel()
	offX, offY := m.offsets()
	m.translateX = x*m.zoom - offX
	m.translateY = y*m.zoom - offY
	m.clamp()
	m.notify()
}

// ScaleBegin starts a pinch gesture.
func (m *Matrix) ScaleBegin() {
	m.fling.Cancel()
	m.zooming = true
	m.startZoom = m.zoom
	m.atMax, m.atMin = false, false
}

// Scale applies the cumulative pinch factor of the current gesture. Once the
// zoom is clamped at a bound, further scaling past that bound is ignored until
// the gesture turns back.
func (m *Matrix) Scale(factor float64) {
	if !m.canZoom || !m.zooming || factor <= 0 || math.IsNaN(factor) {
		return
	}
	z := m.startZoom * factor
	switch {
	case z > m.maxZoom:
		if m.atMax {
			return
		}
		z, m.atMax, m.atMin = m.maxZoom, true, false
	case z < m.minZoom:
		if m.atMin {
			return
		}
		z, m.atMax, m.atMin = m.minZoom, false, true
	default:
		m.atMax, m.atMin = false, false
	}
	m.setZoom(z)
	m.clamp()
	m.notify()
}

// ScaleEnd finishes the gesture and snaps the translation back into bounds.
func (m *Matrix) ScaleEnd() {
	m.zooming = false
	m.clamp()
	m.notify()
}

// DoubleTap zooms in by 1.5 until the ceiling, then back to the floor.
func (m *Matrix) DoubleTap() {
	if !m.canZoom {
		return
	}
	m.fling.Cancel()
	z := math.Min(m.zoom*1.5, m.maxZoom)
	if m.zoom >= m.maxZoom {
		z = m.minZoom
	}
	m.setZoom(z)
	m.clamp()
	m.notify()
}

// setZoom rescales the translation with the zoom so the same content stays in
// view.
func (m *Matrix) setZoom(z float64) {
	if m.zoom != 0 {
		ratio := z / m.zoom
		m.translateX *= ratio
		m.translateY *= ratio
	}
	m.zoom = z
}

// Fling starts a fling with velocity in screen pixels per second. It returns
// false and changes nothing when the velocity is below the minimum.
func (m *Matrix) Fling(vx, vy float64, now time.Time) bool {
	if math.Hypot(vx, vy) < m.minVelocity {
		return false
	}
	m.fling.Start(m.translateX, m.translateY, vx, vy, m.limits(false), now)
	return m.fling.Running()
}

// CancelFling stops a running fling at its current position.
func (m *Matrix) CancelFling() { m.fling.Cancel() }

// Tick advances a running fling and reports whether it needs another frame.
func (m *Matrix) Tick(now time.Time) bool {
	if !m.fling.Running() {
		return false
	}
	x, y, running := m.fling.Step(now)
	m.translateX, m.translateY = x, y
	m.clampFixed()
	m.notify()
	return running
}
