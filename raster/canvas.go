package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/kungfusheep/smarttable"
)

// Canvas is a smarttable.Canvas over an RGBA image, one unit per pixel.
// Frames are drawn straight into the image; BeginFrame clears it to the
// background colour.
type Canvas struct {
	img        *image.RGBA
	fonts      *Fonts
	background smarttable.Color
	clips      []image.Rectangle
}

var (
	_ smarttable.Canvas = (*Canvas)(nil)
	_ smarttable.Framer = (*Canvas)(nil)
)

// NewCanvas creates a width by height canvas filled with background.
func NewCanvas(width, height int, fonts *Fonts, background smarttable.Color) *Canvas {
	c := &Canvas{
		img:        image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		fonts:      fonts,
		background: background,
	}
	c.clear()
	return c
}

// Image returns the drawn image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Bounds is the canvas as a rect, suitable as a table viewport.
func (c *Canvas) Bounds() smarttable.Rect {
	b := c.img.Bounds()
	return smarttable.NewRect(0, 0, float64(b.Dx()), float64(b.Dy()))
}

// EncodePNG writes the image as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func nrgba(c smarttable.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func toRect(r smarttable.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.Left)), int(math.Round(r.Top)),
		int(math.Round(r.Right)), int(math.Round(r.Bottom)),
	)
}

func (c *Canvas) clip() image.Rectangle {
	if n := len(c.clips); n > 0 {
		return c.clips[n-1]
	}
	return c.img.Bounds()
}

func (c *Canvas) clear() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(nrgba(c.background)), image.Point{}, draw.Src)
}

func (c *Canvas) BeginFrame() {
	c.clips = c.clips[:0]
	c.clear()
}

func (c *Canvas) CommitFrame()  { c.clips = c.clips[:0] }
func (c *Canvas) DiscardFrame() { c.clips = c.clips[:0] }

func (c *Canvas) PushClip(r smarttable.Rect) {
	c.clips = append(c.clips, c.clip().Intersect(toRect(r)))
}

func (c *Canvas) PopClip() {
	if n := len(c.clips); n > 0 {
		c.clips = c.clips[:n-1]
	}
}

func (c *Canvas) fill(r image.Rectangle, col smarttable.Color) {
	r = r.Intersect(c.clip())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(nrgba(col)), image.Point{}, draw.Over)
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
	c.fill(toRect(r), p.Color)
}

// DrawLine strokes axis-aligned lines as thin rects. A line on an edge covers
// the pixels just before it, so a cell's right and bottom grid lines stay
// inside the cell.
func (c *Canvas) DrawLine(x1, y1, x2, y2 float64, p smarttable.Paint) {
	if p.Color.Transparent() {
		return
	}
	w := max(int(math.Round(p.StrokeWidth)), 1)
	switch {
	case y1 == y2:
		y := int(math.Ceil(y1))
		c.fill(image.Rect(int(math.Round(min(x1, x2))), y-w, int(math.Round(max(x1, x2))), y), p.Color)
	case x1 == x2:
		x := int(math.Ceil(x1))
		c.fill(image.Rect(x-w, int(math.Round(min(y1, y2))), x, int(math.Round(max(y1, y2)))), p.Color)
	default:
		c.diagonal(x1, y1, x2, y2, w, p.Color)
	}
}

func (c *Canvas) diagonal(x1, y1, x2, y2 float64, w int, col smarttable.Color) {
	steps := int(math.Ceil(max(math.Abs(x2-x1), math.Abs(y2-y1))))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(max(steps, 1))
		x := int(math.Round(x1 + (x2-x1)*t))
		y := int(math.Round(y1 + (y2-y1)*t))
		c.fill(image.Rect(x, y, x+w, y+w), col)
	}
}

// DrawText draws s with its baseline at y.
func (c *Canvas) DrawText(s string, x, y float64, p smarttable.Paint) {
	if s == "" || p.Color.Transparent() {
		return
	}
	face := c.fonts.Face(p.TextSize, p.Bold)
	if face == nil {
		return
	}
	clip := c.clip()
	if clip.Empty() {
		return
	}
	switch p.Align {
	case smarttable.AlignCenter:
		x -= float64(font.MeasureString(face, s)) / 64 / 2
	case smarttable.AlignRight:
		x -= float64(font.MeasureString(face, s)) / 64
	}
	d := font.Drawer{
		Dst:  c.img.SubImage(clip).(*image.RGBA),
		Src:  image.NewUniform(nrgba(p.Color)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))},
	}
	d.DrawString(s)
}

// Render draws tbl into a fresh width by height image. A size that is not
// positive takes the table's own extent.
func Render(tbl *smarttable.Table, fonts *Fonts, width, height int) (*Canvas, error) {
	if r, ok := tbl.Info().TableRect(); ok {
		if width <= 0 {
			width = int(math.Ceil(r.Width()))
		}
		if height <= 0 {
			height = int(math.Ceil(r.Height()))
		}
	}
	cv := NewCanvas(width, height, fonts, smarttable.Color{})
	if err := tbl.Draw(cv, cv.Bounds()); err != nil {
		return nil, err
	}
	return cv, nil
}
