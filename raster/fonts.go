// Package raster draws smart tables into RGBA images using the Go fonts.
package raster

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/kungfusheep/smarttable"
)

type faceKey struct {
	size int // 1/64 px
	bold bool
}

// Fonts hands out font faces by size and weight. Faces are created once and
// cached; a Fonts is safe for concurrent use.
type Fonts struct {
	regular *opentype.Font
	bold    *opentype.Font
	dpi     float64

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFonts parses the bundled Go fonts. At 72 DPI one point is one pixel.
func NewFonts(dpi float64) (*Fonts, error) {
	if dpi <= 0 {
		dpi = 72
	}
	reg, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Fonts{regular: reg, bold: bold, dpi: dpi, faces: make(map[faceKey]font.Face)}, nil
}

// Face returns the face for size, or nil when size is not positive.
func (f *Fonts) Face(size float64, bold bool) font.Face {
	if !(size > 0) || math.IsInf(size, 0) {
		return nil
	}
	key := faceKey{size: int(math.Round(size * 64)), bold: bold}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	base := f.regular
	if bold {
		base = f.bold
	}
	face, err := opentype.NewFace(base, &opentype.FaceOptions{
		Size:    float64(key.size) / 64,
		DPI:     f.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	f.faces[key] = face
	return face
}

// Measurer measures text with the regular Go font.
type Measurer struct {
	Fonts *Fonts
}

var _ smarttable.TextMeasurer = Measurer{}

func (m Measurer) MeasureText(s string, size float64) float64 {
	face := m.Fonts.Face(size, false)
	if face == nil || s == "" {
		return 0
	}
	return float64(font.MeasureString(face, s)) / 64
}

func (m Measurer) Metrics(size float64) smarttable.FontMetrics {
	face := m.Fonts.Face(size, false)
	if face == nil {
		return smarttable.FontMetrics{}
	}
	fm := face.Metrics()
	return smarttable.FontMetrics{
		Ascent:  float64(fm.Ascent) / 64,
		Descent: float64(fm.Descent) / 64,
	}
}
