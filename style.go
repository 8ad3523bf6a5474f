package smarttable

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Color is a straight (non-premultiplied) RGBA colour. The zero value is
// transparent and canvases skip it.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xFF}
}

// Hex returns an opaque colour from a hex value (e.g., 0xFF5500).
func Hex(hex uint32) Color {
	return Color{
		R: uint8((hex >> 16) & 0xFF),
		G: uint8((hex >> 8) & 0xFF),
		B: uint8(hex & 0xFF),
		A: 0xFF,
	}
}

// Transparent reports whether drawing with c is a no-op.
func (c Color) Transparent() bool { return c.A == 0 }

// String renders the colour as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) String() string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor parses #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return Color{}, nil
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want 3, 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xFF
	}
	var parts [4]uint8
	for i := range parts {
		p, err := safecast.Conv[uint8]((v >> (24 - 8*i)) & 0xFF)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		parts[i] = p
	}
	return Color{R: parts[0], G: parts[1], B: parts[2], A: parts[3]}, nil
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Align positions text horizontally inside its cell.
type Align uint8

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

func (a Align) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Align) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "center":
		*a = AlignCenter
	case "left":
		*a = AlignLeft
	case "right":
		*a = AlignRight
	default:
		return fmt.Errorf("unknown align %q", b)
	}
	return nil
}

// PaintStyle selects between filling and stroking a shape.
type PaintStyle uint8

const (
	PaintFill PaintStyle = iota
	PaintStroke
)

// Paint carries everything a canvas needs for one primitive.
type Paint struct {
	Color       Color
	Style       PaintStyle
	StrokeWidth float64
	TextSize    float64
	Align       Align
	Bold        bool
}

// GridFormat is the closed set of grid line treatments.
type GridFormat uint8

const (
	GridAll GridFormat = iota
	GridHorizontal
	GridVertical
	GridNone
)

var gridFormatNames = map[GridFormat]string{
	GridAll:        "all",
	GridHorizontal: "horizontal",
	GridVertical:   "vertical",
	GridNone:       "none",
}

func (g GridFormat) String() string { return gridFormatNames[g] }

func (g GridFormat) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GridFormat) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	if name == "" {
		*g = GridAll
		return nil
	}
	for k, v := range gridFormatNames {
		if v == name {
			*g = k
			return nil
		}
	}
	return fmt.Errorf("unknown grid format %q", b)
}

// BackgroundKind is the closed set of cell background treatments.
type BackgroundKind uint8

const (
	BackgroundNone BackgroundKind = iota
	BackgroundFill
	BackgroundAlternate
)

func (k BackgroundKind) String() string {
	switch k {
	case BackgroundFill:
		return "fill"
	case BackgroundAlternate:
		return "alternate"
	default:
		return "none"
	}
}

func (k BackgroundKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *BackgroundKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "none":
		*k = BackgroundNone
	case "fill":
		*k = BackgroundFill
	case "alternate":
		*k = BackgroundAlternate
	default:
		return fmt.Errorf("unknown background %q", b)
	}
	return nil
}

// BackgroundFormat pairs a kind with its colours. Alternate uses Color for even
// rows and AltColor for odd rows.
type BackgroundFormat struct {
	Kind     BackgroundKind `toml:"kind" yaml:"kind"`
	Color    Color          `toml:"color" yaml:"color"`
	AltColor Color          `toml:"alt_color" yaml:"alt_color"`
}

// colorFor returns the fill for a physical row, transparent for none.
func (f BackgroundFormat) colorFor(row int) Color {
	switch f.Kind {
	case BackgroundFill:
		return f.Color
	case BackgroundAlternate:
		if row%2 == 1 {
			return f.AltColor
		}
		return f.Color
	default:
		return Color{}
	}
}

// Theme holds the visual styles for a table. It is copied by value into Config
// so nothing here is shared between tables.
type Theme struct {
	FontSize      float64 `toml:"font_size" yaml:"font_size"`
	TitleFontSize float64 `toml:"title_font_size" yaml:"title_font_size"`

	TextColor     Color `toml:"text_color" yaml:"text_color"`
	TitleColor    Color `toml:"title_color" yaml:"title_color"`
	SequenceColor Color `toml:"sequence_color" yaml:"sequence_color"`
	CountColor    Color `toml:"count_color" yaml:"count_color"`
	GridColor     Color `toml:"grid_color" yaml:"grid_color"`

	TitleBackground    Color `toml:"title_background" yaml:"title_background"`
	SequenceBackground Color `toml:"sequence_background" yaml:"sequence_background"`
	CountBackground    Color `toml:"count_background" yaml:"count_background"`

	Background BackgroundFormat `toml:"background" yaml:"background"`
	Grid       GridFormat       `toml:"grid" yaml:"grid"`
	Align      Align            `toml:"align" yaml:"align"`
	TitleBold  bool             `toml:"title_bold" yaml:"title_bold"`
}

// Pre-defined themes

// ThemeLight is dark text on a white table.
var ThemeLight = Theme{
	FontSize:           14,
	TitleFontSize:      14,
	TextColor:          Hex(0x333333),
	TitleColor:         Hex(0x111111),
	SequenceColor:      Hex(0x777777),
	CountColor:         Hex(0x111111),
	GridColor:          Hex(0xD0D0D0),
	TitleBackground:    Hex(0xF2F2F2),
	SequenceBackground: Hex(0xFAFAFA),
	CountBackground:    Hex(0xF2F2F2),
	Background:         BackgroundFormat{Kind: BackgroundFill, Color: Hex(0xFFFFFF)},
	Grid:               GridAll,
	TitleBold:          true,
}

// ThemeDark is light text on a dark table.
var ThemeDark = Theme{
	FontSize:           14,
	TitleFontSize:      14,
	TextColor:          Hex(0xE0E0E0),
	TitleColor:         Hex(0xFFFFFF),
	SequenceColor:      Hex(0x8A8A8A),
	CountColor:         Hex(0x5FD7FF),
	GridColor:          Hex(0x444444),
	TitleBackground:    Hex(0x262626),
	SequenceBackground: Hex(0x1C1C1C),
	CountBackground:    Hex(0x262626),
	Background:         BackgroundFormat{Kind: BackgroundAlternate, Color: Hex(0x121212), AltColor: Hex(0x1A1A1A)},
	Grid:               GridAll,
	TitleBold:          true,
}
