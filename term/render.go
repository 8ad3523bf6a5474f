package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kungfusheep/smarttable"
)

// Renderer turns buffers into styled terminal text. Styles are built once per
// distinct cell style and reused.
type Renderer struct {
	styles map[Style]lipgloss.Style
}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{styles: make(map[Style]lipgloss.Style)}
}

func hex6(c smarttable.Color) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func (r *Renderer) style(s Style) lipgloss.Style {
	if ls, ok := r.styles[s]; ok {
		return ls
	}
	ls := lipgloss.NewStyle().Bold(s.Bold)
	if !s.FG.Transparent() {
		ls = ls.Foreground(hex6(s.FG))
	}
	if !s.BG.Transparent() {
		ls = ls.Background(hex6(s.BG))
	}
	r.styles[s] = ls
	return ls
}

// Render returns the buffer as lines of styled text. Runs of cells sharing a
// style are rendered together.
func (r *Renderer) Render(b *Buffer) string {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < b.Height(); y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		run.Reset()
		var cur Style
		flush := func() {
			if run.Len() > 0 {
				sb.WriteString(r.style(cur).Render(run.String()))
				run.Reset()
			}
		}
		for x := 0; x < b.Width(); x++ {
			c := b.Get(x, y)
			if c.Rune == 0 {
				continue
			}
			if c.Style != cur {
				flush()
				cur = c.Style
			}
			run.WriteRune(c.Rune)
		}
		flush()
	}
	return sb.String()
}

// Print writes the rendered buffer followed by a newline.
func (r *Renderer) Print(w io.Writer, b *Buffer) error {
	_, err := io.WriteString(w, r.Render(b)+"\n")
	return err
}
