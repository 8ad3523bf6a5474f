// Package term draws smart tables into a grid of terminal cells.
package term

import "github.com/kungfusheep/smarttable"

// Style combines foreground, background colors and attributes.
type Style struct {
	FG   smarttable.Color
	BG   smarttable.Color
	Bold bool
}

// Foreground returns a new style with the given foreground color.
func (s Style) Foreground(c smarttable.Color) Style {
	s.FG = c
	return s
}

// Background returns a new style with the given background color.
func (s Style) Background(c smarttable.Color) Style {
	s.BG = c
	return s
}

// Cell represents a single character cell on the terminal. A wide rune
// occupies its cell and a continuation cell holding rune 0.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell returns a cell with a space and default style.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// NewCell creates a cell with the given rune and style.
func NewCell(r rune, style Style) Cell {
	return Cell{Rune: r, Style: style}
}
