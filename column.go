package smarttable

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ColumnKind is the closed set of column variants.
type ColumnKind uint8

const (
	ColumnPlain ColumnKind = iota // field path without lists
	ColumnArray                   // field path crosses one or more lists
	ColumnExpr                    // value computed by an expression over the record
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnArray:
		return "array"
	case ColumnExpr:
		return "expr"
	default:
		return "plain"
	}
}

// ColumnOption configures a single column.
type ColumnOption func(*Column)

// Column is one node of the column tree. Leaves project a field of each record;
// parents only group their children under a shared header.
type Column struct {
	Name     string
	Field    string
	Children []*Column
	Kind     ColumnKind

	Fixed     bool
	Width     int // > 0 pins the computed width
	MinWidth  int
	MinHeight int

	AutoMerge     bool
	MaxMergeCount int
	AutoCount     bool

	Align    Align
	hasAlign bool // true if explicitly set (vs theme default)

	Format  func(any) string
	Compare func(a, b any) int
	// Background overrides the theme background for a single cell.
	Background func(value any, row int) Color

	program *vm.Program

	// array bookkeeping, rebuilt every parse
	node       *ColumnNode
	structure  *ArrayStructure
	arrayLevel int // lists on the path
	depth      int // lists actually expanded (< arrayLevel when off the bottom chain)
	bottom     bool

	// parse output
	level        int // header depth: leaves are 1
	index        int // position among leaves, -1 for parents
	values       []any
	texts        []string
	itemStart    []int // first physical row of each value
	itemSpan     []int // physical rows covered by each value
	computeWidth int
	count        string
}

// ----------------------------------------------------------------------------
// constructors
// ----------------------------------------------------------------------------

// NewColumn creates a leaf column projecting a dotted field path. Segments
// ending in [] are lists, which makes the column an array column.
func NewColumn(name, field string, opts ...ColumnOption) *Column {
	c := &Column{Name: name, Field: field, MaxMergeCount: math.MaxInt, index: -1}
	if strings.Contains(field, "[]") {
		c.Kind = ColumnArray
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewArrayColumn creates a column whose path crosses lists, e.g.
// "orders[].items[].sku".
func NewArrayColumn(name, field string, opts ...ColumnOption) *Column {
	c := NewColumn(name, field, opts...)
	c.Kind = ColumnArray
	return c
}

// NewExprColumn creates a column computed from the whole record with an
// expr-lang expression, e.g. "price * qty". Unknown identifiers evaluate to nil.
func NewExprColumn(name, expression string, opts ...ColumnOption) (*Column, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile column %q: %w", name, err)
	}
	c := NewColumn(name, "", opts...)
	c.Kind = ColumnExpr
	c.Field = expression
	c.program = program
	return c, nil
}

// Group creates a parent column whose header spans its children.
func Group(name string, children ...*Column) *Column {
	return &Column{Name: name, Children: children, MaxMergeCount: math.MaxInt, index: -1}
}

// ----------------------------------------------------------------------------
// options
// ----------------------------------------------------------------------------

// Fixed freezes the column against horizontal scrolling.
func Fixed() ColumnOption { return func(c *Column) { c.Fixed = true } }

// Width pins the column width.
func Width(w int) ColumnOption { return func(c *Column) { c.Width = w } }

// MinWidth sets a floor for the computed width.
func MinWidth(w int) ColumnOption { return func(c *Column) { c.MinWidth = w } }

// MinHeight sets a floor for every cell height in the column.
func MinHeight(h int) ColumnOption { return func(c *Column) { c.MinHeight = h } }

// AutoMerge merges runs of equal consecutive values, at most max per run.
// max <= 0 means unbounded.
func AutoMerge(max int) ColumnOption {
	return func(c *Column) {
		c.AutoMerge = true
		if max <= 0 {
			max = math.MaxInt
		}
		c.MaxMergeCount = max
	}
}

// AutoCount sums the column into the count row.
func AutoCount() ColumnOption { return func(c *Column) { c.AutoCount = true } }

// FormatWith sets a function that converts the field value to display text.
func FormatWith(fn func(any) string) ColumnOption { return func(c *Column) { c.Format = fn } }

// CompareWith sets the sort comparator for the column.
func CompareWith(fn func(a, b any) int) ColumnOption { return func(c *Column) { c.Compare = fn } }

// AlignTo sets the column alignment.
func AlignTo(a Align) ColumnOption {
	return func(c *Column) { c.Align = a; c.hasAlign = true }
}

// BackgroundWith sets a per-cell background function.
func BackgroundWith(fn func(value any, row int) Color) ColumnOption {
	return func(c *Column) { c.Background = fn }
}

// ----------------------------------------------------------------------------
// accessors
// ----------------------------------------------------------------------------

// IsParent reports whether the column groups children.
func (c *Column) IsParent() bool { return len(c.Children) > 0 }

// Level is the header depth of the column: 1 for leaves, 1 + the deepest child
// for parents.
func (c *Column) Level() int { return c.level }

// Index is the position among leaf columns, -1 for parents.
func (c *Column) Index() int { return c.index }

// ArrayLevel is the number of lists on the field path.
func (c *Column) ArrayLevel() int { return c.arrayLevel }

// Depth is the number of lists the column actually expands through.
func (c *Column) Depth() int { return c.depth }

// IsBottom reports whether this is the authoritative array column.
func (c *Column) IsBottom() bool { return c.bottom }

// Structure returns the array bookkeeping, nil for non-array columns.
func (c *Column) Structure() *ArrayStructure { return c.structure }

// Values returns the bound raw values, one per item at the column depth.
func (c *Column) Values() []any { return c.values }

// Texts returns the formatted values.
func (c *Column) Texts() []string { return c.texts }

// ComputeWidth is the measured width in content pixels.
func (c *Column) ComputeWidth() int { return c.computeWidth }

// CountText is the formatted count row value.
func (c *Column) CountText() string { return c.count }

// At returns the raw value and text covering physical row. ok is false when
// the row has no item in this column.
func (c *Column) At(row int) (value any, text string, ok bool) {
	item := c.itemAt(row)
	if item < 0 {
		return nil, "", false
	}
	return c.values[item], c.texts[item], true
}

func (c *Column) format(v any) string {
	if c.Format != nil {
		return c.Format(v)
	}
	return formatValue(v)
}

// itemAt maps a physical row to the value covering it, -1 when out of range.
func (c *Column) itemAt(row int) int {
	lo, hi := 0, len(c.itemStart)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case row < c.itemStart[mid]:
			hi = mid - 1
		case row >= c.itemStart[mid]+c.itemSpan[mid]:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

func (c *Column) resetParse() {
	c.node = nil
	c.structure = nil
	c.arrayLevel = 0
	c.depth = 0
	c.bottom = false
	c.level = 0
	c.index = -1
	c.values = c.values[:0]
	c.texts = c.texts[:0]
	c.itemStart = c.itemStart[:0]
	c.itemSpan = c.itemSpan[:0]
	c.count = ""
}
