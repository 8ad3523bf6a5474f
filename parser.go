package smarttable

import (
	"errors"
	"math"

	"github.com/expr-lang/expr"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
)

// ErrUnknownColumn is returned when a column is not a leaf of the table.
var ErrUnknownColumn = errors.New("smarttable: column is not a leaf of this table")

// TableData is the column tree and the records of one table, plus everything
// the parser derives from them.
type TableData struct {
	Name       string
	Columns    []*Column // roots of the column tree
	Records    []any
	UserRanges []CellRange // durable across reparses
	Getter     FieldGetter

	sortColumn  *Column
	sortReverse bool

	// parse output
	all       []*Column // every column, preorder
	leaves    []*Column
	maxLevel  int
	bottom    *Column
	lineSize  int
	lineSizes []int // physical rows per record, nil without arrays
	hasCount  bool
}

// NewTableData builds table data over a column tree.
func NewTableData(name string, columns ...*Column) *TableData {
	return &TableData{Name: name, Columns: columns, Getter: ReflectGetter}
}

// Leaves returns the flattened leaf columns in left-to-right order.
func (d *TableData) Leaves() []*Column { return d.leaves }

// AllColumns returns every column of the tree in preorder.
func (d *TableData) AllColumns() []*Column { return d.all }

// MaxLevel is the header depth of the column tree.
func (d *TableData) MaxLevel() int { return d.maxLevel }

// LineSize is the number of physical rows.
func (d *TableData) LineSize() int { return d.lineSize }

// Bottom returns the authoritative array column, nil without arrays.
func (d *TableData) Bottom() *Column { return d.bottom }

// ArrayLineSize returns physical rows per record, nil without array columns.
func (d *TableData) ArrayLineSize() []int { return d.lineSizes }

// SortColumn reports the current sort column and direction.
func (d *TableData) SortColumn() (*Column, bool) { return d.sortColumn, d.sortReverse }

// LogicalRow maps a physical row to the index of the record that produced it.
func (d *TableData) LogicalRow(row int) int {
	if d.bottom == nil {
		if row < 0 || row >= len(d.Records) {
			return -1
		}
		return row
	}
	return d.bottom.structure.LogicalRow(row)
}

// TableParser binds records into columns and derives merge ranges.
type TableParser struct {
	collator *collate.Collator
	log      logrus.FieldLogger
}

// NewTableParser returns a parser. coll may be nil for byte-order sorting.
func NewTableParser(coll *collate.Collator, log logrus.FieldLogger) *TableParser {
	if log == nil {
		log = discardLogger()
	}
	return &TableParser{collator: coll, log: log}
}

// Parse rebuilds every derived structure of data and refills grid: user
// ranges first, then auto ranges.
func (p *TableParser) Parse(data *TableData, grid *MergeGrid) {
	data.all = data.all[:0]
	data.leaves = data.leaves[:0]
	data.maxLevel = p.flatten(data.Columns, data)
	p.setupArrays(data)

	if data.sortColumn != nil {
		p.sort(data)
	}

	p.bind(data, data.Records, true)
	p.finish(data, grid)

	p.log.WithFields(logrus.Fields{
		"records": len(data.Records),
		"rows":    data.lineSize,
		"columns": len(data.leaves),
		"merges":  grid.Len(),
	}).Debug("table parsed")
}

// AddData binds extra records at the end or the head of the table without
// re-reading the existing ones. Records are not re-sorted.
func (p *TableParser) AddData(data *TableData, rows []any, atEnd bool, grid *MergeGrid) {
	if len(rows) == 0 {
		return
	}
	if data.leaves == nil {
		data.Records = appendRecords(data.Records, rows, atEnd)
		p.Parse(data, grid)
		return
	}
	data.Records = appendRecords(data.Records, rows, atEnd)
	p.bind(data, rows, atEnd)
	p.finish(data, grid)
}

func appendRecords(records, rows []any, atEnd bool) []any {
	if atEnd {
		return append(records, rows...)
	}
	out := make([]any, 0, len(records)+len(rows))
	out = append(out, rows...)
	return append(out, records...)
}

// flatten resets the tree, collects leaves depth-first and assigns header
// levels. It returns the deepest level among cols.
func (p *TableParser) flatten(cols []*Column, data *TableData) int {
	maxLevel := 0
	for _, c := range cols {
		c.resetParse()
		data.all = append(data.all, c)
		if c.IsParent() {
			c.level = 1 + p.flatten(c.Children, data)
		} else {
			c.level = 1
			c.index = len(data.leaves)
			data.leaves = append(data.leaves, c)
		}
		maxLevel = max(maxLevel, c.level)
	}
	return maxLevel
}

// setupArrays builds the path trie, picks the bottom column and works out how
// deep every column expands.
func (p *TableParser) setupArrays(data *TableData) {
	data.bottom = nil
	root := newColumnRoot()
	for _, c := range data.leaves {
		if c.Kind != ColumnArray {
			continue
		}
		c.node = root.insert(parsePath(c.Field))
		c.arrayLevel = c.node.ArrayLevel()
		c.structure = NewArrayStructure()
		if c.arrayLevel > 0 && (data.bottom == nil || c.arrayLevel > data.bottom.arrayLevel) {
			data.bottom = c
		}
	}
	if data.bottom == nil {
		return
	}
	data.bottom.bottom = true
	for _, c := range data.leaves {
		if c.node != nil {
			c.depth = CommonArrayDepth(c.node, data.bottom.node)
		}
	}
}

func (p *TableParser) sort(data *TableData) {
	col := data.sortColumn
	segs := parsePath(col.Field)
	key := func(r any) any {
		v := p.value(data, col, r, segs)
		if l, ok := v.([]any); ok {
			if len(l) == 0 {
				return nil
			}
			return l[0]
		}
		return v
	}
	compare := col.Compare
	if compare == nil {
		compare = func(a, b any) int { return compareValues(a, b, p.collator) }
	}
	sortRecords(data.Records, key, compare, data.sortReverse)
}

// value resolves a column against one item at the column's depth.
func (p *TableParser) value(data *TableData, c *Column, item any, rest []pathSegment) any {
	if c.Kind == ColumnExpr {
		if item == nil {
			return nil
		}
		out, err := expr.Run(c.program, item)
		if err != nil {
			// data error: the cell stays empty
			p.log.WithError(err).WithField("column", c.Name).Debug("expression failed")
			return nil
		}
		return out
	}
	get := data.Getter
	if get == nil {
		get = ReflectGetter
	}
	return flatten(get, item, rest)
}

// recordExpansion is one record expanded along the bottom chain: items[L] are
// the items at level L, sizes[L] the item count each level L-1 item produced.
type recordExpansion struct {
	items [][]any
	sizes [][]int
}

func (p *TableParser) expand(data *TableData, record any) recordExpansion {
	depth := 0
	var runs [][]pathSegment
	if data.bottom != nil {
		depth = data.bottom.arrayLevel
		runs = splitAtLists(parsePath(data.bottom.Field))
	}
	get := data.Getter
	if get == nil {
		get = ReflectGetter
	}
	exp := recordExpansion{
		items: make([][]any, depth+1),
		sizes: make([][]int, depth+1),
	}
	exp.items[0] = []any{record}
	for level := 1; level <= depth; level++ {
		for _, it := range exp.items[level-1] {
			children := expandItems(get, it, runs[level-1])
			exp.sizes[level] = append(exp.sizes[level], len(children))
			exp.items[level] = append(exp.items[level], children...)
		}
	}
	return exp
}

// bind expands records and appends (or prepends) their values and structure.
func (p *TableParser) bind(data *TableData, records []any, atEnd bool) {
	exps := make([]recordExpansion, len(records))
	for i, r := range records {
		exps[i] = p.expand(data, r)
	}

	// structures: head insertion walks records and items backwards so the
	// final marker order matches the forward order
	for _, c := range data.leaves {
		if c.structure == nil {
			continue
		}
		for i := range exps {
			e := exps[i]
			if !atEnd {
				e = exps[len(exps)-1-i]
			}
			for level := 1; level <= c.depth; level++ {
				sizes := e.sizes[level]
				for j := range sizes {
					if atEnd {
						c.structure.Put(level, sizes[j], true)
					} else {
						c.structure.Put(level, sizes[len(sizes)-1-j], false)
					}
				}
			}
		}
	}

	for _, c := range data.leaves {
		// the path left to resolve once the first depth lists are expanded
		var rest []pathSegment
		if c.Kind != ColumnExpr {
			runs := splitAtLists(parsePath(c.Field))
			for _, run := range runs[min(c.depth, len(runs)-1):] {
				rest = append(rest, run...)
			}
		}
		var fresh []any
		for _, e := range exps {
			for _, item := range e.items[c.depth] {
				fresh = append(fresh, p.value(data, c, item, rest))
			}
		}
		if atEnd {
			c.values = append(c.values, fresh...)
		} else {
			c.values = append(fresh, c.values...)
		}
	}
}

// finish recomputes row positions, texts, counts and merges after binding.
func (p *TableParser) finish(data *TableData, grid *MergeGrid) {
	var structure *ArrayStructure
	if data.bottom != nil {
		structure = data.bottom.structure
		data.lineSize = structure.Count(structure.MaxLevel())
		data.lineSizes = make([]int, structure.Count(0))
		for i := range data.lineSizes {
			data.lineSizes[i] = structure.LevelCellSize(0, i)
		}
	} else {
		data.lineSize = len(data.Records)
		data.lineSizes = nil
	}

	data.hasCount = false
	for _, c := range data.leaves {
		n := len(c.values)
		c.itemStart = c.itemStart[:0]
		c.itemSpan = c.itemSpan[:0]
		c.texts = c.texts[:0]
		for i := 0; i < n; i++ {
			start, end := i, i
			if structure != nil {
				start, end = structure.Range(c.depth, i)
			}
			c.itemStart = append(c.itemStart, start)
			c.itemSpan = append(c.itemSpan, end-start+1)
			c.texts = append(c.texts, c.format(c.values[i]))
		}
		if c.AutoCount {
			data.hasCount = true
			c.count = countColumn(c)
		}
	}

	grid.Clear()
	for _, r := range data.UserRanges {
		grid.AddCellRange(r)
	}
	for _, c := range data.leaves {
		for _, r := range columnRanges(c) {
			grid.AddAutoRange(r)
		}
	}
}

// countColumn sums the numeric values of a column for the count row.
func countColumn(c *Column) string {
	sum := 0.0
	for _, v := range c.values {
		if f, ok := toFloat64(v); ok && !math.IsNaN(f) {
			sum += f
		}
	}
	if c.Format != nil {
		return c.Format(sum)
	}
	return formatValue(sum)
}

// columnRanges derives a column's merge ranges in physical rows: auto-merge
// runs first, then array expansions not already inside a run.
func columnRanges(c *Column) []CellRange {
	var out []CellRange
	covered := make([]bool, len(c.texts))
	if c.AutoMerge {
		for _, run := range autoMergeRuns(c.texts, c.MaxMergeCount) {
			first, last := run[0], run[1]
			out = append(out, CellRange{
				FirstRow: c.itemStart[first],
				LastRow:  c.itemStart[last] + c.itemSpan[last] - 1,
				FirstCol: c.index,
				LastCol:  c.index,
			})
			for i := first; i <= last; i++ {
				covered[i] = true
			}
		}
	}
	for i, span := range c.itemSpan {
		if span > 1 && !covered[i] {
			out = append(out, CellRange{
				FirstRow: c.itemStart[i],
				LastRow:  c.itemStart[i] + span - 1,
				FirstCol: c.index,
				LastCol:  c.index,
			})
		}
	}
	return out
}

// autoMergeRuns finds runs of at least two consecutive equal non-empty texts,
// returned as inclusive [first, last] item indexes. The run counter carries
// over between runs and only resets once the cap cuts a run short or the data
// ends; maxCount <= 1 disables merging.
func autoMergeRuns(texts []string, maxCount int) [][2]int {
	if maxCount <= 1 {
		return nil
	}
	var runs [][2]int
	start, count := -1, 1
	prev, hasPrev := "", false
	for i, v := range texts {
		if count < maxCount && hasPrev && v != "" && v == prev {
			if start == -1 {
				start = i - 1
			}
			count++
			if i == len(texts)-1 {
				runs = append(runs, [2]int{start, i})
				start, count = -1, 1
			}
		} else {
			if start != -1 {
				runs = append(runs, [2]int{start, i - 1})
				start = -1
			}
			if count >= maxCount {
				count = 1
			}
		}
		prev, hasPrev = v, true
	}
	return runs
}
