// Package smarttable lays out hierarchical, mergeable, zoomable tables.
//
// A Table turns a column tree and a set of records into a measured grid,
// expanding nested lists into extra physical rows and merging repeated
// values. Drawing goes through a Canvas supplied by the host; panning,
// pinching and flinging go through the table's Matrix.
package smarttable

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotMeasured is returned when drawing or locating cells before any data
	// was measured. Hosts hit it on the first frame and can ignore it.
	ErrNotMeasured = errors.New("smarttable: table has not been measured")
	// ErrReentrant is returned when a table is changed from inside one of its
	// own draw or click callbacks.
	ErrReentrant = errors.New("smarttable: re-entrant call during draw")
)

// Option configures a Table.
type Option func(*Table)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option { return func(t *Table) { t.cfg = cfg } }

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option { return func(t *Table) { t.log = log } }

// WithClock sets the time source used for flings.
func WithClock(now func() time.Time) Option { return func(t *Table) { t.now = now } }

// WithGetter sets how field paths are resolved against records.
func WithGetter(get FieldGetter) Option { return func(t *Table) { t.data.Getter = get } }

// Table ties the parser, measurer, merge grid, viewport and drawing together.
// It is not safe for concurrent use.
type Table struct {
	cfg Config
	log logrus.FieldLogger
	now func() time.Time

	data     *TableData
	grid     *MergeGrid
	info     *TableInfo
	parser   *TableParser
	measurer *TableMeasurer
	matrix   *Matrix
	provider *provider

	busy     bool // inside Draw or a click walk
	viewport Rect
}

// New builds a table over a column tree. text measures labels for layout;
// wrap it in a CachedMeasurer when measuring is expensive.
func New(text TextMeasurer, data *TableData, opts ...Option) *Table {
	t := &Table{
		cfg:  DefaultConfig(),
		log:  discardLogger(),
		now:  time.Now,
		data: data,
		grid: NewMergeGrid(),
		info: &TableInfo{Zoom: 1},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.measurer = NewTableMeasurer(text)
	t.provider = newProvider(t.data, t.grid, t.info, text)
	t.applyConfig(t.cfg)
	return t
}

func (t *Table) applyConfig(cfg Config) {
	cfg, fixes := cfg.Validate()
	for _, fix := range fixes {
		t.log.WithField("fix", fix).Warn("config clamped")
	}
	coll, err := newCollator(cfg.Collation)
	if err != nil {
		t.log.WithError(err).Warn("collation ignored, sorting by bytes")
	}
	t.cfg = cfg
	t.parser = NewTableParser(coll, t.log)
	t.provider.cfg = cfg
	if t.matrix == nil {
		t.matrix = NewMatrix(cfg)
	} else {
		t.matrix.Configure(cfg)
	}
}

// Config returns the validated configuration in use.
func (t *Table) Config() Config { return t.cfg }

// SetConfig validates cfg, applies it and remeasures.
func (t *Table) SetConfig(cfg Config) error {
	if t.busy {
		return ErrReentrant
	}
	t.applyConfig(cfg)
	if t.info.Measured() {
		t.measure()
	}
	return nil
}

func (t *Table) Data() *TableData { return t.data }
func (t *Table) Grid() *MergeGrid { return t.grid }
func (t *Table) Info() *TableInfo { return t.info }
func (t *Table) Matrix() *Matrix  { return t.matrix }

// OnTableChanged registers a listener for zoom and translation changes.
func (t *Table) OnTableChanged(fn ChangeListener) { t.matrix.OnTableChanged(fn) }

// OnCellClick sets the callback for clicks on data cells.
func (t *Table) OnCellClick(fn func(CellClick)) { t.provider.onCell = fn }

// OnTitleClick sets the callback for clicks on column titles.
func (t *Table) OnTitleClick(fn func(*Column)) { t.provider.onTitle = fn }

// SetData replaces every record. rows is a slice of any element type.
func (t *Table) SetData(rows any) error {
	if t.busy {
		return ErrReentrant
	}
	t.data.Records = toRecords(rows)
	t.refresh()
	return nil
}

// AddData adds records at the end or the head without rebinding the rest.
func (t *Table) AddData(rows any, atEnd bool) error {
	if t.busy {
		return ErrReentrant
	}
	t.parser.AddData(t.data, toRecords(rows), atEnd, t.grid)
	t.measure()
	return nil
}

// SetSortColumn sorts records by a leaf column and reparses. A nil column
// restores input order on the next SetData.
func (t *Table) SetSortColumn(col *Column, reverse bool) error {
	if t.busy {
		return ErrReentrant
	}
	if col != nil && !t.isLeaf(col) {
		return fmt.Errorf("sort by %q: %w", col.Name, ErrUnknownColumn)
	}
	t.data.sortColumn, t.data.sortReverse = col, reverse
	t.refresh()
	return nil
}

func (t *Table) isLeaf(col *Column) bool {
	if t.data.leaves == nil {
		t.parser.Parse(t.data, t.grid)
	}
	for _, c := range t.data.leaves {
		if c == col {
			return true
		}
	}
	return false
}

// AddCellRange adds a user merge. User merges survive reparses.
func (t *Table) AddCellRange(r CellRange) error {
	if t.busy {
		return ErrReentrant
	}
	t.data.UserRanges = append(t.data.UserRanges, r)
	t.refresh()
	return nil
}

// NotifyDataChanged reparses and remeasures after records were changed in place.
func (t *Table) NotifyDataChanged() error {
	if t.busy {
		return ErrReentrant
	}
	t.refresh()
	return nil
}

func (t *Table) refresh() {
	t.parser.Parse(t.data, t.grid)
	t.measure()
}

func (t *Table) measure() {
	t.info.Zoom = t.matrix.Zoom()
	t.measurer.Measure(t.data, t.grid, t.cfg, t.info)
	fixed := 0
	for i, c := range t.data.leaves {
		if c.Fixed {
			fixed += t.info.Widths[i]
		}
	}
	t.matrix.SetFixedWidth(float64(fixed))
}

// PointLocation is the content position of the top-left of cell (row, col).
func (t *Table) PointLocation(row, col int) (x, y float64, err error) {
	if err := t.checkCell(row, col); err != nil {
		return 0, 0, err
	}
	x = float64(t.info.YSequenceWidth + t.info.ColumnLefts[col])
	y = float64(t.info.HeaderHeight() + t.info.RowTops[row])
	return x, y, nil
}

// PointSize is the content size of cell (row, col), ignoring merges.
func (t *Table) PointSize(row, col int) (w, h float64, err error) {
	if err := t.checkCell(row, col); err != nil {
		return 0, 0, err
	}
	return float64(t.info.Widths[col]), float64(t.info.LineHeights[row]), nil
}

func (t *Table) checkCell(row, col int) error {
	if !t.info.Measured() {
		return ErrNotMeasured
	}
	if row < 0 || row >= t.info.LineSize || col < 0 || col >= t.info.ColumnSize {
		return fmt.Errorf("cell (%d, %d) outside %dx%d table", row, col, t.info.LineSize, t.info.ColumnSize)
	}
	return nil
}

// ScrollToCell brings cell (row, col) to the top-left of the viewport.
func (t *Table) ScrollToCell(row, col int) error {
	x, y, err := t.PointLocation(row, col)
	if err != nil {
		return err
	}
	t.matrix.ScrollTo(x, y)
	return nil
}

// Draw renders one frame into cv. A canvas implementing Framer gets its frame
// committed on success and discarded when drawing panics, so the previous
// frame stays on screen.
func (t *Table) Draw(cv Canvas, viewport Rect) (err error) {
	if t.busy {
		return ErrReentrant
	}
	if !t.info.Measured() {
		return ErrNotMeasured
	}
	t.busy = true
	defer func() { t.busy = false }()

	framer, framed := cv.(Framer)
	if framed {
		framer.BeginFrame()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("smarttable: draw: %v", r)
			t.log.WithField("panic", r).Error("draw failed, keeping previous frame")
			if framed {
				framer.DiscardFrame()
			}
			return
		}
		if framed {
			framer.CommitFrame()
		}
	}()

	t.viewport = viewport
	t.walk(cv)
	return nil
}

func (t *Table) walk(cv Canvas) {
	content, _ := t.info.TableRect()
	scaled := t.matrix.ZoomProviderRect(t.viewport, content)
	t.info.Zoom = t.matrix.Zoom()
	t.provider.render(cv, t.viewport, scaled, t.matrix.FixedTranslateX())
}

// OnClick hit-tests a screen point against the last drawn viewport and fires
// at most one cell or title callback. It reports whether a callback fired.
func (t *Table) OnClick(x, y float64) (bool, error) {
	if t.busy {
		return false, ErrReentrant
	}
	if !t.info.Measured() || t.viewport.Empty() {
		return false, ErrNotMeasured
	}
	t.busy = true
	defer func() { t.busy = false }()

	t.provider.click(x, y)
	t.walk(nopCanvas{})
	return t.provider.fired, nil
}

// Scroll pans by a scroll distance in screen pixels. Pans that start on the
// frozen columns move only the frozen region horizontally.
func (t *Table) Scroll(x, y, dx, dy float64) {
	frozen := t.provider.frozenArea.Contains(x, y)
	t.matrix.Pan(dx, dy, frozen)
}

// ScaleBegin, Scale and ScaleEnd forward a pinch gesture to the matrix.
func (t *Table) ScaleBegin()          { t.matrix.ScaleBegin() }
func (t *Table) Scale(factor float64) { t.matrix.Scale(factor) }
func (t *Table) ScaleEnd()            { t.matrix.ScaleEnd() }
func (t *Table) DoubleTap()           { t.matrix.DoubleTap() }
func (t *Table) CancelFling()         { t.matrix.CancelFling() }
func (t *Table) Flinging() bool       { return t.matrix.Flinging() }

// Fling starts a fling at the current time. It reports whether an animation
// started; the host then calls Tick about every 16ms until it returns false.
func (t *Table) Fling(vx, vy float64) bool {
	return t.matrix.Fling(vx, vy, t.now())
}

// Tick advances animations to now and reports whether another frame is needed.
func (t *Table) Tick(now time.Time) bool {
	return t.matrix.Tick(now)
}
