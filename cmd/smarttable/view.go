package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kungfusheep/smarttable"
	"github.com/kungfusheep/smarttable/term"
)

var viewCmd = &cobra.Command{
	Use:   "view <data>",
	Short: "Browse a table interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	viewCmd.Flags().Int("fps", 60, "animation frames per second while flinging")
	viewCmd.Flags().Float64("fling", 400, "fling velocity in cells per second for shift+arrows")
}

func runView(cmd *cobra.Command, args []string) error {
	fps, _ := cmd.Flags().GetInt("fps")
	fling, _ := cmd.Flags().GetFloat64("fling")
	src, err := loadSource(cmd.Context(), cmd, args[0], smarttable.TerminalConfig())
	if err != nil {
		return err
	}
	tbl, err := newTable(cmd, src, term.Measurer{})
	if err != nil {
		return err
	}
	m := newViewModel(tbl, max(fps, 1), fling)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

type keyMap struct {
	Up, Down, Left, Right     key.Binding
	PageUp, PageDown          key.Binding
	FlingUp, FlingDown        key.Binding
	FlingLeft, FlingRight     key.Binding
	ZoomIn, ZoomOut, ZoomStep key.Binding
	Home                      key.Binding
	Quit                      key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	FlingUp:    key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("⇧↑", "fling up")),
	FlingDown:  key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("⇧↓", "fling down")),
	FlingLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("⇧←", "fling left")),
	FlingRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("⇧→", "fling right")),
	ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	ZoomStep:   key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zoom step")),
	Home:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top left")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

type viewModel struct {
	tbl      *smarttable.Table
	canvas   *term.Canvas
	renderer *term.Renderer
	frame    time.Duration
	fling    float64

	sortBy  *smarttable.Column
	reverse bool
	pending *smarttable.Column // title clicked during a click walk
	status  string
	err     error
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a"))

func newViewModel(tbl *smarttable.Table, fps int, fling float64) *viewModel {
	m := &viewModel{
		tbl:      tbl,
		canvas:   term.NewCanvas(80, 23),
		renderer: term.NewRenderer(),
		frame:    time.Second / time.Duration(fps),
		fling:    fling,
	}
	tbl.OnTitleClick(func(c *smarttable.Column) { m.pending = c })
	tbl.OnCellClick(func(c smarttable.CellClick) {
		m.status = fmt.Sprintf("%s[%d] = %s", c.Column.Name, c.Row, c.Text)
	})
	return m
}

func (m *viewModel) Init() tea.Cmd { return nil }

func (m *viewModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	page := float64(m.canvas.Buffer().Height() - 1)
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.canvas.Resize(msg.Width, max(msg.Height-1, 1))

	case tickMsg:
		if m.tbl.Tick(time.Time(msg)) {
			return m, m.tick()
		}

	case tea.MouseMsg:
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			m.tbl.Scroll(float64(msg.X), float64(msg.Y), 0, -3)
		case msg.Button == tea.MouseButtonWheelDown:
			m.tbl.Scroll(float64(msg.X), float64(msg.Y), 0, 3)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			m.click(float64(msg.X)+0.5, float64(msg.Y)+0.5)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.tbl.Scroll(0, 0, 0, -1)
		case key.Matches(msg, keys.Down):
			m.tbl.Scroll(0, 0, 0, 1)
		case key.Matches(msg, keys.Left):
			m.tbl.Scroll(0, 0, -2, 0)
		case key.Matches(msg, keys.Right):
			m.tbl.Scroll(0, 0, 2, 0)
		case key.Matches(msg, keys.PageUp):
			m.tbl.Scroll(0, 0, 0, -page)
		case key.Matches(msg, keys.PageDown):
			m.tbl.Scroll(0, 0, 0, page)
		case key.Matches(msg, keys.Home):
			m.tbl.Matrix().ScrollTo(0, 0)
		case key.Matches(msg, keys.ZoomIn):
			m.zoom(1.25)
		case key.Matches(msg, keys.ZoomOut):
			m.zoom(0.8)
		case key.Matches(msg, keys.ZoomStep):
			m.tbl.DoubleTap()
		case key.Matches(msg, keys.FlingUp):
			return m, m.startFling(0, m.fling)
		case key.Matches(msg, keys.FlingDown):
			return m, m.startFling(0, -m.fling)
		case key.Matches(msg, keys.FlingLeft):
			return m, m.startFling(m.fling, 0)
		case key.Matches(msg, keys.FlingRight):
			return m, m.startFling(-m.fling, 0)
		}
	}
	return m, nil
}

func (m *viewModel) zoom(factor float64) {
	m.tbl.ScaleBegin()
	m.tbl.Scale(factor)
	m.tbl.ScaleEnd()
}

// startFling flings with a swipe velocity in cells per second: content moves
// against the swipe. The fling runs on the table clock; ticks only advance it.
func (m *viewModel) startFling(vx, vy float64) tea.Cmd {
	if !m.tbl.Fling(vx, vy) {
		return nil
	}
	return m.tick()
}

// click hit-tests a cell position. A title click toggles sorting by that
// column once the walk has returned.
func (m *viewModel) click(x, y float64) {
	m.pending = nil
	if _, err := m.tbl.OnClick(x, y); err != nil {
		m.err = err
		return
	}
	c := m.pending
	if c == nil || c.IsParent() {
		return
	}
	m.reverse = c == m.sortBy && !m.reverse
	m.sortBy = c
	m.err = m.tbl.SetSortColumn(c, m.reverse)
	order := "ascending"
	if m.reverse {
		order = "descending"
	}
	m.status = fmt.Sprintf("sorted by %s, %s", c.Name, order)
}

func (m *viewModel) View() string {
	if err := m.tbl.Draw(m.canvas, m.canvas.Bounds()); err != nil {
		m.err = err
	}
	status := m.status
	if m.err != nil {
		status = "error: " + m.err.Error()
	}
	if status == "" {
		status = fmt.Sprintf("%d rows  zoom %.2f  q quit  +/- zoom  ⇧arrows fling",
			m.tbl.Info().LineSize, m.tbl.Matrix().Zoom())
	}
	return m.renderer.Render(m.canvas.Buffer()) + "\n" + statusStyle.Render(status)
}
