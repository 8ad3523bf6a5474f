package smarttable

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the immutable layout and viewport configuration of a table. It is
// passed by value; changing it means handing a new copy to Table.SetConfig.
type Config struct {
	Theme Theme `toml:"theme" yaml:"theme"`

	// padding around cell content, in content pixels
	HorizontalPadding int `toml:"horizontal_padding" yaml:"horizontal_padding"`
	VerticalPadding   int `toml:"vertical_padding" yaml:"vertical_padding"`

	TableName       string `toml:"table_name" yaml:"table_name"`
	CountLabel      string `toml:"count_label" yaml:"count_label"`
	ShowXSequence   bool   `toml:"show_x_sequence" yaml:"show_x_sequence"`
	ShowYSequence   bool   `toml:"show_y_sequence" yaml:"show_y_sequence"`
	HideColumnTitle bool   `toml:"hide_column_title" yaml:"hide_column_title"`

	FixedXSequence bool `toml:"fixed_x_sequence" yaml:"fixed_x_sequence"`
	FixedYSequence bool `toml:"fixed_y_sequence" yaml:"fixed_y_sequence"`
	FixedTitle     bool `toml:"fixed_title" yaml:"fixed_title"`
	FixedCountRow  bool `toml:"fixed_count_row" yaml:"fixed_count_row"`
	FixedRows      int  `toml:"fixed_rows" yaml:"fixed_rows"`

	// MinTableWidth scales columns up proportionally when the natural width is
	// smaller. Zero disables it.
	MinTableWidth       int `toml:"min_table_width" yaml:"min_table_width"`
	MinFixedColumnWidth int `toml:"min_fixed_column_width" yaml:"min_fixed_column_width"`

	CanZoom bool    `toml:"can_zoom" yaml:"can_zoom"`
	MinZoom float64 `toml:"min_zoom" yaml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom" yaml:"max_zoom"`

	// fling tuning; velocities are in screen pixels per second
	Density          float64 `toml:"density" yaml:"density"`
	MinFlingVelocity float64 `toml:"min_fling_velocity" yaml:"min_fling_velocity"`
	ScrollFriction   float64 `toml:"scroll_friction" yaml:"scroll_friction"`

	// Collation is a BCP 47 tag used to compare strings when sorting. Empty
	// compares bytes.
	Collation string `toml:"collation" yaml:"collation"`
}

const (
	defaultFontSize       = 14
	defaultScrollFriction = 0.015
	defaultMinVelocity    = 50
)

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Theme:               ThemeLight,
		HorizontalPadding:   10,
		VerticalPadding:     10,
		CountLabel:          "Total",
		FixedTitle:          true,
		MinFixedColumnWidth: 20,
		CanZoom:             true,
		MinZoom:             1,
		MaxZoom:             5,
		Density:             1,
		MinFlingVelocity:    defaultMinVelocity,
		ScrollFriction:      defaultScrollFriction,
	}
}

// TerminalConfig is tuned for character-cell canvases: one unit per cell, one
// cell of horizontal padding, vertical separators only.
func TerminalConfig() Config {
	cfg := DefaultConfig()
	cfg.Theme = ThemeDark
	cfg.Theme.FontSize = 1
	cfg.Theme.TitleFontSize = 1
	cfg.Theme.Grid = GridVertical
	cfg.HorizontalPadding = 1
	cfg.VerticalPadding = 0
	cfg.MinFixedColumnWidth = 4
	cfg.MaxZoom = 3
	return cfg
}

// Validate clamps unsafe values to safe defaults and reports what it changed.
// It never fails: a bad config is corrected, not rejected.
func (c Config) Validate() (Config, []string) {
	var fixes []string
	fix := func(format string, args ...any) {
		fixes = append(fixes, fmt.Sprintf(format, args...))
	}

	if c.MinZoom <= 0 {
		fix("min_zoom %v <= 0, using 0.1", c.MinZoom)
		c.MinZoom = 0.1
	}
	if c.MaxZoom < 1 {
		fix("max_zoom %v < 1, using 1", c.MaxZoom)
		c.MaxZoom = 1
	}
	if c.MinZoom > c.MaxZoom {
		fix("min_zoom %v > max_zoom %v, swapping", c.MinZoom, c.MaxZoom)
		c.MinZoom, c.MaxZoom = c.MaxZoom, c.MinZoom
	}
	clampInt := func(name string, v *int) {
		if *v < 0 {
			fix("%s %d < 0, using 0", name, *v)
			*v = 0
		}
	}
	clampInt("horizontal_padding", &c.HorizontalPadding)
	clampInt("vertical_padding", &c.VerticalPadding)
	clampInt("fixed_rows", &c.FixedRows)
	clampInt("min_table_width", &c.MinTableWidth)
	clampInt("min_fixed_column_width", &c.MinFixedColumnWidth)

	if c.Theme.FontSize <= 0 {
		fix("font_size %v <= 0, using %d", c.Theme.FontSize, defaultFontSize)
		c.Theme.FontSize = defaultFontSize
	}
	if c.Theme.TitleFontSize <= 0 {
		c.Theme.TitleFontSize = c.Theme.FontSize
	}
	if c.Density <= 0 {
		fix("density %v <= 0, using 1", c.Density)
		c.Density = 1
	}
	if c.MinFlingVelocity < 0 {
		fix("min_fling_velocity %v < 0, using %d", c.MinFlingVelocity, defaultMinVelocity)
		c.MinFlingVelocity = defaultMinVelocity
	}
	if c.ScrollFriction <= 0 {
		fix("scroll_friction %v <= 0, using %v", c.ScrollFriction, defaultScrollFriction)
		c.ScrollFriction = defaultScrollFriction
	}
	return c, fixes
}

// LoadConfig reads a TOML or YAML file (chosen by extension) over
// DefaultConfig and validates the result.
func LoadConfig(path string) (Config, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := decodeConfig(filepath.Ext(path), raw)
	if err != nil {
		return Config{}, nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg, fixes := cfg.Validate()
	return cfg, fixes, nil
}

func decodeConfig(ext string, raw []byte) (Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(&cfg); err != nil {
			return Config{}, err
		}
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q", ext)
	}
	return cfg, nil
}
