package smarttable

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ColumnDef is the file form of a column. Exactly one of Field, Expr or
// Children is expected.
type ColumnDef struct {
	Name     string      `toml:"name" yaml:"name"`
	Field    string      `toml:"field" yaml:"field"`
	Expr     string      `toml:"expr" yaml:"expr"`
	Children []ColumnDef `toml:"children" yaml:"children"`

	Fixed     bool `toml:"fixed" yaml:"fixed"`
	Width     int  `toml:"width" yaml:"width"`
	MinWidth  int  `toml:"min_width" yaml:"min_width"`
	MinHeight int  `toml:"min_height" yaml:"min_height"`

	AutoMerge bool `toml:"auto_merge" yaml:"auto_merge"`
	MaxMerge  int  `toml:"max_merge" yaml:"max_merge"`
	AutoCount bool `toml:"auto_count" yaml:"auto_count"`

	Align  string `toml:"align" yaml:"align"`
	Format string `toml:"format" yaml:"format"` // number[:dp], currency:sym[:dp], percent[:dp], bytes, bool[:yes:no]
}

// TableDef is the file form of a table: its column tree and user merges.
type TableDef struct {
	Name    string      `toml:"name" yaml:"name"`
	Columns []ColumnDef `toml:"columns" yaml:"columns"`
	Merges  []CellRange `toml:"merges" yaml:"merges"`
}

// Build turns the definition into a column.
func (d ColumnDef) Build() (*Column, error) {
	if d.Name == "" {
		return nil, errors.New("column without name")
	}
	if len(d.Children) > 0 {
		children := make([]*Column, 0, len(d.Children))
		for _, cd := range d.Children {
			c, err := cd.Build()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.Name, err)
			}
			children = append(children, c)
		}
		return Group(d.Name, children...), nil
	}

	opts, err := d.options()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", d.Name, err)
	}
	switch {
	case d.Expr != "":
		return NewExprColumn(d.Name, d.Expr, opts...)
	case d.Field != "":
		return NewColumn(d.Name, d.Field, opts...), nil
	default:
		return nil, fmt.Errorf("column %q: needs field, expr or children", d.Name)
	}
}

func (d ColumnDef) options() ([]ColumnOption, error) {
	var opts []ColumnOption
	if d.Format != "" {
		opt, err := parseFormat(d.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	if d.Fixed {
		opts = append(opts, Fixed())
	}
	if d.Width > 0 {
		opts = append(opts, Width(d.Width))
	}
	if d.MinWidth > 0 {
		opts = append(opts, MinWidth(d.MinWidth))
	}
	if d.MinHeight > 0 {
		opts = append(opts, MinHeight(d.MinHeight))
	}
	if d.AutoMerge {
		opts = append(opts, AutoMerge(d.MaxMerge))
	}
	if d.AutoCount {
		opts = append(opts, AutoCount())
	}
	if d.Align != "" {
		var a Align
		if err := a.UnmarshalText([]byte(d.Align)); err != nil {
			return nil, err
		}
		opts = append(opts, AlignTo(a))
	}
	return opts, nil
}

// parseFormat reads a preset name with colon separated arguments.
func parseFormat(s string) (ColumnOption, error) {
	parts := strings.Split(s, ":")
	decimals := func(i, def int) (int, error) {
		if len(parts) <= i || parts[i] == "" {
			return def, nil
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, fmt.Errorf("format %q: decimals: %w", s, err)
		}
		return n, nil
	}
	switch parts[0] {
	case "number":
		dp, err := decimals(1, 0)
		if err != nil {
			return nil, err
		}
		return Number(dp), nil
	case "currency":
		symbol := "$"
		if len(parts) > 1 {
			symbol = parts[1]
		}
		dp, err := decimals(2, 2)
		if err != nil {
			return nil, err
		}
		return Currency(symbol, dp), nil
	case "percent":
		dp, err := decimals(1, 0)
		if err != nil {
			return nil, err
		}
		return Percent(dp), nil
	case "bytes":
		return Bytes(), nil
	case "bool":
		yes, no := "yes", "no"
		if len(parts) == 3 {
			yes, no = parts[1], parts[2]
		}
		return Bool(yes, no), nil
	}
	return nil, fmt.Errorf("unknown format %q", s)
}

// Build turns the definition into table data with no records.
func (d TableDef) Build() (*TableData, error) {
	cols := make([]*Column, 0, len(d.Columns))
	for _, cd := range d.Columns {
		c, err := cd.Build()
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	data := NewTableData(d.Name, cols...)
	for _, r := range d.Merges {
		data.UserRanges = append(data.UserRanges, NewCellRange(r.FirstRow, r.LastRow, r.FirstCol, r.LastCol))
	}
	return data, nil
}

// LoadTableDef reads a TOML or YAML table definition, chosen by extension.
func LoadTableDef(path string) (TableDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TableDef{}, fmt.Errorf("read table def: %w", err)
	}
	var def TableDef
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.NewDecoder(bytes.NewReader(raw)).Decode(&def)
	case ".yaml", ".yml", ".json":
		err = yaml.Unmarshal(raw, &def)
	default:
		err = fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return TableDef{}, fmt.Errorf("decode table def %s: %w", path, err)
	}
	return def, nil
}
