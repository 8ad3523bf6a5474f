package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kungfusheep/smarttable"
	"github.com/kungfusheep/smarttable/xlsx"
)

// stringFlag reads a flag of cmd or one inherited from its parents.
func stringFlag(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// source is everything read from disk for one table.
type source struct {
	data    *smarttable.TableData
	records []any
	cfg     smarttable.Config
	log     *logrus.Logger
}

// loadSource reads the definition, data and config files concurrently.
// base is the config used when no config file is given.
func loadSource(ctx context.Context, cmd *cobra.Command, dataPath string, base smarttable.Config) (*source, error) {
	defPath := stringFlag(cmd, "def")
	cfgPath := stringFlag(cmd, "config")
	sheet := stringFlag(cmd, "sheet")
	level, format := stringFlag(cmd, "log-level"), stringFlag(cmd, "log-format")

	log, err := smarttable.NewLogger(os.Stderr, level, format)
	if err != nil {
		return nil, err
	}
	src := &source{cfg: base, log: log}

	var def *smarttable.TableData
	var sheetData *smarttable.TableData
	g, _ := errgroup.WithContext(ctx)
	if defPath != "" {
		g.Go(func() error {
			d, err := smarttable.LoadTableDef(defPath)
			if err != nil {
				return err
			}
			def, err = d.Build()
			return err
		})
	}
	if cfgPath != "" {
		g.Go(func() error {
			cfg, fixes, err := smarttable.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			for _, fix := range fixes {
				log.WithField("fix", fix).Warn("config clamped")
			}
			src.cfg = cfg
			return nil
		})
	}
	g.Go(func() error {
		if isWorkbook(dataPath) {
			d, err := xlsx.LoadFile(dataPath, sheet)
			if err != nil {
				return err
			}
			sheetData = d
			return nil
		}
		recs, err := readRecords(dataPath)
		if err != nil {
			return err
		}
		src.records = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	switch {
	case def != nil:
		src.data = def
		if sheetData != nil {
			src.records = sheetData.Records
			def.UserRanges = append(def.UserRanges, sheetData.UserRanges...)
		}
	case sheetData != nil:
		src.data = sheetData
		src.records = sheetData.Records
	default:
		name := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))
		src.data = smarttable.NewTableData(name, inferColumns(src.records)...)
	}
	log.WithFields(logrus.Fields{
		"records": len(src.records),
		"columns": len(src.data.Columns),
	}).Debug("source loaded")
	return src, nil
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// readRecords decodes a list of records from JSON, YAML or msgpack, chosen by
// extension. A single object is a one-record list.
func readRecords(path string) ([]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		err = msgpack.Unmarshal(raw, &v)
	case ".json", ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &v)
	default:
		return nil, fmt.Errorf("read data %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode data %s: %w", path, err)
	}
	switch v := v.(type) {
	case []any:
		return v, nil
	case nil:
		return nil, nil
	default:
		return []any{v}, nil
	}
}

// inferColumns builds one leaf per key of the first record, in key order.
// List values become array columns over the keys of their first element.
func inferColumns(records []any) []*smarttable.Column {
	if len(records) == 0 {
		return nil
	}
	first, ok := records[0].(map[string]any)
	if !ok {
		return []*smarttable.Column{smarttable.NewColumn("Value", "")}
	}
	return columnsFor(first, "")
}

func columnsFor(m map[string]any, prefix string) []*smarttable.Column {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cols []*smarttable.Column
	for _, k := range keys {
		path := prefix + k
		if list, ok := m[k].([]any); ok && len(list) > 0 {
			if elem, ok := list[0].(map[string]any); ok {
				cols = append(cols, smarttable.Group(k, columnsFor(elem, path+"[].")...))
				continue
			}
			cols = append(cols, smarttable.NewColumn(k, path+"[]"))
			continue
		}
		cols = append(cols, smarttable.NewColumn(k, path))
	}
	return cols
}

// newTable binds a loaded source to a table measured by text, applying the
// --sort flag.
func newTable(cmd *cobra.Command, src *source, text smarttable.TextMeasurer) (*smarttable.Table, error) {
	tbl := smarttable.New(text, src.data,
		smarttable.WithConfig(src.cfg),
		smarttable.WithLogger(src.log),
	)
	if err := tbl.SetData(src.records); err != nil {
		return nil, err
	}
	name := stringFlag(cmd, "sort")
	if name == "" {
		return tbl, nil
	}
	reverse := strings.HasPrefix(name, "-")
	name = strings.TrimPrefix(name, "-")
	for _, c := range tbl.Data().Leaves() {
		if c.Name == name {
			return tbl, tbl.SetSortColumn(c, reverse)
		}
	}
	return nil, fmt.Errorf("sort by %q: %w", name, smarttable.ErrUnknownColumn)
}
