package smarttable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersTOML = `
name = "Orders"

[[columns]]
name = "Customer"
field = "name"
fixed = true
auto_merge = true
max_merge = 5

[[columns]]
name = "Order"

  [[columns.children]]
  name = "ID"
  field = "orders[].id"

  [[columns.children]]
  name = "Total"
  expr = "price * qty"
  format = "currency:£:2"
  auto_count = true

[[merges]]
first_row = 0
last_row = 1
first_col = 1
last_col = 2
`

func TestLoadTableDef(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.toml")
	require.NoError(t, os.WriteFile(path, []byte(ordersTOML), 0o644))

	def, err := LoadTableDef(path)
	require.NoError(t, err)
	data, err := def.Build()
	require.NoError(t, err)

	require.Len(t, data.Columns, 2)
	customer, order := data.Columns[0], data.Columns[1]
	assert.True(t, customer.Fixed)
	assert.True(t, customer.AutoMerge)
	assert.Equal(t, 5, customer.MaxMergeCount)
	require.True(t, order.IsParent())

	id, total := order.Children[0], order.Children[1]
	assert.Equal(t, ColumnArray, id.Kind)
	assert.Equal(t, ColumnExpr, total.Kind)
	assert.True(t, total.AutoCount)
	assert.Equal(t, "£1,234.50", total.format(1234.5))
	assert.Equal(t, []CellRange{NewCellRange(0, 1, 1, 2)}, data.UserRanges)
}

func TestLoadTableDefYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: People
columns:
  - name: Name
    field: name
    align: left
    min_width: 40
  - name: Size
    field: size
    format: bytes
`), 0o644))

	def, err := LoadTableDef(path)
	require.NoError(t, err)
	data, err := def.Build()
	require.NoError(t, err)

	name := data.Columns[0]
	assert.Equal(t, AlignLeft, name.Align)
	assert.Equal(t, 40, name.MinWidth)
	assert.Equal(t, "1.0 KB", data.Columns[1].format(1024))
}

func TestColumnDefErrors(t *testing.T) {
	tests := []struct {
		name string
		def  ColumnDef
	}{
		{"no name", ColumnDef{Field: "a"}},
		{"no source", ColumnDef{Name: "A"}},
		{"bad format", ColumnDef{Name: "A", Field: "a", Format: "roman"}},
		{"bad decimals", ColumnDef{Name: "A", Field: "a", Format: "number:x"}},
		{"bad align", ColumnDef{Name: "A", Field: "a", Align: "justify"}},
		{"bad expr", ColumnDef{Name: "A", Expr: "1 +"}},
		{"bad child", ColumnDef{Name: "G", Children: []ColumnDef{{Name: "C"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Build()
			assert.Error(t, err)
		})
	}

	_, err := LoadTableDef(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		format string
		val    any
		want   string
	}{
		{"number", 1234.56, "1,235"},
		{"number:1", 1234.56, "1,234.6"},
		{"currency", 5, "$5.00"},
		{"percent:2", 12.3456, "12.35%"},
		{"bool", true, "yes"},
		{"bool:on:off", false, "off"},
	}
	for _, tt := range tests {
		opt, err := parseFormat(tt.format)
		require.NoError(t, err, tt.format)
		c := NewColumn("c", "c", opt)
		assert.Equal(t, tt.want, c.format(tt.val), tt.format)
	}
}
