package smarttable

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// numeric right-aligns a column and formats its numbers with fn. nil is
// blank and values that are not numbers keep the default formatting.
func numeric(fn func(f float64) string) ColumnOption {
	return func(c *Column) {
		c.Align = AlignRight
		c.hasAlign = true
		c.Format = func(v any) string {
			f, ok := toFloat64(v)
			if !ok {
				return formatValue(v)
			}
			return fn(f)
		}
	}
}

// Number formats numbers with thousand separators and the given decimals.
func Number(decimals int) ColumnOption {
	return numeric(func(f float64) string { return formatNumber(f, decimals) })
}

// Currency is Number with a symbol prefix.
func Currency(symbol string, decimals int) ColumnOption {
	return numeric(func(f float64) string { return symbol + formatNumber(f, decimals) })
}

// Percent appends a percent sign; the value is not scaled.
func Percent(decimals int) ColumnOption {
	return numeric(func(f float64) string { return strconv.FormatFloat(f, 'f', decimals, 64) + "%" })
}

// Bytes formats byte counts in binary units (1.5 KB is 1536 bytes).
func Bytes() ColumnOption {
	return numeric(formatBytes)
}

// Bool formats true as yes and anything else, nil included, as no.
func Bool(yes, no string) ColumnOption {
	return func(c *Column) {
		c.Align = AlignCenter
		c.hasAlign = true
		c.Format = func(v any) string {
			if b, ok := v.(bool); ok && b {
				return yes
			}
			return no
		}
	}
}

// formatValue is the default cell formatter. nil is the empty string and
// flattened lists are comma joined.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := formatValue(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// toFloat64 converts common numeric types to float64. ok is false for
// anything that is not a number.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	// named numeric types
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func formatNumber(f float64, decimals int) string {
	return insertCommas(strconv.FormatFloat(f, 'f', decimals, 64))
}

// insertCommas groups the integer digits of a formatted number in threes.
func insertCommas(s string) string {
	from := 0
	if strings.HasPrefix(s, "-") {
		from = 1
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		dot = len(s)
	}
	out := make([]byte, 0, len(s)+(dot-from)/3)
	out = append(out, s[:from]...)
	for i := from; i < dot; i++ {
		if i > from && (dot-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(append(out, s[dot:]...))
}

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB"}

func formatBytes(f float64) string {
	sign := ""
	if f < 0 {
		sign, f = "-", -f
	}
	unit := 0
	for f >= 1024 && unit < len(byteUnits)-1 {
		f /= 1024
		unit++
	}
	prec := 1
	if unit == 0 {
		prec = 0
	}
	return sign + strconv.FormatFloat(f, 'f', prec, 64) + " " + byteUnits[unit]
}

// letterSequence renders a zero-based column index as spreadsheet letters:
// 0 -> A, 25 -> Z, 26 -> AA.
func letterSequence(i int) string {
	var buf [8]byte
	n := len(buf)
	for i >= 0 {
		n--
		buf[n] = byte('A' + i%26)
		i = i/26 - 1
	}
	return string(buf[n:])
}
