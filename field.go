package smarttable

import (
	"reflect"
	"slices"
	"strings"
)

// FieldGetter resolves one named field of a value. ok is false when the field
// does not exist; a nil value with ok true is an explicit null.
type FieldGetter func(v any, name string) (value any, ok bool)

type pathSegment struct {
	name string
	list bool
}

// parsePath splits "orders[].items[].sku" into segments, marking lists.
func parsePath(field string) []pathSegment {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ".")
	segs := make([]pathSegment, 0, len(parts))
	for _, p := range parts {
		name, list := strings.CutSuffix(p, "[]")
		segs = append(segs, pathSegment{name: name, list: list})
	}
	return segs
}

// splitAtLists cuts segments into runs that end on a list segment. The last
// run holds whatever follows the final list and may be empty.
func splitAtLists(segs []pathSegment) [][]pathSegment {
	var runs [][]pathSegment
	start := 0
	for i, s := range segs {
		if s.list {
			runs = append(runs, segs[start:i+1])
			start = i + 1
		}
	}
	return append(runs, segs[start:])
}

// ReflectGetter reads map keys and struct fields. Struct fields match by exact
// name first, then case-insensitively; pointers and interfaces are followed.
func ReflectGetter(v any, name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	// Try map first
	if m, ok := v.(map[string]any); ok {
		val, found := m[name]
		return val, found
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		if f := rv.FieldByName(name); f.IsValid() && f.CanInterface() {
			return f.Interface(), true
		}
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.IsExported() && strings.EqualFold(sf.Name, name) {
				return rv.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}

// resolve follows segments without expanding lists. Missing fields resolve to nil.
func resolve(get FieldGetter, v any, segs []pathSegment) any {
	for _, s := range segs {
		if v == nil {
			return nil
		}
		v, _ = get(v, s.name)
	}
	return v
}

// toList converts a slice or array value into []any. nil and non-list values
// give nil.
func toList(v any) []any {
	if v == nil {
		return nil
	}
	if l, ok := v.([]any); ok {
		return l
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	// []byte is a value, not a list of rows
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// expandItems resolves a run ending in a list and returns the list items. An
// empty or missing list is a null expansion: a single nil item.
func expandItems(get FieldGetter, v any, run []pathSegment) []any {
	items := toList(resolve(get, v, run))
	if len(items) == 0 {
		return []any{nil}
	}
	return items
}

// flatten resolves a path that may still cross lists and collects every leaf
// value. It is used for columns that branch off the expansion chain.
func flatten(get FieldGetter, v any, segs []pathSegment) any {
	runs := splitAtLists(segs)
	if len(runs) == 1 {
		return resolve(get, v, runs[0])
	}
	current := []any{v}
	for _, run := range runs[:len(runs)-1] {
		var next []any
		for _, c := range current {
			next = append(next, toList(resolve(get, c, run))...)
		}
		current = next
	}
	last := runs[len(runs)-1]
	out := make([]any, 0, len(current))
	for _, c := range current {
		out = append(out, resolve(get, c, last))
	}
	return out
}

// toRecords converts any slice (or pointer to slice) of rows into []any.
func toRecords(rows any) []any {
	if rows == nil {
		return nil
	}
	return slices.Clone(toList(rows))
}
