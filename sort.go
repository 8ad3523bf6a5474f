package smarttable

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator builds a locale collator for tag. An empty tag means plain byte
// order and returns nil.
func newCollator(tag string) (*collate.Collator, error) {
	if tag == "" {
		return nil, nil
	}
	lang, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("collation %q: %w", tag, err)
	}
	return collate.New(lang), nil
}

// compareValues orders two field values. nil is the smallest value, numbers
// compare numerically, strings use coll when present, and anything else falls
// back to comparing string representations.
func compareValues(a, b any, coll *collate.Collator) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := toFloat64(a); ok {
		if fb, ok := toFloat64(b); ok {
			return cmp.Compare(fa, fb)
		}
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			if coll != nil {
				return coll.CompareString(x, y)
			}
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}

	// fallback: compare string representations
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if coll != nil {
		return coll.CompareString(as, bs)
	}
	return cmp.Compare(as, bs)
}

type sortEntry struct {
	record any
	key    any
}

// sortRecords stably sorts records in place by key. nil keys sort first when
// ascending and last when reversed; ties keep their input order.
func sortRecords(records []any, key func(any) any, compare func(a, b any) int, reverse bool) {
	if len(records) < 2 {
		return
	}
	entries := make([]sortEntry, len(records))
	for i, r := range records {
		entries[i] = sortEntry{record: r, key: key(r)}
	}
	slices.SortStableFunc(entries, func(x, y sortEntry) int {
		var c int
		switch {
		case x.key == nil && y.key == nil:
			c = 0
		case x.key == nil:
			c = -1
		case y.key == nil:
			c = 1
		default:
			c = compare(x.key, y.key)
		}
		if reverse {
			return -c
		}
		return c
	})
	for i, e := range entries {
		records[i] = e.record
	}
}
