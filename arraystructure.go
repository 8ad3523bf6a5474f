package smarttable

import "sort"

// ArrayStructure records how lists expand into physical rows.
//
// Level 0 is the record level. For every deeper level L the structure keeps
// one marker per item of level L-1: the cumulative index, in level L, of the
// last item that parent produced. Markers are run-length boundaries, so the
// children of parent i are (markers[i-1], markers[i]].
type ArrayStructure struct {
	levels   map[int][]int
	maxLevel int
}

// NewArrayStructure returns an empty structure.
func NewArrayStructure() *ArrayStructure {
	return &ArrayStructure{levels: make(map[int][]int)}
}

// Put records that one unit at level-1 produced arraySize items at level.
// atEnd appends the unit after all existing ones, otherwise it is inserted
// before them. Sizes below 1 are a null expansion and count as 1.
func (s *ArrayStructure) Put(level, arraySize int, atEnd bool) {
	if level < 1 {
		return
	}
	if arraySize < 1 {
		arraySize = 1
	}
	if level > s.maxLevel {
		s.maxLevel = level
	}
	markers := s.levels[level]
	switch {
	case len(markers) == 0:
		// empty structure: head and tail insertion agree
		markers = append(markers, arraySize-1)
	case atEnd:
		markers = append(markers, markers[len(markers)-1]+arraySize)
	default:
		for i := range markers {
			markers[i] += arraySize
		}
		markers = append(markers, 0)
		copy(markers[1:], markers)
		markers[0] = arraySize - 1
	}
	s.levels[level] = markers
}

// MaxLevel is the deepest level recorded.
func (s *ArrayStructure) MaxLevel() int { return s.maxLevel }

// Markers returns a copy of the cumulative markers at level.
func (s *ArrayStructure) Markers(level int) []int {
	return append([]int(nil), s.levels[level]...)
}

// Count returns how many items exist at level, 0 when nothing was recorded.
func (s *ArrayStructure) Count(level int) int {
	if level == 0 {
		return len(s.levels[1])
	}
	markers := s.levels[level]
	if len(markers) == 0 {
		return 0
	}
	return markers[len(markers)-1] + 1
}

// Range translates item pos at level into the [start, end] range of items it
// covers at the deepest level.
func (s *ArrayStructure) Range(level, pos int) (start, end int) {
	start, end = pos, pos
	for l := level + 1; l <= s.maxLevel; l++ {
		markers := s.levels[l]
		if len(markers) == 0 || start < 0 || end >= len(markers) {
			return pos, pos
		}
		if start > 0 {
			start = markers[start-1] + 1
		}
		end = markers[end]
	}
	return start, end
}

// LevelCellSize returns how many physical rows item pos at level spans.
// Levels at or below the deepest recorded one span a single row.
func (s *ArrayStructure) LevelCellSize(level, pos int) int {
	if level >= s.maxLevel {
		return 1
	}
	start, end := s.Range(level, pos)
	return end - start + 1
}

// Locate returns the level-1 parent of item pos at level, -1 if out of range.
func (s *ArrayStructure) Locate(level, pos int) int {
	markers := s.levels[level]
	i := sort.SearchInts(markers, pos)
	if i >= len(markers) || pos < 0 {
		return -1
	}
	return i
}

// LogicalRow walks a physical row up to the record that produced it.
func (s *ArrayStructure) LogicalRow(physical int) int {
	pos := physical
	for l := s.maxLevel; l >= 1 && pos >= 0; l-- {
		pos = s.Locate(l, pos)
	}
	return pos
}

// PhysicalRowCount is the sum of record spans at the deepest level.
func (s *ArrayStructure) PhysicalRowCount() int {
	if s.maxLevel == 0 {
		return 0
	}
	total := 0
	for i := 0; i < s.Count(0); i++ {
		total += s.LevelCellSize(0, i)
	}
	return total
}

// Reset drops all recorded levels.
func (s *ArrayStructure) Reset() {
	clear(s.levels)
	s.maxLevel = 0
}
