package pagination

import (
	"sort"
)

// BreakMarker is a page boundary anchored at a document position.
type BreakMarker struct {
	Pos  int
	Page int // 1-based index of the page that begins here
}

// Mapper translates positions through an edit. document.Mapping implements it.
type Mapper interface {
	Map(pos, assoc int) (int, bool)
}

// BreakSet is an immutable, ascending sequence of break markers with no two
// markers at the same position. The zero value is the empty set.
type BreakSet struct {
	markers []BreakMarker
}

// NewBreakSet builds a set from positions, sorting them and dropping
// duplicates.
func NewBreakSet(positions []int) BreakSet {
	if len(positions) == 0 {
		return BreakSet{}
	}
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	markers := make([]BreakMarker, 0, len(sorted))
	for _, p := range sorted {
		if n := len(markers); n > 0 && markers[n-1].Pos == p {
			continue
		}
		markers = append(markers, BreakMarker{Pos: p, Page: len(markers) + 2})
	}
	return BreakSet{markers: markers}
}

// Len returns the number of markers
func (s BreakSet) Len() int {
	return len(s.markers)
}

// PageCount is the number of visual pages the set produces.
func (s BreakSet) PageCount() int {
	return len(s.markers) + 1
}

// At returns the i-th marker.
func (s BreakSet) At(i int) BreakMarker {
	return s.markers[i]
}

// Markers returns a copy of the markers.
func (s BreakSet) Markers() []BreakMarker {
	return append([]BreakMarker(nil), s.markers...)
}

// Positions returns the document positions of the markers.
func (s BreakSet) Positions() []int {
	out := make([]int, len(s.markers))
	for i, m := range s.markers {
		out[i] = m.Pos
	}
	return out
}

// Contains reports whether a marker sits at pos.
func (s BreakSet) Contains(pos int) bool {
	i := sort.Search(len(s.markers), func(i int) bool { return s.markers[i].Pos >= pos })
	return i < len(s.markers) && s.markers[i].Pos == pos
}

// Equal compares two sets pairwise in order.
func (s BreakSet) Equal(other BreakSet) bool {
	if len(s.markers) != len(other.markers) {
		return false
	}
	for i := range s.markers {
		if s.markers[i].Pos != other.markers[i].Pos {
			return false
		}
	}
	return true
}

// Map returns the set translated through an edit. Markers stick to the left
// of text inserted at their position, and markers inside deleted content
// disappear.
func (s BreakSet) Map(m Mapper) BreakSet {
	if len(s.markers) == 0 {
		return s
	}
	positions := make([]int, 0, len(s.markers))
	for _, mk := range s.markers {
		p, deleted := m.Map(mk.Pos, -1)
		if deleted {
			continue
		}
		positions = append(positions, p)
	}
	return NewBreakSet(positions)
}
