package pagination

import (
	"errors"
	"testing"
)

// slotLayout is a synthetic measurement in which every vertical offset above
// end resolves to the position numerically equal to it.
type slotLayout struct {
	height  float64
	end     float64
	miss    map[float64]bool
	markers map[int]float64
}

func newSlotLayout(height float64) *slotLayout {
	return &slotLayout{height: height, end: height, markers: map[int]float64{}}
}

func (l *slotLayout) Height() float64 { return l.height }

func (l *slotLayout) PositionAt(x, y float64) (int, bool) {
	if y >= l.end || l.miss[y] {
		return 0, false
	}
	return int(y), true
}

func (l *slotLayout) MarkerOffset(pos int) (float64, bool) {
	y, ok := l.markers[pos]
	return y, ok
}

func positions(cands []Candidate) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.Pos
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGeometry_Derived(t *testing.T) {
	g := DefaultGeometry()
	if g.ContentHeight != 864 {
		t.Errorf("content height = %v, want 864", g.ContentHeight)
	}
	if g.BreakOverhead() != 212 || g.FirstBreak() != 960 || g.Stride() != 1076 {
		t.Errorf("overhead/first/stride = %v/%v/%v", g.BreakOverhead(), g.FirstBreak(), g.Stride())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("default geometry invalid: %v", err)
	}
}

func TestGeometry_Validate(t *testing.T) {
	cases := map[string]func(*Geometry){
		"zero content height": func(g *Geometry) { g.ContentHeight = 0 },
		"negative margin":     func(g *Geometry) { g.Margin = -1 },
		"no pages":            func(g *Geometry) { g.MaxPages = 0 },
		"margins too wide":    func(g *Geometry) { g.Margin = g.PageWidth },
		"no page height":      func(g *Geometry) { g.PageHeight = 0 },
	}
	for name, mutate := range cases {
		g := DefaultGeometry()
		mutate(&g)
		if err := g.Validate(); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("%s: err = %v, want ErrInvalidGeometry", name, err)
		}
	}
}

func TestCalculate_ScenarioA(t *testing.T) {
	cands := Calculate(DefaultGeometry(), newSlotLayout(2200), nil)
	if got := positions(cands); !equalInts(got, []int{960, 2036}) {
		t.Fatalf("candidates = %v, want [960 2036]", got)
	}
	if cands[1].Offset != 2036 {
		t.Errorf("offset = %v", cands[1].Offset)
	}
	if n := NewBreakSet(positions(cands)).PageCount(); n != 3 {
		t.Errorf("page count = %d, want 3", n)
	}
}

func TestCalculate_ScenarioB(t *testing.T) {
	if cands := Calculate(DefaultGeometry(), newSlotLayout(800), nil); len(cands) != 0 {
		t.Errorf("candidates = %v, want none", positions(cands))
	}
}

func TestCalculate_SkipsFailedHitTests(t *testing.T) {
	l := newSlotLayout(3500)
	l.miss = map[float64]bool{960: true}
	if got := positions(Calculate(DefaultGeometry(), l, nil)); !equalInts(got, []int{2036, 3112}) {
		t.Errorf("candidates = %v, want [2036 3112]", got)
	}
}

func TestCalculate_DropsNonIncreasingPositions(t *testing.T) {
	l := &constLayout{height: 5000, pos: 42}
	if got := positions(Calculate(DefaultGeometry(), l, nil)); !equalInts(got, []int{42}) {
		t.Errorf("candidates = %v, want [42]", got)
	}
}

type constLayout struct {
	height float64
	pos    int
}

func (l *constLayout) Height() float64                      { return l.height }
func (l *constLayout) PositionAt(x, y float64) (int, bool)  { return l.pos, true }
func (l *constLayout) MarkerOffset(pos int) (float64, bool) { return 0, false }

func TestCalculate_CapRespected(t *testing.T) {
	g := DefaultGeometry()
	g.ContentHeight = 1
	cands := Calculate(g, newSlotLayout(1e7), nil)
	if n := NewBreakSet(positions(cands)).PageCount(); n > g.MaxPages+1 || n != g.MaxPages {
		t.Errorf("page count = %d, cap %d", n, g.MaxPages)
	}

	g.ContentHeight = 0
	if n := len(Calculate(g, newSlotLayout(1e7), nil)); n != g.MaxPages-1 {
		t.Errorf("zero content height produced %d breaks", n)
	}
}

func TestCalculate_Monotonic(t *testing.T) {
	g := DefaultGeometry()
	prev := 0
	for h := 0.0; h <= 12000; h += 25 {
		n := NewBreakSet(positions(Calculate(g, newSlotLayout(h), nil))).PageCount()
		if n < prev {
			t.Fatalf("page count dropped from %d to %d at height %v", prev, n, h)
		}
		if h < g.ContentHeight && n != 1 {
			t.Fatalf("height %v below content height gave %d pages", h, n)
		}
		prev = n
	}
}

func TestFilterStale(t *testing.T) {
	displayed := NewBreakSet([]int{960})
	cands := []Candidate{{Pos: 960, Offset: 960}, {Pos: 2036, Offset: 2036}}

	l := newSlotLayout(2200)
	l.markers[960] = 900
	if got := positions(FilterStale(cands, displayed, l, DefaultStaleSlack)); !equalInts(got, []int{2036}) {
		t.Errorf("drifted marker kept: %v", got)
	}

	l.markers[960] = 930
	if got := positions(FilterStale(cands, displayed, l, DefaultStaleSlack)); len(got) != 2 {
		t.Errorf("marker within slack dropped: %v", got)
	}

	l.markers[960] = 1100
	if got := positions(FilterStale(cands, displayed, l, DefaultStaleSlack)); len(got) != 2 {
		t.Errorf("marker below expectation dropped: %v", got)
	}

	if got := FilterStale(cands, BreakSet{}, l, DefaultStaleSlack); len(got) != 2 {
		t.Errorf("empty display filtered: %v", positions(got))
	}
}

func TestBreakSet_Basics(t *testing.T) {
	s := NewBreakSet([]int{30, 10, 30, 20})
	if !equalInts(s.Positions(), []int{10, 20, 30}) {
		t.Fatalf("positions = %v", s.Positions())
	}
	if s.At(2).Page != 4 || s.PageCount() != 4 {
		t.Errorf("page numbering wrong: %+v", s.Markers())
	}
	if !s.Contains(20) || s.Contains(25) {
		t.Error("contains wrong")
	}
	if s.Equal(NewBreakSet([]int{10, 20})) || !s.Equal(NewBreakSet([]int{10, 20, 30})) {
		t.Error("equality wrong")
	}
	var empty BreakSet
	if empty.PageCount() != 1 || !empty.Equal(NewBreakSet(nil)) {
		t.Error("zero value should be the empty set")
	}
}

type mapperFunc func(pos, assoc int) (int, bool)

func (f mapperFunc) Map(pos, assoc int) (int, bool) { return f(pos, assoc) }

// insertAt mimics inserting n positions at at, with markers sticking left.
func insertAt(at, n int) Mapper {
	return mapperFunc(func(pos, assoc int) (int, bool) {
		if pos > at || (pos == at && assoc > 0) {
			return pos + n, false
		}
		return pos, false
	})
}

func TestBreakSet_Map(t *testing.T) {
	s := NewBreakSet([]int{10, 20})
	if got := s.Map(insertAt(15, 5)).Positions(); !equalInts(got, []int{10, 25}) {
		t.Errorf("insert between = %v", got)
	}
	if got := s.Map(insertAt(10, 5)).Positions(); !equalInts(got, []int{10, 25}) {
		t.Errorf("insert at marker = %v", got)
	}
	drop := mapperFunc(func(pos, assoc int) (int, bool) { return pos, pos == 20 })
	if got := s.Map(drop).Positions(); !equalInts(got, []int{10}) {
		t.Errorf("deleted marker kept: %v", got)
	}
}

func TestReconciler_Idempotent(t *testing.T) {
	r := NewReconciler()
	var seen []int
	cancel := r.Subscribe(ObserverFunc(func(s BreakSet) { seen = append(seen, s.PageCount()) }))

	cands := Calculate(DefaultGeometry(), newSlotLayout(2200), nil)
	set, changed := r.Reconcile(cands)
	if !changed || set.Len() != 2 {
		t.Fatalf("first reconcile = %v, %v", set.Positions(), changed)
	}
	if _, ok := r.Pending(); !ok {
		t.Fatal("expected a pending set")
	}
	if r.PageCount() != 1 {
		t.Error("pending set must not be displayed before commit")
	}

	if !r.Replace(set) {
		t.Fatal("replace reported no change")
	}
	if _, ok := r.Pending(); ok {
		t.Error("commit should clear the pending set")
	}
	if _, changed := r.Reconcile(cands); changed {
		t.Error("second reconcile with identical candidates reported a change")
	}
	if r.Replace(set) {
		t.Error("replacing with an equal set reported a change")
	}
	if len(seen) != 1 || seen[0] != 3 {
		t.Errorf("observer saw %v, want [3]", seen)
	}

	cancel()
	r.Replace(BreakSet{})
	if len(seen) != 1 {
		t.Error("cancelled observer was notified")
	}
}

func TestReconciler_MapNotifies(t *testing.T) {
	r := NewReconciler()
	r.Replace(NewBreakSet([]int{10, 20}))
	r.Reconcile([]Candidate{{Pos: 30}})

	var got BreakSet
	r.Subscribe(ObserverFunc(func(s BreakSet) { got = s }))
	r.Map(insertAt(5, 2))
	if !equalInts(got.Positions(), []int{12, 22}) {
		t.Errorf("observer saw %v", got.Positions())
	}
	if p, _ := r.Pending(); !equalInts(p.Positions(), []int{32}) {
		t.Errorf("pending not remapped: %v", p.Positions())
	}

	got = BreakSet{}
	r.Map(insertAt(100, 2))
	if got.Len() != 0 {
		t.Error("unchanged mapping should not notify")
	}
}
