package pagination

// Observer is notified whenever the displayed break set changes.
type Observer interface {
	BreaksChanged(set BreakSet)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(BreakSet)

func (f ObserverFunc) BreaksChanged(set BreakSet) { f(set) }

type subscription struct {
	id int
	o  Observer
}

// Reconciler owns the displayed break set. All writes go through it and
// every change is published to subscribers as a complete set.
type Reconciler struct {
	current    BreakSet
	pending    BreakSet
	hasPending bool
	subs       []subscription
	nextID     int
}

// NewReconciler creates a reconciler with an empty displayed set.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Current returns the displayed set.
func (r *Reconciler) Current() BreakSet {
	return r.current
}

// PageCount returns the page count of the displayed set.
func (r *Reconciler) PageCount() int {
	return r.current.PageCount()
}

// Pending returns the set waiting to be committed, if any.
func (r *Reconciler) Pending() (BreakSet, bool) {
	return r.pending, r.hasPending
}

// Reconcile compares candidates with the displayed set. When they are equal
// nothing is pending and false is returned, which is what stops a commit from
// triggering an endless chain of layout passes.
func (r *Reconciler) Reconcile(cands []Candidate) (BreakSet, bool) {
	positions := make([]int, len(cands))
	for i, c := range cands {
		positions[i] = c.Pos
	}
	next := NewBreakSet(positions)
	if next.Equal(r.current) {
		r.pending, r.hasPending = BreakSet{}, false
		return r.current, false
	}
	r.pending, r.hasPending = next, true
	return next, true
}

// Replace swaps in a committed set and notifies subscribers if it differs
// from the displayed one.
func (r *Reconciler) Replace(set BreakSet) bool {
	if r.hasPending && r.pending.Equal(set) {
		r.pending, r.hasPending = BreakSet{}, false
	}
	if set.Equal(r.current) {
		return false
	}
	r.current = set
	r.notify()
	return true
}

// Map remaps the displayed and pending sets through an edit.
func (r *Reconciler) Map(m Mapper) {
	if r.hasPending {
		r.pending = r.pending.Map(m)
	}
	next := r.current.Map(m)
	if next.Equal(r.current) {
		return
	}
	r.current = next
	r.notify()
}

// Subscribe registers an observer and returns a function that removes it.
func (r *Reconciler) Subscribe(o Observer) (cancel func()) {
	id := r.nextID
	r.nextID++
	r.subs = append(r.subs, subscription{id: id, o: o})
	return func() {
		for i, s := range r.subs {
			if s.id == id {
				r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Reconciler) notify() {
	set := r.current
	for _, s := range append([]subscription(nil), r.subs...) {
		s.o.BreaksChanged(set)
	}
}
