package document

// StepMap records how a single step moved positions: OldSize positions at
// Start were replaced by NewSize positions.
type StepMap struct {
	Start   int
	OldSize int
	NewSize int
}

// Map translates pos through the step. assoc decides which side a position
// sticks to when content is inserted exactly at it: negative keeps it before
// the insertion, positive moves it after. deleted is true when pos was strictly
// inside the replaced range.
func (m StepMap) Map(pos, assoc int) (mapped int, deleted bool) {
	end := m.Start + m.OldSize
	if pos < m.Start {
		return pos, false
	}
	if pos > end {
		return pos + m.NewSize - m.OldSize, false
	}

	side := assoc
	if m.OldSize > 0 {
		switch pos {
		case m.Start:
			side = -1
		case end:
			side = 1
		}
	}
	deleted = pos > m.Start && pos < end
	if side < 0 {
		return m.Start, deleted
	}
	return m.Start + m.NewSize, deleted
}

// Mapping is an ordered list of step maps.
type Mapping []StepMap

// Map translates pos through every step in order. deleted is true if any step
// deleted the position.
func (m Mapping) Map(pos, assoc int) (int, bool) {
	deleted := false
	for _, sm := range m {
		var del bool
		pos, del = sm.Map(pos, assoc)
		deleted = deleted || del
	}
	return pos, deleted
}
