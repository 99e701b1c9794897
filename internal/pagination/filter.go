package pagination

// DefaultStaleSlack is the empirically tuned drift, in pixels, above which a
// displayed marker is considered stale.
const DefaultStaleSlack = 48

// FilterStale drops candidates that land on a displayed marker whose rendered
// offset sits more than slack above the offset the candidate was computed for.
// The dropped break is recomputed by the next pass, after the view reflows
// around the updated marker set.
func FilterStale(cands []Candidate, displayed BreakSet, l Layout, slack float64) []Candidate {
	if displayed.Len() == 0 {
		return cands
	}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if displayed.Contains(c.Pos) {
			if actual, ok := l.MarkerOffset(c.Pos); ok && c.Offset-actual > slack {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
