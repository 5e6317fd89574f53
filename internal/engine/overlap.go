package engine

import "github.com/oscarsr96/fbm-optimizer/internal/domain"

// matchPair is an unordered pair of match indices.
type matchPair struct {
	i, j int
}

// overlapSet is the precomputed set of match-index pairs that may not
// share a person because of temporal conflict. Overlap is pairwise —
// there is no transitive closure.
type overlapSet struct {
	pairs map[matchPair]bool
}

// buildOverlapSet computes, for every pair of matches, whether they
// share a date and have hours within 2 of each other (hours truncated to
// integers; minutes are ignored, matching feasibility's own treatment of
// time-of-day).
func buildOverlapSet(matches []domain.Match) *overlapSet {
	hours := make([]int, len(matches))
	for i, m := range matches {
		hours[i] = parseHour(m.Time)
	}

	s := &overlapSet{pairs: make(map[matchPair]bool)}
	for i := range matches {
		for j := i + 1; j < len(matches); j++ {
			if matches[i].Date != matches[j].Date {
				continue
			}
			diff := hours[i] - hours[j]
			if diff < 0 {
				diff = -diff
			}
			if diff < 2 {
				s.pairs[matchPair{i, j}] = true
			}
		}
	}
	return s
}

// conflicts reports whether matches at index i and j overlap.
func (s *overlapSet) conflicts(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	return s.pairs[matchPair{i, j}]
}

// parseHour extracts the integer hour from an "HH:MM" string. An
// unparseable time is treated as hour 0 — it can only ever falsely
// collide with another match on the same date placed before 02:00, which real
// schedules don't produce; this keeps overlap detection total instead
// of propagating a parse error into a component with no error return.
func parseHour(hhmm string) int {
	if len(hhmm) < 2 {
		return 0
	}
	h := 0
	for i := 0; i < 2 && i < len(hhmm) && hhmm[i] >= '0' && hhmm[i] <= '9'; i++ {
		h = h*10 + int(hhmm[i]-'0')
	}
	return h
}
