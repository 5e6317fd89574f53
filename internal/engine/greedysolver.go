package engine

import (
	"sort"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
)

// solveGreedy implements the greedy fallback heuristic: seed existing
// designations, sort matches by urgency and category, then fill each
// unfilled slot with the best remaining candidate under the shared
// feasibility predicate.
func solveGreedy(matches []domain.Match, persons []domain.Person, dist *distanceLookup, _ *overlapSet, params domain.SolverParameters) domain.SolveResponse {
	assignments, load, booked, assignedInMatch, survived := seedExisting(matches, persons, dist, params.ForceExisting)

	sorted := make([]domain.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		iCount := len(nonRejected(sorted[i].Designations))
		jCount := len(nonRejected(sorted[j].Designations))
		if iCount != jCount {
			return iCount < jCount
		}
		return rankOf(sorted[i].Competition.MinRefCategory) > rankOf(sorted[j].Competition.MinRefCategory)
	})

	var unassigned []domain.UnassignedSlot

	for _, m := range sorted {
		roles := []struct {
			role  domain.Role
			total int
		}{
			{domain.RoleReferee, m.RefereesNeeded},
			{domain.RoleScorer, m.ScorersNeeded},
		}
		for _, rr := range roles {
			// existingCount only reflects designations that actually
			// survived feasibility filtering and got seeded above — a
			// pinned designation that failed feasible() leaves its slot
			// open, it does not shrink demand.
			existingCount := survived[m.ID][rr.role]
			needed := rr.total
			if params.ForceExisting {
				needed -= existingCount
			}
			for slotIdx := 0; slotIdx < needed; slotIdx++ {
				p, cost, km, ok := findBestCandidate(m, rr.role, persons, load, booked, assignedInMatch, dist, params)
				if ok {
					assignments = append(assignments, domain.ProposedAssignment{
						MatchID: m.ID, PersonID: p.ID, PersonName: p.Name, Role: rr.role,
						TravelCost: cost, DistanceKM: km, IsNew: true,
					})
					load[p.ID]++
					booked[p.ID] = append(booked[p.ID], bookedSlot{date: m.Date, hour: parseHour(m.Time)})
					markAssigned(assignedInMatch, m.ID, p.ID)
					continue
				}
				actualIdx := slotIdx
				if params.ForceExisting {
					actualIdx = existingCount + slotIdx
				}
				unassigned = append(unassigned, domain.UnassignedSlot{
					MatchID: m.ID, MatchLabel: m.Label(), Role: rr.role,
					SlotIndex: actualIdx, Reason: "no valid candidates",
				})
			}
		}
	}

	return assembleResponse(matches, assignments, unassigned, "greedy")
}

// findBestCandidate enumerates all persons and keeps those passing the
// shared feasibility predicate plus two extra greedy-only predicates:
// not already assigned to this match, and current load below the cap.
// Overlap is enforced against the in-progress booked-time set rather
// than the precomputed pairwise overlap set. Ties are broken by
// enumeration order.
func findBestCandidate(
	m domain.Match,
	role domain.Role,
	persons []domain.Person,
	load map[string]int,
	booked map[string][]bookedSlot,
	assignedInMatch map[string]map[string]bool,
	dist *distanceLookup,
	params domain.SolverParameters,
) (domain.Person, float64, float64, bool) {
	maxLoadSoFar := 1
	for _, l := range load {
		if l > maxLoadSoFar {
			maxLoadSoFar = l
		}
	}

	matchHour := parseHour(m.Time)

	var best domain.Person
	var bestCost, bestKM, bestScore float64
	found := false

	for _, p := range persons {
		if p.Role != role {
			continue
		}
		if assignedInMatch[m.ID][p.ID] {
			continue
		}
		if load[p.ID] >= params.MaxMatchesPerPerson {
			continue
		}
		if bookedOverlaps(booked[p.ID], m.Date, matchHour) {
			continue
		}

		c := feasible(p, m, role, 1, dist)
		if !c.eligible {
			continue
		}

		normCost := c.cost / 10
		normLoad := float64(load[p.ID]) / float64(maxLoadSoFar)
		score := params.CostWeight*normCost + params.BalanceWeight*normLoad

		if !found || score < bestScore {
			best, bestCost, bestKM, bestScore = p, c.cost, c.km, score
			found = true
		}
	}

	return best, bestCost, bestKM, found
}

func bookedOverlaps(slots []bookedSlot, date string, hour int) bool {
	for _, s := range slots {
		if s.date != date {
			continue
		}
		diff := s.hour - hour
		if diff < 0 {
			diff = -diff
		}
		if diff < 2 {
			return true
		}
	}
	return false
}

func markAssigned(assignedInMatch map[string]map[string]bool, matchID, personID string) {
	if assignedInMatch[matchID] == nil {
		assignedInMatch[matchID] = make(map[string]bool)
	}
	assignedInMatch[matchID][personID] = true
}

