// Package engine implements the assignment core: distance lookup,
// feasibility filtering, temporal-overlap detection, and the exact and
// greedy solvers. It performs no I/O; every Solve call is independent of
// every other and the input is never mutated.
package engine

import (
	"time"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
)

// Solve resolves one officiating-assignment request. It is the single
// invocation boundary of the core: matches, persons and distances are
// read-only inputs, and the returned response is fully materialized.
func Solve(req domain.SolveRequest) domain.SolveResponse {
	start := time.Now()

	params := req.Parameters
	if params.MaxMatchesPerPerson <= 0 {
		params.MaxMatchesPerPerson = domain.DefaultParameters().MaxMatchesPerPerson
	}
	if params.MaxTimeSeconds <= 0 {
		params.MaxTimeSeconds = domain.DefaultParameters().MaxTimeSeconds
	}

	dist := newDistanceLookup(toDistanceInputs(req.Distances))
	overlap := buildOverlapSet(req.Matches)

	var resp domain.SolveResponse
	switch params.SolverType {
	case domain.SolverGreedy:
		resp = solveGreedy(req.Matches, req.Persons, dist, overlap, params)
	default:
		resp = solveExact(req.Matches, req.Persons, dist, overlap, params)
	}

	resp.Metrics.ResolutionTimeMS = time.Since(start).Milliseconds()
	return resp
}

func toDistanceInputs(ds []domain.Distance) []distanceInput {
	out := make([]distanceInput, len(ds))
	for i, d := range ds {
		out[i] = distanceInput{OriginID: d.OriginID, DestID: d.DestID, KM: d.KM}
	}
	return out
}

// nonRejected filters a match's designations down to the ones that still
// count: status=rejected is always ignored, both for filtering and for
// seeding.
func nonRejected(designations []domain.Designation) []domain.Designation {
	out := make([]domain.Designation, 0, len(designations))
	for _, d := range designations {
		if d.Status == domain.DesignationRejected {
			continue
		}
		out = append(out, d)
	}
	return out
}

// totalSlots counts every required (match, role) slot across the batch.
func totalSlots(matches []domain.Match) int {
	total := 0
	for _, m := range matches {
		total += m.RefereesNeeded + m.ScorersNeeded
	}
	return total
}

// personByID indexes persons for O(1) lookup by ID.
func personByID(persons []domain.Person) map[string]domain.Person {
	out := make(map[string]domain.Person, len(persons))
	for _, p := range persons {
		out[p.ID] = p
	}
	return out
}

// roundedCoverage computes the coverage percentage: 100 when there are
// zero required slots, otherwise covered/total*100 rounded to one
// decimal.
func roundedCoverage(covered, total int) float64 {
	if total == 0 {
		return 100.0
	}
	return roundN(float64(covered)/float64(total)*100, 1)
}

func roundN(v float64, decimals int) float64 {
	scale := 1.0
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}

// assembleResponse computes the shared metrics (total cost, coverage,
// slot counts) from a finished assignment/unassigned pair and derives
// the greedy-solver status: optimal when nothing is left unassigned,
// partial when at least one new assignment was made but some slot
// remains, no_solution when nothing new was placed and some slot
// remains. The exact solver computes its own status mapping (it has a
// "feasible" state greedy never produces) and calls buildMetrics
// directly instead.
func assembleResponse(matches []domain.Match, assignments []domain.ProposedAssignment, unassigned []domain.UnassignedSlot, solverTag string) domain.SolveResponse {
	status := domain.StatusOptimal
	if len(unassigned) > 0 {
		if hasNewAssignment(assignments) {
			status = domain.StatusPartial
		} else {
			status = domain.StatusNoSolution
		}
	}
	return domain.SolveResponse{
		Status:      status,
		Assignments: assignments,
		Unassigned:  unassigned,
		Metrics:     buildMetrics(matches, assignments, unassigned, solverTag),
	}
}

func buildMetrics(matches []domain.Match, assignments []domain.ProposedAssignment, unassigned []domain.UnassignedSlot, solverTag string) domain.SolverMetrics {
	total := totalSlots(matches)
	covered := total - len(unassigned)
	return domain.SolverMetrics{
		TotalCost:    round2(sumNewCost(assignments)),
		Coverage:     roundedCoverage(covered, total),
		CoveredSlots: covered,
		TotalSlots:   total,
		SolverType:   solverTag,
	}
}

// bookedSlot is one occupied (date, hour) pair for a person, used to
// detect temporal conflicts incrementally as a solver places candidates.
type bookedSlot struct {
	date string
	hour int
}

// seedExisting applies the "fix existing" rule shared by both solvers: a
// non-rejected designation is pinned into the response only if its
// (person, match, role) triple still passes the same feasibility
// predicate every new assignment is held to. Pairs that fail are
// silently dropped — their slot stays open rather than becoming a hard
// infeasibility. It returns the seeded assignments alongside the
// per-person load/booked state and the per-(match, role) survived count
// a caller needs to compute remaining demand.
func seedExisting(matches []domain.Match, persons []domain.Person, dist *distanceLookup, forceExisting bool) (
	assignments []domain.ProposedAssignment,
	load map[string]int,
	booked map[string][]bookedSlot,
	assignedInMatch map[string]map[string]bool,
	survived map[string]map[domain.Role]int,
) {
	load = make(map[string]int, len(persons))
	booked = make(map[string][]bookedSlot, len(persons))
	assignedInMatch = make(map[string]map[string]bool, len(matches))
	survived = make(map[string]map[domain.Role]int, len(matches))
	if !forceExisting {
		return
	}

	byID := personByID(persons)
	for _, m := range matches {
		for _, d := range nonRejected(m.Designations) {
			p, ok := byID[d.PersonID]
			if !ok {
				continue
			}
			c := feasible(p, m, d.Role, 1, dist)
			if !c.eligible {
				continue
			}
			assignments = append(assignments, domain.ProposedAssignment{
				MatchID: m.ID, PersonID: p.ID, PersonName: p.Name, Role: d.Role,
				TravelCost: c.cost, DistanceKM: c.km, IsNew: false,
			})
			load[p.ID]++
			booked[p.ID] = append(booked[p.ID], bookedSlot{date: m.Date, hour: parseHour(m.Time)})
			if assignedInMatch[m.ID] == nil {
				assignedInMatch[m.ID] = make(map[string]bool)
			}
			assignedInMatch[m.ID][p.ID] = true
			if survived[m.ID] == nil {
				survived[m.ID] = make(map[domain.Role]int)
			}
			survived[m.ID][d.Role]++
		}
	}
	return
}

func hasNewAssignment(assignments []domain.ProposedAssignment) bool {
	for _, a := range assignments {
		if a.IsNew {
			return true
		}
	}
	return false
}

func sumNewCost(assignments []domain.ProposedAssignment) float64 {
	sum := 0.0
	for _, a := range assignments {
		if a.IsNew {
			sum += a.TravelCost
		}
	}
	return sum
}
