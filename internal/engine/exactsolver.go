package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/flow"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
)

// costPenaltyC is the dominant constant from the lexicographic objective:
// scaled large enough that leaving one more slot uncovered always
// outweighs every reachable cost/balance combination, so minimizing the
// blended score maximizes coverage first and only then improves cost and
// workload balance.
const costPenaltyC = 1_000_000.0

// nodeBudget bounds branch-and-bound exploration independently of the
// wall-clock deadline, so a pathological instance with a large candidate
// set can't stall a request that still has time left on the clock.
const nodeBudget = 50_000

// slotKey identifies one (match, role) demand bucket.
type slotKey struct {
	matchIdx int
	role     domain.Role
}

// exactCandidate is one branchable (match, role, person) decision
// variable surviving feasibility filtering.
type exactCandidate struct {
	matchIdx  int
	slot      slotKey
	personID  string
	cost      float64
	km        float64
}

// exactState carries the mutable branch-and-bound search state: the
// running assignment being built, the incumbent best found so far, and
// the resource counters that decide whether the final result can be
// reported as proven-optimal.
type exactState struct {
	deadline time.Time
	nodes    int

	matches     []domain.Match
	persons     []domain.Person
	need        map[slotKey]int
	totalDemand int
	maxPer      int

	load            map[string]int
	booked          map[string][]bookedSlot
	assignedInMatch map[string]map[string]bool
	filled          map[slotKey]int
	chosen          []exactCandidate

	resourceLimited bool

	bestScore   float64
	bestCovered int
	bestChosen  []exactCandidate
}

// solveExact implements the CP-SAT-style exact backend: there is no
// Go binding for a MILP/CP-SAT solver anywhere in the available
// ecosystem, so the model is solved with a native branch-and-bound,
// pruned by a max-flow coverage bound computed with lvlath's Dinic
// implementation over a bipartite person/slot capacity network. The
// search is time-boxed by params.MaxTimeSeconds and by nodeBudget,
// whichever is reached first.
func solveExact(matches []domain.Match, persons []domain.Person, dist *distanceLookup, _ *overlapSet, params domain.SolverParameters) domain.SolveResponse {
	seeded, load, booked, assignedInMatch, survived := seedExisting(matches, persons, dist, params.ForceExisting)

	need := make(map[slotKey]int)
	for mi, m := range matches {
		if r := remainingForRole(m, domain.RoleReferee, survived[m.ID][domain.RoleReferee]); r > 0 {
			need[slotKey{mi, domain.RoleReferee}] = r
		}
		if r := remainingForRole(m, domain.RoleScorer, survived[m.ID][domain.RoleScorer]); r > 0 {
			need[slotKey{mi, domain.RoleScorer}] = r
		}
	}
	totalDemand := 0
	for _, n := range need {
		totalDemand += n
	}

	if totalDemand == 0 {
		unassigned := buildExactUnassigned(matches, need, survived, nil)
		return domain.SolveResponse{
			Status:      domain.StatusOptimal,
			Assignments: seeded,
			Unassigned:  unassigned,
			Metrics:     buildMetrics(matches, seeded, unassigned, "cpsat"),
		}
	}

	candidates := buildExactCandidates(matches, persons, need, dist)
	sort.SliceStable(candidates, func(i, j int) bool {
		ni, nj := need[candidates[i].slot], need[candidates[j].slot]
		if ni != nj {
			return ni < nj
		}
		return candidates[i].cost < candidates[j].cost
	})

	upperBound := coverageUpperBound(persons, candidates, need, params.MaxMatchesPerPerson, load)

	st := &exactState{
		deadline:        time.Now().Add(time.Duration(params.MaxTimeSeconds) * time.Second),
		matches:         matches,
		persons:         persons,
		need:            need,
		totalDemand:     totalDemand,
		maxPer:          params.MaxMatchesPerPerson,
		load:            load,
		booked:          booked,
		assignedInMatch: assignedInMatch,
		filled:          make(map[slotKey]int),
		bestScore:       math.Inf(1),
	}
	st.search(candidates, 0, 0, 0.0, upperBound, params)

	newAssignments := st.materialize()
	assignments := append(append([]domain.ProposedAssignment{}, seeded...), newAssignments...)
	unassigned := buildExactUnassigned(matches, need, survived, st.bestChosen)

	status := exactStatus(st, upperBound, len(seeded) > 0)

	return domain.SolveResponse{
		Status:      status,
		Assignments: assignments,
		Unassigned:  unassigned,
		Metrics:     buildMetrics(matches, assignments, unassigned, "cpsat"),
	}
}

// search explores candidates in slot-urgency/cost order, branching on
// whether to include each one. Pruning relies on two bounds: the
// resource budget (node count and deadline) and the coverage bound
// (remaining candidates can add at most one unit of coverage each, so a
// branch that can no longer reach the incumbent's coverage is dead).
func (st *exactState) search(cands []exactCandidate, idx, covered int, cost float64, upperBound int, params domain.SolverParameters) {
	if st.resourceLimited {
		return
	}
	st.nodes++
	if st.nodes > nodeBudget || time.Now().After(st.deadline) {
		st.resourceLimited = true
		st.recordIfBetter(covered, cost, params)
		return
	}
	if covered+(len(cands)-idx) < st.bestCovered {
		return
	}
	if idx == len(cands) {
		st.recordIfBetter(covered, cost, params)
		return
	}
	if st.bestCovered >= upperBound && st.bestChosen != nil {
		return
	}

	c := cands[idx]
	m := st.matches[c.matchIdx]
	hour := parseHour(m.Time)

	if st.filled[c.slot] < st.need[c.slot] &&
		st.load[c.personID] < st.maxPer &&
		!st.assignedInMatch[m.ID][c.personID] &&
		!bookedOverlaps(st.booked[c.personID], m.Date, hour) {

		prevBooked := st.booked[c.personID]
		st.filled[c.slot]++
		st.load[c.personID]++
		st.booked[c.personID] = append(prevBooked, bookedSlot{date: m.Date, hour: hour})
		if st.assignedInMatch[m.ID] == nil {
			st.assignedInMatch[m.ID] = make(map[string]bool)
		}
		st.assignedInMatch[m.ID][c.personID] = true
		st.chosen = append(st.chosen, c)

		st.search(cands, idx+1, covered+1, cost+c.cost, upperBound, params)

		st.chosen = st.chosen[:len(st.chosen)-1]
		delete(st.assignedInMatch[m.ID], c.personID)
		st.booked[c.personID] = prevBooked
		st.load[c.personID]--
		st.filled[c.slot]--
	}

	if st.resourceLimited {
		return
	}

	st.search(cands, idx+1, covered, cost, upperBound, params)
}

// recordIfBetter updates the incumbent when the current partial or
// complete assignment scores lower (better) than the best found so far.
// uncoveredSlots dominates via costPenaltyC; cost and load-balance only
// break ties between equally-covering solutions.
func (st *exactState) recordIfBetter(covered int, cost float64, params domain.SolverParameters) {
	uncovered := st.totalDemand - covered
	balance := st.loadSpread()
	score := float64(uncovered)*costPenaltyC + params.CostWeight*cost + params.BalanceWeight*balance
	if score < st.bestScore {
		st.bestScore = score
		st.bestCovered = covered
		st.bestChosen = append([]exactCandidate{}, st.chosen...)
	}
}

// loadSpread is max-min over active persons' current load, the same
// balance signal the greedy solver approximates per-candidate.
func (st *exactState) loadSpread() float64 {
	min, max := math.MaxInt32, 0
	any := false
	for _, p := range st.persons {
		if !p.Active {
			continue
		}
		l := st.load[p.ID]
		if l < min {
			min = l
		}
		if l > max {
			max = l
		}
		any = true
	}
	if !any {
		return 0
	}
	return float64(max - min)
}

func (st *exactState) materialize() []domain.ProposedAssignment {
	byID := personByID(st.persons)
	out := make([]domain.ProposedAssignment, 0, len(st.bestChosen))
	for _, c := range st.bestChosen {
		p := byID[c.personID]
		m := st.matches[c.matchIdx]
		out = append(out, domain.ProposedAssignment{
			MatchID: m.ID, PersonID: p.ID, PersonName: p.Name, Role: c.slot.role,
			TravelCost: round2(c.cost), DistanceKM: c.km, IsNew: true,
		})
	}
	return out
}

// exactStatus maps the search outcome onto the four-state status the
// exact backend exposes: no_solution when nothing at all — not even a
// seeded designation — could be placed, feasible when the node/time
// budget cut the search off before it could prove that no better
// coverage was reachable, optimal when every required slot is covered,
// and partial when the coverage is proven maximal but some demand
// remains.
func exactStatus(st *exactState, upperBound int, hasSeeded bool) domain.Status {
	proven := !st.resourceLimited || st.bestCovered >= upperBound
	switch {
	case st.bestCovered == 0 && !hasSeeded:
		return domain.StatusNoSolution
	case !proven:
		return domain.StatusFeasible
	case st.bestCovered == st.totalDemand:
		return domain.StatusOptimal
	default:
		return domain.StatusPartial
	}
}

func buildExactCandidates(matches []domain.Match, persons []domain.Person, need map[slotKey]int, dist *distanceLookup) []exactCandidate {
	var out []exactCandidate
	for key, n := range need {
		if n <= 0 {
			continue
		}
		m := matches[key.matchIdx]
		for _, p := range persons {
			c := feasible(p, m, key.role, n, dist)
			if !c.eligible {
				continue
			}
			out = append(out, exactCandidate{matchIdx: key.matchIdx, slot: key, personID: p.ID, cost: c.cost, km: c.km})
		}
	}
	return out
}

func buildExactUnassigned(matches []domain.Match, need map[slotKey]int, survived map[string]map[domain.Role]int, chosen []exactCandidate) []domain.UnassignedSlot {
	filled := make(map[slotKey]int)
	for _, c := range chosen {
		filled[c.slot]++
	}

	keys := make([]slotKey, 0, len(need))
	for key := range need {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].matchIdx != keys[j].matchIdx {
			return keys[i].matchIdx < keys[j].matchIdx
		}
		return keys[i].role < keys[j].role
	})

	var out []domain.UnassignedSlot
	for _, key := range keys {
		total := need[key]
		have := filled[key]
		m := matches[key.matchIdx]
		seededCount := survived[m.ID][key.role]
		for i := have; i < total; i++ {
			out = append(out, domain.UnassignedSlot{
				MatchID: m.ID, MatchLabel: m.Label(), Role: key.role,
				SlotIndex: seededCount + i, Reason: "no valid candidate within resolution budget",
			})
		}
	}
	return out
}

// coverageUpperBound computes the maximum number of slots that could
// possibly be covered, ignoring cost and balance, via max-flow over a
// bipartite person/slot capacity network: source -> person (capacity =
// remaining matches the person may still take) -> slot (capacity = 1 per
// candidate edge) -> sink (capacity = remaining demand). The flow value
// is an admissible bound because every real assignment is also a
// feasible flow in this relaxation (it drops the overlap and
// one-role-per-match constraints, so it can only overestimate).
func coverageUpperBound(persons []domain.Person, candidates []exactCandidate, need map[slotKey]int, maxPerPerson int, load map[string]int) int {
	if len(candidates) == 0 {
		return 0
	}

	g := core.NewGraph(core.WithDirected(true), core.WithWeighted())
	g.AddVertex("src")
	g.AddVertex("sink")

	personCap := make(map[string]int, len(persons))
	for _, p := range persons {
		personCap[p.ID] = maxPerPerson - load[p.ID]
	}

	slotNode := func(k slotKey) string { return fmt.Sprintf("slot-%d-%s", k.matchIdx, k.role) }
	personNode := func(id string) string { return "person-" + id }

	addedPerson := make(map[string]bool)
	addedSlot := make(map[slotKey]bool)

	for _, c := range candidates {
		if personCap[c.personID] <= 0 {
			continue
		}
		if !addedPerson[c.personID] {
			g.AddVertex(personNode(c.personID))
			g.AddEdge("src", personNode(c.personID), int64(personCap[c.personID]))
			addedPerson[c.personID] = true
		}
		if !addedSlot[c.slot] {
			g.AddVertex(slotNode(c.slot))
			g.AddEdge(slotNode(c.slot), "sink", int64(need[c.slot]))
			addedSlot[c.slot] = true
		}
		g.AddEdge(personNode(c.personID), slotNode(c.slot), 1)
	}

	maxFlow, _, err := flow.Dinic(g, "src", "sink", flow.FlowOptions{})
	if err != nil {
		// Fall back to the loose candidate-count bound: never a
		// correctness issue, only a weaker prune.
		return len(candidates)
	}
	return int(math.Round(maxFlow))
}
