package domain

// Status summarizes how completely a solve filled its required slots.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusPartial    Status = "partial"
	StatusNoSolution Status = "no_solution"
)

// ProposedAssignment is one (match, person, role) pairing the engine
// proposes. IsNew is false iff the pair came from an accepted
// pre-existing designation rather than a new choice by the solver.
type ProposedAssignment struct {
	MatchID    string  `json:"match_id"`
	PersonID   string  `json:"person_id"`
	PersonName string  `json:"person_name"`
	Role       Role    `json:"role"`
	TravelCost float64 `json:"travel_cost"`
	DistanceKM float64 `json:"distance_km"`
	IsNew      bool    `json:"is_new"`
}

// UnassignedSlot is one required (match, role) position the engine could
// not fill.
type UnassignedSlot struct {
	MatchID    string `json:"match_id"`
	MatchLabel string `json:"match_label"`
	Role       Role   `json:"role"`
	SlotIndex  int    `json:"slot_index"`
	Reason     string `json:"reason"`
}

// SolverMetrics summarizes the outcome of one solve.
type SolverMetrics struct {
	TotalCost         float64 `json:"total_cost"`
	Coverage          float64 `json:"coverage"`
	CoveredSlots      int     `json:"covered_slots"`
	TotalSlots        int     `json:"total_slots"`
	ResolutionTimeMS  int64   `json:"resolution_time_ms"`
	SolverType        string  `json:"solver_type"`
}

// SolveResponse is the fully-materialized result of one solve.
type SolveResponse struct {
	Status      Status               `json:"status"`
	Assignments []ProposedAssignment `json:"assignments"`
	Metrics     SolverMetrics        `json:"metrics"`
	Unassigned  []UnassignedSlot     `json:"unassigned"`
}
