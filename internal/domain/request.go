package domain

// SolverType selects which backend resolves the assignment problem.
type SolverType string

const (
	SolverCPSAT  SolverType = "cpsat"
	SolverGreedy SolverType = "greedy"
)

// SolverParameters tunes both solver backends. Zero-value parameters are
// not valid on their own; callers should start from DefaultParameters and
// override individual fields.
type SolverParameters struct {
	CostWeight          float64    `json:"cost_weight"`
	BalanceWeight       float64    `json:"balance_weight"`
	MaxMatchesPerPerson int        `json:"max_matches_per_person"`
	ForceExisting       bool       `json:"force_existing"`
	MaxTimeSeconds      int        `json:"max_time_seconds"`
	SolverType          SolverType `json:"solver_type"`
}

// DefaultParameters returns the engine's recommended default parameters.
func DefaultParameters() SolverParameters {
	return SolverParameters{
		CostWeight:          0.7,
		BalanceWeight:       0.3,
		MaxMatchesPerPerson: 3,
		ForceExisting:       true,
		MaxTimeSeconds:      10,
		SolverType:          SolverCPSAT,
	}
}

// SolveRequest is the single invocation boundary of the engine.
type SolveRequest struct {
	Matches    []Match          `json:"matches"`
	Persons    []Person         `json:"persons"`
	Distances  []Distance       `json:"distances"`
	Parameters SolverParameters `json:"parameters"`
}
