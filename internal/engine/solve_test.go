package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
	"github.com/oscarsr96/fbm-optimizer/internal/engine"
	"github.com/oscarsr96/fbm-optimizer/internal/testutil"
)

func bothSolvers(t *testing.T, name string, run func(t *testing.T, solverType domain.SolverType)) {
	t.Run(name+"/cpsat", func(t *testing.T) { run(t, domain.SolverCPSAT) })
	t.Run(name+"/greedy", func(t *testing.T) { run(t, domain.SolverGreedy) })
}

func TestSolve_TrivialFullCoverage(t *testing.T) {
	bothSolvers(t, "trivial", func(t *testing.T, solverType domain.SolverType) {
		match := testutil.NewMatch("m1")
		persons := []domain.Person{
			testutil.NewPerson("r1"),
			testutil.NewPerson("r2"),
			testutil.NewPerson("s1", func(p *domain.Person) { p.Role = domain.RoleScorer }),
		}

		resp := engine.Solve(domain.SolveRequest{
			Matches: []domain.Match{match},
			Persons: persons,
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		require.Equal(t, domain.StatusOptimal, resp.Status)
		assert.Empty(t, resp.Unassigned)
		assert.Len(t, resp.Assignments, 3)
		assert.Equal(t, 100.0, resp.Metrics.Coverage)
	})
}

func TestSolve_IncompatibleTeamExcluded(t *testing.T) {
	bothSolvers(t, "incompatible", func(t *testing.T, solverType domain.SolverType) {
		match := testutil.NewMatch("m1", func(m *domain.Match) {
			m.HomeTeam = "Ravens HC"
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
		})
		blocked := testutil.NewPerson("r1", testutil.WithIncompatibility("ravens"))
		ok := testutil.NewPerson("r2")

		resp := engine.Solve(domain.SolveRequest{
			Matches: []domain.Match{match},
			Persons: []domain.Person{blocked, ok},
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		require.Equal(t, domain.StatusOptimal, resp.Status)
		require.Len(t, resp.Assignments, 1)
		assert.Equal(t, "r2", resp.Assignments[0].PersonID)
	})
}

func TestSolve_CategoryFloorEnforced(t *testing.T) {
	bothSolvers(t, "category-floor", func(t *testing.T, solverType domain.SolverType) {
		match := testutil.NewMatch("m1", func(m *domain.Match) {
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
			m.Competition.MinRefCategory = "nacional"
		})
		tooLow := testutil.NewPerson("r1", func(p *domain.Person) { p.Category = "provincial" })
		qualified := testutil.NewPerson("r2", func(p *domain.Person) { p.Category = "feb" })

		resp := engine.Solve(domain.SolveRequest{
			Matches: []domain.Match{match},
			Persons: []domain.Person{tooLow, qualified},
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		require.Equal(t, domain.StatusOptimal, resp.Status)
		require.Len(t, resp.Assignments, 1)
		assert.Equal(t, "r2", resp.Assignments[0].PersonID)
	})
}

func TestSolve_TemporalOverlapPreventsDoubleBooking(t *testing.T) {
	bothSolvers(t, "temporal-overlap", func(t *testing.T, solverType domain.SolverType) {
		m1 := testutil.NewMatch("m1", func(m *domain.Match) {
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
			m.Date = "2026-08-10"
			m.Time = "18:00"
		})
		m2 := testutil.NewMatch("m2", func(m *domain.Match) {
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
			m.Date = "2026-08-10"
			m.Time = "19:00"
		})
		onlyOne := testutil.NewPerson("r1")

		resp := engine.Solve(domain.SolveRequest{
			Matches: []domain.Match{m1, m2},
			Persons: []domain.Person{onlyOne},
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		assert.Len(t, resp.Assignments, 1)
		assert.Len(t, resp.Unassigned, 1)
		assert.NotEqual(t, domain.StatusOptimal, resp.Status)
	})
}

func TestSolve_CapacityBoundsPerPersonLoad(t *testing.T) {
	bothSolvers(t, "capacity-bound", func(t *testing.T, solverType domain.SolverType) {
		matches := []domain.Match{
			testutil.NewMatch("m1", func(m *domain.Match) { m.RefereesNeeded = 1; m.ScorersNeeded = 0; m.Competition.ScorersNeeded = 0; m.Date = "2026-08-10" }),
			testutil.NewMatch("m2", func(m *domain.Match) { m.RefereesNeeded = 1; m.ScorersNeeded = 0; m.Competition.ScorersNeeded = 0; m.Date = "2026-08-11" }),
			testutil.NewMatch("m3", func(m *domain.Match) { m.RefereesNeeded = 1; m.ScorersNeeded = 0; m.Competition.ScorersNeeded = 0; m.Date = "2026-08-12" }),
		}
		onlyOne := testutil.NewPerson("r1")

		resp := engine.Solve(domain.SolveRequest{
			Matches: matches,
			Persons: []domain.Person{onlyOne},
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 2,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		assert.Len(t, resp.Assignments, 2)
		assert.Len(t, resp.Unassigned, 1)
	})
}

func TestSolve_NoCarPenaltyPrefersLocalPerson(t *testing.T) {
	bothSolvers(t, "no-car-penalty", func(t *testing.T, solverType domain.SolverType) {
		match := testutil.NewMatch("m1", func(m *domain.Match) {
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
			m.Venue.MunicipalityID = "muni-a"
		})
		far := testutil.NewPerson("r1", func(p *domain.Person) {
			p.MunicipalityID = "muni-d"
			p.HasCar = false
		})
		local := testutil.NewPerson("r2", func(p *domain.Person) {
			p.MunicipalityID = "muni-a"
		})

		resp := engine.Solve(domain.SolveRequest{
			Matches:   []domain.Match{match},
			Persons:   []domain.Person{far, local},
			Distances: testutil.NewDistanceRing(),
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		require.Len(t, resp.Assignments, 1)
		assert.Equal(t, "r2", resp.Assignments[0].PersonID)
	})
}

func TestSolve_NoSolutionWhenNoEligiblePersons(t *testing.T) {
	bothSolvers(t, "no-solution", func(t *testing.T, solverType domain.SolverType) {
		match := testutil.NewMatch("m1", func(m *domain.Match) {
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
		})
		inactive := testutil.NewPerson("r1", func(p *domain.Person) { p.Active = false })

		resp := engine.Solve(domain.SolveRequest{
			Matches: []domain.Match{match},
			Persons: []domain.Person{inactive},
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		assert.Equal(t, domain.StatusNoSolution, resp.Status)
		assert.Empty(t, resp.Assignments)
		assert.Len(t, resp.Unassigned, 1)
	})
}

func TestSolve_RejectedDesignationIsIgnored(t *testing.T) {
	bothSolvers(t, "rejected-designation", func(t *testing.T, solverType domain.SolverType) {
		match := testutil.NewMatch("m1", func(m *domain.Match) {
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
		}, testutil.WithDesignation("r1", domain.RoleReferee, domain.DesignationRejected))
		r1 := testutil.NewPerson("r1")
		r2 := testutil.NewPerson("r2")

		resp := engine.Solve(domain.SolveRequest{
			Matches: []domain.Match{match},
			Persons: []domain.Person{r1, r2},
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				ForceExisting: true, MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		require.Len(t, resp.Assignments, 1)
		assert.True(t, resp.Assignments[0].IsNew)
	})
}

func TestSolve_ForceExistingSeedsOnlyFeasibleDesignations(t *testing.T) {
	bothSolvers(t, "force-existing", func(t *testing.T, solverType domain.SolverType) {
		match := testutil.NewMatch("m1", func(m *domain.Match) {
			m.RefereesNeeded = 1
			m.ScorersNeeded = 0
			m.Competition.ScorersNeeded = 0
			m.Competition.MinRefCategory = "nacional"
		}, testutil.WithDesignation("r1", domain.RoleReferee, domain.DesignationAccepted))
		tooLow := testutil.NewPerson("r1", func(p *domain.Person) { p.Category = "provincial" })
		qualified := testutil.NewPerson("r2", func(p *domain.Person) { p.Category = "feb" })

		resp := engine.Solve(domain.SolveRequest{
			Matches: []domain.Match{match},
			Persons: []domain.Person{tooLow, qualified},
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				ForceExisting: true, MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		require.Len(t, resp.Assignments, 1)
		assert.Equal(t, "r2", resp.Assignments[0].PersonID)
		assert.True(t, resp.Assignments[0].IsNew)
	})
}

func TestSolve_Idempotent(t *testing.T) {
	bothSolvers(t, "idempotent", func(t *testing.T, solverType domain.SolverType) {
		scenario := testutil.NewRosterScenario(6, 10)
		req := domain.SolveRequest{
			Matches:   scenario.Matches,
			Persons:   scenario.Persons,
			Distances: testutil.NewDistanceRing(),
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		}

		first := engine.Solve(req)
		second := engine.Solve(req)

		assert.Equal(t, first.Metrics.Coverage, second.Metrics.Coverage)
		assert.Equal(t, first.Metrics.CoveredSlots, second.Metrics.CoveredSlots)
		assert.Equal(t, len(first.Assignments), len(second.Assignments))
	})
}

func TestSolve_PerformanceScaleTerminatesWithinBudget(t *testing.T) {
	bothSolvers(t, "performance-scale", func(t *testing.T, solverType domain.SolverType) {
		scenario := testutil.NewRosterScenario(50, 60)

		resp := engine.Solve(domain.SolveRequest{
			Matches:   scenario.Matches,
			Persons:   scenario.Persons,
			Distances: testutil.NewDistanceRing(),
			Parameters: domain.SolverParameters{
				CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 4,
				MaxTimeSeconds: 5, SolverType: solverType,
			},
		})

		assert.NotEqual(t, domain.Status(""), resp.Status)
		assert.Greater(t, resp.Metrics.CoveredSlots, 0)
		assert.Less(t, resp.Metrics.ResolutionTimeMS, int64(6000))
	})
}

func TestSolve_DispatchDefaultsToExactWhenUnspecified(t *testing.T) {
	match := testutil.NewMatch("m1")
	persons := []domain.Person{
		testutil.NewPerson("r1"), testutil.NewPerson("r2"),
		testutil.NewPerson("s1", func(p *domain.Person) { p.Role = domain.RoleScorer }),
	}

	resp := engine.Solve(domain.SolveRequest{
		Matches: []domain.Match{match},
		Persons: persons,
		Parameters: domain.SolverParameters{
			CostWeight: 0.7, BalanceWeight: 0.3, MaxMatchesPerPerson: 3, MaxTimeSeconds: 5,
		},
	})

	assert.Equal(t, "cpsat", resp.Metrics.SolverType)
}
