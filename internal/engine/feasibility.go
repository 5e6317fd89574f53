package engine

import (
	"strings"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
)

const noCarPenaltyThresholdKM = 15.0

// candidate is the outcome of feasibility-filtering one (person, match)
// pair for a specific role: whether the pair is eligible, and — only
// when eligible — the travel cost (with the no-car penalty already
// applied) and raw kilometers.
type candidate struct {
	eligible bool
	cost     float64
	km       float64
}

// feasible decides whether person p may take role r in match m, and
// precomputes the travel cost/km for the pair. remaining is how many
// slots of role r are still unfilled in m (0 means no demand for that
// role at all).
func feasible(p domain.Person, m domain.Match, r domain.Role, remaining int, dist *distanceLookup) candidate {
	if !p.Active {
		return candidate{}
	}
	if p.Role != r {
		return candidate{}
	}
	if remaining <= 0 {
		return candidate{}
	}
	if r == domain.RoleReferee && m.Competition.MinRefCategory != "" {
		if rankOf(p.Category) < rankOf(m.Competition.MinRefCategory) {
			return candidate{}
		}
	}
	if matchDate, matchHour, ok := matchDateTime(m.Date, m.Time); ok {
		if !isAvailable(p, matchDate, matchHour) {
			return candidate{}
		}
	}
	if isIncompatible(p, m) {
		return candidate{}
	}

	cost, km := dist.costAndKM(p.MunicipalityID, m.Venue.MunicipalityID)
	if !p.HasCar && km > noCarPenaltyThresholdKM {
		cost *= 2
	}
	return candidate{eligible: true, cost: round2(cost), km: km}
}

// isIncompatible reports whether any of p's incompatibility entries is a
// case-insensitive substring of either team name in m.
func isIncompatible(p domain.Person, m domain.Match) bool {
	home := strings.ToLower(m.HomeTeam)
	away := strings.ToLower(m.AwayTeam)
	for _, inc := range p.Incompatibilities {
		needle := strings.ToLower(inc.TeamName)
		if needle == "" {
			continue
		}
		if strings.Contains(home, needle) || strings.Contains(away, needle) {
			return true
		}
	}
	return false
}

// remainingForRole returns how many slots of role r are still required
// by m, given the count of already-accepted designations for that role
// when existing designations are being force-seeded.
func remainingForRole(m domain.Match, r domain.Role, alreadySeeded int) int {
	total := m.RefereesNeeded
	if r == domain.RoleScorer {
		total = m.ScorersNeeded
	}
	return total - alreadySeeded
}
