// Package testutil builds realistic domain fixtures for engine tests,
// using go-faker for the fields whose exact value doesn't matter to the
// scenario under test.
package testutil

import (
	"fmt"

	"github.com/go-faker/faker/v4"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
)

// NewMatch builds a match with two referee slots and one scorer slot in
// a mid-size municipality competition, with optional customization.
func NewMatch(id string, opts ...func(*domain.Match)) domain.Match {
	m := domain.Match{
		ID:       id,
		Date:     "2026-08-10",
		Time:     "18:00",
		HomeTeam: faker.Word() + " HC",
		AwayTeam: faker.Word() + " BC",
		Venue: domain.Venue{
			ID:             "venue-" + id,
			MunicipalityID: "muni-a",
		},
		Competition: domain.Competition{
			ID:             "comp-" + id,
			MinRefCategory: "autonomico",
			RefereesNeeded: 2,
			ScorersNeeded:  1,
		},
		RefereesNeeded: 2,
		ScorersNeeded:  1,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// NewPerson builds an active referee with a car and no restrictions, in
// the same municipality NewMatch defaults to, with optional
// customization.
func NewPerson(id string, opts ...func(*domain.Person)) domain.Person {
	p := domain.Person{
		ID:             id,
		Name:           faker.Name(),
		Role:           domain.RoleReferee,
		Category:       "autonomico",
		MunicipalityID: "muni-a",
		Active:         true,
		HasCar:         true,
	}

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

// WithAvailability adds a recurring weekly availability window.
func WithAvailability(dayOfWeek, startHour, endHour int) func(*domain.Person) {
	return func(p *domain.Person) {
		p.Availabilities = append(p.Availabilities, domain.Availability{
			DayOfWeek: dayOfWeek,
			StartHour: startHour,
			EndHour:   endHour,
		})
	}
}

// WithIncompatibility adds a team-name substring the person cannot
// officiate matches for.
func WithIncompatibility(teamName string) func(*domain.Person) {
	return func(p *domain.Person) {
		p.Incompatibilities = append(p.Incompatibilities, domain.Incompatibility{TeamName: teamName})
	}
}

// WithDesignation attaches a pre-existing designation to a match.
func WithDesignation(personID string, role domain.Role, status domain.DesignationStatus) func(*domain.Match) {
	return func(m *domain.Match) {
		m.Designations = append(m.Designations, domain.Designation{
			MatchID: m.ID, PersonID: personID, Role: role, Status: status,
		})
	}
}

// NewDistance builds a symmetric distance entry between two
// municipalities.
func NewDistance(originID, destID string, km float64) domain.Distance {
	return domain.Distance{OriginID: originID, DestID: destID, KM: km}
}

// RosterScenario is a generated batch of matches and persons sized for
// performance testing, with enough persons to plausibly cover demand
// and a round-robin municipality assignment so travel cost varies.
type RosterScenario struct {
	Matches []domain.Match
	Persons []domain.Person
}

// NewRosterScenario builds numMatches matches (2 referees + 1 scorer
// each) spread across a small municipality ring, and enough persons at
// various categories/municipalities to make the instance solvable but
// non-trivial. Used for the engine's larger-scale scenarios (tens to
// hundreds of matches) where correctness of pruning and termination
// under a time budget matters as much as correctness of the result.
func NewRosterScenario(numMatches, numPersons int) RosterScenario {
	munis := []string{"muni-a", "muni-b", "muni-c", "muni-d"}
	categories := []string{"provincial", "autonomico", "nacional"}

	matches := make([]domain.Match, 0, numMatches)
	for i := 0; i < numMatches; i++ {
		muni := munis[i%len(munis)]
		m := NewMatch(fmt.Sprintf("match-%04d", i), func(m *domain.Match) {
			m.Venue.MunicipalityID = muni
			m.Date = fmt.Sprintf("2026-08-%02d", 3+(i%25))
			m.Time = fmt.Sprintf("%02d:00", 9+(i%10))
			m.Competition.MinRefCategory = categories[i%len(categories)]
		})
		matches = append(matches, m)
	}

	persons := make([]domain.Person, 0, numPersons)
	for i := 0; i < numPersons; i++ {
		muni := munis[i%len(munis)]
		category := categories[i%len(categories)]
		role := domain.RoleReferee
		if i%3 == 0 {
			role = domain.RoleScorer
		}
		p := NewPerson(fmt.Sprintf("person-%04d", i), func(p *domain.Person) {
			p.MunicipalityID = muni
			p.Category = category
			p.Role = role
			p.HasCar = i%5 != 0
			for d := 1; d <= 7; d++ {
				p.Availabilities = append(p.Availabilities, domain.Availability{
					DayOfWeek: d, StartHour: 8, EndHour: 22,
				})
			}
		})
		persons = append(persons, p)
	}

	return RosterScenario{Matches: matches, Persons: persons}
}

// NewDistanceRing builds an all-pairs distance table for a small ring
// of municipalities, so every pair has a defined, asymmetric-input but
// symmetric-effective distance.
func NewDistanceRing() []domain.Distance {
	munis := []string{"muni-a", "muni-b", "muni-c", "muni-d"}
	var out []domain.Distance
	for i, a := range munis {
		for j, b := range munis {
			if j <= i {
				continue
			}
			km := float64(10 * (j - i))
			out = append(out, NewDistance(a, b, km))
		}
	}
	return out
}
