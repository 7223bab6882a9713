package schedule

import (
	"sort"
	"time"

	"github.com/camdenleague/sked/internal/problem"
)

// Reason categorizes why a matchup could not be placed.
type Reason string

const (
	// ReasonNoCompatibleSlot means the matchup's candidate domain was
	// empty from the start: every legal slot is excluded for at least
	// one of its teams.
	ReasonNoCompatibleSlot Reason = "NO_COMPATIBLE_SLOT"

	// ReasonBudgetExceeded means the search budget ran out before the
	// matchup could be committed.
	ReasonBudgetExceeded Reason = "BUDGET_EXCEEDED"
)

// ScheduledGame is a matchup bound to exactly one slot. Umpires is
// filled by AssignUmpires and empty until then.
type ScheduledGame struct {
	Matchup problem.Matchup
	Slot    Slot
	Umpires []string
}

// UnresolvedMatchup is a matchup the solver could not place.
type UnresolvedMatchup struct {
	Matchup problem.Matchup
	Reason  Reason
}

// Shortfall records a game that received fewer umpires than required.
type Shortfall struct {
	MatchupID string
	Slot      Slot
	Required  int
	Assigned  int
}

// Result is the outcome of a scheduling run. Committed games always
// satisfy every hard constraint, even when the run stopped early; the
// unresolved list is never silently dropped.
type Result struct {
	Games          []ScheduledGame
	Unresolved     []UnresolvedMatchup
	Shortfalls     []Shortfall
	Steps          int
	Backtracks     int
	BudgetExceeded bool
}

// TeamGames counts committed games per team.
func (r *Result) TeamGames() map[string]int {
	counts := make(map[string]int)
	for _, g := range r.Games {
		for _, team := range g.Matchup.Teams() {
			counts[team]++
		}
	}
	return counts
}

// TeamMetrics holds per-team schedule statistics for reporting.
type TeamMetrics struct {
	Games   int
	Weekend int
}

// Metrics builds per-team statistics over the committed games.
func (r *Result) Metrics(m *problem.Model) map[string]*TeamMetrics {
	metrics := make(map[string]*TeamMetrics)
	for _, t := range m.Teams {
		metrics[t.ID] = &TeamMetrics{}
	}
	for _, g := range r.Games {
		weekend := g.Slot.Start.Weekday() == time.Saturday || g.Slot.Start.Weekday() == time.Sunday
		for _, team := range g.Matchup.Teams() {
			tm := metrics[team]
			if tm == nil {
				tm = &TeamMetrics{}
				metrics[team] = tm
			}
			tm.Games++
			if weekend {
				tm.Weekend++
			}
		}
	}
	return metrics
}

// SortGames orders games chronologically, then by field id, then by
// matchup id for full determinism.
func SortGames(games []ScheduledGame) {
	sort.Slice(games, func(i, j int) bool {
		if !games[i].Slot.Start.Equal(games[j].Slot.Start) {
			return games[i].Slot.Start.Before(games[j].Slot.Start)
		}
		if games[i].Slot.FieldID != games[j].Slot.FieldID {
			return games[i].Slot.FieldID < games[j].Slot.FieldID
		}
		return games[i].Matchup.ID < games[j].Matchup.ID
	})
}
