package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camdenleague/sked/internal/problem"
)

func solveSpec(t *testing.T, spec *problem.Spec, opts Options) (*problem.Model, *Result) {
	t.Helper()
	m := mustModel(t, spec)
	return m, Solve(m, SlotsByField(m), opts)
}

func TestSolveSingleMatchupTakesEarliestSlot(t *testing.T) {
	_, result := solveSpec(t, weekSpec(), Options{})

	require.Len(t, result.Games, 1)
	require.Empty(t, result.Unresolved)
	assert.False(t, result.BudgetExceeded)

	g := result.Games[0]
	assert.Equal(t, "Game 1", g.Matchup.ID)
	assert.Equal(t, "Symonds Field", g.Slot.FieldID)
	assert.True(t, g.Slot.Start.Equal(at(2026, 1, 1, 18, 0)),
		"game at %s, want Jan 1 18:00", g.Slot.Start)
}

func TestSolveSkipsExcludedFieldDate(t *testing.T) {
	spec := weekSpec()
	spec.Fields[0].ExclusionDates = []problem.ExclusionDate{
		{Date: day(2026, 1, 1), Enabled: true},
	}
	_, result := solveSpec(t, spec, Options{})

	require.Len(t, result.Games, 1)
	assert.True(t, result.Games[0].Slot.Start.Equal(at(2026, 1, 2, 18, 0)),
		"game at %s, want Jan 2 18:00", result.Games[0].Slot.Start)
}

func TestSolveTeamExclusionShrinksDomain(t *testing.T) {
	spec := weekSpec()
	spec.Teams[0].Exclusions = []problem.Window{
		{Start: day(2026, 1, 1), End: day(2026, 1, 4), Note: "away at districts", Enabled: true},
	}
	_, result := solveSpec(t, spec, Options{})

	require.Len(t, result.Games, 1)
	assert.True(t, result.Games[0].Slot.Start.Equal(at(2026, 1, 4, 18, 0)),
		"game at %s, want Jan 4 18:00", result.Games[0].Slot.Start)
}

func TestSolveEmptyDomainIsUnresolved(t *testing.T) {
	spec := weekSpec()
	spec.Teams[0].Exclusions = []problem.Window{
		{Start: day(2026, 1, 1), End: day(2026, 1, 8), Enabled: true},
	}
	_, result := solveSpec(t, spec, Options{})

	assert.Empty(t, result.Games)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, "Game 1", result.Unresolved[0].Matchup.ID)
	assert.Equal(t, ReasonNoCompatibleSlot, result.Unresolved[0].Reason)
	assert.False(t, result.BudgetExceeded)
}

// tightSpec has one field with a single 90-minute slot per day across
// Jan 1-3, and three matchups whose exclusions force a displacement:
// the greedy first pass parks the second matchup on Jan 2, which is
// the only day left for the third.
func tightSpec() *problem.Spec {
	return &problem.Spec{
		Season:  problem.SeasonWindow{Start: day(2026, 1, 1), End: day(2026, 1, 3)},
		Leagues: []string{"Majors"},
		Teams: []problem.Team{
			{ID: "Angels", League: "Majors", Exclusions: []problem.Window{
				{Start: day(2026, 1, 3), End: day(2026, 1, 4), Enabled: true},
			}},
			{ID: "Astros", League: "Majors"},
			{ID: "Cubs", League: "Majors", Exclusions: []problem.Window{
				{Start: day(2026, 1, 1), End: day(2026, 1, 2), Enabled: true},
			}},
			{ID: "Dodgers", League: "Majors"},
			{ID: "Giants", League: "Majors", Exclusions: []problem.Window{
				{Start: day(2026, 1, 3), End: day(2026, 1, 4), Enabled: true},
			}},
			{ID: "Mets", League: "Majors"},
		},
		Fields: []problem.Field{
			{
				ID:               "Symonds Field",
				IncrementMinutes: 90,
				Rules:            []problem.AvailabilityRule{{Open: 18 * 60, Close: 19*60 + 30}},
			},
		},
		Matchups: []problem.Matchup{
			{ID: "Game 1", League: "Majors", Home: "Angels", Away: "Astros"},
			{ID: "Game 2", League: "Majors", Home: "Cubs", Away: "Dodgers"},
			{ID: "Game 3", League: "Majors", Home: "Giants", Away: "Mets"},
		},
	}
}

func TestSolveBacktracksOutOfDeadEnd(t *testing.T) {
	_, result := solveSpec(t, tightSpec(), Options{})

	require.Len(t, result.Games, 3)
	require.Empty(t, result.Unresolved)
	assert.Positive(t, result.Backtracks)

	byMatchup := make(map[string]time.Time)
	for _, g := range result.Games {
		byMatchup[g.Matchup.ID] = g.Slot.Start
	}
	assert.True(t, byMatchup["Game 1"].Equal(at(2026, 1, 1, 18, 0)))
	assert.True(t, byMatchup["Game 3"].Equal(at(2026, 1, 2, 18, 0)))
	assert.True(t, byMatchup["Game 2"].Equal(at(2026, 1, 3, 18, 0)))
}

func TestSolveBudgetExceededKeepsPartialWellFormed(t *testing.T) {
	spec := weekSpec()
	spec.Teams = append(spec.Teams,
		problem.Team{ID: "Cubs", League: "Majors"},
		problem.Team{ID: "Dodgers", League: "Majors"},
	)
	spec.Matchups = append(spec.Matchups,
		problem.Matchup{ID: "Game 2", League: "Majors", Home: "Cubs", Away: "Dodgers"},
	)
	_, result := solveSpec(t, spec, Options{MaxSteps: 1})

	assert.True(t, result.BudgetExceeded)
	require.Len(t, result.Games, 1)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, ReasonBudgetExceeded, result.Unresolved[0].Reason)
	assert.Equal(t, 1, result.Steps)
}

func TestSolveNeverDoubleBooks(t *testing.T) {
	spec := weekSpec()
	spec.Teams = append(spec.Teams,
		problem.Team{ID: "Cubs", League: "Majors"},
		problem.Team{ID: "Dodgers", League: "Majors"},
	)
	spec.Fields = append(spec.Fields, problem.Field{
		ID:               "Adams Park",
		IncrementMinutes: 90,
		Rules:            []problem.AvailabilityRule{{Open: 18 * 60, Close: 21 * 60}},
	})
	spec.Matchups = []problem.Matchup{
		{ID: "Game 1", League: "Majors", Home: "Angels", Away: "Astros"},
		{ID: "Game 2", League: "Majors", Home: "Cubs", Away: "Dodgers"},
		{ID: "Game 3", League: "Majors", Home: "Angels", Away: "Cubs"},
		{ID: "Game 4", League: "Majors", Home: "Astros", Away: "Dodgers"},
	}
	_, result := solveSpec(t, spec, Options{})

	require.Len(t, result.Games, 4)
	require.Empty(t, result.Unresolved)

	seen := make(map[slotKey]string)
	for _, g := range result.Games {
		k := keyOf(g.Slot)
		require.NotContains(t, seen, k, "%s and %s share a slot", seen[k], g.Matchup.ID)
		seen[k] = g.Matchup.ID
	}
	for i, a := range result.Games {
		for _, b := range result.Games[i+1:] {
			if !a.Slot.Overlaps(b.Slot) {
				continue
			}
			assert.False(t, sharesTeam(a.Matchup, b.Matchup),
				"%s and %s overlap with a shared team", a.Matchup.ID, b.Matchup.ID)
		}
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	spec := tightSpec()
	m := mustModel(t, spec)

	first := Solve(m, SlotsByField(m), Options{})
	second := Solve(m, SlotsByField(m), Options{})

	assert.Equal(t, first, second)
}
