package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camdenleague/sked/internal/problem"
)

func umpireSpec(umpires ...problem.Umpire) *problem.Spec {
	spec := weekSpec()
	spec.Umpires = umpires
	spec.Config.UmpiresPerGame = 2
	return spec
}

func gameAt(id string, start time.Time) ScheduledGame {
	return ScheduledGame{
		Matchup: problem.Matchup{ID: id, League: "Majors", Home: "Angels", Away: "Astros"},
		Slot:    Slot{FieldID: "Symonds Field", Start: start, Duration: 90 * time.Minute},
	}
}

func TestAssignUmpiresStaffsEveryGame(t *testing.T) {
	m := mustModel(t, umpireSpec(
		problem.Umpire{ID: "Pat"},
		problem.Umpire{ID: "Quinn"},
		problem.Umpire{ID: "Riley"},
	))
	games := []ScheduledGame{
		gameAt("Game 1", at(2026, 1, 1, 18, 0)),
		gameAt("Game 2", at(2026, 1, 2, 18, 0)),
	}

	shortfalls := AssignUmpires(m, games)

	assert.Empty(t, shortfalls)
	for _, g := range games {
		assert.Len(t, g.Umpires, 2, "game %s", g.Matchup.ID)
	}
}

func TestAssignUmpiresNeverDoubleBooksOverlappingGames(t *testing.T) {
	m := mustModel(t, umpireSpec(
		problem.Umpire{ID: "Pat"},
		problem.Umpire{ID: "Quinn"},
	))
	// Three games at overlapping times, two umpires for two slots each:
	// at least one game comes up short.
	games := []ScheduledGame{
		gameAt("Game 1", at(2026, 1, 1, 18, 0)),
		gameAt("Game 2", at(2026, 1, 1, 18, 30)),
		gameAt("Game 3", at(2026, 1, 1, 19, 0)),
	}

	shortfalls := AssignUmpires(m, games)

	require.NotEmpty(t, shortfalls)
	for i, a := range games {
		for _, b := range games[i+1:] {
			if !a.Slot.Overlaps(b.Slot) {
				continue
			}
			for _, u := range a.Umpires {
				assert.NotContains(t, b.Umpires, u,
					"%s works both %s and %s", u, a.Matchup.ID, b.Matchup.ID)
			}
		}
	}
}

func TestAssignUmpiresHonorsDayCap(t *testing.T) {
	spec := umpireSpec(problem.Umpire{ID: "Pat"})
	spec.Config.UmpiresPerGame = 1
	spec.Config.MaxGamesPerUmpirePerDay = 1
	m := mustModel(t, spec)
	games := []ScheduledGame{
		gameAt("Game 1", at(2026, 1, 1, 18, 0)),
		gameAt("Game 2", at(2026, 1, 1, 19, 30)),
	}

	shortfalls := AssignUmpires(m, games)

	require.Len(t, shortfalls, 1)
	assert.Equal(t, "Game 2", shortfalls[0].MatchupID)
	assert.Equal(t, 1, shortfalls[0].Required)
	assert.Equal(t, 0, shortfalls[0].Assigned)
	assert.Equal(t, []string{"Pat"}, games[0].Umpires)
	assert.Empty(t, games[1].Umpires)
}

func TestAssignUmpiresZeroDayCapIsUnbounded(t *testing.T) {
	spec := umpireSpec(problem.Umpire{ID: "Pat"})
	spec.Config.UmpiresPerGame = 1
	m := mustModel(t, spec)
	games := []ScheduledGame{
		gameAt("Game 1", at(2026, 1, 1, 18, 0)),
		gameAt("Game 2", at(2026, 1, 1, 19, 30)),
	}

	shortfalls := AssignUmpires(m, games)

	assert.Empty(t, shortfalls)
	assert.Equal(t, []string{"Pat"}, games[0].Umpires)
	assert.Equal(t, []string{"Pat"}, games[1].Umpires)
}

func TestAssignUmpiresSkipsExcludedWindows(t *testing.T) {
	spec := umpireSpec(
		problem.Umpire{ID: "Pat", Exclusions: []problem.Window{
			{Start: day(2026, 1, 1), End: day(2026, 1, 2), Enabled: true},
		}},
		problem.Umpire{ID: "Quinn"},
	)
	spec.Config.UmpiresPerGame = 1
	m := mustModel(t, spec)
	games := []ScheduledGame{gameAt("Game 1", at(2026, 1, 1, 18, 0))}

	shortfalls := AssignUmpires(m, games)

	assert.Empty(t, shortfalls)
	assert.Equal(t, []string{"Quinn"}, games[0].Umpires)
}

func TestAssignUmpiresBalancesLoad(t *testing.T) {
	spec := umpireSpec(
		problem.Umpire{ID: "Pat"},
		problem.Umpire{ID: "Quinn"},
		problem.Umpire{ID: "Riley"},
	)
	spec.Config.UmpiresPerGame = 1
	m := mustModel(t, spec)
	games := []ScheduledGame{
		gameAt("Game 1", at(2026, 1, 1, 18, 0)),
		gameAt("Game 2", at(2026, 1, 2, 18, 0)),
		gameAt("Game 3", at(2026, 1, 3, 18, 0)),
	}

	shortfalls := AssignUmpires(m, games)

	assert.Empty(t, shortfalls)
	worked := make(map[string]int)
	for _, g := range games {
		require.Len(t, g.Umpires, 1)
		worked[g.Umpires[0]]++
	}
	// Three games, three umpires, season counts break the ties: one each.
	assert.Equal(t, map[string]int{"Pat": 1, "Quinn": 1, "Riley": 1}, worked)
}

func TestAssignUmpiresNoRequirementIsNoOp(t *testing.T) {
	spec := umpireSpec(problem.Umpire{ID: "Pat"})
	spec.Config.UmpiresPerGame = 0
	m := mustModel(t, spec)
	games := []ScheduledGame{gameAt("Game 1", at(2026, 1, 1, 18, 0))}

	assert.Nil(t, AssignUmpires(m, games))
	assert.Empty(t, games[0].Umpires)
}
