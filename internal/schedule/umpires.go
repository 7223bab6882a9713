package schedule

import (
	"sort"
	"time"

	"github.com/camdenleague/sked/internal/problem"
)

// AssignUmpires staffs committed games in chronological order. Each
// game gets up to UmpiresPerGame umpires whose exclusion windows don't
// cover the game, who aren't working an overlapping game, and who are
// under the per-day cap. Umpires with the fewest assignments that day,
// then that season, are preferred; remaining ties break by id. Games
// that can't be fully staffed get as many umpires as are eligible and
// a Shortfall entry; a shortfall never fails the run.
//
// Only the Umpires field of each game is written; slots are never
// altered.
func AssignUmpires(m *problem.Model, games []ScheduledGame) []Shortfall {
	required := m.Config.UmpiresPerGame
	if required == 0 || len(games) == 0 {
		return nil
	}

	order := make([]*ScheduledGame, len(games))
	for i := range games {
		order[i] = &games[i]
	}
	sort.Slice(order, func(i, j int) bool {
		if !order[i].Slot.Start.Equal(order[j].Slot.Start) {
			return order[i].Slot.Start.Before(order[j].Slot.Start)
		}
		if order[i].Slot.FieldID != order[j].Slot.FieldID {
			return order[i].Slot.FieldID < order[j].Slot.FieldID
		}
		return order[i].Matchup.ID < order[j].Matchup.ID
	})

	type dayKey struct {
		umpire string
		date   time.Time
	}
	dayCount := make(map[dayKey]int)
	seasonCount := make(map[string]int)
	busy := make(map[string][]Slot)
	dayCap := m.Config.MaxGamesPerUmpirePerDay // 0 = unbounded

	var shortfalls []Shortfall
	for _, g := range order {
		date := g.Slot.Date()

		var eligible []string
		for _, u := range m.Umpires {
			if m.UmpireExcluded(u.ID, g.Slot.Start, g.Slot.End()) {
				continue
			}
			if dayCap > 0 && dayCount[dayKey{u.ID, date}] >= dayCap {
				continue
			}
			overlapping := false
			for _, b := range busy[u.ID] {
				if b.Overlaps(g.Slot) {
					overlapping = true
					break
				}
			}
			if overlapping {
				continue
			}
			eligible = append(eligible, u.ID)
		}

		sort.Slice(eligible, func(i, j int) bool {
			a, b := eligible[i], eligible[j]
			if da, db := dayCount[dayKey{a, date}], dayCount[dayKey{b, date}]; da != db {
				return da < db
			}
			if seasonCount[a] != seasonCount[b] {
				return seasonCount[a] < seasonCount[b]
			}
			return a < b
		})

		n := required
		if n > len(eligible) {
			n = len(eligible)
		}
		g.Umpires = append([]string(nil), eligible[:n]...)
		for _, id := range g.Umpires {
			dayCount[dayKey{id, date}]++
			seasonCount[id]++
			busy[id] = append(busy[id], g.Slot)
		}

		if n < required {
			shortfalls = append(shortfalls, Shortfall{
				MatchupID: g.Matchup.ID,
				Slot:      g.Slot,
				Required:  required,
				Assigned:  n,
			})
		}
	}

	return shortfalls
}
