// Package validator re-verifies every hard invariant over a produced
// schedule. It is pure and read-only: the engine runs it after solving
// as a safety net (a violation there is a solver defect), and the CLI
// runs it standalone to audit hand-edited schedules.
package validator

import (
	"fmt"
	"time"

	"github.com/camdenleague/sked/internal/problem"
	"github.com/camdenleague/sked/internal/schedule"
)

// Violation describes one broken invariant.
type Violation struct {
	Type    string // "error" or "warning"
	Message string
}

// Check returns every invariant violation in the given games, or an
// empty slice if the schedule is sound. shortfalls are the reported
// umpire shortfalls from the run being checked: an under-crewed game
// with a matching shortfall entry is tolerated, one without is an
// error. Pass nil when auditing an external schedule; under-crewed
// games are then warnings.
func Check(m *problem.Model, games []schedule.ScheduledGame, shortfalls []schedule.Shortfall) []Violation {
	var violations []Violation

	legal := legalSlotSet(m)

	violations = append(violations, checkSlotLegality(m, games, legal)...)
	violations = append(violations, checkFieldOverlap(games)...)
	violations = append(violations, checkTeamOverlap(games)...)
	violations = append(violations, checkExclusions(m, games)...)
	violations = append(violations, checkUmpires(m, games, shortfalls)...)

	return violations
}

type slotKey struct {
	field string
	start int64
}

func legalSlotSet(m *problem.Model) map[slotKey]time.Duration {
	legal := make(map[slotKey]time.Duration)
	for _, slots := range schedule.SlotsByField(m) {
		for _, s := range slots {
			legal[slotKey{s.FieldID, s.Start.Unix()}] = s.Duration
		}
	}
	return legal
}

// checkSlotLegality verifies each game sits on a slot the calendar
// could have produced: inside the season window, on an increment
// boundary of an open range, not on an excluded day. Membership in
// the regenerated calendar covers all of those at once.
func checkSlotLegality(m *problem.Model, games []schedule.ScheduledGame, legal map[slotKey]time.Duration) []Violation {
	var violations []Violation
	for _, g := range games {
		date := g.Slot.Date()
		if date.Before(m.Season.Start) || date.After(m.Season.End) {
			violations = append(violations, Violation{
				Type: "error",
				Message: fmt.Sprintf("%s starts %s, outside the season window",
					g.Matchup.ID, g.Slot.Start.Format("2006-01-02 15:04")),
			})
			continue
		}
		dur, ok := legal[slotKey{g.Slot.FieldID, g.Slot.Start.Unix()}]
		if !ok {
			violations = append(violations, Violation{
				Type: "error",
				Message: fmt.Sprintf("%s at %s on %s is not a legal slot for that field",
					g.Matchup.ID, g.Slot.Start.Format("2006-01-02 15:04"), g.Slot.FieldID),
			})
		} else if dur != g.Slot.Duration {
			violations = append(violations, Violation{
				Type: "error",
				Message: fmt.Sprintf("%s has duration %s, field %s increment implies %s",
					g.Matchup.ID, g.Slot.Duration, g.Slot.FieldID, dur),
			})
		}
	}
	return violations
}

func checkFieldOverlap(games []schedule.ScheduledGame) []Violation {
	var violations []Violation
	byField := make(map[string][]schedule.ScheduledGame)
	for _, g := range games {
		byField[g.Slot.FieldID] = append(byField[g.Slot.FieldID], g)
	}
	for field, fg := range byField {
		for i := 0; i < len(fg); i++ {
			for j := i + 1; j < len(fg); j++ {
				if fg[i].Slot.Overlaps(fg[j].Slot) {
					violations = append(violations, Violation{
						Type: "error",
						Message: fmt.Sprintf("%s and %s overlap on %s at %s",
							fg[i].Matchup.ID, fg[j].Matchup.ID, field,
							fg[i].Slot.Start.Format("2006-01-02 15:04")),
					})
				}
			}
		}
	}
	return violations
}

func checkTeamOverlap(games []schedule.ScheduledGame) []Violation {
	var violations []Violation
	byTeam := make(map[string][]schedule.ScheduledGame)
	for _, g := range games {
		for _, team := range g.Matchup.Teams() {
			byTeam[team] = append(byTeam[team], g)
		}
	}
	for team, tg := range byTeam {
		for i := 0; i < len(tg); i++ {
			for j := i + 1; j < len(tg); j++ {
				if tg[i].Slot.Overlaps(tg[j].Slot) {
					violations = append(violations, Violation{
						Type: "error",
						Message: fmt.Sprintf("%s plays overlapping games %s and %s",
							team, tg[i].Matchup.ID, tg[j].Matchup.ID),
					})
				}
			}
		}
	}
	return violations
}

func checkExclusions(m *problem.Model, games []schedule.ScheduledGame) []Violation {
	var violations []Violation
	for _, g := range games {
		start, end := g.Slot.Start, g.Slot.End()
		if m.FieldClosed(g.Slot.FieldID, g.Slot.Date()) {
			violations = append(violations, Violation{
				Type: "error",
				Message: fmt.Sprintf("%s is on %s's excluded date %s",
					g.Matchup.ID, g.Slot.FieldID, g.Slot.Date().Format("2006-01-02")),
			})
		}
		if m.SeasonExcluded(start, end) {
			violations = append(violations, Violation{
				Type: "error",
				Message: fmt.Sprintf("%s falls inside a season exclusion window at %s",
					g.Matchup.ID, start.Format("2006-01-02 15:04")),
			})
		}
		for _, team := range g.Matchup.Teams() {
			if m.TeamExcluded(team, start, end) {
				violations = append(violations, Violation{
					Type: "error",
					Message: fmt.Sprintf("%s falls inside an exclusion window of %s",
						g.Matchup.ID, team),
				})
			}
		}
	}
	return violations
}

func checkUmpires(m *problem.Model, games []schedule.ScheduledGame, shortfalls []schedule.Shortfall) []Violation {
	var violations []Violation
	required := m.Config.UmpiresPerGame

	reported := make(map[string]bool)
	for _, s := range shortfalls {
		reported[s.MatchupID] = true
	}

	type dayKey struct {
		umpire string
		date   time.Time
	}
	dayCount := make(map[dayKey]int)
	worked := make(map[string][]schedule.ScheduledGame)

	for _, g := range games {
		seen := make(map[string]bool)
		for _, id := range g.Umpires {
			if seen[id] {
				violations = append(violations, Violation{
					Type:    "error",
					Message: fmt.Sprintf("%s lists umpire %s twice", g.Matchup.ID, id),
				})
			}
			seen[id] = true
			if m.UmpireExcluded(id, g.Slot.Start, g.Slot.End()) {
				violations = append(violations, Violation{
					Type:    "error",
					Message: fmt.Sprintf("umpire %s works %s inside their exclusion window", id, g.Matchup.ID),
				})
			}
			dayCount[dayKey{id, g.Slot.Date()}]++
			worked[id] = append(worked[id], g)
		}

		if len(g.Umpires) > required {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s has %d umpires, only %d required", g.Matchup.ID, len(g.Umpires), required),
			})
		} else if len(g.Umpires) < required {
			severity := "warning"
			if shortfalls != nil && !reported[g.Matchup.ID] {
				severity = "error"
			}
			if shortfalls == nil || !reported[g.Matchup.ID] {
				violations = append(violations, Violation{
					Type: severity,
					Message: fmt.Sprintf("%s has %d of %d required umpires",
						g.Matchup.ID, len(g.Umpires), required),
				})
			}
		}
	}

	if dayCap := m.Config.MaxGamesPerUmpirePerDay; dayCap > 0 {
		for dk, count := range dayCount {
			if count > dayCap {
				violations = append(violations, Violation{
					Type: "error",
					Message: fmt.Sprintf("umpire %s works %d games on %s (max %d)",
						dk.umpire, count, dk.date.Format("2006-01-02"), dayCap),
				})
			}
		}
	}

	for id, ug := range worked {
		for i := 0; i < len(ug); i++ {
			for j := i + 1; j < len(ug); j++ {
				if ug[i].Slot.Overlaps(ug[j].Slot) {
					violations = append(violations, Violation{
						Type: "error",
						Message: fmt.Sprintf("umpire %s works overlapping games %s and %s",
							id, ug[i].Matchup.ID, ug[j].Matchup.ID),
					})
				}
			}
		}
	}

	return violations
}
