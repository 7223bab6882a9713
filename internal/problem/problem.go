// Package problem holds the in-memory representation of a single
// scheduling run: the matchups to place, the resources available to
// place them on (fields, teams, umpires), and every constraint that
// applies. A Model is built once per run from a fully materialized
// Spec and is never mutated afterward.
package problem

import (
	"fmt"
	"time"
)

// DefaultIncrementMinutes is the slot length used for fields that
// don't set one: roughly a game's duration plus turnover buffer.
const DefaultIncrementMinutes = 165

// TBD is the placeholder team reference for matchups whose
// participants aren't known yet (e.g. playoff seeds).
const TBD = "TBD"

// SeasonWindow is the inclusive calendar date range of the season.
// Both dates are midnight UTC with no time-of-day component.
type SeasonWindow struct {
	Start time.Time
	End   time.Time
}

// Window is a blackout interval with an on/off switch. The interval
// is half-open: [Start, End).
type Window struct {
	Start   time.Time
	End     time.Time
	Note    string
	Enabled bool
}

// Overlaps reports whether the window is enabled and intersects the
// half-open interval [start, end).
func (w Window) Overlaps(start, end time.Time) bool {
	return w.Enabled && start.Before(w.End) && w.Start.Before(end)
}

// ExclusionDate marks a single calendar date on which a field is
// wholly unavailable.
type ExclusionDate struct {
	Date    time.Time // midnight UTC
	Note    string
	Enabled bool
}

// AvailabilityRule describes when a field may host games: an open
// time-of-day range, optionally limited to certain weekdays and/or a
// date range within the season. A day with no matching rule is
// closed.
type AvailabilityRule struct {
	Days  []time.Weekday // empty = every day
	From  *time.Time     // optional first date the rule applies to
	Until *time.Time     // optional last date the rule applies to
	Open  int            // minutes after midnight
	Close int
}

// AppliesTo reports whether the rule is in effect on the given date.
func (r AvailabilityRule) AppliesTo(date time.Time) bool {
	if r.From != nil && date.Before(*r.From) {
		return false
	}
	if r.Until != nil && date.After(*r.Until) {
		return false
	}
	if len(r.Days) == 0 {
		return true
	}
	for _, d := range r.Days {
		if date.Weekday() == d {
			return true
		}
	}
	return false
}

type Field struct {
	ID               string
	IncrementMinutes int // 0 = DefaultIncrementMinutes
	Rules            []AvailabilityRule
	ExclusionDates   []ExclusionDate
}

type Team struct {
	ID         string
	League     string
	Exclusions []Window
}

type Umpire struct {
	ID         string
	Exclusions []Window
}

// SeasonConfig carries the umpire staffing rules for the season.
type SeasonConfig struct {
	UmpiresPerGame          int
	MaxGamesPerUmpirePerDay int // 0 = unbounded
}

// Matchup is a required game between two teams, not yet bound to a
// slot. Home or Away may be TBD.
type Matchup struct {
	ID     string // unique label like "Majors Game 7"
	League string
	Home   string
	Away   string
}

// Teams returns the real (non-TBD) team references of the matchup.
func (m Matchup) Teams() []string {
	var teams []string
	if m.Home != TBD && m.Home != "" {
		teams = append(teams, m.Home)
	}
	if m.Away != TBD && m.Away != "" {
		teams = append(teams, m.Away)
	}
	return teams
}

// Spec is the fully denormalized problem specification assembled by
// the caller. The engine reads it and nothing else: no repository
// lookups happen during the search.
type Spec struct {
	Season           SeasonWindow
	Leagues          []string // league-seasons included in this run; empty = all
	Teams            []Team
	Fields           []Field
	Umpires          []Umpire
	SeasonExclusions []Window
	Config           SeasonConfig
	Matchups         []Matchup
}

// MalformedProblemError reports a structurally invalid Spec. It
// aborts the run before any search begins.
type MalformedProblemError struct {
	Reason string
}

func (e *MalformedProblemError) Error() string {
	return "malformed problem: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedProblemError{Reason: fmt.Sprintf(format, args...)}
}
