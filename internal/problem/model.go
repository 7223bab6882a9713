package problem

import "time"

// Model is the validated, indexed form of a Spec. All lookups the
// solver performs in its hot loop are O(1) map reads built here.
type Model struct {
	Season           SeasonWindow
	Config           SeasonConfig
	Fields           []Field
	Teams            []Team
	Umpires          []Umpire
	Matchups         []Matchup
	SeasonExclusions []Window

	fieldByID     map[string]*Field
	teamByID      map[string]*Team
	increments    map[string]time.Duration
	closedDates   map[string]map[time.Time]bool // field -> enabled exclusion dates
	teamWindows   map[string][]Window           // enabled windows only
	umpireWindows map[string][]Window
	seasonWindows []Window // enabled only
}

// NewModel validates a Spec and builds the lookup indexes. It returns
// a *MalformedProblemError for structurally invalid input and never
// mutates the Spec.
func NewModel(spec *Spec) (*Model, error) {
	if spec.Season.End.Before(spec.Season.Start) {
		return nil, malformed("season end %s precedes start %s",
			spec.Season.End.Format("2006-01-02"), spec.Season.Start.Format("2006-01-02"))
	}
	if spec.Config.UmpiresPerGame < 0 {
		return nil, malformed("umpires per game is negative: %d", spec.Config.UmpiresPerGame)
	}
	if spec.Config.MaxGamesPerUmpirePerDay < 0 {
		return nil, malformed("max games per umpire per day is negative: %d", spec.Config.MaxGamesPerUmpirePerDay)
	}

	m := &Model{
		Season:           spec.Season,
		Config:           spec.Config,
		Fields:           spec.Fields,
		Teams:            spec.Teams,
		Umpires:          spec.Umpires,
		Matchups:         spec.Matchups,
		SeasonExclusions: spec.SeasonExclusions,
		fieldByID:        make(map[string]*Field),
		teamByID:         make(map[string]*Team),
		increments:       make(map[string]time.Duration),
		closedDates:      make(map[string]map[time.Time]bool),
		teamWindows:      make(map[string][]Window),
		umpireWindows:    make(map[string][]Window),
	}

	selected := make(map[string]bool)
	for _, l := range spec.Leagues {
		selected[l] = true
	}

	for i := range m.Teams {
		t := &m.Teams[i]
		if _, dup := m.teamByID[t.ID]; dup {
			return nil, malformed("duplicate team %q", t.ID)
		}
		m.teamByID[t.ID] = t
		for _, w := range t.Exclusions {
			if w.End.Before(w.Start) {
				return nil, malformed("team %q exclusion window ends before it starts", t.ID)
			}
			if w.Enabled {
				m.teamWindows[t.ID] = append(m.teamWindows[t.ID], w)
			}
		}
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		if _, dup := m.fieldByID[f.ID]; dup {
			return nil, malformed("duplicate field %q", f.ID)
		}
		m.fieldByID[f.ID] = f
		inc := f.IncrementMinutes
		if inc == 0 {
			inc = DefaultIncrementMinutes
		}
		if inc < 0 {
			return nil, malformed("field %q has negative start increment", f.ID)
		}
		m.increments[f.ID] = time.Duration(inc) * time.Minute

		for _, r := range f.Rules {
			if r.Close < r.Open {
				return nil, malformed("field %q availability closes before it opens", f.ID)
			}
			if r.From != nil && r.Until != nil && r.Until.Before(*r.From) {
				return nil, malformed("field %q availability date range is inverted", f.ID)
			}
		}
		for _, e := range f.ExclusionDates {
			if e.Enabled {
				if m.closedDates[f.ID] == nil {
					m.closedDates[f.ID] = make(map[time.Time]bool)
				}
				m.closedDates[f.ID][e.Date] = true
			}
		}
	}

	for _, u := range m.Umpires {
		for _, w := range u.Exclusions {
			if w.End.Before(w.Start) {
				return nil, malformed("umpire %q exclusion window ends before it starts", u.ID)
			}
			if w.Enabled {
				m.umpireWindows[u.ID] = append(m.umpireWindows[u.ID], w)
			}
		}
	}

	for _, w := range spec.SeasonExclusions {
		if w.End.Before(w.Start) {
			return nil, malformed("season exclusion window ends before it starts")
		}
		if w.Enabled {
			m.seasonWindows = append(m.seasonWindows, w)
		}
	}

	for _, mu := range m.Matchups {
		for _, team := range mu.Teams() {
			t, ok := m.teamByID[team]
			if !ok {
				return nil, malformed("matchup %q references unknown team %q", mu.ID, team)
			}
			if len(selected) > 0 && !selected[t.League] {
				return nil, malformed("matchup %q references team %q outside the league selection", mu.ID, team)
			}
		}
	}

	return m, nil
}

// Increment returns the resolved slot duration for a field.
func (m *Model) Increment(fieldID string) time.Duration {
	return m.increments[fieldID]
}

// Field returns the field with the given id, or nil.
func (m *Model) Field(id string) *Field {
	return m.fieldByID[id]
}

// Team returns the team with the given id, or nil.
func (m *Model) Team(id string) *Team {
	return m.teamByID[id]
}

// FieldClosed reports whether the field has an enabled exclusion date
// on the given calendar date.
func (m *Model) FieldClosed(fieldID string, date time.Time) bool {
	return m.closedDates[fieldID][date]
}

// SeasonExcluded reports whether [start, end) intersects any enabled
// season-wide exclusion window.
func (m *Model) SeasonExcluded(start, end time.Time) bool {
	for _, w := range m.seasonWindows {
		if w.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// TeamExcluded reports whether [start, end) intersects any enabled
// exclusion window of the team.
func (m *Model) TeamExcluded(teamID string, start, end time.Time) bool {
	for _, w := range m.teamWindows[teamID] {
		if w.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// UmpireExcluded reports whether [start, end) intersects any enabled
// exclusion window of the umpire.
func (m *Model) UmpireExcluded(umpireID string, start, end time.Time) bool {
	for _, w := range m.umpireWindows[umpireID] {
		if w.Overlaps(start, end) {
			return true
		}
	}
	return false
}
