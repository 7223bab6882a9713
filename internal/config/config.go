// Package config defines the YAML problem-spec file format. It is the
// collaborator that materializes a problem.Spec for the engine; the
// engine itself never touches files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/camdenleague/sked/internal/problem"
	"github.com/camdenleague/sked/internal/schedule"
	"github.com/camdenleague/sked/internal/strategy"
)

// Date is a wrapper around time.Time for YAML calendar-date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

// Timestamp parses "2006-01-02 15:04", falling back to a bare date at
// midnight.
type Timestamp struct {
	Time time.Time
}

func (ts *Timestamp) UnmarshalYAML(value *yaml.Node) error {
	if t, err := time.Parse("2006-01-02 15:04", value.Value); err == nil {
		ts.Time = t
		return nil
	}
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", value.Value, err)
	}
	ts.Time = t
	return nil
}

// Clock is a time of day ("18:00") as minutes after midnight.
type Clock struct {
	Minutes int
}

func (c *Clock) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("15:04", value.Value)
	if err != nil {
		return fmt.Errorf("invalid time of day %q: %w", value.Value, err)
	}
	c.Minutes = t.Hour()*60 + t.Minute()
	return nil
}

// Duration wraps time.Duration for YAML strings like "30s".
type Duration struct {
	Duration time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = parsed
	return nil
}

type WindowConfig struct {
	Start    Timestamp `yaml:"start"`
	End      Timestamp `yaml:"end"`
	Note     string    `yaml:"note"`
	Disabled bool      `yaml:"disabled"`
}

func (w WindowConfig) window() problem.Window {
	return problem.Window{Start: w.Start.Time, End: w.End.Time, Note: w.Note, Enabled: !w.Disabled}
}

type TeamConfig struct {
	Name       string         `yaml:"name"`
	Exclusions []WindowConfig `yaml:"exclusions"`
}

type LeagueConfig struct {
	Name     string       `yaml:"name"`
	Strategy string       `yaml:"strategy"`
	Teams    []TeamConfig `yaml:"teams"`
}

type AvailabilityConfig struct {
	Days  []string `yaml:"days"` // weekday names; empty = every day
	From  *Date    `yaml:"from"`
	Until *Date    `yaml:"until"`
	Open  Clock    `yaml:"open"`
	Close Clock    `yaml:"close"`
}

type ExclusionDateConfig struct {
	Date     Date   `yaml:"date"`
	Note     string `yaml:"note"`
	Disabled bool   `yaml:"disabled"`
}

type FieldConfig struct {
	Name             string                `yaml:"name"`
	IncrementMinutes int                   `yaml:"increment_minutes"`
	Availability     []AvailabilityConfig  `yaml:"availability"`
	ExclusionDates   []ExclusionDateConfig `yaml:"exclusion_dates"`
}

type UmpireConfig struct {
	Name       string         `yaml:"name"`
	Exclusions []WindowConfig `yaml:"exclusions"`
}

type RulesConfig struct {
	UmpiresPerGame          int `yaml:"umpires_per_game"`
	MaxGamesPerUmpirePerDay int `yaml:"max_games_per_umpire_per_day"` // omit for unbounded
}

type SolverConfig struct {
	MaxSteps int      `yaml:"max_steps"`
	Timeout  Duration `yaml:"timeout"`
}

type MatchupConfig struct {
	League string `yaml:"league"`
	Home   string `yaml:"home"`
	Away   string `yaml:"away"`
}

type Config struct {
	Season struct {
		StartDate Date `yaml:"start_date"`
		EndDate   Date `yaml:"end_date"`
	} `yaml:"season"`
	Exclusions []WindowConfig  `yaml:"exclusions"`
	Leagues    []LeagueConfig  `yaml:"leagues"`
	Fields     []FieldConfig   `yaml:"fields"`
	Umpires    []UmpireConfig  `yaml:"umpires"`
	Rules      RulesConfig     `yaml:"rules"`
	Solver     SolverConfig    `yaml:"solver"`
	Matchups   []MatchupConfig `yaml:"matchups"` // explicit list; omit to use league strategies
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	if c.Season.EndDate.Time.Before(c.Season.StartDate.Time) {
		return fmt.Errorf("end date %s must not precede start date %s",
			c.Season.EndDate.Time.Format("2006-01-02"),
			c.Season.StartDate.Time.Format("2006-01-02"))
	}

	if len(c.Leagues) == 0 {
		return fmt.Errorf("at least one league is required")
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}

	seen := make(map[string]string)
	for _, l := range c.Leagues {
		if len(l.Teams) == 0 {
			return fmt.Errorf("league %q has no teams", l.Name)
		}
		for _, t := range l.Teams {
			if prev, ok := seen[t.Name]; ok {
				return fmt.Errorf("team %q appears in both %q and %q leagues", t.Name, prev, l.Name)
			}
			seen[t.Name] = l.Name
		}
		if len(c.Matchups) == 0 && l.Strategy == "" {
			return fmt.Errorf("league %q needs a strategy when no matchups are listed", l.Name)
		}
	}

	for _, f := range c.Fields {
		if f.IncrementMinutes < 0 {
			return fmt.Errorf("field %q has negative increment_minutes", f.Name)
		}
		for _, a := range f.Availability {
			if a.Close.Minutes < a.Open.Minutes {
				return fmt.Errorf("field %q: availability closes before it opens", f.Name)
			}
			for _, day := range a.Days {
				if _, err := parseWeekday(day); err != nil {
					return fmt.Errorf("field %q: %w", f.Name, err)
				}
			}
		}
	}

	return nil
}

// Problem assembles the engine's problem specification: teams and
// windows flattened, availability rules resolved, and the matchup
// list either taken verbatim or generated per-league by strategy.
func (c *Config) Problem() (*problem.Spec, error) {
	spec := &problem.Spec{
		Season: problem.SeasonWindow{
			Start: c.Season.StartDate.Time,
			End:   c.Season.EndDate.Time,
		},
		Config: problem.SeasonConfig{
			UmpiresPerGame:          c.Rules.UmpiresPerGame,
			MaxGamesPerUmpirePerDay: c.Rules.MaxGamesPerUmpirePerDay,
		},
	}

	for _, w := range c.Exclusions {
		spec.SeasonExclusions = append(spec.SeasonExclusions, w.window())
	}

	for _, l := range c.Leagues {
		spec.Leagues = append(spec.Leagues, l.Name)
		for _, t := range l.Teams {
			team := problem.Team{ID: t.Name, League: l.Name}
			for _, w := range t.Exclusions {
				team.Exclusions = append(team.Exclusions, w.window())
			}
			spec.Teams = append(spec.Teams, team)
		}
	}

	for _, f := range c.Fields {
		field := problem.Field{ID: f.Name, IncrementMinutes: f.IncrementMinutes}
		for _, a := range f.Availability {
			rule := problem.AvailabilityRule{Open: a.Open.Minutes, Close: a.Close.Minutes}
			for _, day := range a.Days {
				wd, err := parseWeekday(day)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", f.Name, err)
				}
				rule.Days = append(rule.Days, wd)
			}
			if a.From != nil {
				from := a.From.Time
				rule.From = &from
			}
			if a.Until != nil {
				until := a.Until.Time
				rule.Until = &until
			}
			field.Rules = append(field.Rules, rule)
		}
		for _, e := range f.ExclusionDates {
			field.ExclusionDates = append(field.ExclusionDates, problem.ExclusionDate{
				Date:    e.Date.Time,
				Note:    e.Note,
				Enabled: !e.Disabled,
			})
		}
		spec.Fields = append(spec.Fields, field)
	}

	for _, u := range c.Umpires {
		ump := problem.Umpire{ID: u.Name}
		for _, w := range u.Exclusions {
			ump.Exclusions = append(ump.Exclusions, w.window())
		}
		spec.Umpires = append(spec.Umpires, ump)
	}

	if len(c.Matchups) > 0 {
		for i, mu := range c.Matchups {
			spec.Matchups = append(spec.Matchups, problem.Matchup{
				ID:     fmt.Sprintf("Game %d", i+1),
				League: mu.League,
				Home:   mu.Home,
				Away:   mu.Away,
			})
		}
	} else {
		for _, l := range c.Leagues {
			strat, err := strategy.Get(l.Strategy)
			if err != nil {
				return nil, fmt.Errorf("league %q: %w", l.Name, err)
			}
			var teams []string
			for _, t := range l.Teams {
				teams = append(teams, t.Name)
			}
			spec.Matchups = append(spec.Matchups, strat.Matchups(l.Name, teams)...)
		}
	}

	return spec, nil
}

// SolverOptions returns the engine tuning knobs from the config.
func (c *Config) SolverOptions() schedule.Options {
	return schedule.Options{
		MaxSteps: c.Solver.MaxSteps,
		Timeout:  c.Solver.Timeout.Duration,
	}
}

func parseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(name) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
