// Package strategy generates a league's required matchups when the
// problem spec doesn't list them explicitly.
package strategy

import (
	"fmt"

	"github.com/camdenleague/sked/internal/problem"
)

// Strategy generates the matchup list for one league.
type Strategy interface {
	Matchups(league string, teams []string) []problem.Matchup
}

// Get returns a Strategy by name.
func Get(name string) (Strategy, error) {
	switch name {
	case "round_robin":
		return &RoundRobin{}, nil
	case "double_round_robin":
		return &DoubleRoundRobin{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// RoundRobin has every pair of teams play once. Home advantage
// alternates by pair index to stay roughly balanced.
type RoundRobin struct{}

func (s *RoundRobin) Matchups(league string, teams []string) []problem.Matchup {
	var matchups []problem.Matchup
	num := 1
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			home, away := teams[i], teams[j]
			if (i+j)%2 == 1 {
				home, away = away, home
			}
			matchups = append(matchups, problem.Matchup{
				ID:     fmt.Sprintf("%s Game %d", league, num),
				League: league,
				Home:   home,
				Away:   away,
			})
			num++
		}
	}
	return matchups
}

// DoubleRoundRobin has every pair play twice with a home/away split.
type DoubleRoundRobin struct{}

func (s *DoubleRoundRobin) Matchups(league string, teams []string) []problem.Matchup {
	var matchups []problem.Matchup
	num := 1
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			matchups = append(matchups,
				problem.Matchup{
					ID:     fmt.Sprintf("%s Game %d", league, num),
					League: league,
					Home:   teams[i],
					Away:   teams[j],
				})
			num++
			matchups = append(matchups,
				problem.Matchup{
					ID:     fmt.Sprintf("%s Game %d", league, num),
					League: league,
					Home:   teams[j],
					Away:   teams[i],
				})
			num++
		}
	}
	return matchups
}
