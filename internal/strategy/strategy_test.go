package strategy

import (
	"testing"
)

var teams = []string{"Angels", "Astros", "Cubs", "Dodgers"}

type pair struct {
	a, b string
}

func pairOf(home, away string) pair {
	if home < away {
		return pair{home, away}
	}
	return pair{away, home}
}

func TestGet(t *testing.T) {
	t.Run("round_robin", func(t *testing.T) {
		s, err := Get("round_robin")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if _, ok := s.(*RoundRobin); !ok {
			t.Errorf("got %T, want *RoundRobin", s)
		}
	})

	t.Run("double_round_robin", func(t *testing.T) {
		s, err := Get("double_round_robin")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if _, ok := s.(*DoubleRoundRobin); !ok {
			t.Errorf("got %T, want *DoubleRoundRobin", s)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Get("swiss"); err == nil {
			t.Error("expected an error for an unknown strategy")
		}
	})
}

func TestRoundRobin(t *testing.T) {
	matchups := (&RoundRobin{}).Matchups("Majors", teams)

	// C(4,2) pairs, each once.
	if len(matchups) != 6 {
		t.Fatalf("got %d matchups, want 6", len(matchups))
	}

	seen := make(map[pair]int)
	for _, m := range matchups {
		seen[pairOf(m.Home, m.Away)]++
		if m.League != "Majors" {
			t.Errorf("matchup %s has league %q", m.ID, m.League)
		}
	}
	for p, count := range seen {
		if count != 1 {
			t.Errorf("%s vs %s appears %d times, want 1", p.a, p.b, count)
		}
	}

	if got, want := matchups[0].ID, "Majors Game 1"; got != want {
		t.Errorf("first matchup id %q, want %q", got, want)
	}
	if got, want := matchups[5].ID, "Majors Game 6"; got != want {
		t.Errorf("last matchup id %q, want %q", got, want)
	}
}

func TestRoundRobinAlternatesHome(t *testing.T) {
	matchups := (&RoundRobin{}).Matchups("Majors", teams)

	home := make(map[string]int)
	for _, m := range matchups {
		home[m.Home]++
	}
	// Four teams, six games: no team should host everything or nothing.
	for _, team := range teams {
		if home[team] == 0 || home[team] == 3 {
			t.Errorf("%s hosts %d of 3 games", team, home[team])
		}
	}
}

func TestDoubleRoundRobin(t *testing.T) {
	matchups := (&DoubleRoundRobin{}).Matchups("Majors", teams)

	if len(matchups) != 12 {
		t.Fatalf("got %d matchups, want 12", len(matchups))
	}

	// Each pair plays twice, once hosted by each side.
	hosted := make(map[pair]map[string]bool)
	for _, m := range matchups {
		p := pairOf(m.Home, m.Away)
		if hosted[p] == nil {
			hosted[p] = make(map[string]bool)
		}
		hosted[p][m.Home] = true
	}
	if len(hosted) != 6 {
		t.Fatalf("got %d distinct pairs, want 6", len(hosted))
	}
	for p, homes := range hosted {
		if len(homes) != 2 {
			t.Errorf("%s vs %s hosted by %d sides, want 2", p.a, p.b, len(homes))
		}
	}
}

func TestMatchupIDsAreUnique(t *testing.T) {
	for _, name := range []string{"round_robin", "double_round_robin"} {
		s, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q) error: %v", name, err)
		}
		seen := make(map[string]bool)
		for _, m := range s.Matchups("Minors", teams) {
			if seen[m.ID] {
				t.Errorf("%s: duplicate matchup id %q", name, m.ID)
			}
			seen[m.ID] = true
		}
	}
}
