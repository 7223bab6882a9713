package schedule

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/camdenleague/sked/internal/problem"
)

// DefaultMaxSteps bounds the search when Options.MaxSteps is unset.
const DefaultMaxSteps = 50000

// Options are the engine-level tuning knobs for a solve. They are not
// domain data and are never persisted.
type Options struct {
	// MaxSteps caps the number of candidate-slot probes (each commit
	// attempt counts as one step). 0 uses DefaultMaxSteps.
	MaxSteps int

	// Timeout is an optional wall-clock cap, checked cooperatively
	// between steps. 0 disables it.
	Timeout time.Duration

	// Logger receives search diagnostics. nil logs nothing.
	Logger *zerolog.Logger
}

// Solve assigns each matchup to a slot, respecting team and season
// exclusions and never double-booking a field or a team. Matchups are
// treated as variables over slot domains, ordered most-constrained
// first; placement is greedy on the earliest compatible slot with
// backtracking on dead ends. The search stops at the step or
// wall-clock budget and reports whatever it could not place rather
// than looping indefinitely. Identical inputs produce identical
// results.
func Solve(m *problem.Model, calendars map[string][]Slot, opts Options) *Result {
	s := newSolver(m, calendars, opts)
	s.run()

	result := &Result{
		Unresolved:     s.unresolved,
		Steps:          s.steps,
		Backtracks:     s.backtracks,
		BudgetExceeded: s.budgetHit,
	}
	for _, v := range s.vars {
		if v.placed {
			result.Games = append(result.Games, ScheduledGame{Matchup: v.matchup, Slot: v.slot})
		}
	}
	SortGames(result.Games)

	s.log.Info().
		Int("committed", len(result.Games)).
		Int("unresolved", len(result.Unresolved)).
		Int("steps", s.steps).
		Int("backtracks", s.backtracks).
		Bool("budget_exceeded", s.budgetHit).
		Msg("solve finished")

	return result
}

type slotKey struct {
	field string
	start int64
}

func keyOf(s Slot) slotKey {
	return slotKey{s.FieldID, s.Start.Unix()}
}

// variable is one matchup with its candidate slot domain. The cursor
// advances monotonically through the domain; backtracking resets it
// only for the matchup being retried, never for the displaced one, so
// a displaced matchup always moves on to its next candidate.
type variable struct {
	matchup   problem.Matchup
	domain    []Slot
	domainSet map[slotKey]bool
	cursor    int
	placed    bool
	slot      Slot
}

type solver struct {
	m    *problem.Model
	vars []*variable

	used     map[slotKey]int // committed slot -> var index
	teamBusy map[string][]Slot
	trail    []int // var indexes in commit order

	unresolved []UnresolvedMatchup

	steps      int
	backtracks int
	maxSteps   int
	deadline   time.Time
	budgetHit  bool

	log zerolog.Logger
}

func newSolver(m *problem.Model, calendars map[string][]Slot, opts Options) *solver {
	s := &solver{
		m:        m,
		used:     make(map[slotKey]int),
		teamBusy: make(map[string][]Slot),
		maxSteps: opts.MaxSteps,
		log:      zerolog.Nop(),
	}
	if s.maxSteps <= 0 {
		s.maxSteps = DefaultMaxSteps
	}
	if opts.Timeout > 0 {
		s.deadline = time.Now().Add(opts.Timeout)
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}

	all := AllSlots(calendars)
	for _, mu := range m.Matchups {
		v := &variable{matchup: mu, domainSet: make(map[slotKey]bool)}
		for _, slot := range all {
			if s.compatible(mu, slot) {
				v.domain = append(v.domain, slot)
				v.domainSet[keyOf(slot)] = true
			}
		}
		s.vars = append(s.vars, v)
	}

	return s
}

// compatible reports whether a slot is in a matchup's domain: not
// excluded for either participating team. Season-wide and field
// exclusions were already applied by the slot calendar.
func (s *solver) compatible(mu problem.Matchup, slot Slot) bool {
	for _, team := range mu.Teams() {
		if s.m.TeamExcluded(team, slot.Start, slot.End()) {
			return false
		}
	}
	return true
}

func (s *solver) run() {
	// Most-constrained-first; ties keep input order for reproducibility.
	order := make([]int, len(s.vars))
	for i := range order {
		order[i] = i
	}
	domainSize := make([]int, len(s.vars))
	for i, v := range s.vars {
		domainSize[i] = len(v.domain)
	}
	stableSortBy(order, func(a, b int) bool { return domainSize[a] < domainSize[b] })

	pending := order
	for len(pending) > 0 {
		vi := pending[0]
		v := s.vars[vi]

		if len(v.domain) == 0 {
			s.unresolved = append(s.unresolved, UnresolvedMatchup{v.matchup, ReasonNoCompatibleSlot})
			pending = pending[1:]
			continue
		}

		placed := false
		for v.cursor < len(v.domain) {
			if s.exhausted() {
				s.stopOnBudget(pending)
				return
			}
			s.steps++
			slot := v.domain[v.cursor]
			v.cursor++
			if s.conflicts(v, slot) {
				continue
			}
			s.commit(vi, slot)
			placed = true
			break
		}
		if placed {
			pending = pending[1:]
			continue
		}

		victim := s.findVictim(v)
		if victim < 0 {
			// Nothing committed conflicts with this matchup, so freeing
			// slots can't help it.
			s.unresolved = append(s.unresolved, UnresolvedMatchup{v.matchup, ReasonNoCompatibleSlot})
			pending = pending[1:]
			continue
		}

		s.backtracks++
		s.log.Debug().
			Str("matchup", v.matchup.ID).
			Str("displaced", s.vars[victim].matchup.ID).
			Msg("backtracking")
		s.uncommit(victim)
		v.cursor = 0
		pending = append([]int{vi, victim}, pending[1:]...)
	}
}

func (s *solver) exhausted() bool {
	if s.steps >= s.maxSteps {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// stopOnBudget marks everything still pending as unresolved. Already
// committed games stay committed: the partial result is well-formed.
func (s *solver) stopOnBudget(pending []int) {
	s.budgetHit = true
	for _, vi := range pending {
		v := s.vars[vi]
		if v.placed {
			continue
		}
		reason := ReasonBudgetExceeded
		if len(v.domain) == 0 {
			reason = ReasonNoCompatibleSlot
		}
		s.unresolved = append(s.unresolved, UnresolvedMatchup{v.matchup, reason})
	}
}

// conflicts reports whether committing the slot would double-book the
// field or overlap another game of either team.
func (s *solver) conflicts(v *variable, slot Slot) bool {
	if _, taken := s.used[keyOf(slot)]; taken {
		return true
	}
	for _, team := range v.matchup.Teams() {
		for _, busy := range s.teamBusy[team] {
			if busy.Overlaps(slot) {
				return true
			}
		}
	}
	return false
}

func (s *solver) commit(vi int, slot Slot) {
	v := s.vars[vi]
	v.placed = true
	v.slot = slot
	s.used[keyOf(slot)] = vi
	for _, team := range v.matchup.Teams() {
		s.teamBusy[team] = append(s.teamBusy[team], slot)
	}
	s.trail = append(s.trail, vi)
}

func (s *solver) uncommit(vi int) {
	v := s.vars[vi]
	delete(s.used, keyOf(v.slot))
	for _, team := range v.matchup.Teams() {
		busy := s.teamBusy[team]
		for i, b := range busy {
			if keyOf(b) == keyOf(v.slot) {
				s.teamBusy[team] = append(busy[:i], busy[i+1:]...)
				break
			}
		}
	}
	for i := len(s.trail) - 1; i >= 0; i-- {
		if s.trail[i] == vi {
			s.trail = append(s.trail[:i], s.trail[i+1:]...)
			break
		}
	}
	v.placed = false
}

// findVictim returns the most recently committed matchup that shares
// a conflicting resource with v: a common team, or a slot inside v's
// domain.
func (s *solver) findVictim(v *variable) int {
	for i := len(s.trail) - 1; i >= 0; i-- {
		wi := s.trail[i]
		w := s.vars[wi]
		if sharesTeam(v.matchup, w.matchup) || v.domainSet[keyOf(w.slot)] {
			return wi
		}
	}
	return -1
}

func sharesTeam(a, b problem.Matchup) bool {
	for _, ta := range a.Teams() {
		for _, tb := range b.Teams() {
			if ta == tb {
				return true
			}
		}
	}
	return false
}

// stableSortBy is an insertion sort: stable, and the slices involved
// are small enough that it beats reaching for sort.SliceStable.
func stableSortBy(xs []int, less func(a, b int) bool) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && less(xs[j], xs[j-1]); j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
