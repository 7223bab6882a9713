package schedule

import (
	"sort"
	"time"

	"github.com/camdenleague/sked/internal/problem"
)

// Slot is a candidate game placement: a field, a start timestamp, and
// the duration derived from the field's increment.
type Slot struct {
	FieldID  string
	Start    time.Time
	Duration time.Duration
}

// End returns the exclusive end of the slot interval.
func (s Slot) End() time.Time {
	return s.Start.Add(s.Duration)
}

// Overlaps reports whether two slot intervals intersect in time,
// regardless of field.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End()) && o.Start.Before(s.End())
}

// Date returns the slot's calendar date at midnight UTC.
func (s Slot) Date() time.Time {
	y, mo, d := s.Start.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// FieldSlots generates every legal slot for one field across the
// season: a pure function of the model, restartable and deterministic.
// The walk goes day by day; days with no matching availability rule
// are closed, enabled field exclusion dates drop the whole day, and
// slots intersecting an enabled season-wide exclusion window are
// dropped. Overlapping open ranges are unioned before being cut into
// increment-length slots, with no partial trailing slot.
func FieldSlots(m *problem.Model, f *problem.Field) []Slot {
	inc := m.Increment(f.ID)
	incMinutes := int(inc / time.Minute)
	if incMinutes <= 0 {
		return nil
	}

	var slots []Slot
	for d := m.Season.Start; !d.After(m.Season.End); d = d.AddDate(0, 0, 1) {
		if m.FieldClosed(f.ID, d) {
			continue
		}

		for _, r := range openRanges(f, d) {
			for t := r.open; t+incMinutes <= r.close; t += incMinutes {
				start := d.Add(time.Duration(t) * time.Minute)
				if m.SeasonExcluded(start, start.Add(inc)) {
					continue
				}
				slots = append(slots, Slot{FieldID: f.ID, Start: start, Duration: inc})
			}
		}
	}

	return slots
}

// SlotsByField generates the legal slot calendar for every field.
func SlotsByField(m *problem.Model) map[string][]Slot {
	calendars := make(map[string][]Slot, len(m.Fields))
	for i := range m.Fields {
		f := &m.Fields[i]
		calendars[f.ID] = FieldSlots(m, f)
	}
	return calendars
}

// AllSlots flattens the per-field calendars into one list sorted by
// (date, time, field id), the solver's default traversal order.
func AllSlots(calendars map[string][]Slot) []Slot {
	var all []Slot
	for _, slots := range calendars {
		all = append(all, slots...)
	}
	SortSlots(all)
	return all
}

// SortSlots orders slots by start time, then field id.
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		return slots[i].FieldID < slots[j].FieldID
	})
}

type minuteRange struct {
	open, close int
}

// openRanges collects the field's open time ranges for one date and
// merges any that overlap or touch.
func openRanges(f *problem.Field, date time.Time) []minuteRange {
	var ranges []minuteRange
	for _, r := range f.Rules {
		if !r.AppliesTo(date) {
			continue
		}
		if r.Close <= r.Open {
			continue // zero-length range yields no slots
		}
		ranges = append(ranges, minuteRange{r.Open, r.Close})
	}
	if len(ranges) <= 1 {
		return ranges
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].open < ranges[j].open })
	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.open <= last.close {
			if r.close > last.close {
				last.close = r.close
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
