package schedule

import (
	"fmt"
	"math"
	"sort"
)

// Schedule limits.
const (
	MaxTransitions = 6
	MinTemperature = 4.0
	MaxTemperature = 35.0
	// AnchorMinute is the mandatory first transition of a non-empty day (00:00).
	AnchorMinute = 0
)

// Transition is one point of the day where the target temperature changes.
type Transition struct {
	Minute      int     `json:"minute"`      // minute of day, 0..1439
	Temperature float64 `json:"temperature"` // °C
}

// Time returns the transition time as "HH:MM".
func (t Transition) Time() string { return ToText(t.Minute) }

type entry struct {
	id uint64
	Transition
}

// DaySchedule holds the transitions of one weekday in insertion order.
// Every index taken by its methods is a position in the sorted view.
// The zero value is an empty day, ready to use.
type DaySchedule struct {
	entries []entry
	nextID  uint64
}

// NewDaySchedule builds a day from transitions exactly as given: no clamping,
// no capacity or anchor checks. Parse relies on this.
func NewDaySchedule(ts ...Transition) *DaySchedule {
	d := &DaySchedule{}
	for _, t := range ts {
		d.push(t)
	}
	return d
}

// ClampTemperature bounds t to [MinTemperature, MaxTemperature].
func ClampTemperature(t float64) float64 {
	return math.Min(MaxTemperature, math.Max(MinTemperature, t))
}

// Len returns the number of transitions.
func (d *DaySchedule) Len() int { return len(d.entries) }

// Empty reports whether the day has no schedule configured.
func (d *DaySchedule) Empty() bool { return len(d.entries) == 0 }

// HasAnchor reports whether the earliest transition sits at 00:00.
func (d *DaySchedule) HasAnchor() bool {
	sorted := d.Sorted()
	return len(sorted) > 0 && sorted[0].Minute == AnchorMinute
}

// Sorted returns a fresh copy of the transitions ordered by time; ties keep
// insertion order. The day itself is not modified.
func (d *DaySchedule) Sorted() []Transition {
	order := d.order()
	out := make([]Transition, len(order))
	for i, pos := range order {
		out[i] = d.entries[pos].Transition
	}
	return out
}

// Clone returns an independent copy of the day.
func (d *DaySchedule) Clone() *DaySchedule {
	c := &DaySchedule{
		entries: make([]entry, len(d.entries)),
		nextID:  d.nextID,
	}
	copy(c.entries, d.entries)
	return c
}

// SetTemperature replaces the temperature of the transition at sorted
// position index. The value is clamped to [MinTemperature, MaxTemperature].
func (d *DaySchedule) SetTemperature(index int, temp float64) error {
	if math.IsNaN(temp) {
		return fmt.Errorf("%w: temperature is not a number", ErrInvariant)
	}
	pos, err := d.position(index)
	if err != nil {
		return err
	}
	d.entries[pos].Temperature = ClampTemperature(temp)
	return nil
}

// DeleteTransition removes the transition at sorted position index.
// The 00:00 anchor (index 0) cannot be removed.
func (d *DaySchedule) DeleteTransition(index int) error {
	if index == 0 {
		return fmt.Errorf("%w: the 00:00 transition cannot be deleted", ErrInvariant)
	}
	pos, err := d.position(index)
	if err != nil {
		return err
	}
	d.entries = append(d.entries[:pos], d.entries[pos+1:]...)
	return nil
}

// AddTransition appends a transition. Duplicate times are accepted and end up
// as a zero-width segment when projected.
func (d *DaySchedule) AddTransition(minute int, temp float64) error {
	if len(d.entries) >= MaxTransitions {
		return fmt.Errorf("%w: a day holds at most %d transitions", ErrCapacity, MaxTransitions)
	}
	if !validMinute(minute) {
		return fmt.Errorf("%w: minute %d is outside the day", ErrInvariant, minute)
	}
	if math.IsNaN(temp) {
		return fmt.Errorf("%w: temperature is not a number", ErrInvariant)
	}
	d.push(Transition{Minute: minute, Temperature: ClampTemperature(temp)})
	return nil
}

// MoveTransition relocates the transition at sorted position index to minute.
// The anchor never moves, and the new minute must stay within
// [previous+SnapMinutes, LastStartMinute].
func (d *DaySchedule) MoveTransition(index, minute int) error {
	if index == 0 {
		return fmt.Errorf("%w: the 00:00 transition cannot be moved", ErrInvariant)
	}
	order := d.order()
	if index < 0 || index >= len(order) {
		return d.indexError(index)
	}
	prev := d.entries[order[index-1]].Minute
	if minute < prev+SnapMinutes || minute > LastStartMinute {
		return fmt.Errorf("%w: minute %s must be within %s..%s", ErrInvariant,
			ToText(minute), ToText(prev+SnapMinutes), ToText(LastStartMinute))
	}
	d.entries[order[index]].Minute = minute
	return nil
}

func (d *DaySchedule) push(t Transition) {
	d.nextID++
	d.entries = append(d.entries, entry{id: d.nextID, Transition: t})
}

// order returns entry positions sorted by minute, stable on insertion order.
func (d *DaySchedule) order() []int {
	idx := make([]int, len(d.entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return d.entries[idx[a]].Minute < d.entries[idx[b]].Minute
	})
	return idx
}

func (d *DaySchedule) position(index int) (int, error) {
	order := d.order()
	if index < 0 || index >= len(order) {
		return 0, d.indexError(index)
	}
	return order[index], nil
}

func (d *DaySchedule) indexError(index int) error {
	return fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvariant, index, len(d.entries))
}

// idAt returns the stable identity of the transition at sorted position index.
func (d *DaySchedule) idAt(index int) (uint64, error) {
	pos, err := d.position(index)
	if err != nil {
		return 0, err
	}
	return d.entries[pos].id, nil
}

// setMinuteByID moves the transition with the given identity, wherever it now
// sits in the sorted view.
func (d *DaySchedule) setMinuteByID(id uint64, minute int) error {
	for i := range d.entries {
		if d.entries[i].id == id {
			d.entries[i].Minute = minute
			return nil
		}
	}
	return fmt.Errorf("%w: dragged transition no longer exists", ErrInvariant)
}
