package schedule

import (
	"fmt"
	"math"
)

// SnapMinutes is the drag granularity and the minimum gap to the previous transition.
const SnapMinutes = 5

// SnapDelta converts a pointer displacement dx on a timeline width pixels wide
// into a minute offset rounded to SnapMinutes. Halves round up, so -2.5 steps
// become -2.
func SnapDelta(dx, width float64) int {
	steps := (dx / width) * MinutesPerDay / SnapMinutes
	return int(math.Floor(steps+0.5)) * SnapMinutes
}

// ClampDragMinute bounds a candidate minute to [prev+SnapMinutes, LastStartMinute].
// The lower bound wins if the two cross.
func ClampDragMinute(prev, minute int) int {
	if minute > LastStartMinute {
		minute = LastStartMinute
	}
	if lower := prev + SnapMinutes; minute < lower {
		minute = lower
	}
	return minute
}

// DragSession repositions one transition across a drag gesture. The start
// minute and the previous neighbour are captured once, when the gesture
// begins, and every Move recomputes from them so repeated moves do not drift.
//
// The next neighbour is not a bound: dragging past it reorders the day.
type DragSession struct {
	day      *DaySchedule
	id       uint64
	startMin int
	prevMin  int
	lastMin  int
	ended    bool
}

// BeginDrag starts dragging the transition at sorted position index.
// The 00:00 anchor (index 0) is not draggable.
func BeginDrag(day *DaySchedule, index int) (*DragSession, error) {
	if index == 0 {
		return nil, fmt.Errorf("%w: the 00:00 transition cannot be dragged", ErrInvariant)
	}
	sorted := day.Sorted()
	if index < 0 || index >= len(sorted) {
		return nil, day.indexError(index)
	}
	prev := sorted[index-1].Minute
	if prev+SnapMinutes > LastStartMinute {
		return nil, fmt.Errorf("%w: no room after %s to drag into", ErrInvariant, ToText(prev))
	}
	id, err := day.idAt(index)
	if err != nil {
		return nil, err
	}
	start := sorted[index].Minute
	return &DragSession{day: day, id: id, startMin: start, prevMin: prev, lastMin: start}, nil
}

// StartMinute is the minute the dragged transition had when the gesture began.
func (s *DragSession) StartMinute() int { return s.startMin }

// Minute is the last applied minute.
func (s *DragSession) Minute() int { return s.lastMin }

// Move applies a pointer displacement of dx pixels on a timeline width pixels
// wide and returns the resulting minute.
func (s *DragSession) Move(dx, width float64) (int, error) {
	if s.ended {
		return 0, fmt.Errorf("%w: drag gesture already ended", ErrInvariant)
	}
	if !(width > 0) || math.IsInf(width, 0) || math.IsNaN(dx) || math.IsInf(dx, 0) {
		return 0, fmt.Errorf("%w: invalid drag geometry dx=%v width=%v", ErrInvariant, dx, width)
	}
	m := ClampDragMinute(s.prevMin, s.startMin+SnapDelta(dx, width))
	if err := s.day.setMinuteByID(s.id, m); err != nil {
		return 0, err
	}
	s.lastMin = m
	return m, nil
}

// End releases the gesture. Further moves fail.
func (s *DragSession) End() { s.ended = true }

// Ended reports whether End has been called.
func (s *DragSession) Ended() bool { return s.ended }
