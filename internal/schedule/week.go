package schedule

import (
	"fmt"
	"strings"
)

// Weekday names a day of the schedule week.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the week in display order.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts a full day name or its three-letter abbreviation, in any case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Weekdays {
		if s == string(d) || (len(s) == 3 && strings.HasPrefix(string(d), s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// Short returns the upper-case three-letter label, e.g. "MON".
func (d Weekday) Short() string {
	if len(d) < 3 {
		return strings.ToUpper(string(d))
	}
	return strings.ToUpper(string(d[:3]))
}

// WeekSchedule maps every weekday to its DaySchedule. All seven days are
// always present.
type WeekSchedule struct {
	days map[Weekday]*DaySchedule
}

// NewWeekSchedule returns a week of empty days.
func NewWeekSchedule() *WeekSchedule {
	w := &WeekSchedule{days: make(map[Weekday]*DaySchedule, len(Weekdays))}
	for _, d := range Weekdays {
		w.days[d] = &DaySchedule{}
	}
	return w
}

// Day returns the schedule for d, or nil if d is not a weekday.
func (w *WeekSchedule) Day(d Weekday) *DaySchedule {
	return w.days[d]
}

// Replace swaps in a new schedule for d. A nil day stores an empty one.
func (w *WeekSchedule) Replace(d Weekday, day *DaySchedule) error {
	if _, ok := w.days[d]; !ok {
		return fmt.Errorf("unknown weekday %q", d)
	}
	if day == nil {
		day = &DaySchedule{}
	}
	w.days[d] = day
	return nil
}
