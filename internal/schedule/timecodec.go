package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Day boundaries in minutes.
const (
	MinutesPerDay = 24 * 60
	// LastStartMinute is the latest minute a transition may be dragged to (23:55).
	LastStartMinute = MinutesPerDay - SnapMinutes
)

// ToMinutes converts "HH:MM" into H*60+M. Only the shape is checked; range
// validation is left to the caller.
func ToMinutes(text string) (int, error) {
	hh, mm, ok := strings.Cut(text, ":")
	if !ok {
		return 0, fmt.Errorf("%w: time %q has no colon", ErrFormat, text)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q has a non-numeric hour", ErrFormat, text)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q has non-numeric minutes", ErrFormat, text)
	}
	return h*60 + m, nil
}

// ToText formats a minute-of-day as zero-padded "HH:MM".
// The result is only meaningful for 0 <= minutes < MinutesPerDay.
func ToText(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseClock is the strict form of ToMinutes used for user input: hour 0..23,
// minute 0..59, one or two hour digits and exactly two minute digits.
func ParseClock(text string) (int, error) {
	text = strings.TrimSpace(text)
	hh, mm, ok := strings.Cut(text, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !digitsOnly(hh) || !digitsOnly(mm) {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrFormat, text)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: hour in %q must be 00-23", ErrFormat, text)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: minutes in %q must be 00-59", ErrFormat, text)
	}
	return h*60 + m, nil
}

func validMinute(m int) bool {
	return m >= 0 && m < MinutesPerDay
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
