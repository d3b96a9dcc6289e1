package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"trv_schedule/internal/schedule"
)

var (
	// ErrInputCancelled means no value was supplied; callers apply no mutation.
	ErrInputCancelled = errors.New("input cancelled")
	// ErrInvalidInput means the supplied value could not be understood.
	ErrInvalidInput = errors.New("invalid input")
)

// ParseTimeInput validates a user supplied "H:MM" or "HH:MM" time and returns
// its minute of day. Blank input is a cancellation.
func ParseTimeInput(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInputCancelled
	}
	m, err := schedule.ParseClock(s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q, expected HH:MM between 00:00 and 23:59", ErrInvalidInput, s)
	}
	return m, nil
}

// ParseTemperatureInput validates a user supplied temperature and clamps it
// to the allowed range. A comma is accepted as the decimal separator.
func ParseTemperatureInput(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInputCancelled
	}
	t, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("%w: temperature %q is not a number", ErrInvalidInput, s)
	}
	return schedule.ClampTemperature(t), nil
}
