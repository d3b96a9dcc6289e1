package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	tokenSeparator = " "
	pairSeparator  = "/"
)

// Parse decodes one day from "HH:MM/T HH:MM/T ...".
//
// Tokens past MaxTransitions are dropped without being decoded. Temperatures
// are stored as written, without clamping, and duplicate times are kept.
func Parse(text string) (*DaySchedule, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: schedule is empty", ErrFormat)
	}
	tokens := strings.Split(trimmed, tokenSeparator)
	if len(tokens) > MaxTransitions {
		tokens = tokens[:MaxTransitions]
	}

	ts := make([]Transition, 0, len(tokens))
	for i, tok := range tokens {
		t, err := parseToken(tok)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i+1, err)
		}
		ts = append(ts, t)
	}
	if ts[0].Minute != AnchorMinute {
		return nil, fmt.Errorf("%w: first transition must be 00:00, got %s", ErrFormat, tokens[0])
	}
	return NewDaySchedule(ts...), nil
}

func parseToken(tok string) (Transition, error) {
	timeText, tempText, ok := strings.Cut(tok, pairSeparator)
	if !ok {
		return Transition{}, fmt.Errorf("%w: %q is not TIME/TEMP", ErrFormat, tok)
	}
	minute, err := ToMinutes(timeText)
	if err != nil {
		return Transition{}, err
	}
	if !validMinute(minute) {
		return Transition{}, fmt.Errorf("%w: time %q is outside the day", ErrFormat, timeText)
	}
	temp, err := strconv.ParseFloat(tempText, 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return Transition{}, fmt.Errorf("%w: temperature %q is not a number", ErrFormat, tempText)
	}
	return Transition{Minute: minute, Temperature: temp}, nil
}

// Format encodes the sorted view of day. The earliest transition must be 00:00;
// an empty day has nothing to encode and fails the same way.
func Format(day *DaySchedule) (string, error) {
	sorted := day.Sorted()
	if len(sorted) == 0 || sorted[0].Minute != AnchorMinute {
		return "", fmt.Errorf("%w: first transition must be 00:00", ErrFormat)
	}
	if len(sorted) > MaxTransitions {
		sorted = sorted[:MaxTransitions]
	}

	parts := make([]string, len(sorted))
	for i, t := range sorted {
		parts[i] = t.Time() + pairSeparator + FormatTemperature(t.Temperature)
	}
	return strings.Join(parts, tokenSeparator), nil
}

// FormatTemperature renders t with one decimal and drops a trailing ".0",
// so 21.0 becomes "21" and 21.5 stays "21.5". Halves round away from zero
// (20.25 -> "20.3").
func FormatTemperature(t float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(math.Round(t*10)/10, 'f', 1, 64), ".0")
}
