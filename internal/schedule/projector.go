package schedule

import (
	"fmt"
	"math"
)

// Segment is one renderable stretch of the timeline with a constant temperature.
type Segment struct {
	StartMinute int     `json:"start_minute"`
	EndMinute   int     `json:"end_minute"`
	Temperature float64 `json:"temperature"`
	Color       Color   `json:"color"`
}

// Width is the segment length in minutes. Out-of-order or duplicate times
// yield zero rather than a negative width.
func (s Segment) Width() int {
	if s.EndMinute < s.StartMinute {
		return 0
	}
	return s.EndMinute - s.StartMinute
}

// Share is the fraction of the day covered by the segment.
func (s Segment) Share() float64 {
	return float64(s.Width()) / MinutesPerDay
}

// Project derives the timeline of a day from its sorted view. The last segment
// runs to midnight (minute 1440).
func Project(day *DaySchedule) []Segment {
	sorted := day.Sorted()
	segs := make([]Segment, len(sorted))
	for i, t := range sorted {
		end := MinutesPerDay
		if i+1 < len(sorted) {
			end = sorted[i+1].Minute
		}
		segs[i] = Segment{
			StartMinute: t.Minute,
			EndMinute:   end,
			Temperature: t.Temperature,
			Color:       ColorFor(t.Temperature),
		}
	}
	return segs
}

// Color is an RGB triple rendered as "rgb(r,g,b)".
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// MarshalText makes Color encode as its CSS form in JSON.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the "rgb(r,g,b)" form.
func (c *Color) UnmarshalText(b []byte) error {
	var r, g, bl int
	if _, err := fmt.Sscanf(string(b), "rgb(%d,%d,%d)", &r, &g, &bl); err != nil {
		return fmt.Errorf("color %q: %w", b, err)
	}
	for _, v := range []int{r, g, bl} {
		if v < 0 || v > 255 {
			return fmt.Errorf("color %q: channel out of range", b)
		}
	}
	*c = Color{R: uint8(r), G: uint8(g), B: uint8(bl)}
	return nil
}

const colorGreen = 90

// ColorFor maps a temperature to a blue (cold) .. red (warm) color.
// Red is (t-8)*10 and blue is (30-t)*10, each clamped to 0..255.
func ColorFor(temp float64) Color {
	return Color{
		R: channel((temp - 8) * 10),
		G: colorGreen,
		B: channel((30 - temp) * 10),
	}
}

func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
