package service

import (
	"time"

	"trv_schedule/internal/schedule"
)

// LogFilter supports history filtering by time range, type and weekday.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "FLUSH", "FLUSH_ERROR", "IMPORT", "LOAD_ERROR"
	Day  string    // "", or a weekday name / three-letter abbreviation
}

// FlushReport is the outcome of one flush cycle.
type FlushReport struct {
	Written []schedule.Weekday          `json:"written"`
	Skipped []schedule.Weekday          `json:"skipped"` // dirty but empty, nothing to write
	Failed  map[schedule.Weekday]string `json:"failed,omitempty"`
}

// DragState describes one drag gesture.
type DragState struct {
	ID          string           `json:"id"`
	Day         schedule.Weekday `json:"day"`
	StartMinute int              `json:"start_minute"`
	Minute      int              `json:"minute"`
	Time        string           `json:"time"`
	Ended       bool             `json:"ended"`
}
