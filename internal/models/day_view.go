package models

import "trv_schedule/internal/schedule"

// DayView is the read model of one weekday served to front ends.
type DayView struct {
	Day         schedule.Weekday      `json:"day"`
	Text        string                `json:"text"` // "" when no valid schedule is configured
	Transitions []schedule.Transition `json:"transitions"`
	Segments    []schedule.Segment    `json:"segments"`
	Dirty       bool                  `json:"dirty"`
	Error       string                `json:"error,omitempty"` // why Text could not be produced
}

// WeekView is the whole week plus the pending-save indicator.
type WeekView struct {
	Days    []DayView `json:"days"`
	Pending bool      `json:"pending"`
}
