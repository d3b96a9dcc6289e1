package models

import "time"

// Schedule event types.
const (
	EventFlush      = "FLUSH"       // a day was written to a command sink
	EventFlushError = "FLUSH_ERROR" // a day could not be formatted or written
	EventImport     = "IMPORT"      // a day was replaced from schedule text
	EventLoadError  = "LOAD_ERROR"  // a stored value failed to parse at load
)

// ScheduleEvent is a single audit log entry.
type ScheduleEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`          // FLUSH | FLUSH_ERROR | IMPORT | LOAD_ERROR
	Day         string    `json:"day,omitempty"` // monday..sunday
	Description string    `json:"description"`   // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
