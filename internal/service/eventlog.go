package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trv_schedule/internal/models"
	"trv_schedule/internal/repository"
	"trv_schedule/internal/schedule"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeDay resolves a weekday filter; blank means all days.
func normalizeDay(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	d, err := schedule.ParseWeekday(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownDay, err)
	}
	return string(d), nil
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", "", errInvalidTimeRange
	}
	day, err := normalizeDay(f.Day)
	if err != nil {
		return time.Time{}, time.Time{}, "", "", err
	}

	return from, to, normalizeEventType(f.Type), day, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ScheduleEvent, error) {
	from, to, typ, day, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ, day)
}
