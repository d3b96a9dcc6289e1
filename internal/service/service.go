package service

import (
	"context"
	"time"

	"trv_schedule/internal/logger"
	"trv_schedule/internal/models"
	"trv_schedule/internal/repository"
	"trv_schedule/internal/schedule"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Schedule edits the weekly schedule. Every operation takes its weekday.
type Schedule interface {
	Load(ctx context.Context) error
	Day(day schedule.Weekday) (models.DayView, error)
	Week() models.WeekView
	SetText(ctx context.Context, day schedule.Weekday, text string) (models.DayView, error)
	AddTransition(day schedule.Weekday, timeText, tempText string) (models.DayView, error)
	SetTemperature(day schedule.Weekday, index int, tempText string) (models.DayView, error)
	DeleteTransition(day schedule.Weekday, index int) (models.DayView, error)
	MoveTransition(day schedule.Weekday, index, minute int) (models.DayView, error)
	BeginDrag(day schedule.Weekday, index int) (DragState, error)
	MoveDrag(id string, dx, width float64) (DragState, error)
	EndDrag(id string) (DragState, error)
	Pending() bool
	Dirty() []schedule.Weekday
	Flush(ctx context.Context) (FlushReport, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ScheduleEvent, error)
}

// Flusher runs the background loop that writes dirty days.
// Stop via context cancellation in main() for graceful shutdown.
type Flusher interface {
	Run(ctx context.Context, interval time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Schedule
	EventLog
	Flusher
	Authorization
}

// Options carries what the services need beyond the repositories.
type Options struct {
	SigningKey string
	TokenTTL   time.Duration
	// Sinks receive flushed days in addition to the schedule repository.
	Sinks    []repository.CommandSink
	Recorder Recorder
	Logger   *logger.Logger
}

// NewService wires the repository layer into concrete services. The schedule
// repository is both the state source and the first command sink.
func NewService(repos *repository.Repository, opts Options) *Service {
	sinks := append([]repository.CommandSink{repos.ScheduleRepo}, opts.Sinks...)
	sched := NewScheduleService(repos.ScheduleRepo, repos.EventRepo, opts.Recorder, opts.Logger, sinks...)
	return &Service{
		Schedule:      sched,
		EventLog:      NewEventLogService(repos.EventRepo),
		Flusher:       NewFlusherService(sched, opts.Logger),
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
	}
}
