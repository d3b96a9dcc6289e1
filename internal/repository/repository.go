package repository

import (
	"context"
	"database/sql"
	"time"

	"trv_schedule/internal/models"
	"trv_schedule/internal/schedule"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// StateSource returns the stored schedule text of a weekday. ok is false when
// nothing is stored.
type StateSource interface {
	Load(ctx context.Context, day schedule.Weekday) (value string, ok bool, err error)
}

// CommandSink persists the formatted schedule text of a weekday.
type CommandSink interface {
	Save(ctx context.Context, day schedule.Weekday, value string) error
}

type ScheduleRepo interface {
	StateSource
	CommandSink
}

type EventRepo interface {
	Append(ctx context.Context, e models.ScheduleEvent) error
	List(ctx context.Context, from, to time.Time, typ, day string) ([]models.ScheduleEvent, error)
}

type Repository struct {
	ScheduleRepo ScheduleRepo
	EventRepo    EventRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ScheduleRepo: NewScheduleSQLite(db),
		EventRepo:    NewEventSQLite(db),
		Auth:         NewUserRepository(db),
	}
}
