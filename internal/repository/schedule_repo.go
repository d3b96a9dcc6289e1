package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"trv_schedule/internal/schedule"
)

// ScheduleSQLite stores one text value per weekday. It is both the state
// source read at startup and the command sink written on flush.
type ScheduleSQLite struct {
	db *sql.DB
}

func NewScheduleSQLite(db *sql.DB) *ScheduleSQLite {
	return &ScheduleSQLite{db: db}
}

var _ ScheduleRepo = (*ScheduleSQLite)(nil)

const (
	upsertDayScheduleSQL = `
		INSERT INTO day_schedules (day, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectDayScheduleSQL = `SELECT value FROM day_schedules WHERE day = ?`
)

// Save upserts the value for day, stamping updated_at in UTC.
func (r *ScheduleSQLite) Save(ctx context.Context, day schedule.Weekday, value string) error {
	_, err := r.db.ExecContext(ctx, upsertDayScheduleSQL, string(day), value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save schedule %s: %w", day, err)
	}
	return nil
}

// Load returns the stored value for day. A missing row or a blank value is
// reported as ok=false.
func (r *ScheduleSQLite) Load(ctx context.Context, day schedule.Weekday) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, selectDayScheduleSQL, string(day)).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load schedule %s: %w", day, err)
	}
	if strings.TrimSpace(value) == "" {
		return "", false, nil
	}
	return value, true, nil
}
