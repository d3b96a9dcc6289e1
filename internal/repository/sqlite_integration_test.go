package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trv_schedule/internal/models"
	"trv_schedule/internal/repository"
	"trv_schedule/internal/repository/db"
	"trv_schedule/internal/schedule"
)

func TestRepository_SQLiteRoundTrip(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = conn.Close() }()

	repos := repository.NewRepository(conn)
	ctx := context.Background()

	if _, ok, err := repos.ScheduleRepo.Load(ctx, schedule.Monday); err != nil || ok {
		t.Fatalf("fresh Load() = ok %v err %v; want absent", ok, err)
	}

	for _, v := range []string{"00:00/18", "00:00/18 06:00/21 22:00/16"} {
		if err := repos.ScheduleRepo.Save(ctx, schedule.Monday, v); err != nil {
			t.Fatalf("Save(%q): %v", v, err)
		}
	}
	got, ok, err := repos.ScheduleRepo.Load(ctx, schedule.Monday)
	if err != nil || !ok || got != "00:00/18 06:00/21 22:00/16" {
		t.Fatalf("Load() = (%q, %v, %v)", got, ok, err)
	}

	if err := repos.EventRepo.Append(ctx, models.ScheduleEvent{Type: models.EventFlush, Day: "monday", Description: "ok"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	events, err := repos.EventRepo.List(ctx, time.Time{}, time.Time{}, models.EventFlush, "monday")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 || events[0].Description != "ok" || events[0].EventID == "" {
		t.Fatalf("unexpected events: %+v", events)
	}

	if _, err := repos.Auth.Create("alice", "hash"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repos.Auth.Create(" alice ", "hash2"); !errors.Is(err, repository.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestEventSQLite_ListBoundsAreInclusive(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = conn.Close() }()

	events := repository.NewEventSQLite(conn)
	ctx := context.Background()

	at := time.Date(2025, time.March, 3, 15, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{at.Add(-time.Minute), at, at.Add(time.Minute)} {
		e := models.ScheduleEvent{OccurredAt: ts, Type: models.EventFlush, Day: "monday", Description: string(rune('a' + i))}
		if err := events.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	cases := []struct {
		name     string
		from, to time.Time
		want     []string
	}{
		{"exact instant", at, at, []string{"b"}},
		{"from only", at, time.Time{}, []string{"b", "c"}},
		{"to only", time.Time{}, at, []string{"a", "b"}},
		{"non-UTC bounds", at.In(time.FixedZone("CET", 3600)), at.In(time.FixedZone("EST", -5*3600)), []string{"b"}},
	}
	for _, c := range cases {
		got, err := events.List(ctx, c.from, c.to, "", "")
		if err != nil {
			t.Fatalf("%s: List: %v", c.name, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("%s: got %d events, want %d (%+v)", c.name, len(got), len(c.want), got)
		}
		for i, ev := range got {
			if ev.Description != c.want[i] {
				t.Fatalf("%s: event %d = %q, want %q", c.name, i, ev.Description, c.want[i])
			}
		}
	}
}
