package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"trv_schedule/internal/models"
	"trv_schedule/internal/schedule"
)

func TestScheduleService_FlushWritesDirtyDaysOnce(t *testing.T) {
	svc, store, events, rec := newLoadedService(t, map[schedule.Weekday]string{
		schedule.Monday:  "00:00/18 06:00/21",
		schedule.Tuesday: "00:00/18",
	})
	mirror := newFakeStore(nil)
	svc.sinks = append(svc.sinks, mirror)

	for i := 0; i < 3; i++ {
		if _, err := svc.SetTemperature(schedule.Monday, 1, "20"); err != nil {
			t.Fatalf("SetTemperature: %v", err)
		}
	}

	report, err := svc.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(report.Written) != 1 || report.Written[0] != schedule.Monday || len(report.Failed) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, sink := range []*fakeStore{store, mirror} {
		got := sink.saved()
		if len(got) != 1 || got[0] != (savedValue{day: schedule.Monday, value: "00:00/18 06:00/20"}) {
			t.Fatalf("sink saves = %+v", got)
		}
	}
	if svc.Pending() || len(svc.Dirty()) != 0 {
		t.Fatalf("nothing should remain pending")
	}
	if got := events.types(); len(got) != 1 || got[0] != models.EventFlush {
		t.Fatalf("events = %v", got)
	}
	if rec.flushes[flushOK] != 1 || rec.dirty != 0 {
		t.Fatalf("recorder = %+v", rec)
	}

	// A clean week writes nothing.
	report, err = svc.Flush(context.Background())
	if err != nil || len(report.Written) != 0 {
		t.Fatalf("second flush = %+v, %v", report, err)
	}
	if len(store.saved()) != 1 {
		t.Fatalf("clean flush must not write")
	}
}

func TestScheduleService_FlushSkipsUnformattableDay(t *testing.T) {
	svc, store, events, _ := newLoadedService(t, map[schedule.Weekday]string{
		schedule.Monday: "00:00/18",
	})
	if _, err := svc.AddTransition(schedule.Saturday, "08:00", "20"); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	if _, err := svc.AddTransition(schedule.Monday, "08:00", "20"); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}

	report, err := svc.Flush(context.Background())
	if !errors.Is(err, schedule.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if _, failed := report.Failed[schedule.Saturday]; !failed {
		t.Fatalf("saturday should be reported failed: %+v", report)
	}
	if len(report.Written) != 1 || report.Written[0] != schedule.Monday {
		t.Fatalf("monday should still be written: %+v", report)
	}
	for _, s := range store.saved() {
		if s.day == schedule.Saturday {
			t.Fatalf("unformattable day must not be persisted")
		}
	}
	if got := svc.Dirty(); len(got) != 1 || got[0] != schedule.Saturday {
		t.Fatalf("saturday should stay dirty, got %v", got)
	}

	// Repeated failures are recorded once.
	if _, err := svc.Flush(context.Background()); err == nil {
		t.Fatalf("expected the failure to repeat")
	}
	n := 0
	for _, typ := range events.types() {
		if typ == models.EventFlushError {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected one FLUSH_ERROR event, got %d", n)
	}
}

func TestScheduleService_FlushKeepsRejectedDayDirty(t *testing.T) {
	svc, store, _, rec := newLoadedService(t, map[schedule.Weekday]string{
		schedule.Monday: "00:00/18",
	})
	sinkErr := errors.New("broker offline")
	store.saveErr[schedule.Monday] = sinkErr

	if _, err := svc.SetTemperature(schedule.Monday, 0, "19"); err != nil {
		t.Fatalf("SetTemperature: %v", err)
	}
	report, err := svc.Flush(context.Background())
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if report.Failed[schedule.Monday] == "" || !svc.Pending() {
		t.Fatalf("monday should stay pending: %+v", report)
	}
	if rec.flushes[flushError] != 1 {
		t.Fatalf("recorder flushes = %v", rec.flushes)
	}

	delete(store.saveErr, schedule.Monday)
	if _, err := svc.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if svc.Pending() {
		t.Fatalf("retry should clear the dirty flag")
	}
}

func TestScheduleService_FlushNeverOverlaps(t *testing.T) {
	svc, store, _, _ := newLoadedService(t, map[schedule.Weekday]string{
		schedule.Monday: "00:00/18",
	})
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 1)

	if _, err := svc.SetTemperature(schedule.Monday, 0, "19"); err != nil {
		t.Fatalf("SetTemperature: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Flush(context.Background())
		done <- err
	}()
	<-store.entered

	if !svc.Pending() {
		t.Fatalf("an in-flight flush must count as pending")
	}
	if _, err := svc.Flush(context.Background()); !errors.Is(err, ErrFlushInProgress) {
		t.Fatalf("expected ErrFlushInProgress, got %v", err)
	}
	// An edit during the write marks the day again.
	if _, err := svc.SetTemperature(schedule.Monday, 0, "20"); err != nil {
		t.Fatalf("SetTemperature: %v", err)
	}

	close(store.block)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first flush: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("flush did not finish")
	}
	if got := svc.Dirty(); len(got) != 1 || got[0] != schedule.Monday {
		t.Fatalf("edit during flush should leave monday dirty, got %v", got)
	}
}

func TestScheduleService_FlushSkipsDirtyEmptyDay(t *testing.T) {
	svc, store, _, _ := newLoadedService(t, nil)
	svc.mu.Lock()
	svc.dirty[schedule.Wednesday] = true
	svc.mu.Unlock()

	report, err := svc.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != schedule.Wednesday {
		t.Fatalf("expected wednesday skipped, got %+v", report)
	}
	if len(store.saved()) != 0 || svc.Pending() {
		t.Fatalf("empty day must not be written nor stay pending")
	}
}

// fakeFlushTarget counts flushes driven by the loop.
type fakeFlushTarget struct {
	dirty   []schedule.Weekday
	err     error
	flushes chan struct{}
}

func (f *fakeFlushTarget) Dirty() []schedule.Weekday { return f.dirty }

func (f *fakeFlushTarget) Flush(context.Context) (FlushReport, error) {
	f.flushes <- struct{}{}
	return FlushReport{}, f.err
}

func TestFlusherService_FlushesWhenDirty(t *testing.T) {
	target := &fakeFlushTarget{dirty: []schedule.Weekday{schedule.Monday}, flushes: make(chan struct{}, 8)}
	f := NewFlusherService(target, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		f.Run(ctx, 5*time.Millisecond)
		close(stopped)
	}()

	select {
	case <-target.flushes:
	case <-time.After(time.Second):
		t.Fatalf("expected a flush")
	}
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop on cancel")
	}
}

func TestFlusherService_TickIdleWhenClean(t *testing.T) {
	target := &fakeFlushTarget{flushes: make(chan struct{}, 1)}
	f := NewFlusherService(target, nil)

	f.tick(context.Background())
	if len(target.flushes) != 0 {
		t.Fatalf("clean schedule must not flush")
	}

	target.dirty = []schedule.Weekday{schedule.Friday}
	target.err = ErrFlushInProgress
	f.tick(context.Background())
	if len(target.flushes) != 1 {
		t.Fatalf("dirty schedule should flush once")
	}
}
