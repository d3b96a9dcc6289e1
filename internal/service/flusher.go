package service

import (
	"context"
	"errors"
	"time"

	"trv_schedule/internal/logger"
	"trv_schedule/internal/schedule"
)

// flushTarget is the part of the schedule the loop drives.
type flushTarget interface {
	Dirty() []schedule.Weekday
	Flush(ctx context.Context) (FlushReport, error)
}

// FlusherService writes dirty days on a fixed interval, so edits made within
// one interval coalesce into a single write per day.
type FlusherService struct {
	target flushTarget
	log    *logger.Logger
}

func NewFlusherService(target flushTarget, log *logger.Logger) *FlusherService {
	return &FlusherService{target: target, log: log}
}

// Run ticks at the given interval until ctx is canceled.
func (f *FlusherService) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			f.tick(ctx)
		}
	}
}

func (f *FlusherService) tick(ctx context.Context) {
	if len(f.target.Dirty()) == 0 {
		return
	}
	report, err := f.target.Flush(ctx)
	switch {
	case errors.Is(err, ErrFlushInProgress):
		// the running flush or the next tick picks these days up
	case err != nil:
		if f.log != nil {
			f.log.Warnw("schedule_flush_incomplete", "written", report.Written, "failed", report.Failed, "err", err)
		}
	}
}
