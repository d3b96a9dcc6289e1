package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"trv_schedule/internal/logger"
	"trv_schedule/internal/models"
	"trv_schedule/internal/repository"
	"trv_schedule/internal/schedule"

	"github.com/google/uuid"
)

var (
	ErrUnknownDay      = errors.New("unknown weekday")
	ErrDragNotFound    = errors.New("drag session not found")
	ErrFlushInProgress = errors.New("flush already in progress")
)

// Mutation names reported to the Recorder.
const (
	OpSetText        = "set_text"
	OpAdd            = "add"
	OpSetTemperature = "set_temperature"
	OpDelete         = "delete"
	OpMove           = "move"
	OpDrag           = "drag"
)

// Recorder receives counters about editing and flushing.
type Recorder interface {
	Mutation(op string)
	Flush(result string)
	DragMove()
	DirtyDays(n int)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string) {}
func (nopRecorder) Flush(string)    {}
func (nopRecorder) DragMove()       {}
func (nopRecorder) DirtyDays(int)   {}

// Flush results passed to Recorder.Flush.
const (
	flushOK      = "ok"
	flushError   = "error"
	flushSkipped = "skipped"
)

type dragEntry struct {
	day     schedule.Weekday
	session *schedule.DragSession
}

// ScheduleService hosts the weekly schedule. Every operation names its
// weekday explicitly. Mutations mark the day dirty; Flush writes dirty days
// to every command sink.
type ScheduleService struct {
	mu       sync.Mutex
	week     *schedule.WeekSchedule
	dirty    map[schedule.Weekday]bool
	loadErrs map[schedule.Weekday]string
	lastFail map[schedule.Weekday]string
	drags    map[string]*dragEntry
	flushing bool

	source repository.StateSource
	sinks  []repository.CommandSink
	events repository.EventRepo
	rec    Recorder
	log    *logger.Logger
	now    func() time.Time
}

// NewScheduleService builds an empty week. Call Load to read stored values.
// events, rec and log may be nil.
func NewScheduleService(source repository.StateSource, events repository.EventRepo, rec Recorder, log *logger.Logger, sinks ...repository.CommandSink) *ScheduleService {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &ScheduleService{
		week:     schedule.NewWeekSchedule(),
		dirty:    make(map[schedule.Weekday]bool),
		loadErrs: make(map[schedule.Weekday]string),
		lastFail: make(map[schedule.Weekday]string),
		drags:    make(map[string]*dragEntry),
		source:   source,
		sinks:    sinks,
		events:   events,
		rec:      rec,
		log:      log,
		now:      time.Now,
	}
}

// ParseDay resolves a weekday name or abbreviation.
func ParseDay(s string) (schedule.Weekday, error) {
	d, err := schedule.ParseWeekday(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownDay, s)
	}
	return d, nil
}

// Load reads every weekday once from the state source and replaces the week.
// A value that fails to parse leaves its day empty; the failure is logged and
// shown in the day view. Read errors are joined and returned, the other days
// still load.
func (s *ScheduleService) Load(ctx context.Context) error {
	type loaded struct {
		day    *schedule.DaySchedule
		parseE error
	}
	results := make(map[schedule.Weekday]loaded, len(schedule.Weekdays))
	var errs []error
	for _, wd := range schedule.Weekdays {
		text, ok, err := s.source.Load(ctx, wd)
		if err != nil {
			errs = append(errs, err)
			s.logError("schedule_load_failed", "day", wd, "err", err)
			continue
		}
		if !ok || strings.TrimSpace(text) == "" {
			results[wd] = loaded{}
			continue
		}
		d, err := schedule.Parse(text)
		if err != nil {
			results[wd] = loaded{parseE: err}
			s.logWarn("schedule_load_parse_failed", "day", wd, "value", text, "err", err)
			s.appendEvent(ctx, models.EventLoadError, wd, "stored schedule could not be parsed", map[string]any{
				"value": text, "error": err.Error(),
			})
			continue
		}
		results[wd] = loaded{day: d}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for wd, r := range results {
		_ = s.week.Replace(wd, r.day)
		delete(s.dirty, wd)
		delete(s.loadErrs, wd)
		if r.parseE != nil {
			s.loadErrs[wd] = r.parseE.Error()
		}
		s.dropDragsLocked(wd)
	}
	s.rec.DirtyDays(len(s.dirty))
	return errors.Join(errs...)
}

// Day returns the view of one weekday.
func (s *ScheduleService) Day(day schedule.Weekday) (models.DayView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dayLocked(day)
	if err != nil {
		return models.DayView{}, err
	}
	return s.viewLocked(day, d), nil
}

// Week returns every weekday in display order plus the pending flag.
func (s *ScheduleService) Week() models.WeekView {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := make([]models.DayView, 0, len(schedule.Weekdays))
	for _, wd := range schedule.Weekdays {
		days = append(days, s.viewLocked(wd, s.week.Day(wd)))
	}
	return models.WeekView{Days: days, Pending: s.pendingLocked()}
}

// SetText replaces a day from its text encoding. On failure the day is left
// untouched and its current view is returned with the error, so a caller can
// revert its input.
func (s *ScheduleService) SetText(ctx context.Context, day schedule.Weekday, text string) (models.DayView, error) {
	parsed, parseErr := schedule.Parse(text)

	s.mu.Lock()
	d, err := s.dayLocked(day)
	if err != nil {
		s.mu.Unlock()
		return models.DayView{}, err
	}
	if parseErr != nil {
		view := s.viewLocked(day, d)
		s.mu.Unlock()
		return view, parseErr
	}
	_ = s.week.Replace(day, parsed)
	delete(s.loadErrs, day)
	s.dropDragsLocked(day)
	s.markDirtyLocked(day, OpSetText)
	view := s.viewLocked(day, parsed)
	s.mu.Unlock()

	s.appendEvent(ctx, models.EventImport, day, "schedule replaced from text", map[string]any{"value": view.Text})
	return view, nil
}

// AddTransition validates raw time and temperature input and appends a
// transition. Blank input cancels without mutating.
func (s *ScheduleService) AddTransition(day schedule.Weekday, timeText, tempText string) (models.DayView, error) {
	minute, err := ParseTimeInput(timeText)
	if err != nil {
		return models.DayView{}, err
	}
	temp, err := ParseTemperatureInput(tempText)
	if err != nil {
		return models.DayView{}, err
	}
	return s.mutate(day, OpAdd, func(d *schedule.DaySchedule) error {
		return d.AddTransition(minute, temp)
	})
}

// SetTemperature validates raw temperature input and applies it to the
// transition at sorted position index.
func (s *ScheduleService) SetTemperature(day schedule.Weekday, index int, tempText string) (models.DayView, error) {
	temp, err := ParseTemperatureInput(tempText)
	if err != nil {
		return models.DayView{}, err
	}
	return s.mutate(day, OpSetTemperature, func(d *schedule.DaySchedule) error {
		return d.SetTemperature(index, temp)
	})
}

// DeleteTransition removes the transition at sorted position index.
func (s *ScheduleService) DeleteTransition(day schedule.Weekday, index int) (models.DayView, error) {
	return s.mutate(day, OpDelete, func(d *schedule.DaySchedule) error {
		return d.DeleteTransition(index)
	})
}

// MoveTransition sets the minute of the transition at sorted position index.
func (s *ScheduleService) MoveTransition(day schedule.Weekday, index, minute int) (models.DayView, error) {
	return s.mutate(day, OpMove, func(d *schedule.DaySchedule) error {
		return d.MoveTransition(index, minute)
	})
}

func (s *ScheduleService) mutate(day schedule.Weekday, op string, fn func(*schedule.DaySchedule) error) (models.DayView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dayLocked(day)
	if err != nil {
		return models.DayView{}, err
	}
	if err := fn(d); err != nil {
		return models.DayView{}, err
	}
	s.markDirtyLocked(day, op)
	return s.viewLocked(day, d), nil
}

// BeginDrag starts a drag gesture on the transition at sorted position index.
// A day carries one gesture at a time; starting another ends the previous one.
func (s *ScheduleService) BeginDrag(day schedule.Weekday, index int) (DragState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dayLocked(day)
	if err != nil {
		return DragState{}, err
	}
	session, err := schedule.BeginDrag(d, index)
	if err != nil {
		return DragState{}, err
	}
	s.dropDragsLocked(day)
	id := uuid.NewString()
	s.drags[id] = &dragEntry{day: day, session: session}
	return dragState(id, day, session), nil
}

// MoveDrag applies a pointer displacement of dx pixels on a timeline width
// pixels wide, relative to where the gesture began.
func (s *ScheduleService) MoveDrag(id string, dx, width float64) (DragState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drags[id]
	if !ok {
		return DragState{}, fmt.Errorf("%w: %s", ErrDragNotFound, id)
	}
	if _, err := e.session.Move(dx, width); err != nil {
		return DragState{}, err
	}
	s.markDirtyLocked(e.day, OpDrag)
	s.rec.DragMove()
	return dragState(id, e.day, e.session), nil
}

// EndDrag releases a gesture.
func (s *ScheduleService) EndDrag(id string) (DragState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drags[id]
	if !ok {
		return DragState{}, fmt.Errorf("%w: %s", ErrDragNotFound, id)
	}
	e.session.End()
	delete(s.drags, id)
	return dragState(id, e.day, e.session), nil
}

func dragState(id string, day schedule.Weekday, ds *schedule.DragSession) DragState {
	return DragState{
		ID:          id,
		Day:         day,
		StartMinute: ds.StartMinute(),
		Minute:      ds.Minute(),
		Time:        schedule.ToText(ds.Minute()),
		Ended:       ds.Ended(),
	}
}

// Pending reports whether a day waits for a flush or a flush is running.
func (s *ScheduleService) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

// Dirty lists the days with unflushed changes in week order.
func (s *ScheduleService) Dirty() []schedule.Weekday {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

type flushItem struct {
	day  schedule.Weekday
	text string
}

// Flush writes every dirty day to each command sink, at most once per day and
// sink. Days that fail to format are not written and stay dirty, as do days a
// sink rejects. Dirty empty days have nothing to write and are skipped.
// Only one flush runs at a time; an overlapping call gets ErrFlushInProgress.
//
// A failure is logged and recorded as an event once per distinct message, so
// a day that keeps failing on every cycle does not flood the event log.
func (s *ScheduleService) Flush(ctx context.Context) (FlushReport, error) {
	report := FlushReport{Failed: map[schedule.Weekday]string{}}

	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return report, ErrFlushInProgress
	}
	var (
		batch    []flushItem
		errs     []error
		announce []flushItem
	)
	for _, wd := range s.dirtyLocked() {
		d := s.week.Day(wd)
		if d.Empty() {
			delete(s.dirty, wd)
			delete(s.lastFail, wd)
			report.Skipped = append(report.Skipped, wd)
			s.rec.Flush(flushSkipped)
			continue
		}
		text, err := schedule.Format(d)
		if err != nil {
			report.Failed[wd] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", wd, err))
			s.rec.Flush(flushError)
			if s.noteFailureLocked(wd, err.Error()) {
				announce = append(announce, flushItem{day: wd, text: err.Error()})
			}
			continue
		}
		// Cleared now so edits made while writing mark the day again.
		delete(s.dirty, wd)
		batch = append(batch, flushItem{day: wd, text: text})
	}
	s.flushing = len(batch) > 0
	s.mu.Unlock()

	for _, a := range announce {
		s.logWarn("schedule_flush_format_failed", "day", a.day, "err", a.text)
		s.appendEvent(ctx, models.EventFlushError, a.day, "schedule not written: "+a.text, nil)
	}
	if len(batch) == 0 {
		s.updateDirtyGauge()
		return report, errors.Join(errs...)
	}

	for _, it := range batch {
		err := s.write(ctx, it)

		s.mu.Lock()
		fresh := false
		if err != nil {
			s.dirty[it.day] = true
			fresh = s.noteFailureLocked(it.day, err.Error())
		} else {
			delete(s.lastFail, it.day)
		}
		s.mu.Unlock()

		if err != nil {
			report.Failed[it.day] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", it.day, err))
			s.rec.Flush(flushError)
			if fresh {
				s.logError("schedule_flush_failed", "day", it.day, "err", err)
				s.appendEvent(ctx, models.EventFlushError, it.day, "schedule not written: "+err.Error(), map[string]any{"value": it.text})
			}
			continue
		}
		report.Written = append(report.Written, it.day)
		s.rec.Flush(flushOK)
		s.logInfo("schedule_flushed", "day", it.day, "value", it.text)
		s.appendEvent(ctx, models.EventFlush, it.day, "schedule written", map[string]any{"value": it.text, "sinks": len(s.sinks)})
	}

	s.mu.Lock()
	s.flushing = false
	s.rec.DirtyDays(len(s.dirty))
	s.mu.Unlock()

	return report, errors.Join(errs...)
}

// noteFailureLocked remembers msg for day and reports whether it differs from
// the previous failure.
func (s *ScheduleService) noteFailureLocked(day schedule.Weekday, msg string) bool {
	if s.lastFail[day] == msg {
		return false
	}
	s.lastFail[day] = msg
	return true
}

func (s *ScheduleService) write(ctx context.Context, it flushItem) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Save(ctx, it.day, it.text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ScheduleService) dayLocked(day schedule.Weekday) (*schedule.DaySchedule, error) {
	d := s.week.Day(day)
	if d == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	return d, nil
}

func (s *ScheduleService) viewLocked(wd schedule.Weekday, d *schedule.DaySchedule) models.DayView {
	v := models.DayView{
		Day:         wd,
		Transitions: d.Sorted(),
		Segments:    schedule.Project(d),
		Dirty:       s.dirty[wd],
	}
	if d.Empty() {
		v.Error = s.loadErrs[wd]
		return v
	}
	text, err := schedule.Format(d)
	if err != nil {
		v.Error = err.Error()
		return v
	}
	v.Text = text
	return v
}

func (s *ScheduleService) markDirtyLocked(day schedule.Weekday, op string) {
	s.dirty[day] = true
	s.rec.Mutation(op)
	s.rec.DirtyDays(len(s.dirty))
}

func (s *ScheduleService) dirtyLocked() []schedule.Weekday {
	var out []schedule.Weekday
	for _, wd := range schedule.Weekdays {
		if s.dirty[wd] {
			out = append(out, wd)
		}
	}
	return out
}

func (s *ScheduleService) pendingLocked() bool {
	return s.flushing || len(s.dirty) > 0
}

func (s *ScheduleService) dropDragsLocked(day schedule.Weekday) {
	for id, e := range s.drags {
		if e.day == day {
			e.session.End()
			delete(s.drags, id)
		}
	}
}

func (s *ScheduleService) updateDirtyGauge() {
	s.mu.Lock()
	s.rec.DirtyDays(len(s.dirty))
	s.mu.Unlock()
}

// appendEvent records an audit entry. Failures are logged, never returned.
func (s *ScheduleService) appendEvent(ctx context.Context, typ string, day schedule.Weekday, desc string, meta any) {
	if s.events == nil {
		return
	}
	err := s.events.Append(ctx, models.ScheduleEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Day:         string(day),
		Description: desc,
		Metadata:    meta,
	})
	if err != nil {
		s.logError("schedule_event_append_failed", "type", typ, "day", day, "err", err)
	}
}

func (s *ScheduleService) logInfo(msg string, kv ...any) {
	if s.log != nil {
		s.log.Infow(msg, kv...)
	}
}

func (s *ScheduleService) logWarn(msg string, kv ...any) {
	if s.log != nil {
		s.log.Warnw(msg, kv...)
	}
}

func (s *ScheduleService) logError(msg string, kv ...any) {
	if s.log != nil {
		s.log.Errorw(msg, kv...)
	}
}
