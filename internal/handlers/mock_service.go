package handlers

import (
	"context"
	"net/http"
	"time"

	"trv_schedule/internal/models"
	"trv_schedule/internal/schedule"
	"trv_schedule/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

// mockSchedule returns canned views and records the last call's arguments.
type mockSchedule struct {
	week   models.WeekView
	view   models.DayView
	drag   service.DragState
	report service.FlushReport
	err    error

	pending bool

	lastDay    schedule.Weekday
	lastText   string
	lastTime   string
	lastTemp   string
	lastIndex  int
	lastMinute int
	lastDragID string
	lastDx     float64
	lastWidth  float64
	calls      map[string]int
}

func (m *mockSchedule) called(name string) {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

func (m *mockSchedule) Load(ctx context.Context) error {
	m.called("Load")
	return m.err
}
func (m *mockSchedule) Day(day schedule.Weekday) (models.DayView, error) {
	m.called("Day")
	m.lastDay = day
	return m.view, m.err
}
func (m *mockSchedule) Week() models.WeekView {
	m.called("Week")
	return m.week
}
func (m *mockSchedule) SetText(ctx context.Context, day schedule.Weekday, text string) (models.DayView, error) {
	m.called("SetText")
	m.lastDay, m.lastText = day, text
	return m.view, m.err
}
func (m *mockSchedule) AddTransition(day schedule.Weekday, timeText, tempText string) (models.DayView, error) {
	m.called("AddTransition")
	m.lastDay, m.lastTime, m.lastTemp = day, timeText, tempText
	return m.view, m.err
}
func (m *mockSchedule) SetTemperature(day schedule.Weekday, index int, tempText string) (models.DayView, error) {
	m.called("SetTemperature")
	m.lastDay, m.lastIndex, m.lastTemp = day, index, tempText
	return m.view, m.err
}
func (m *mockSchedule) DeleteTransition(day schedule.Weekday, index int) (models.DayView, error) {
	m.called("DeleteTransition")
	m.lastDay, m.lastIndex = day, index
	return m.view, m.err
}
func (m *mockSchedule) MoveTransition(day schedule.Weekday, index, minute int) (models.DayView, error) {
	m.called("MoveTransition")
	m.lastDay, m.lastIndex, m.lastMinute = day, index, minute
	return m.view, m.err
}
func (m *mockSchedule) BeginDrag(day schedule.Weekday, index int) (service.DragState, error) {
	m.called("BeginDrag")
	m.lastDay, m.lastIndex = day, index
	return m.drag, m.err
}
func (m *mockSchedule) MoveDrag(id string, dx, width float64) (service.DragState, error) {
	m.called("MoveDrag")
	m.lastDragID, m.lastDx, m.lastWidth = id, dx, width
	return m.drag, m.err
}
func (m *mockSchedule) EndDrag(id string) (service.DragState, error) {
	m.called("EndDrag")
	m.lastDragID = id
	return m.drag, m.err
}
func (m *mockSchedule) Pending() bool { return m.pending }
func (m *mockSchedule) Dirty() []schedule.Weekday {
	return nil
}
func (m *mockSchedule) Flush(ctx context.Context) (service.FlushReport, error) {
	m.called("Flush")
	return m.report, m.err
}

type mockEventLog struct {
	resp     []models.ScheduleEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	lastDay  string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ScheduleEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastDay = f.Day
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
