package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trv_schedule/internal/models"
	"trv_schedule/internal/service"
)

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.ScheduleEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventImport, Day: "monday", Description: "import"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: models.EventFlush, Day: "monday", Description: "flush"},
	}
	logs := &mockEventLog{resp: events}
	s := &service.Service{
		Authorization: auth,
		EventLog:      logs,
	}
	r := newTestRouter(s)

	// Missing/invalid 'from' → 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=notatime", nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// Valid range and type (lowercase type should be normalized to upper in service call)
	w = httptest.NewRecorder()
	q := "/api/v1/logs/?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=flush&day=mon"
	req = httptest.NewRequest(http.MethodGet, q, nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                    `json:"count"`
		Events []models.ScheduleEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != "FLUSH" {
		t.Fatalf("expected lastType FLUSH, got %q", logs.lastType)
	}
	if logs.lastDay != "mon" {
		t.Fatalf("expected day filter passed through, got %q", logs.lastDay)
	}
}

func TestLogsHandler_UnknownDayAndRepoError(t *testing.T) {
	logs := &mockEventLog{err: fmt.Errorf("%w: %q", service.ErrUnknownDay, "someday")}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs}
	r := newTestRouter(s)

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?day=someday", nil)
		req.Header.Set("Authorization", "Bearer valid")
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown day, got %d", w.Code)
	}

	logs.err = errors.New("db down")
	if w := do(); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for repo error, got %d", w.Code)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=2025-08-01&to=2025-08-31", nil)
	req.Header.Set("Authorization", "Bearer valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	want := time.Date(2025, time.August, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	if !logs.lastTo.Equal(want) {
		t.Fatalf("lastTo = %v; want %v", logs.lastTo, want)
	}
}
