package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"trv_schedule/internal/schedule"
	"trv_schedule/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errScheduleFailed  = "schedule operation failed"
	errFlushFailed     = "failed to flush schedule"
	errInvalidIndex    = "invalid transition index"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service and schedule errors to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInputCancelled):
		return http.StatusNoContent
	case errors.Is(err, schedule.ErrFormat), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownDay), errors.Is(err, service.ErrDragNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrCapacity), errors.Is(err, service.ErrFlushInProgress):
		return http.StatusConflict
	case errors.Is(err, schedule.ErrInvariant):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondScheduleError writes err with its mapped status. Cancelled input is a
// no-op and answers 204 without a body.
func (h *Handler) respondScheduleError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	kv = append(kv, "user_id", userID(c))
	code := statusFor(err)
	switch code {
	case http.StatusNoContent:
		c.Status(code)
	case http.StatusInternalServerError:
		h.logAndJSONError(c, code, errScheduleFailed, logKey, err, kv...)
	default:
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		}
		c.JSON(code, gin.H{"error": err.Error()})
	}
}

// dayParam resolves the :day path parameter, answering 404 when unknown.
func (h *Handler) dayParam(c *gin.Context) (schedule.Weekday, bool) {
	day, err := service.ParseDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return day, true
}

// indexParam parses the :index path parameter, answering 400 when malformed.
func indexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidIndex})
		return 0, false
	}
	return idx, true
}

// rawInput is a user supplied value sent either as a JSON string or number.
// null or a missing field is empty input, which cancels the operation.
type rawInput string

func (r *rawInput) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != nil {
			*r = rawInput(*s)
		}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", b)
	}
	*r = rawInput(n.String())
	return nil
}

type textRequest struct {
	Text string `json:"text"`
}

type addTransitionRequest struct {
	Time        rawInput `json:"time"`
	Temperature rawInput `json:"temperature"`
}

type temperatureRequest struct {
	Temperature rawInput `json:"temperature"`
}

type timeRequest struct {
	Time rawInput `json:"time"`
}

// SetTextRequest is an exported model for Swagger docs of the setDayText payload.
type SetTextRequest struct {
	// Schedule text, "HH:MM/T" tokens separated by single spaces, starting at 00:00
	Text string `json:"text" example:"00:00/18 06:00/21 22:00/16"`
}

// AddTransitionRequest is an exported model for Swagger docs of the addTransition payload.
type AddTransitionRequest struct {
	// Start time, H:MM or HH:MM
	Time string `json:"time" example:"06:30"`
	// Temperature in Celsius, clamped to 4..35
	Temperature string `json:"temperature" example:"21.5"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get the week
// @Description  Every weekday with text, sorted transitions, timeline segments and dirty flag, plus the pending-save indicator.
// @Tags         schedule
// @Produce      json
// @Success      200  {object}  models.WeekView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/schedule [get]
// @Security     BearerAuth
func (h *Handler) getWeek(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Schedule.Week())
}

// @Summary      Get one day
// @Tags         schedule
// @Produce      json
// @Param        day  path  string  true  "Weekday (monday..sunday or mon..sun)"
// @Success      200  {object}  models.DayView
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/schedule/{day} [get]
// @Security     BearerAuth
func (h *Handler) getDay(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	view, err := h.services.Schedule.Day(day)
	if err != nil {
		h.respondScheduleError(c, "schedule_get_day_failed", err, "day", day)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Replace a day from text
// @Description  On a parse error the day is unchanged and "current" carries its last valid text.
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        day   path  string          true  "Weekday"
// @Param        body  body  SetTextRequest  true  "Schedule text"
// @Success      200   {object}  models.DayView
// @Failure      400   {object}  map[string]interface{}  "error, current"
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/schedule/{day} [put]
// @Security     BearerAuth
func (h *Handler) setDayText(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	view, err := h.services.Schedule.SetText(c.Request.Context(), day, req.Text)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusBadRequest {
			c.JSON(code, gin.H{"error": err.Error(), "current": view.Text})
			return
		}
		h.respondScheduleError(c, "schedule_set_text_failed", err, "day", day)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Add a transition
// @Description  Blank time or temperature cancels the operation (204). Temperature is clamped to 4..35.
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        day   path  string                true  "Weekday"
// @Param        body  body  AddTransitionRequest  true  "Time and temperature"
// @Success      200   {object}  models.DayView
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "day already holds 6 transitions"
// @Router       /api/v1/schedule/{day}/transitions [post]
// @Security     BearerAuth
func (h *Handler) addTransition(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	var req addTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	view, err := h.services.Schedule.AddTransition(day, string(req.Time), string(req.Temperature))
	if err != nil {
		h.respondScheduleError(c, "schedule_add_transition_failed", err, "day", day)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Set a transition temperature
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        day    path  string  true  "Weekday"
// @Param        index  path  int     true  "Position in the sorted day"
// @Success      200    {object}  models.DayView
// @Success      204
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /api/v1/schedule/{day}/transitions/{index} [patch]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	view, err := h.services.Schedule.SetTemperature(day, idx, string(req.Temperature))
	if err != nil {
		h.respondScheduleError(c, "schedule_set_temperature_failed", err, "day", day, "index", idx)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Move a transition
// @Description  The new time must lie between the previous transition + 5 minutes and 23:55. The 00:00 transition cannot move.
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        day    path  string  true  "Weekday"
// @Param        index  path  int     true  "Position in the sorted day"
// @Success      200    {object}  models.DayView
// @Success      204
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /api/v1/schedule/{day}/transitions/{index}/time [put]
// @Security     BearerAuth
func (h *Handler) moveTransition(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	var req timeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	minute, err := service.ParseTimeInput(string(req.Time))
	if err != nil {
		h.respondScheduleError(c, "schedule_move_transition_failed", err, "day", day, "index", idx)
		return
	}
	view, err := h.services.Schedule.MoveTransition(day, idx, minute)
	if err != nil {
		h.respondScheduleError(c, "schedule_move_transition_failed", err, "day", day, "index", idx)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Delete a transition
// @Description  The 00:00 transition (index 0) cannot be deleted.
// @Tags         schedule
// @Produce      json
// @Param        day    path  string  true  "Weekday"
// @Param        index  path  int     true  "Position in the sorted day"
// @Success      200    {object}  models.DayView
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /api/v1/schedule/{day}/transitions/{index} [delete]
// @Security     BearerAuth
func (h *Handler) deleteTransition(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	view, err := h.services.Schedule.DeleteTransition(day, idx)
	if err != nil {
		h.respondScheduleError(c, "schedule_delete_transition_failed", err, "day", day, "index", idx)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Flush dirty days
// @Description  Writes every changed day to the configured sinks. Days that cannot be formatted stay dirty.
// @Tags         schedule
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "report, pending"
// @Failure      409  {object}  map[string]string  "a flush is already running"
// @Failure      500  {object}  map[string]interface{}  "error, report"
// @Router       /api/v1/schedule/flush [post]
// @Security     BearerAuth
func (h *Handler) flushSchedule(c *gin.Context) {
	report, err := h.services.Schedule.Flush(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrFlushInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		if h.log != nil {
			h.log.Errorw("schedule_flush_failed", "err", err, "failed", report.Failed)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFlushFailed, "report": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":  report,
		"pending": h.services.Schedule.Pending(),
	})
}
