package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type dragMoveRequest struct {
	Dx    *float64 `json:"dx" binding:"required"`
	Width float64  `json:"width" binding:"required,gt=0"`
}

// DragMoveRequest is an exported model for Swagger docs of the moveDrag payload.
type DragMoveRequest struct {
	// Pointer displacement in pixels since the gesture began
	Dx float64 `json:"dx" example:"42"`
	// Timeline width in pixels
	Width float64 `json:"width" example:"1440"`
}

// @Summary      Begin dragging a transition
// @Description  Captures the transition's start minute and its previous neighbour. The 00:00 transition cannot be dragged.
// @Tags         drag
// @Produce      json
// @Param        day    path  string  true  "Weekday"
// @Param        index  path  int     true  "Position in the sorted day"
// @Success      201    {object}  service.DragState
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /api/v1/schedule/{day}/transitions/{index}/drag [post]
// @Security     BearerAuth
func (h *Handler) beginDrag(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	st, err := h.services.Schedule.BeginDrag(day, idx)
	if err != nil {
		h.respondScheduleError(c, "drag_begin_failed", err, "day", day, "index", idx)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// @Summary      Move a dragged transition
// @Description  dx is measured from where the gesture began; the result snaps to 5 minutes and stays between the previous transition + 5 minutes and 23:55.
// @Tags         drag
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "Drag session id"
// @Param        body  body  DragMoveRequest  true  "Displacement and timeline width"
// @Success      200   {object}  service.DragState
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/drag/{id} [patch]
// @Security     BearerAuth
func (h *Handler) moveDrag(c *gin.Context) {
	var req dragMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id := c.Param("id")
	st, err := h.services.Schedule.MoveDrag(id, *req.Dx, req.Width)
	if err != nil {
		h.respondScheduleError(c, "drag_move_failed", err, "drag_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Release a drag gesture
// @Tags         drag
// @Produce      json
// @Param        id   path  string  true  "Drag session id"
// @Success      200  {object}  service.DragState
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/drag/{id} [delete]
// @Security     BearerAuth
func (h *Handler) endDrag(c *gin.Context) {
	id := c.Param("id")
	st, err := h.services.Schedule.EndDrag(id)
	if err != nil {
		h.respondScheduleError(c, "drag_end_failed", err, "drag_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}
