package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSeats 좌석표 현황
// GET /api/seats
func (h *Handler) GetSeats(c *gin.Context) {
	snap, err := h.seats.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type assignSeatRequest struct {
	Name string `json:"name"`
}

// AssignSeat 점심조 추첨
// POST /api/seats/assign
func (h *Handler) AssignSeat(c *gin.Context) {
	var req assignSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "요청 형식이 올바르지 않습니다")
		return
	}
	got, err := h.seats.Assign(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}
