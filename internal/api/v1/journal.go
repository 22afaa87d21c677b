package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mealbook/internal/model"
	"mealbook/internal/store"
)

// ListJournal 최근 장부 쓰기/좌석 배정 기록
// GET /api/journal?employee=&action=&limit=
func (h *Handler) ListJournal(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusOK, gin.H{"items": []model.JournalEntry{}})
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit 은 0 이상의 정수입니다")
			return
		}
		limit = n
	}
	items, err := h.journal.ListJournal(c.Request.Context(), store.JournalFilter{
		Employee: c.Query("employee"),
		Action:   model.JournalAction(c.Query("action")),
		Limit:    limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
