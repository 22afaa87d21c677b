package v1

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealbook/internal/locator"
	"mealbook/internal/store"
)

// StatusResponse 시스템 상태
type StatusResponse struct {
	Now            string              `json:"now"`
	SemesterFolder string              `json:"semesterFolder"` // 오늘 기준 학기 폴더
	StorageRoot    string              `json:"storageRoot"`
	SeatingPath    string              `json:"seatingPath"`
	Journal        []store.ActionCount `json:"journal"`
}

// GetStatus 시스템 상태
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	now := h.now()
	resp := StatusResponse{
		Now:            now.Format("2006-01-02"),
		SemesterFolder: locator.SemesterFolder(now.Year(), int(now.Month())),
		StorageRoot:    h.storageRoot,
		SeatingPath:    h.seatingPath,
		Journal:        []store.ActionCount{},
	}
	if h.journal != nil {
		stats, err := h.journal.JournalStats(c.Request.Context())
		if err != nil {
			log.Printf("[api] journal stats failed: %v", err)
		} else {
			resp.Journal = stats
		}
	}
	c.JSON(http.StatusOK, resp)
}
