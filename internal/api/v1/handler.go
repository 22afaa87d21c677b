package v1

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mealbook/internal/apperr"
	"mealbook/internal/exporter"
	"mealbook/internal/ledger"
	"mealbook/internal/model"
	"mealbook/internal/store"
)

// LedgerService 장부 조회/수정
type LedgerService interface {
	Day(ctx context.Context, employee string, date model.Date) ([]model.LedgerRow, error)
	Month(ctx context.Context, employee string, year, month int) ([]model.LedgerRow, error)
	Calculation(ctx context.Context, employee string, year, month int) (model.MonthlyCalculation, error)
	SaveMeal(ctx context.Context, req ledger.SaveMealRequest) (model.LedgerRow, error)
	DeleteMeal(ctx context.Context, employee string, date model.Date, meal model.MealType) (model.LedgerRow, error)
	DeleteDay(ctx context.Context, employee string, date model.Date) (model.LedgerRow, error)
}

// SeatService 점심조 좌석
type SeatService interface {
	Assign(ctx context.Context, name string) (model.SeatAssignment, error)
	Snapshot(ctx context.Context) (model.SeatMap, error)
}

// JournalReader 저널 조회
type JournalReader interface {
	ListJournal(ctx context.Context, f store.JournalFilter) ([]model.JournalEntry, error)
	JournalStats(ctx context.Context) ([]store.ActionCount, error)
}

// Deps Handler 구성 요소. Journal 은 nil 이어도 된다.
type Deps struct {
	Ledger      LedgerService
	Seats       SeatService
	Journal     JournalReader
	Exporter    *exporter.Exporter
	StorageRoot string
	SeatingPath string
	Now         func() time.Time
}

// Handler V1 API 처리기
type Handler struct {
	ledger      LedgerService
	seats       SeatService
	journal     JournalReader
	exporter    *exporter.Exporter
	storageRoot string
	seatingPath string
	now         func() time.Time
}

// NewHandler V1 API 처리기 생성
func NewHandler(d Deps) *Handler {
	h := &Handler{
		ledger:      d.Ledger,
		seats:       d.Seats,
		journal:     d.Journal,
		exporter:    d.Exporter,
		storageRoot: d.StorageRoot,
		seatingPath: d.SeatingPath,
		now:         d.Now,
	}
	if h.exporter == nil {
		h.exporter = exporter.NewExporter("")
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// RegisterRoutes V1 API 라우트 등록
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 시스템 상태
	router.GET("/status", h.GetStatus)

	// 장부
	lg := router.Group("/ledger/:name")
	lg.GET("/days/:date", h.GetDay)
	lg.PUT("/days/:date/meals/:meal", h.SaveMeal)
	lg.DELETE("/days/:date/meals/:meal", h.DeleteMeal)
	lg.DELETE("/days/:date", h.DeleteDay)
	lg.GET("/months/:ym", h.GetMonth)
	lg.GET("/months/:ym/calculation", h.GetCalculation)
	lg.GET("/months/:ym/export", h.ExportMonth)

	// 점심조
	router.GET("/seats", h.GetSeats)
	router.POST("/seats/assign", h.AssignSeat)

	// 기록
	router.GET("/journal", h.ListJournal)
}

// statusOf 오류 분류 → HTTP 상태 코드
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict, apperr.KindCapacity:
		return http.StatusConflict
	case apperr.KindFormat:
		return http.StatusUnprocessableEntity
	case apperr.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)
	msg := apperr.MessageOf(err)
	switch kind {
	case apperr.KindTransport:
		msg = "저장소와 통신하지 못했습니다. 잠시 후 다시 시도해주세요"
	case "":
		msg = "서버 오류가 발생했습니다"
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": msg, "kind": string(kind)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": string(apperr.KindValidation)})
}
