package v1

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"mealbook/internal/exporter"
	"mealbook/internal/ledger"
	"mealbook/internal/model"
)

func pathDate(c *gin.Context) (model.Date, bool) {
	d, err := model.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, "날짜 형식은 YYYY-MM-DD 입니다")
		return model.Date{}, false
	}
	return d, true
}

func pathYearMonth(c *gin.Context) (int, int, bool) {
	y, m, err := model.ParseYearMonth(c.Param("ym"))
	if err != nil {
		badRequest(c, "연월 형식은 YYYY-MM 입니다")
		return 0, 0, false
	}
	return y, m, true
}

func pathMeal(c *gin.Context) (model.MealType, bool) {
	m, err := model.ParseMealType(c.Param("meal"))
	if err != nil {
		badRequest(c, "끼니는 breakfast, lunch, dinner 중 하나입니다")
		return "", false
	}
	return m, true
}

// GetDay 하루치 내역
// GET /api/ledger/:name/days/:date
func (h *Handler) GetDay(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}
	rows, err := h.ledger.Day(c.Request.Context(), c.Param("name"), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type saveMealRequest struct {
	Attendance string `json:"attendance"`
	Store      string `json:"store"`
	Amount     int    `json:"amount"`
	Payer      string `json:"payer"`
}

// SaveMeal 한 끼 기록
// PUT /api/ledger/:name/days/:date/meals/:meal
func (h *Handler) SaveMeal(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}
	meal, ok := pathMeal(c)
	if !ok {
		return
	}
	var req saveMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "요청 형식이 올바르지 않습니다")
		return
	}

	row, err := h.ledger.SaveMeal(c.Request.Context(), ledger.SaveMealRequest{
		Employee:   c.Param("name"),
		Date:       date,
		Meal:       meal,
		Attendance: req.Attendance,
		Entry:      model.MealEntry{Store: req.Store, Amount: req.Amount, Payer: req.Payer},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteMeal 한 끼 삭제
// DELETE /api/ledger/:name/days/:date/meals/:meal
func (h *Handler) DeleteMeal(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}
	meal, ok := pathMeal(c)
	if !ok {
		return
	}
	row, err := h.ledger.DeleteMeal(c.Request.Context(), c.Param("name"), date, meal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteDay 하루치 근태/식사 삭제
// DELETE /api/ledger/:name/days/:date
func (h *Handler) DeleteDay(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}
	row, err := h.ledger.DeleteDay(c.Request.Context(), c.Param("name"), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetMonth 한 달 내역
// GET /api/ledger/:name/months/:ym
func (h *Handler) GetMonth(c *gin.Context) {
	y, m, ok := pathYearMonth(c)
	if !ok {
		return
	}
	rows, err := h.ledger.Month(c.Request.Context(), c.Param("name"), y, m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetCalculation 월 정산
// GET /api/ledger/:name/months/:ym/calculation
func (h *Handler) GetCalculation(c *gin.Context) {
	y, m, ok := pathYearMonth(c)
	if !ok {
		return
	}
	calc, err := h.ledger.Calculation(c.Request.Context(), c.Param("name"), y, m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, calc)
}

// ExportMonth 월 내역 내려받기 (format=csv|xlsx, 기본 csv)
// GET /api/ledger/:name/months/:ym/export
func (h *Handler) ExportMonth(c *gin.Context) {
	y, m, ok := pathYearMonth(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		badRequest(c, "format 은 csv 또는 xlsx 입니다")
		return
	}

	ctx := c.Request.Context()
	name := strings.TrimSpace(c.Param("name"))
	rows, err := h.ledger.Month(ctx, name, y, m)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(name, y, m, format))
	if format == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := exporter.WriteMonthCSV(c.Writer, rows); err != nil {
			log.Printf("[api] write csv failed: %v", err)
		}
		return
	}

	calc, err := h.ledger.Calculation(ctx, name, y, m)
	if err != nil {
		c.Writer.Header().Del("Content-Disposition")
		writeError(c, err)
		return
	}
	f, err := h.exporter.MonthWorkbook(name, calc, rows)
	if err != nil {
		c.Writer.Header().Del("Content-Disposition")
		writeError(c, err)
		return
	}
	defer func() { _ = f.Close() }()
	buf, err := f.WriteToBuffer()
	if err != nil {
		c.Writer.Header().Del("Content-Disposition")
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// buildExportContentDisposition ASCII 파일명과 UTF-8 한글 파일명을 함께 준다
func buildExportContentDisposition(name string, year, month int, ext string) string {
	ascii := fmt.Sprintf("ledger-%d-%02d.%s", year, month, ext)
	utf8Name := fmt.Sprintf("%s_%d년%02d월.%s", name, year, month, ext)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", ascii, url.PathEscape(utf8Name))
}
