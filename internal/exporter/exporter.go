// Package exporter 는 한 달치 장부 내역을 CSV 또는 요약 시트가 붙은 xlsx 로 내보낸다.
package exporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"mealbook/internal/model"
)

const (
	SummarySheet = "요약"
	DetailSheet  = "내역"
)

// Exporter 월 보고서 내보내기. templatePath 가 있으면 그 파일 위에 채운다.
type Exporter struct {
	templatePath string
}

func NewExporter(templatePath string) *Exporter {
	return &Exporter{templatePath: templatePath}
}

// MonthWorkbook 요약 시트(정산)와 내역 시트(일자별 식사)를 만든다
func (e *Exporter) MonthWorkbook(employee string, calc model.MonthlyCalculation, rows []model.LedgerRow) (*excelize.File, error) {
	f, err := e.openTemplateWorkbook()
	if err != nil {
		return nil, err
	}
	if err := fillSummary(f, employee, calc); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("요약 시트 작성 실패: %w", err)
	}
	if err := fillDetail(f, rows); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("내역 시트 작성 실패: %w", err)
	}
	if idx, err := f.GetSheetIndex(SummarySheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func (e *Exporter) openTemplateWorkbook() (*excelize.File, error) {
	if p := strings.TrimSpace(e.templatePath); p != "" {
		f, err := excelize.OpenFile(p)
		if err != nil {
			return nil, fmt.Errorf("보고서 템플릿 열기 실패: %w", err)
		}
		return f, nil
	}
	return excelize.NewFile(), nil
}

// ensureSheet 없으면 만들고, 기본 Sheet1 은 첫 시트 이름으로 바꿔 쓴다
func ensureSheet(f *excelize.File, name string) error {
	if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
		return nil
	}
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		return f.SetSheetName("Sheet1", name)
	}
	_, err := f.NewSheet(name)
	return err
}

func fillSummary(f *excelize.File, employee string, c model.MonthlyCalculation) error {
	if err := ensureSheet(f, SummarySheet); err != nil {
		return err
	}
	rows := [][]any{
		{"이름", employee},
		{"기간", fmt.Sprintf("%d-%02d", c.Year, c.Month)},
		{"업무일", c.WorkDays},
		{"휴일 근무", c.HolidayWorkDays},
		{"휴무", c.VacationDays},
		{"사용 가능 금액", c.AvailableAmount},
		{"사용 금액", c.TotalUsed},
		{"잔액", c.Balance},
	}
	for i, r := range rows {
		row := r
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 16)
}

func fillDetail(f *excelize.File, rows []model.LedgerRow) error {
	if err := ensureSheet(f, DetailSheet); err != nil {
		return err
	}
	header := []any{"날짜", "근무형태", "근태", "중식 상호", "중식 금액", "중식 결제자", "석식 상호", "석식 금액", "석식 결제자", "조식 상호", "조식 금액", "조식 결제자"}
	if err := f.SetSheetRow(DetailSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(DetailSheet, "A1", "L1", bold); err != nil {
		return err
	}

	for i, rec := range Records(rows) {
		line := []any{
			rec.Date, rec.WorkType, rec.Attendance,
			rec.LunchStore, amountCell(rec.LunchAmount), rec.LunchPayer,
			rec.DinnerStore, amountCell(rec.DinnerAmount), rec.DinnerPayer,
			rec.BreakfastStore, amountCell(rec.BreakfastAmount), rec.BreakfastPayer,
		}
		if err := f.SetSheetRow(DetailSheet, fmt.Sprintf("A%d", i+2), &line); err != nil {
			return err
		}
	}
	return nil
}

func amountCell(n Amount) any {
	if n == 0 {
		return ""
	}
	return int(n)
}
