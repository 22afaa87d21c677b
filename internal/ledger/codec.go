package ledger

import (
	"strings"

	"mealbook/internal/model"
)

// 근무형태/근태는 손으로 입력한 자유 텍스트라 일치가 아니라 포함 여부로 분류한다
const (
	labelWorkday  = "업무일"
	labelHoliday  = "휴일"
	labelWorking  = "근무"
	labelVacation = "휴무"
)

// CellMap 셀 주소("H10") → 값. 값은 string 또는 int.
type CellMap map[string]any

// DecodeMonth year/month 가 같은 모든 행을 디코드한다. day > 0 이면 그 날만.
func DecodeMonth(t *RowTable, year, month, day int) []model.LedgerRow {
	out := make([]model.LedgerRow, 0)
	for _, cells := range t.Rows {
		if cellInt(cells, 0) != year || cellInt(cells, 1) != month {
			continue
		}
		if day > 0 && cellInt(cells, 2) != day {
			continue
		}
		out = append(out, decodeRow(cells))
	}
	return out
}

// DecodeRow 색인된 한 행을 디코드한다
func DecodeRow(t *RowTable, ref RowRef) model.LedgerRow {
	return decodeRow(t.Rows[ref.Index])
}

func decodeRow(cells []string) model.LedgerRow {
	row := model.LedgerRow{
		Year:       cellInt(cells, 0),
		Month:      cellInt(cells, 1),
		Day:        cellInt(cells, 2),
		WorkType:   cellText(cells, colIndex(ColWorkType)),
		Attendance: cellText(cells, colIndex(ColAttendance)),
	}
	row.Date = model.FormatDate(row.Year, row.Month, row.Day)
	for m, cols := range mealColumns {
		entry := model.MealEntry{
			Store:  cellText(cells, colIndex(cols[0])),
			Amount: cellInt(cells, colIndex(cols[1])),
			Payer:  cellText(cells, colIndex(cols[2])),
		}
		if entry.IsEmpty() {
			continue
		}
		e := entry
		row.SetMeal(m, &e)
	}
	return row
}

func cellText(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// Calculate month 의 모든 행으로 식대 정산을 계산한다.
//
// 사용액은 중식 금액 열만 합산한다. 빈칸/숫자가 아닌 값은 0 으로 본다.
func Calculate(t *RowTable, month int) model.MonthlyCalculation {
	return CalculateYear(t, 0, month)
}

// CalculateYear year 가 0 이 아니면 그 해의 행만 센다. 조회(DecodeMonth)와 같은 행 집합을 쓴다.
func CalculateYear(t *RowTable, year, month int) model.MonthlyCalculation {
	calc := model.MonthlyCalculation{Year: year, Month: month}
	if t == nil {
		return calc
	}
	lunchAmount := colIndex(mealColumns[model.MealLunch][1])
	workType := colIndex(ColWorkType)
	attendance := colIndex(ColAttendance)

	for _, cells := range t.Rows {
		if cellInt(cells, 1) != month || (year != 0 && cellInt(cells, 0) != year) {
			continue
		}
		wt := cellText(cells, workType)
		at := cellText(cells, attendance)

		if strings.Contains(wt, labelWorkday) {
			calc.WorkDays++
		}
		if strings.Contains(wt, labelHoliday) && strings.Contains(at, labelWorking) {
			calc.HolidayWorkDays++
		}
		if strings.Contains(at, labelVacation) {
			calc.VacationDays++
		}
		calc.TotalUsed += cellInt(cells, lunchAmount)
	}

	calc.AvailableAmount = (calc.WorkDays + calc.HolidayWorkDays - calc.VacationDays) * DailyAllowance
	calc.Balance = calc.AvailableAmount - calc.TotalUsed
	return calc
}

// EncodeMeal 한 끼 기록과 근태를 셀 주소 맵으로 만든다
func EncodeMeal(ref RowRef, meal model.MealType, attendance string, entry model.MealEntry) CellMap {
	cells := CellMap{ref.Cell(ColAttendance): attendance}
	if cols, ok := mealColumns[meal]; ok {
		cells[ref.Cell(cols[0])] = entry.Store
		cells[ref.Cell(cols[1])] = amountValue(entry.Amount)
		cells[ref.Cell(cols[2])] = entry.Payer
	}
	return cells
}

// EncodeRow 근태와 세 끼니 전체를 셀 주소 맵으로 만든다. 없는 끼니는 빈칸으로 쓴다.
func EncodeRow(ref RowRef, row model.LedgerRow) CellMap {
	cells := CellMap{ref.Cell(ColAttendance): row.Attendance}
	for m, cols := range mealColumns {
		entry := model.MealEntry{}
		if e := row.Meal(m); e != nil {
			entry = *e
		}
		cells[ref.Cell(cols[0])] = entry.Store
		cells[ref.Cell(cols[1])] = amountValue(entry.Amount)
		cells[ref.Cell(cols[2])] = entry.Payer
	}
	return cells
}

// amountValue 0 원은 숫자 0 이 아니라 빈칸으로 쓴다
func amountValue(n int) any {
	if n == 0 {
		return ""
	}
	return n
}
