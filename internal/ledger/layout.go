// Package ledger 는 직원별 식대 장부 워크북을 날짜 색인 원장으로 다룬다.
//
// 장부 레이아웃은 고정이다: 데이터 범위 B3:R204, 행은 미리 만들어져 있고
// 이 패키지는 셀 값만 읽고 덮어쓴다. 행을 추가/삭제/재정렬하지 않는다.
package ledger

import (
	"fmt"

	"mealbook/internal/model"
)

const (
	// DefaultSheet 장부 시트 이름. 없으면 첫 번째 시트를 쓴다.
	DefaultSheet = "내역"

	firstRow = 3
	lastRow  = 204
	firstCol = 2  // B
	lastCol  = 18 // R
	width    = lastCol - firstCol + 1

	// DailyAllowance 인정 일수 하루당 식대
	DailyAllowance = 10000
)

// 열 문자
const (
	ColYear       = "B"
	ColMonth      = "C"
	ColDay        = "D"
	ColWorkType   = "F"
	ColAttendance = "H"
)

// mealColumns 끼니별 (상호, 금액, 결제자) 열
var mealColumns = map[model.MealType][3]string{
	model.MealLunch:     {"I", "J", "L"},
	model.MealDinner:    {"M", "N", "O"},
	model.MealBreakfast: {"P", "Q", "R"},
}

// MealColumns 끼니의 (상호, 금액, 결제자) 열 문자
func MealColumns(m model.MealType) ([3]string, bool) {
	cols, ok := mealColumns[m]
	return cols, ok
}

// DayColumns 하루 기록 삭제 시 비우는 열: 근태 + 세 끼니
func DayColumns() []string {
	cols := []string{ColAttendance}
	for _, m := range []model.MealType{model.MealLunch, model.MealDinner, model.MealBreakfast} {
		c := mealColumns[m]
		cols = append(cols, c[0], c[1], c[2])
	}
	return cols
}

// colIndex 열 문자 → 행 배열 인덱스 (B=0)
func colIndex(col string) int {
	n := 0
	for _, ch := range col {
		n = n*26 + int(ch-'A'+1)
	}
	return n - firstCol
}

// DataRange 스캔 범위 문자열
func DataRange() string {
	return fmt.Sprintf("B%d:R%d", firstRow, lastRow)
}
