package ledger

import (
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
)

// testDay 장부 한 행 (물리 행은 3 부터 순서대로)
type testDay struct {
	Year, Month, Day any
	WorkType         string
	Attendance       string
	Lunch            [3]any
	Dinner           [3]any
	Breakfast        [3]any
}

func workday(year, month, day int) testDay {
	return testDay{Year: year, Month: month, Day: day, WorkType: "업무일", Attendance: "근무"}
}

func buildLedger(t *testing.T, sheet string, days []testDay) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}
	set := func(cell string, v any) {
		if v == nil {
			return
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("SetCellValue %s failed: %v", cell, err)
		}
	}
	set("B1", "2025년 하반기 식대 장부")
	header := []any{"연", "월", "일", "요일", "근무형태", "비고", "근태", "중식 상호", "중식 금액", "", "중식 결제자", "석식 상호", "석식 금액", "석식 결제자", "조식 상호", "조식 금액", "조식 결제자"}
	if err := f.SetSheetRow(sheet, "B2", &header); err != nil {
		t.Fatalf("SetSheetRow header failed: %v", err)
	}

	for i, d := range days {
		r := 3 + i
		set(fmt.Sprintf("B%d", r), d.Year)
		set(fmt.Sprintf("C%d", r), d.Month)
		set(fmt.Sprintf("D%d", r), d.Day)
		set(fmt.Sprintf("E%d", r), "월")
		set(fmt.Sprintf("F%d", r), d.WorkType)
		set(fmt.Sprintf("H%d", r), d.Attendance)
		for j, col := range []string{"I", "J", "L"} {
			set(fmt.Sprintf("%s%d", col, r), d.Lunch[j])
		}
		for j, col := range []string{"M", "N", "O"} {
			set(fmt.Sprintf("%s%d", col, r), d.Dinner[j])
		}
		for j, col := range []string{"P", "Q", "R"} {
			set(fmt.Sprintf("%s%d", col, r), d.Breakfast[j])
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

// augustLedger 2025-08 업무일 20일. 15일에 중식 기록이 있다.
func augustLedger(t *testing.T) []byte {
	t.Helper()

	days := make([]testDay, 0, 22)
	for d := 1; len(days) < 20; d++ {
		day := workday(2025, 8, d)
		if d == 15 {
			day.Lunch = [3]any{"김밥천국", 8000, "홍길동"}
		}
		days = append(days, day)
	}
	days = append(days, testDay{Year: 2025, Month: 8, Day: 30, WorkType: "휴일"})
	days = append(days, workday(2025, 9, 1))
	return buildLedger(t, DefaultSheet, days)
}

func mustIndex(t *testing.T, data []byte) *RowTable {
	t.Helper()

	table, err := BuildIndex(data)
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}
	return table
}
