package exporter

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"mealbook/internal/model"
)

// Amount 끼니 금액. 0 은 빈칸으로 쓴다 (장부에서도 빈칸은 기록 없음).
type Amount int

// MarshalCSV gocsv.TypeMarshaller
func (a Amount) MarshalCSV() (string, error) {
	if a == 0 {
		return "", nil
	}
	return strconv.Itoa(int(a)), nil
}

// MonthRecord 월 내역 CSV 한 줄
type MonthRecord struct {
	Date            string `csv:"날짜"`
	WorkType        string `csv:"근무형태"`
	Attendance      string `csv:"근태"`
	LunchStore      string `csv:"중식 상호"`
	LunchAmount     Amount `csv:"중식 금액"`
	LunchPayer      string `csv:"중식 결제자"`
	DinnerStore     string `csv:"석식 상호"`
	DinnerAmount    Amount `csv:"석식 금액"`
	DinnerPayer     string `csv:"석식 결제자"`
	BreakfastStore  string `csv:"조식 상호"`
	BreakfastAmount Amount `csv:"조식 금액"`
	BreakfastPayer  string `csv:"조식 결제자"`
}

// Records 장부 행을 CSV 레코드로
func Records(rows []model.LedgerRow) []MonthRecord {
	out := make([]MonthRecord, 0, len(rows))
	for _, r := range rows {
		rec := MonthRecord{Date: r.Date, WorkType: r.WorkType, Attendance: r.Attendance}
		if e := r.Lunch; e != nil {
			rec.LunchStore, rec.LunchAmount, rec.LunchPayer = e.Store, Amount(e.Amount), e.Payer
		}
		if e := r.Dinner; e != nil {
			rec.DinnerStore, rec.DinnerAmount, rec.DinnerPayer = e.Store, Amount(e.Amount), e.Payer
		}
		if e := r.Breakfast; e != nil {
			rec.BreakfastStore, rec.BreakfastAmount, rec.BreakfastPayer = e.Store, Amount(e.Amount), e.Payer
		}
		out = append(out, rec)
	}
	return out
}

// WriteMonthCSV 헤더 포함 CSV. 행이 없어도 헤더는 쓴다.
func WriteMonthCSV(w io.Writer, rows []model.LedgerRow) error {
	return gocsv.Marshal(Records(rows), w)
}
