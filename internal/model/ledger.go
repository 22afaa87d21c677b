package model

import (
	"fmt"
	"strings"
	"time"
)

// MealType 끼니 구분
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// MealTypes 장부 열 순서와 무관한 표시 순서
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// ParseMealType 영문 키 또는 한글 라벨(조식/중식/석식, 아침/점심/저녁)을 받는다
func ParseMealType(s string) (MealType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breakfast", "조식", "아침":
		return MealBreakfast, nil
	case "lunch", "중식", "점심":
		return MealLunch, nil
	case "dinner", "석식", "저녁":
		return MealDinner, nil
	}
	return "", fmt.Errorf("unknown meal type: %q", s)
}

// Label 한글 라벨
func (m MealType) Label() string {
	switch m {
	case MealBreakfast:
		return "조식"
	case MealLunch:
		return "중식"
	case MealDinner:
		return "석식"
	}
	return string(m)
}

// MealEntry 한 끼 기록. Amount 0 은 "비워 둠"과 같다.
type MealEntry struct {
	Store  string `json:"store"`
	Amount int    `json:"amount"`
	Payer  string `json:"payer"`
}

// IsEmpty 세 필드 모두 비었는지
func (e MealEntry) IsEmpty() bool {
	return strings.TrimSpace(e.Store) == "" && e.Amount == 0 && strings.TrimSpace(e.Payer) == ""
}

// LedgerRow 한 직원의 하루치 장부 행
//
// 끼니 슬롯은 기록이 없으면 nil 이다. 0원짜리 기록과 "기록 없음"은 다르다.
type LedgerRow struct {
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	WorkType   string     `json:"workType"`
	Attendance string     `json:"attendance"`
	Breakfast  *MealEntry `json:"breakfast,omitempty"`
	Lunch      *MealEntry `json:"lunch,omitempty"`
	Dinner     *MealEntry `json:"dinner,omitempty"`
}

// Meal 끼니 슬롯
func (r *LedgerRow) Meal(m MealType) *MealEntry {
	switch m {
	case MealBreakfast:
		return r.Breakfast
	case MealLunch:
		return r.Lunch
	case MealDinner:
		return r.Dinner
	}
	return nil
}

// SetMeal 끼니 슬롯 설정 (nil 이면 비움)
func (r *LedgerRow) SetMeal(m MealType, e *MealEntry) {
	switch m {
	case MealBreakfast:
		r.Breakfast = e
	case MealLunch:
		r.Lunch = e
	case MealDinner:
		r.Dinner = e
	}
}

// HasMeals 끼니 기록이 하나라도 있는지
func (r *LedgerRow) HasMeals() bool {
	return r.Breakfast != nil || r.Lunch != nil || r.Dinner != nil
}

// MonthlyCalculation 월별 식대 정산 (저장하지 않고 매번 계산)
type MonthlyCalculation struct {
	Year            int `json:"year"`
	Month           int `json:"month"`
	WorkDays        int `json:"workDays"`
	HolidayWorkDays int `json:"holidayWorkDays"`
	VacationDays    int `json:"vacationDays"`
	AvailableAmount int `json:"availableAmount"`
	TotalUsed       int `json:"totalUsed"`
	Balance         int `json:"balance"`
}

// Date 달력 날짜 (시간대 없음)
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate "2006-01-02" 형식
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ParseYearMonth "2006-01" 형식
func ParseYearMonth(s string) (year, month int, err error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return t.Year(), int(t.Month()), nil
}

// Valid 실재하는 날짜인지
func (d Date) Valid() bool {
	if d.Year <= 0 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == d.Day && int(t.Month()) == d.Month
}

func (d Date) String() string {
	return FormatDate(d.Year, d.Month, d.Day)
}

// FormatDate 0 이 섞인 날짜도 그대로 포맷한다
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
