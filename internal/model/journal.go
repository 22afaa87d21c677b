package model

import "time"

// JournalAction 저널 동작
type JournalAction string

const (
	ActionSaveMeal   JournalAction = "save_meal"
	ActionDeleteMeal JournalAction = "delete_meal"
	ActionDeleteDay  JournalAction = "delete_day"
	ActionAssignSeat JournalAction = "assign_seat"
)

// JournalEntry 장부 쓰기/좌석 배정 기록
type JournalEntry struct {
	ID        string        `json:"id"`
	Employee  string        `json:"employee"`
	Action    JournalAction `json:"action"`
	FilePath  string        `json:"filePath"`
	EntryDate string        `json:"entryDate,omitempty"`
	Meal      MealType      `json:"meal,omitempty"`
	Amount    int           `json:"amount"`
	Detail    string        `json:"detail,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}
