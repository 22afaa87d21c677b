package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"mealbook/internal/apperr"
	"mealbook/internal/locator"
	"mealbook/internal/model"
	"mealbook/internal/objstore"
)

// Journal 장부 쓰기 기록 저장소
type Journal interface {
	AppendJournal(ctx context.Context, entry model.JournalEntry) error
}

// Service 장부 조회/수정 흐름: 파일 찾기 → 로드 → 행 찾기 → 디코드/인코드 → 전체 덮어쓰기 → 재조회
type Service struct {
	store     objstore.Store
	locator   *locator.Locator
	journal   Journal
	sheetName string
}

// NewService journal 은 nil 이어도 된다
func NewService(store objstore.Store, loc *locator.Locator, journal Journal, sheetName string) *Service {
	if sheetName == "" {
		sheetName = DefaultSheet
	}
	return &Service{store: store, locator: loc, journal: journal, sheetName: sheetName}
}

// SaveMealRequest 한 끼 저장 요청
type SaveMealRequest struct {
	Employee   string
	Date       model.Date
	Meal       model.MealType
	Attendance string
	Entry      model.MealEntry
}

type loaded struct {
	meta  objstore.ObjectMeta
	data  []byte
	table *RowTable
}

// Day 하루치 행 (0 또는 1개)
func (s *Service) Day(ctx context.Context, employee string, date model.Date) ([]model.LedgerRow, error) {
	if !date.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("잘못된 날짜: %s", date))
	}
	l, err := s.load(ctx, employee, date.Year, date.Month, true)
	if err != nil {
		return nil, err
	}
	return DecodeMonth(l.table, date.Year, date.Month, date.Day), nil
}

// Month 한 달치 행
func (s *Service) Month(ctx context.Context, employee string, year, month int) ([]model.LedgerRow, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	l, err := s.load(ctx, employee, year, month, true)
	if err != nil {
		return nil, err
	}
	return DecodeMonth(l.table, year, month, 0), nil
}

// Calculation 월별 정산
func (s *Service) Calculation(ctx context.Context, employee string, year, month int) (model.MonthlyCalculation, error) {
	if err := validateYearMonth(year, month); err != nil {
		return model.MonthlyCalculation{}, err
	}
	l, err := s.load(ctx, employee, year, month, true)
	if err != nil {
		return model.MonthlyCalculation{}, err
	}
	return CalculateYear(l.table, year, month), nil
}

// SaveMeal 한 끼와 근태를 기록하고 저장 후 다시 읽은 행을 돌려준다
func (s *Service) SaveMeal(ctx context.Context, req SaveMealRequest) (model.LedgerRow, error) {
	if _, ok := MealColumns(req.Meal); !ok {
		return model.LedgerRow{}, apperr.Validation(fmt.Sprintf("알 수 없는 끼니: %q", req.Meal))
	}
	if req.Entry.Amount < 0 {
		return model.LedgerRow{}, apperr.Validation("금액은 0 이상이어야 합니다")
	}
	entry := model.MealEntry{
		Store:  strings.TrimSpace(req.Entry.Store),
		Amount: req.Entry.Amount,
		Payer:  strings.TrimSpace(req.Entry.Payer),
	}
	return s.mutate(ctx, req.Employee, req.Date, model.JournalEntry{
		Action: model.ActionSaveMeal,
		Meal:   req.Meal,
		Amount: entry.Amount,
		Detail: entry.Store,
	}, func(data []byte, ref RowRef) ([]byte, error) {
		return UpdateRow(data, ref, EncodeMeal(ref, req.Meal, strings.TrimSpace(req.Attendance), entry))
	})
}

// DeleteMeal 한 끼의 세 열만 비운다
func (s *Service) DeleteMeal(ctx context.Context, employee string, date model.Date, meal model.MealType) (model.LedgerRow, error) {
	cols, ok := MealColumns(meal)
	if !ok {
		return model.LedgerRow{}, apperr.Validation(fmt.Sprintf("알 수 없는 끼니: %q", meal))
	}
	return s.mutate(ctx, employee, date, model.JournalEntry{
		Action: model.ActionDeleteMeal,
		Meal:   meal,
	}, func(data []byte, ref RowRef) ([]byte, error) {
		return BlankRow(data, ref, cols[:])
	})
}

// DeleteDay 근태와 세 끼니 열을 모두 비운다. 날짜/근무형태 등 나머지 열은 그대로 둔다.
func (s *Service) DeleteDay(ctx context.Context, employee string, date model.Date) (model.LedgerRow, error) {
	return s.mutate(ctx, employee, date, model.JournalEntry{
		Action: model.ActionDeleteDay,
	}, func(data []byte, ref RowRef) ([]byte, error) {
		return BlankRow(data, ref, DayColumns())
	})
}

func (s *Service) mutate(ctx context.Context, employee string, date model.Date, entry model.JournalEntry, apply func([]byte, RowRef) ([]byte, error)) (model.LedgerRow, error) {
	if !date.Valid() {
		return model.LedgerRow{}, apperr.Validation(fmt.Sprintf("잘못된 날짜: %s", date))
	}
	l, err := s.load(ctx, employee, date.Year, date.Month, false)
	if err != nil {
		return model.LedgerRow{}, err
	}
	ref, err := FindRow(l.table, date.Year, date.Month, date.Day)
	if err != nil {
		return model.LedgerRow{}, err
	}

	updated, err := apply(l.data, ref)
	if err != nil {
		return model.LedgerRow{}, err
	}
	if _, err := s.store.Put(ctx, l.meta.Path, updated); err != nil {
		return model.LedgerRow{}, apperr.Transport("장부 저장 실패", err)
	}

	table, err := BuildIndexForSheet(updated, s.sheetName)
	if err != nil {
		return model.LedgerRow{}, err
	}
	row := DecodeRow(table, ref)

	log.Printf("[ledger] %s %s %s row=%d path=%s", entry.Action, employee, date, ref.Row, l.meta.Path)
	s.record(ctx, employee, l.meta.Path, date, entry)
	return row, nil
}

// record 저널 실패는 쓰기 결과를 바꾸지 않는다
func (s *Service) record(ctx context.Context, employee, path string, date model.Date, entry model.JournalEntry) {
	if s.journal == nil {
		return
	}
	entry.ID = uuid.New().String()
	entry.Employee = strings.TrimSpace(employee)
	entry.FilePath = path
	entry.EntryDate = date.String()
	entry.CreatedAt = time.Now().UTC()
	if err := s.journal.AppendJournal(ctx, entry); err != nil {
		log.Printf("[ledger] journal append failed: %v", err)
	}
}

// load lenient 이면 이름 포함 매칭까지 허용 (조회 경로). 쓰기 경로는 정확히 일치하는 파일만.
func (s *Service) load(ctx context.Context, employee string, year, month int, lenient bool) (*loaded, error) {
	var (
		meta objstore.ObjectMeta
		err  error
	)
	if lenient {
		meta, err = s.locator.LocateLenient(ctx, employee, month, year)
	} else {
		meta, err = s.locator.Locate(ctx, employee, month, year)
	}
	if err != nil {
		return nil, err
	}

	obj, err := s.store.Get(ctx, meta.Path)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", locator.ErrFileNotFound, meta.Path)
		}
		return nil, apperr.Transport("장부 파일 읽기 실패", err)
	}
	table, err := BuildIndexForSheet(obj.Data, s.sheetName)
	if err != nil {
		return nil, err
	}
	return &loaded{meta: obj.Meta, data: obj.Data, table: table}, nil
}

func validateYearMonth(year, month int) error {
	if year <= 0 || month < 1 || month > 12 {
		return apperr.Validation(fmt.Sprintf("잘못된 연월: %d-%02d", year, month))
	}
	return nil
}
