package v1

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"mealbook/internal/apperr"
	"mealbook/internal/exporter"
	"mealbook/internal/ledger"
	"mealbook/internal/locator"
	"mealbook/internal/model"
	"mealbook/internal/seating"
	"mealbook/internal/store"
)

type fakeLedger struct {
	rows  []model.LedgerRow
	calc  model.MonthlyCalculation
	err   error
	saved ledger.SaveMealRequest
	calls []string
}

func (f *fakeLedger) Day(_ context.Context, employee string, date model.Date) ([]model.LedgerRow, error) {
	f.calls = append(f.calls, fmt.Sprintf("day %s %s", employee, date))
	return f.rows, f.err
}

func (f *fakeLedger) Month(_ context.Context, employee string, year, month int) ([]model.LedgerRow, error) {
	f.calls = append(f.calls, fmt.Sprintf("month %s %d-%02d", employee, year, month))
	return f.rows, f.err
}

func (f *fakeLedger) Calculation(_ context.Context, employee string, year, month int) (model.MonthlyCalculation, error) {
	f.calls = append(f.calls, fmt.Sprintf("calc %s %d-%02d", employee, year, month))
	return f.calc, f.err
}

func (f *fakeLedger) SaveMeal(_ context.Context, req ledger.SaveMealRequest) (model.LedgerRow, error) {
	f.saved = req
	if f.err != nil {
		return model.LedgerRow{}, f.err
	}
	return f.rows[0], nil
}

func (f *fakeLedger) DeleteMeal(_ context.Context, employee string, date model.Date, meal model.MealType) (model.LedgerRow, error) {
	f.calls = append(f.calls, fmt.Sprintf("delete-meal %s %s %s", employee, date, meal))
	if f.err != nil {
		return model.LedgerRow{}, f.err
	}
	return f.rows[0], nil
}

func (f *fakeLedger) DeleteDay(_ context.Context, employee string, date model.Date) (model.LedgerRow, error) {
	f.calls = append(f.calls, fmt.Sprintf("delete-day %s %s", employee, date))
	if f.err != nil {
		return model.LedgerRow{}, f.err
	}
	return f.rows[0], nil
}

type fakeSeats struct {
	got  model.SeatAssignment
	snap model.SeatMap
	err  error
	name string
}

func (f *fakeSeats) Assign(_ context.Context, name string) (model.SeatAssignment, error) {
	f.name = name
	return f.got, f.err
}

func (f *fakeSeats) Snapshot(context.Context) (model.SeatMap, error) {
	return f.snap, f.err
}

type fakeJournal struct {
	filter store.JournalFilter
	items  []model.JournalEntry
}

func (f *fakeJournal) ListJournal(_ context.Context, filter store.JournalFilter) ([]model.JournalEntry, error) {
	f.filter = filter
	return f.items, nil
}

func (f *fakeJournal) JournalStats(context.Context) ([]store.ActionCount, error) {
	return []store.ActionCount{{Action: model.ActionSaveMeal, Count: 3}}, nil
}

func august15() model.LedgerRow {
	return model.LedgerRow{
		Year: 2025, Month: 8, Day: 15, Date: "2025-08-15", WorkType: "업무일", Attendance: "근무",
		Lunch: &model.MealEntry{Store: "김밥천국", Amount: 8000, Payer: "홍길동"},
	}
}

func newTestRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(d).RegisterRoutes(r.Group("/api"))
	return r
}

func do(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()

	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error, body.Kind
}

var employeePath = url.PathEscape("홍길동")

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := map[apperr.Kind]int{
		apperr.KindNotFound:   http.StatusNotFound,
		apperr.KindValidation: http.StatusBadRequest,
		apperr.KindConflict:   http.StatusConflict,
		apperr.KindCapacity:   http.StatusConflict,
		apperr.KindFormat:     http.StatusUnprocessableEntity,
		apperr.KindTransport:  http.StatusBadGateway,
		"":                    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusOf(kind); got != want {
			t.Fatalf("statusOf(%q) = %d, want %d", kind, got, want)
		}
	}
}

func TestGetDay(t *testing.T) {
	t.Parallel()

	lg := &fakeLedger{rows: []model.LedgerRow{august15()}}
	r := newTestRouter(Deps{Ledger: lg})

	w := do(t, r, http.MethodGet, "/api/ledger/"+employeePath+"/days/2025-08-15", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var rows []model.LedgerRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Lunch == nil || rows[0].Lunch.Amount != 8000 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if lg.calls[0] != "day 홍길동 2025-08-15" {
		t.Fatalf("unexpected call: %v", lg.calls)
	}
}

func TestGetDay_BadDate(t *testing.T) {
	t.Parallel()

	lg := &fakeLedger{}
	r := newTestRouter(Deps{Ledger: lg})

	w := do(t, r, http.MethodGet, "/api/ledger/"+employeePath+"/days/2025-02-30", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if len(lg.calls) != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestLedgerErrorsMapToStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{fmt.Errorf("%w: 홍길동", locator.ErrFileNotFound), http.StatusNotFound, "직원 장부 파일을 찾을 수 없습니다"},
		{fmt.Errorf("%w: 2025-08-31", ledger.ErrRowNotFound), http.StatusNotFound, apperr.MessageOf(ledger.ErrRowNotFound)},
		{apperr.Transport("장부 저장 실패", errors.New("disk full")), http.StatusBadGateway, "저장소와 통신하지 못했습니다. 잠시 후 다시 시도해주세요"},
		{ledger.ErrReadOnlyWorkbook, http.StatusUnprocessableEntity, apperr.MessageOf(ledger.ErrReadOnlyWorkbook)},
		{errors.New("boom"), http.StatusInternalServerError, "서버 오류가 발생했습니다"},
	}
	for _, tc := range cases {
		r := newTestRouter(Deps{Ledger: &fakeLedger{err: tc.err}})
		w := do(t, r, http.MethodDelete, "/api/ledger/"+employeePath+"/days/2025-08-15", nil)
		if w.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		if msg, _ := errorBody(t, w); msg != tc.message {
			t.Fatalf("%v: message = %q, want %q", tc.err, msg, tc.message)
		}
	}
}

func TestSaveMeal(t *testing.T) {
	t.Parallel()

	lg := &fakeLedger{rows: []model.LedgerRow{august15()}}
	r := newTestRouter(Deps{Ledger: lg})

	body := map[string]any{"attendance": "근무", "store": "김밥천국", "amount": 8000, "payer": "홍길동"}
	w := do(t, r, http.MethodPut, "/api/ledger/"+employeePath+"/days/2025-08-15/meals/lunch", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	want := ledger.SaveMealRequest{
		Employee:   "홍길동",
		Date:       model.Date{Year: 2025, Month: 8, Day: 15},
		Meal:       model.MealLunch,
		Attendance: "근무",
		Entry:      model.MealEntry{Store: "김밥천국", Amount: 8000, Payer: "홍길동"},
	}
	if lg.saved != want {
		t.Fatalf("saved = %+v, want %+v", lg.saved, want)
	}
}

func TestSaveMeal_BadMealAndBody(t *testing.T) {
	t.Parallel()

	r := newTestRouter(Deps{Ledger: &fakeLedger{rows: []model.LedgerRow{august15()}}})

	w := do(t, r, http.MethodPut, "/api/ledger/"+employeePath+"/days/2025-08-15/meals/brunch", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if _, kind := errorBody(t, w); kind != string(apperr.KindValidation) {
		t.Fatalf("kind = %q", kind)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/ledger/"+employeePath+"/days/2025-08-15/meals/lunch", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeleteMeal(t *testing.T) {
	t.Parallel()

	lg := &fakeLedger{rows: []model.LedgerRow{august15()}}
	r := newTestRouter(Deps{Ledger: lg})

	w := do(t, r, http.MethodDelete, "/api/ledger/"+employeePath+"/days/2025-08-15/meals/dinner", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if lg.calls[0] != "delete-meal 홍길동 2025-08-15 dinner" {
		t.Fatalf("unexpected call: %v", lg.calls)
	}
}

func TestMonthAndCalculation(t *testing.T) {
	t.Parallel()

	lg := &fakeLedger{
		rows: []model.LedgerRow{august15()},
		calc: model.MonthlyCalculation{Year: 2025, Month: 8, WorkDays: 20, AvailableAmount: 200000, TotalUsed: 8000, Balance: 192000},
	}
	r := newTestRouter(Deps{Ledger: lg})

	w := do(t, r, http.MethodGet, "/api/ledger/"+employeePath+"/months/2025-08/calculation", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var calc model.MonthlyCalculation
	if err := json.Unmarshal(w.Body.Bytes(), &calc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if calc.Balance != 192000 {
		t.Fatalf("unexpected calc: %+v", calc)
	}

	if w := do(t, r, http.MethodGet, "/api/ledger/"+employeePath+"/months/2025-13", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", w.Code)
	}
}

func TestExportMonth(t *testing.T) {
	t.Parallel()

	lg := &fakeLedger{
		rows: []model.LedgerRow{august15()},
		calc: model.MonthlyCalculation{Year: 2025, Month: 8, WorkDays: 20, AvailableAmount: 200000, TotalUsed: 8000, Balance: 192000},
	}
	r := newTestRouter(Deps{Ledger: lg, Exporter: exporter.NewExporter("")})

	w := do(t, r, http.MethodGet, "/api/ledger/"+employeePath+"/months/2025-08/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content-type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="ledger-2025-08.csv"`) {
		t.Fatalf("content-disposition = %q", cd)
	}
	lines, err := csv.NewReader(w.Body).ReadAll()
	if err != nil || len(lines) != 2 || lines[1][3] != "김밥천국" {
		t.Fatalf("unexpected csv %v (%v)", lines, err)
	}

	w = do(t, r, http.MethodGet, "/api/ledger/"+employeePath+"/months/2025-08/export?format=xlsx", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()
	if v, _ := f.GetCellValue(exporter.SummarySheet, "B8"); v != "192000" {
		t.Fatalf("balance cell = %q", v)
	}

	if w := do(t, r, http.MethodGet, "/api/ledger/"+employeePath+"/months/2025-08/export?format=pdf", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", w.Code)
	}
}

func TestAssignSeat(t *testing.T) {
	t.Parallel()

	seats := &fakeSeats{got: model.SeatAssignment{Name: "홍길동", GroupNumber: 3, Cell: "D9"}}
	r := newTestRouter(Deps{Seats: seats})

	w := do(t, r, http.MethodPost, "/api/seats/assign", map[string]string{"name": "홍길동"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got model.SeatAssignment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.GroupNumber != 3 || seats.name != "홍길동" {
		t.Fatalf("unexpected assignment %+v (name %q)", got, seats.name)
	}
}

func TestAssignSeat_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		kind   apperr.Kind
	}{
		{fmt.Errorf("%w: B7", seating.ErrAlreadyAssigned), http.StatusConflict, apperr.KindConflict},
		{seating.ErrNoSeatsAvailable, http.StatusConflict, apperr.KindCapacity},
		{seating.ErrContended, http.StatusConflict, apperr.KindConflict},
	}
	for _, tc := range cases {
		r := newTestRouter(Deps{Seats: &fakeSeats{err: tc.err}})
		w := do(t, r, http.MethodPost, "/api/seats/assign", map[string]string{"name": "홍길동"})
		if w.Code != tc.status {
			t.Fatalf("%v: status = %d", tc.err, w.Code)
		}
		msg, kind := errorBody(t, w)
		if kind != string(tc.kind) || msg != apperr.MessageOf(tc.err) {
			t.Fatalf("%v: got %q/%q", tc.err, msg, kind)
		}
	}
}

func TestGetSeats(t *testing.T) {
	t.Parallel()

	seats := &fakeSeats{snap: model.SeatMap{TotalMembers: 20, MembersPerGroup: 4, Range: "B7:E11", Filled: 1}}
	r := newTestRouter(Deps{Seats: seats})

	w := do(t, r, http.MethodGet, "/api/seats", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"range":"B7:E11"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestListJournal(t *testing.T) {
	t.Parallel()

	j := &fakeJournal{items: []model.JournalEntry{{ID: "1", Employee: "홍길동", Action: model.ActionAssignSeat}}}
	r := newTestRouter(Deps{Journal: j})

	w := do(t, r, http.MethodGet, "/api/journal?employee="+employeePath+"&limit=5&action=assign_seat", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if j.filter.Employee != "홍길동" || j.filter.Limit != 5 || j.filter.Action != model.ActionAssignSeat {
		t.Fatalf("unexpected filter %+v", j.filter)
	}
	if w := do(t, r, http.MethodGet, "/api/journal?limit=abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}

	empty := newTestRouter(Deps{})
	if w := do(t, empty, http.MethodGet, "/api/journal", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Fatalf("unexpected response without journal: %d %s", w.Code, w.Body.String())
	}
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	r := newTestRouter(Deps{
		Journal:     &fakeJournal{},
		StorageRoot: "/srv/ledgers",
		SeatingPath: "점심조.xlsx",
		Now:         func() time.Time { return time.Date(2025, 8, 15, 9, 0, 0, 0, time.Local) },
	})

	w := do(t, r, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SemesterFolder != "2025년 하반기" || got.StorageRoot != "/srv/ledgers" || len(got.Journal) != 1 {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestBuildExportContentDisposition(t *testing.T) {
	t.Parallel()

	got := buildExportContentDisposition("홍길동", 2025, 8, "csv")
	want := "attachment; filename=\"ledger-2025-08.csv\"; filename*=UTF-8''" + url.PathEscape("홍길동_2025년08월.csv")
	if got != want {
		t.Fatalf("content-disposition mismatch:\n got: %s\nwant: %s", got, want)
	}
}
