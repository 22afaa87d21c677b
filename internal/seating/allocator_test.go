package seating

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"mealbook/internal/apperr"
	"mealbook/internal/model"
	"mealbook/internal/objstore"
)

const seatPath = "점심조.xlsx"

type seatBook struct {
	total, perGroup int
	labels          bool
	// 좌석 블록 밖까지 포함해 칠할 범위와 색
	fills []seatFill
}

type seatFill struct {
	from, to, color string
}

func buildSeatBook(t *testing.T, b seatBook) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", DefaultSheetName); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}
	set := func(cell string, v any) {
		if err := f.SetCellValue(DefaultSheetName, cell, v); err != nil {
			t.Fatalf("SetCellValue %s failed: %v", cell, err)
		}
	}
	set("A1", "점심조 추첨")
	set("A4", "인원")
	set("B4", b.total)
	set("C4", b.perGroup)
	if b.labels {
		for i := 0; i < b.total/b.perGroup; i++ {
			set(fmt.Sprintf("A%d", 7+i), fmt.Sprintf("%d조", i+1))
		}
	}
	for _, fill := range b.fills {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill.color}}})
		if err != nil {
			t.Fatalf("NewStyle failed: %v", err)
		}
		if err := f.SetCellStyle(DefaultSheetName, fill.from, fill.to, id); err != nil {
			t.Fatalf("SetCellStyle failed: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

// standardBook 20명 / 조당 4명, B7:E11 전부 좌석
func standardBook(t *testing.T) []byte {
	return buildSeatBook(t, seatBook{
		total: 20, perGroup: 4, labels: true,
		fills: []seatFill{{"B7", "E11", "FFE699"}},
	})
}

func newTestSheet(t *testing.T, data []byte) (*WorkbookSheet, *objstore.MemoryStore) {
	t.Helper()

	st := objstore.NewMemoryStore()
	if _, err := st.Put(context.Background(), seatPath, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	return NewWorkbookSheet(st, seatPath, ""), st
}

type memJournal struct {
	mu      sync.Mutex
	entries []model.JournalEntry
}

func (j *memJournal) AppendJournal(_ context.Context, e model.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func first(int) int { return 0 }

func TestAllocator_FillsEverySeatThenRunsOut(t *testing.T) {
	t.Parallel()

	sheet, _ := newTestSheet(t, standardBook(t))
	j := &memJournal{}
	a := NewAllocator(sheet, DefaultLayout(), WithJournal(j, seatPath))
	ctx := context.Background()

	cells := map[string]bool{}
	groups := map[int]int{}
	for i := 1; i <= 20; i++ {
		got, err := a.Assign(ctx, fmt.Sprintf("사원%02d", i))
		if err != nil {
			t.Fatalf("Assign #%d failed: %v", i, err)
		}
		if cells[got.Cell] {
			t.Fatalf("cell %s assigned twice", got.Cell)
		}
		cells[got.Cell] = true
		groups[got.GroupNumber]++
	}
	for g := 1; g <= 5; g++ {
		if groups[g] != 4 {
			t.Fatalf("group %d has %d members, want 4 (%v)", g, groups[g], groups)
		}
	}

	_, err := a.Assign(ctx, "사원21")
	if !errors.Is(err, ErrNoSeatsAvailable) || apperr.KindOf(err) != apperr.KindCapacity {
		t.Fatalf("expected ErrNoSeatsAvailable, got %v", err)
	}
	if len(j.entries) != 20 || j.entries[0].Action != model.ActionAssignSeat {
		t.Fatalf("unexpected journal: %d entries", len(j.entries))
	}
}

func TestAllocator_DuplicateNameLeavesSheetUntouched(t *testing.T) {
	t.Parallel()

	sheet, st := newTestSheet(t, standardBook(t))
	a := NewAllocator(sheet, DefaultLayout(), WithPicker(first))
	ctx := context.Background()

	got, err := a.Assign(ctx, "홍길동")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got.Cell != "B7" || got.GroupNumber != 1 {
		t.Fatalf("unexpected assignment: %+v", got)
	}

	before, _ := st.Get(ctx, seatPath)
	_, err = a.Assign(ctx, " 홍길동 ")
	if !errors.Is(err, ErrAlreadyAssigned) || apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
	after, _ := st.Get(ctx, seatPath)
	if before.Meta.ETag != after.Meta.ETag {
		t.Fatalf("sheet was modified by a rejected assignment")
	}
}

func TestAllocator_BlankNameIsValidationError(t *testing.T) {
	t.Parallel()

	sheet, _ := newTestSheet(t, standardBook(t))
	a := NewAllocator(sheet, DefaultLayout())
	if _, err := a.Assign(context.Background(), "  "); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAllocator_WhiteAndPlainCellsAreNotSeats(t *testing.T) {
	t.Parallel()

	// E 열은 흰색, E11 아래 행은 칠하지 않음
	data := buildSeatBook(t, seatBook{
		total: 20, perGroup: 4, labels: true,
		fills: []seatFill{
			{"B7", "D10", "FFE699"},
			{"E7", "E11", "FFFFFF"},
		},
	})
	sheet, _ := newTestSheet(t, data)
	a := NewAllocator(sheet, DefaultLayout())
	ctx := context.Background()

	snap, err := a.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Range != "B7:E11" {
		t.Fatalf("unexpected range %s", snap.Range)
	}
	if len(snap.Seats) != 12 {
		t.Fatalf("expected 12 seats, got %d", len(snap.Seats))
	}
	for _, s := range snap.Seats {
		if s.Cell[0] == 'E' || s.Cell[1:] == "11" {
			t.Fatalf("%s should not be a seat", s.Cell)
		}
	}

	for i := 0; i < 12; i++ {
		if _, err := a.Assign(ctx, fmt.Sprintf("사원%02d", i)); err != nil {
			t.Fatalf("Assign #%d failed: %v", i, err)
		}
	}
	if _, err := a.Assign(ctx, "늦은사람"); !errors.Is(err, ErrNoSeatsAvailable) {
		t.Fatalf("expected ErrNoSeatsAvailable, got %v", err)
	}
}

func TestAllocator_RemainderAddsColumn(t *testing.T) {
	t.Parallel()

	data := buildSeatBook(t, seatBook{
		total: 22, perGroup: 4,
		fills: []seatFill{{"B7", "F11", "C6E0B4"}},
	})
	sheet, _ := newTestSheet(t, data)
	a := NewAllocator(sheet, DefaultLayout(), WithPicker(func(n int) int { return n - 1 }))

	snap, err := a.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Range != "B7:F11" || len(snap.Seats) != 25 {
		t.Fatalf("unexpected snapshot: range %s, %d seats", snap.Range, len(snap.Seats))
	}

	// 조 라벨이 없으면 블록 안 행 순번
	got, err := a.Assign(context.Background(), "김철수")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got.Cell != "F11" || got.GroupNumber != 5 {
		t.Fatalf("unexpected assignment: %+v", got)
	}
}

// racingSheet 첫 쓰기 직전에 다른 작성자가 같은 셀을 차지한다
type racingSheet struct {
	*WorkbookSheet
	once sync.Once
}

func (r *racingSheet) UpdateValues(ctx context.Context, rng string, values [][]string, ifVersion string) error {
	var err error
	r.once.Do(func() {
		err = r.WorkbookSheet.UpdateValues(ctx, rng, [][]string{{"다른사람"}}, "")
	})
	if err != nil {
		return err
	}
	return r.WorkbookSheet.UpdateValues(ctx, rng, values, ifVersion)
}

func TestAllocator_RetriesWhenSheetChanges(t *testing.T) {
	t.Parallel()

	sheet, _ := newTestSheet(t, standardBook(t))
	a := NewAllocator(&racingSheet{WorkbookSheet: sheet}, DefaultLayout(), WithPicker(first))
	ctx := context.Background()

	got, err := a.Assign(ctx, "홍길동")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got.Cell != "C7" {
		t.Fatalf("expected retry to land on C7, got %s", got.Cell)
	}

	v, err := sheet.GetValues(ctx, "B7:C7")
	if err != nil {
		t.Fatalf("GetValues failed: %v", err)
	}
	if v.Cells[0][0] != "다른사람" || v.Cells[0][1] != "홍길동" {
		t.Fatalf("unexpected cells: %v", v.Cells)
	}
}

type staleSheet struct {
	*WorkbookSheet
	writes int
}

func (s *staleSheet) UpdateValues(context.Context, string, [][]string, string) error {
	s.writes++
	return ErrVersionMismatch
}

func TestAllocator_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	sheet, _ := newTestSheet(t, standardBook(t))
	stale := &staleSheet{WorkbookSheet: sheet}
	a := NewAllocator(stale, DefaultLayout(), WithMaxAttempts(2))

	_, err := a.Assign(context.Background(), "홍길동")
	if !errors.Is(err, ErrContended) || apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected ErrContended, got %v", err)
	}
	if stale.writes != 2 {
		t.Fatalf("expected 2 attempts, got %d", stale.writes)
	}
}

func TestAllocator_ConcurrentClaimsGetDistinctSeats(t *testing.T) {
	t.Parallel()

	sheet, _ := newTestSheet(t, standardBook(t))
	a := NewAllocator(sheet, DefaultLayout())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]model.SeatAssignment, 20)
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = a.Assign(ctx, fmt.Sprintf("사원%02d", i))
		}(i)
	}
	wg.Wait()

	seen := map[string]string{}
	for i, r := range results {
		if errs[i] != nil {
			t.Fatalf("Assign #%d failed: %v", i, errs[i])
		}
		if other, ok := seen[r.Cell]; ok {
			t.Fatalf("%s given to both %s and %s", r.Cell, other, r.Name)
		}
		seen[r.Cell] = r.Name
	}

	snap, err := a.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Filled != 20 || snap.TotalMembers != 20 || snap.MembersPerGroup != 4 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestWorkbookSheet_MissingFileAndSheet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := objstore.NewMemoryStore()
	if _, err := NewWorkbookSheet(st, "없음.xlsx", "").GetValues(ctx, "B4"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	if _, err := st.Put(ctx, seatPath, standardBook(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := NewWorkbookSheet(st, seatPath, "다른시트").GetValues(ctx, "B4"); apperr.KindOf(err) != apperr.KindFormat {
		t.Fatalf("expected format error, got %v", err)
	}
}

// failingPutStore 읽기는 그대로, 쓰기는 모두 실패
type failingPutStore struct {
	*objstore.MemoryStore
}

var errDiskFull = errors.New("disk full")

func (failingPutStore) Put(context.Context, string, []byte) (objstore.ObjectMeta, error) {
	return objstore.ObjectMeta{}, errDiskFull
}

func (failingPutStore) PutIf(context.Context, string, []byte, string) (objstore.ObjectMeta, error) {
	return objstore.ObjectMeta{}, errDiskFull
}

func TestWorkbookSheet_PutFailureIsTransportAndLeavesFileIntact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := objstore.NewMemoryStore()
	before, err := mem.Put(ctx, seatPath, standardBook(t))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	sheet := NewWorkbookSheet(failingPutStore{mem}, seatPath, "")

	for _, version := range []string{"", before.ETag} {
		err := sheet.UpdateValues(ctx, "B7", [][]string{{"홍길동"}}, version)
		if apperr.KindOf(err) != apperr.KindTransport || !errors.Is(err, errDiskFull) {
			t.Fatalf("ifVersion=%q: expected wrapped transport error, got %v", version, err)
		}
	}

	a := NewAllocator(sheet, DefaultLayout(), WithPicker(first))
	if _, err := a.Assign(ctx, "홍길동"); apperr.KindOf(err) != apperr.KindTransport {
		t.Fatalf("Assign: expected transport error, got %v", err)
	}

	obj, err := mem.Get(ctx, seatPath)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if obj.Meta.ETag != before.ETag {
		t.Fatalf("seat sheet changed after failed write: etag %s -> %s", before.ETag, obj.Meta.ETag)
	}
}

// capacityOnceSheet 인원 셀은 한 번만 읽을 수 있다
type capacityOnceSheet struct {
	*WorkbookSheet
	mu    sync.Mutex
	reads map[string]int
}

func (s *capacityOnceSheet) GetValues(ctx context.Context, rng string) (Values, error) {
	if rng == "B4" || rng == "C4" {
		s.mu.Lock()
		s.reads[rng]++
		n := s.reads[rng]
		s.mu.Unlock()
		if n > 1 {
			return Values{}, apperr.Transport("좌석표 읽기 실패", errDiskFull)
		}
	}
	return s.WorkbookSheet.GetValues(ctx, rng)
}

func TestAllocator_SnapshotReadsCapacityOnce(t *testing.T) {
	t.Parallel()

	sheet, _ := newTestSheet(t, standardBook(t))
	a := NewAllocator(&capacityOnceSheet{WorkbookSheet: sheet, reads: map[string]int{}}, DefaultLayout())

	snap, err := a.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.TotalMembers != 20 || snap.MembersPerGroup != 4 || snap.Range != "B7:E11" {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
}

func TestFillColor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		color string
		seat  bool
	}{
		{"FFE699", true},
		{"#C6E0B4", true},
		{"FFFFFFFF", false},
		{"FFFFFF", false},
	}
	for _, tc := range cases {
		style := &excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{tc.color}}}
		if got := (CellFormat{Background: fillColor(style)}).IsSeat(); got != tc.seat {
			t.Fatalf("%s: IsSeat = %v, want %v", tc.color, got, tc.seat)
		}
	}
	if fillColor(&excelize.Style{}) != nil {
		t.Fatalf("unfilled style should have no background")
	}
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	r, err := parseRange("E11:B7")
	if err != nil {
		t.Fatalf("parseRange failed: %v", err)
	}
	if r.String() != "B7:E11" || r.rows() != 5 || r.cols() != 4 {
		t.Fatalf("unexpected range %+v", r)
	}
	if _, err := parseRange(""); err == nil {
		t.Fatalf("expected error for empty range")
	}
}
