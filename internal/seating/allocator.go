package seating

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mealbook/internal/apperr"
	"mealbook/internal/model"
	"mealbook/internal/util"
)

var (
	ErrAlreadyAssigned  = apperr.New(apperr.KindConflict, "이미 배정이 완료되었습니다")
	ErrNoSeatsAvailable = apperr.New(apperr.KindCapacity, "남은 좌석이 없습니다")
	ErrContended        = apperr.New(apperr.KindConflict, "좌석표가 동시에 수정되고 있습니다. 잠시 후 다시 시도해주세요")
)

// Journal 배정 이력 기록
type Journal interface {
	AppendJournal(ctx context.Context, e model.JournalEntry) error
}

// Layout 좌석표 안의 고정 위치
type Layout struct {
	TotalCell    string // 전체 인원
	PerGroupCell string // 조당 인원
	Anchor       string // 좌석 블록 왼쪽 위
	GroupColumn  string // 조 번호 라벨 열
}

// DefaultLayout B4/C4, 블록은 B7 부터, 조 라벨은 A 열
func DefaultLayout() Layout {
	return Layout{TotalCell: "B4", PerGroupCell: "C4", Anchor: "B7", GroupColumn: "A"}
}

// Allocator 좌석 추첨기. 한 프로세스 안의 배정은 직렬화되고,
// 다른 작성자와의 경합은 조건부 쓰기로 감지해 다시 시도한다.
type Allocator struct {
	sheet       Sheet
	layout      Layout
	maxAttempts int
	journal     Journal
	source      string
	pick        func(n int) int
	mu          sync.Mutex
}

// Option Allocator 설정
type Option func(*Allocator)

// WithPicker 빈 좌석 n 개 중 하나를 고르는 함수. 테스트용.
func WithPicker(pick func(n int) int) Option {
	return func(a *Allocator) { a.pick = pick }
}

// WithJournal 배정마다 저널에 남긴다. source 는 기록할 좌석표 경로.
func WithJournal(j Journal, source string) Option {
	return func(a *Allocator) {
		a.journal = j
		a.source = source
	}
}

// WithMaxAttempts 경합 시 재시도 횟수 (기본 3)
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// NewAllocator layout 의 빈 값은 DefaultLayout 으로 채운다
func NewAllocator(sheet Sheet, layout Layout, opts ...Option) *Allocator {
	def := DefaultLayout()
	if layout.TotalCell == "" {
		layout.TotalCell = def.TotalCell
	}
	if layout.PerGroupCell == "" {
		layout.PerGroupCell = def.PerGroupCell
	}
	if layout.Anchor == "" {
		layout.Anchor = def.Anchor
	}
	if layout.GroupColumn == "" {
		layout.GroupColumn = def.GroupColumn
	}
	a := &Allocator{sheet: sheet, layout: layout, maxAttempts: 3, pick: rand.Intn}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var errStale = errors.New("stale seat read")

// Assign 이름을 빈 좌석 하나에 무작위로 배정한다.
func (a *Allocator) Assign(ctx context.Context, name string) (model.SeatAssignment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.SeatAssignment{}, apperr.Validation("이름을 입력해주세요")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.SeatAssignment{}, err
		}
		got, err := a.tryAssign(ctx, name)
		if errors.Is(err, errStale) {
			log.Printf("[seating] attempt %d/%d: sheet changed during claim for %q, retrying", attempt, a.maxAttempts, name)
			continue
		}
		if err != nil {
			return model.SeatAssignment{}, err
		}
		log.Printf("[seating] assigned %q to group %d (%s)", got.Name, got.GroupNumber, got.Cell)
		a.record(ctx, got)
		return got, nil
	}
	return model.SeatAssignment{}, ErrContended
}

func (a *Allocator) tryAssign(ctx context.Context, name string) (model.SeatAssignment, error) {
	block, err := a.block(ctx)
	if err != nil {
		return model.SeatAssignment{}, err
	}
	formats, err := a.sheet.GetCellFormatting(ctx, block.String())
	if err != nil {
		return model.SeatAssignment{}, err
	}
	values, err := a.sheet.GetValues(ctx, block.String())
	if err != nil {
		return model.SeatAssignment{}, err
	}

	type free struct{ i, j int }
	var open []free
	for i := 0; i < block.rows(); i++ {
		for j := 0; j < block.cols(); j++ {
			v := at(values.Cells, i, j)
			if util.SameName(v, name) {
				return model.SeatAssignment{}, fmt.Errorf("%w: %s", ErrAlreadyAssigned, block.cell(i, j))
			}
			if v == "" && formatAt(formats, i, j).IsSeat() {
				open = append(open, free{i, j})
			}
		}
	}
	if len(open) == 0 {
		return model.SeatAssignment{}, ErrNoSeatsAvailable
	}

	seat := open[a.pick(len(open))]
	cell := block.cell(seat.i, seat.j)
	if err := a.sheet.UpdateValues(ctx, cell, [][]string{{name}}, values.Version); err != nil {
		if errors.Is(err, ErrVersionMismatch) {
			return model.SeatAssignment{}, errStale
		}
		return model.SeatAssignment{}, err
	}

	group := seat.i + 1
	labelCell := fmt.Sprintf("%s%d", a.layout.GroupColumn, block.row1+seat.i)
	if label, err := a.sheet.GetValues(ctx, labelCell); err != nil {
		log.Printf("[seating] read group label %s failed: %v", labelCell, err)
	} else if n, ok := groupNumber(at(label.Cells, 0, 0)); ok {
		group = n
	}
	return model.SeatAssignment{Name: name, GroupNumber: group, Cell: cell}, nil
}

// Snapshot 현재 좌석표 상태
func (a *Allocator) Snapshot(ctx context.Context) (model.SeatMap, error) {
	block, err := a.block(ctx)
	if err != nil {
		return model.SeatMap{}, err
	}
	formats, err := a.sheet.GetCellFormatting(ctx, block.String())
	if err != nil {
		return model.SeatMap{}, err
	}
	values, err := a.sheet.GetValues(ctx, block.String())
	if err != nil {
		return model.SeatMap{}, err
	}
	labelRange := fmt.Sprintf("%s%d:%s%d", a.layout.GroupColumn, block.row1, a.layout.GroupColumn, block.row2)
	labels, err := a.sheet.GetValues(ctx, labelRange)
	if err != nil {
		return model.SeatMap{}, err
	}

	m := model.SeatMap{TotalMembers: block.total, MembersPerGroup: block.per, Range: block.String()}
	for i := 0; i < block.rows(); i++ {
		group := i + 1
		if n, ok := groupNumber(at(labels.Cells, i, 0)); ok {
			group = n
		}
		for j := 0; j < block.cols(); j++ {
			if !formatAt(formats, i, j).IsSeat() {
				continue
			}
			occupant := at(values.Cells, i, j)
			m.Seats = append(m.Seats, model.Seat{Cell: block.cell(i, j), GroupNumber: group, Occupant: occupant})
			if occupant != "" {
				m.Filled++
			}
		}
	}
	if len(m.Seats) > block.total {
		log.Printf("[seating] %d colored seats exceed total members %d", len(m.Seats), block.total)
	}
	return m, nil
}

func (a *Allocator) capacity(ctx context.Context) (int, int, error) {
	read := func(cell, label string) (int, error) {
		v, err := a.sheet.GetValues(ctx, cell)
		if err != nil {
			return 0, err
		}
		raw := at(v.Cells, 0, 0)
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil || n < 1 {
			return 0, apperr.Format(fmt.Sprintf("%s(%s) 값이 올바르지 않습니다: %q", label, cell, raw), err)
		}
		return int(n), nil
	}
	total, err := read(a.layout.TotalCell, "전체 인원")
	if err != nil {
		return 0, 0, err
	}
	per, err := read(a.layout.PerGroupCell, "조당 인원")
	if err != nil {
		return 0, 0, err
	}
	return total, per, nil
}

// seatBlock 좌석 블록 범위와 그 범위를 정한 인원 값
type seatBlock struct {
	cellRange
	total, per int
}

// block 전체 인원/조당 인원으로 좌석 블록 범위를 정한다.
// 행 = total/per, 열 = per (나머지가 있으면 한 열 더).
func (a *Allocator) block(ctx context.Context) (seatBlock, error) {
	total, per, err := a.capacity(ctx)
	if err != nil {
		return seatBlock{}, err
	}
	anchor, err := parseRange(a.layout.Anchor)
	if err != nil {
		return seatBlock{}, apperr.Format("좌석 시작 셀이 올바르지 않습니다", err)
	}
	rows := total / per
	if rows == 0 {
		rows = 1
	}
	cols := per
	if total%per != 0 {
		cols++
	}
	return seatBlock{
		cellRange: cellRange{
			col1: anchor.col1, row1: anchor.row1,
			col2: anchor.col1 + cols - 1, row2: anchor.row1 + rows - 1,
		},
		total: total,
		per:   per,
	}, nil
}

func (a *Allocator) record(ctx context.Context, s model.SeatAssignment) {
	if a.journal == nil {
		return
	}
	entry := model.JournalEntry{
		ID:        uuid.NewString(),
		Employee:  s.Name,
		Action:    model.ActionAssignSeat,
		FilePath:  a.source,
		Detail:    fmt.Sprintf("%d조 %s", s.GroupNumber, s.Cell),
		CreatedAt: time.Now(),
	}
	if err := a.journal.AppendJournal(ctx, entry); err != nil {
		log.Printf("[seating] journal append failed: %v", err)
	}
}

var digitsRe = regexp.MustCompile(`\d+`)

// groupNumber "3조" / "3" 같은 라벨에서 조 번호
func groupNumber(label string) (int, bool) {
	m := digitsRe.FindString(label)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func at(cells [][]string, i, j int) string {
	if i < len(cells) && j < len(cells[i]) {
		return strings.TrimSpace(cells[i][j])
	}
	return ""
}

func formatAt(f [][]CellFormat, i, j int) CellFormat {
	if i < len(f) && j < len(f[i]) {
		return f[i][j]
	}
	return CellFormat{}
}
