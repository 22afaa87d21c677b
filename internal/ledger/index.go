package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"mealbook/internal/apperr"
)

// ErrRowNotFound 해당 날짜 행이 장부 범위에 없음
var ErrRowNotFound = apperr.New(apperr.KindNotFound, "해당 날짜의 장부 행이 없습니다")

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// RowTable 스캔한 데이터 범위. Rows[i] 는 물리 행 firstRow+i 의 B..R 값이다.
type RowTable struct {
	Sheet  string
	Rows   [][]string
	Legacy bool // .xls (읽기 전용)
}

// RowRef 찾은 행 위치
type RowRef struct {
	Sheet string
	Index int // Rows 인덱스
	Row   int // 물리 행 번호 (1부터)
}

// Cell 이 행의 col 열 주소
func (r RowRef) Cell(col string) string {
	return fmt.Sprintf("%s%d", col, r.Row)
}

// BuildIndex 기본 시트("내역")로 색인을 만든다
func BuildIndex(data []byte) (*RowTable, error) {
	return BuildIndexForSheet(data, DefaultSheet)
}

// BuildIndexForSheet sheet 가 있으면 그 시트, 없으면 첫 시트를 스캔한다
func BuildIndexForSheet(data []byte, sheet string) (*RowTable, error) {
	switch {
	case bytes.HasPrefix(data, ole2Magic):
		return buildIndexXLS(data, sheet)
	case bytes.HasPrefix(data, zipMagic):
		return buildIndexXLSX(data, sheet)
	}
	return nil, apperr.Format("장부 파일 형식을 알 수 없습니다", errors.New("neither xlsx nor xls"))
}

func buildIndexXLSX(data []byte, preferred string) (*RowTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Format("장부 파일을 열 수 없습니다", err)
	}
	defer func() { _ = f.Close() }()

	sheet := pickSheet(f.GetSheetList(), preferred)
	if sheet == "" {
		return nil, apperr.Format("장부에 시트가 없습니다", errors.New("no worksheet"))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperr.Format("장부 시트를 읽을 수 없습니다", err)
	}

	table := &RowTable{Sheet: sheet, Rows: make([][]string, 0, lastRow-firstRow+1)}
	for r := firstRow; r <= lastRow; r++ {
		var src []string
		if r-1 < len(rows) {
			src = rows[r-1]
		}
		table.Rows = append(table.Rows, sliceColumns(src))
	}
	return table, nil
}

func buildIndexXLS(data []byte, preferred string) (*RowTable, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, apperr.Format("xls 장부를 열 수 없습니다", err)
	}
	if wb.NumSheets() == 0 {
		return nil, apperr.Format("장부에 시트가 없습니다", errors.New("no worksheet"))
	}

	ws := wb.GetSheet(0)
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil && s.Name == preferred {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, apperr.Format("장부 시트를 읽을 수 없습니다", errors.New("nil worksheet"))
	}

	table := &RowTable{Sheet: ws.Name, Rows: make([][]string, 0, lastRow-firstRow+1), Legacy: true}
	for r := firstRow; r <= lastRow; r++ {
		cells := make([]string, width)
		if int(ws.MaxRow) >= r-1 {
			if row := ws.Row(r - 1); row != nil {
				for c := 0; c < width; c++ {
					cells[c] = strings.TrimSpace(row.Col(firstCol - 1 + c))
				}
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func pickSheet(sheets []string, preferred string) string {
	for _, s := range sheets {
		if s == preferred {
			return s
		}
	}
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}

// sliceColumns 한 행(A부터)에서 B..R 만 잘라 width 칸으로 맞춘다
func sliceColumns(src []string) []string {
	out := make([]string, width)
	for c := 0; c < width; c++ {
		if i := firstCol - 1 + c; i < len(src) {
			out[c] = strings.TrimSpace(src[i])
		}
	}
	return out
}

// FindRow (year, month, day) 가 일치하는 첫 행. 행 순서가 정렬돼 있다는 보장이 없어 선형 탐색한다.
func FindRow(t *RowTable, year, month, day int) (RowRef, error) {
	for i, cells := range t.Rows {
		if cellInt(cells, 0) == year && cellInt(cells, 1) == month && cellInt(cells, 2) == day {
			return RowRef{Sheet: t.Sheet, Index: i, Row: firstRow + i}, nil
		}
	}
	return RowRef{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrRowNotFound, year, month, day)
}

// cellInt 숫자/숫자 문자열 셀을 정수로. 빈칸이나 해석 불가 값은 0.
func cellInt(cells []string, idx int) int {
	if idx < 0 || idx >= len(cells) {
		return 0
	}
	return parseInt(cells[idx])
}

func parseInt(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}
