package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"mealbook/internal/apperr"
)

// ErrReadOnlyWorkbook 레거시 .xls 장부는 쓸 수 없다
var ErrReadOnlyWorkbook = apperr.New(apperr.KindFormat, "xls 형식 장부는 수정할 수 없습니다. xlsx 로 변환해 주세요")

// UpdateRow 워크북 전체를 읽어 ref 행의 지정 셀만 쓰고, 워크북 전체를 다시 직렬화한다.
//
// 다른 행을 가리키는 셀이 섞여 있으면 아무것도 쓰지 않고 실패한다.
func UpdateRow(data []byte, ref RowRef, cells CellMap) ([]byte, error) {
	if bytes.HasPrefix(data, ole2Magic) {
		return nil, ErrReadOnlyWorkbook
	}
	addrs := make([]string, 0, len(cells))
	for addr := range cells {
		_, row, err := excelize.CellNameToCoordinates(addr)
		if err != nil {
			return nil, apperr.Format("잘못된 셀 주소", err)
		}
		if row != ref.Row {
			return nil, apperr.Format("다른 행의 셀은 쓸 수 없습니다", fmt.Errorf("cell %s is outside row %d", addr, ref.Row))
		}
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Format("장부 파일을 열 수 없습니다", err)
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(ref.Sheet); err != nil || idx < 0 {
		return nil, apperr.Format("장부 시트를 찾을 수 없습니다", errors.New("missing sheet "+ref.Sheet))
	}

	for _, addr := range addrs {
		if err := f.SetCellValue(ref.Sheet, addr, cells[addr]); err != nil {
			return nil, apperr.Format("셀 쓰기 실패", fmt.Errorf("%s!%s: %w", ref.Sheet, addr, err))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperr.Format("장부 직렬화 실패", err)
	}
	return buf.Bytes(), nil
}

// BlankRow ref 행의 columns 열을 빈 문자열로 덮어쓴다 (삭제)
func BlankRow(data []byte, ref RowRef, columns []string) ([]byte, error) {
	cells := make(CellMap, len(columns))
	for _, col := range columns {
		cells[ref.Cell(col)] = ""
	}
	return UpdateRow(data, ref, cells)
}
