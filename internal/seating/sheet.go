// Package seating 은 색칠된 셀을 좌석으로 보는 점심조 좌석표에서 좌석을 추첨/배정한다.
package seating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrVersionMismatch 조건부 쓰기 시 시트가 그 사이 바뀌었음
var ErrVersionMismatch = errors.New("sheet version mismatch")

// Values 범위의 셀 값과 읽은 시점의 버전
type Values struct {
	Cells   [][]string
	Version string
}

// Color 0~1 스케일 RGB
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// IsWhite 순백(1,1,1)인지
func (c Color) IsWhite() bool {
	return c.Red == 1 && c.Green == 1 && c.Blue == 1
}

// CellFormat 셀 서식. 배경 채우기가 없으면 Background 는 nil.
type CellFormat struct {
	Background *Color `json:"background,omitempty"`
}

// IsSeat 흰색이 아닌 배경이 칠해진 셀이 좌석이다
func (f CellFormat) IsSeat() bool {
	return f.Background != nil && !f.Background.IsWhite()
}

// Sheet 좌석표 스프레드시트 API. 모든 호출은 매번 원본을 새로 읽는다.
type Sheet interface {
	GetValues(ctx context.Context, rng string) (Values, error)
	GetCellFormatting(ctx context.Context, rng string) ([][]CellFormat, error)
	// UpdateValues ifVersion 이 비어 있지 않으면 현재 버전이 같을 때만 쓴다 (ErrVersionMismatch)
	UpdateValues(ctx context.Context, rng string, values [][]string, ifVersion string) error
}

// cellRange A1 표기 범위 (1부터, 양끝 포함)
type cellRange struct {
	col1, row1, col2, row2 int
}

func parseRange(rng string) (cellRange, error) {
	parts := strings.Split(strings.TrimSpace(rng), ":")
	if len(parts) > 2 || parts[0] == "" {
		return cellRange{}, fmt.Errorf("invalid range %q", rng)
	}
	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return cellRange{}, fmt.Errorf("invalid range %q: %w", rng, err)
	}
	c2, r2 := c1, r1
	if len(parts) == 2 {
		if c2, r2, err = excelize.CellNameToCoordinates(parts[1]); err != nil {
			return cellRange{}, fmt.Errorf("invalid range %q: %w", rng, err)
		}
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	return cellRange{col1: c1, row1: r1, col2: c2, row2: r2}, nil
}

func (r cellRange) rows() int { return r.row2 - r.row1 + 1 }
func (r cellRange) cols() int { return r.col2 - r.col1 + 1 }

// cell 범위 내 (i, j) 오프셋의 셀 주소
func (r cellRange) cell(i, j int) string {
	name, _ := excelize.CoordinatesToCellName(r.col1+j, r.row1+i)
	return name
}

func (r cellRange) String() string {
	return fmt.Sprintf("%s:%s", r.cell(0, 0), r.cell(r.rows()-1, r.cols()-1))
}
