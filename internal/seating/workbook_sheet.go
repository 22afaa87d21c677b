package seating

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mealbook/internal/apperr"
	"mealbook/internal/objstore"
)

// DefaultSheetName 좌석표 시트 이름
const DefaultSheetName = "점심조"

// WorkbookSheet 오브젝트 스토어에 있는 xlsx 파일을 Sheet 로 노출한다. 버전은 오브젝트 ETag.
type WorkbookSheet struct {
	store objstore.Store
	path  string
	sheet string
}

// NewWorkbookSheet sheet 가 비면 "점심조"
func NewWorkbookSheet(store objstore.Store, path, sheet string) *WorkbookSheet {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &WorkbookSheet{store: store, path: path, sheet: sheet}
}

// Path 좌석표 오브젝트 경로
func (w *WorkbookSheet) Path() string {
	return w.path
}

func (w *WorkbookSheet) open(ctx context.Context) (*excelize.File, string, error) {
	obj, err := w.store.Get(ctx, w.path)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return nil, "", apperr.NotFound("좌석표 파일을 찾을 수 없습니다", err)
		}
		return nil, "", apperr.Transport("좌석표 읽기 실패", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(obj.Data))
	if err != nil {
		return nil, "", apperr.Format("좌석표 파일을 열 수 없습니다", err)
	}
	if idx, err := f.GetSheetIndex(w.sheet); err != nil || idx < 0 {
		_ = f.Close()
		return nil, "", apperr.Format("좌석표 시트를 찾을 수 없습니다", fmt.Errorf("missing sheet %q", w.sheet))
	}
	return f, obj.Meta.ETag, nil
}

func (w *WorkbookSheet) GetValues(ctx context.Context, rng string) (Values, error) {
	r, err := parseRange(rng)
	if err != nil {
		return Values{}, apperr.Validation(err.Error())
	}
	f, version, err := w.open(ctx)
	if err != nil {
		return Values{}, err
	}
	defer func() { _ = f.Close() }()

	cells := make([][]string, r.rows())
	for i := range cells {
		cells[i] = make([]string, r.cols())
		for j := range cells[i] {
			v, err := f.GetCellValue(w.sheet, r.cell(i, j), excelize.Options{RawCellValue: true})
			if err != nil {
				return Values{}, apperr.Format("좌석표 셀 읽기 실패", err)
			}
			cells[i][j] = strings.TrimSpace(v)
		}
	}
	return Values{Cells: cells, Version: version}, nil
}

func (w *WorkbookSheet) GetCellFormatting(ctx context.Context, rng string) ([][]CellFormat, error) {
	r, err := parseRange(rng)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	f, _, err := w.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	out := make([][]CellFormat, r.rows())
	for i := range out {
		out[i] = make([]CellFormat, r.cols())
		for j := range out[i] {
			styleID, err := f.GetCellStyle(w.sheet, r.cell(i, j))
			if err != nil {
				return nil, apperr.Format("좌석표 서식 읽기 실패", err)
			}
			style, err := f.GetStyle(styleID)
			if err != nil {
				return nil, apperr.Format("좌석표 서식 읽기 실패", err)
			}
			out[i][j] = CellFormat{Background: fillColor(style)}
		}
	}
	return out, nil
}

func (w *WorkbookSheet) UpdateValues(ctx context.Context, rng string, values [][]string, ifVersion string) error {
	r, err := parseRange(rng)
	if err != nil {
		return apperr.Validation(err.Error())
	}
	f, _, err := w.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	for i, row := range values {
		if i >= r.rows() {
			break
		}
		for j, v := range row {
			if j >= r.cols() {
				break
			}
			if err := f.SetCellValue(w.sheet, r.cell(i, j), v); err != nil {
				return apperr.Format("좌석표 셀 쓰기 실패", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return apperr.Format("좌석표 직렬화 실패", err)
	}

	if ifVersion == "" {
		_, err = w.store.Put(ctx, w.path, buf.Bytes())
	} else {
		_, err = w.store.PutIf(ctx, w.path, buf.Bytes(), ifVersion)
	}
	if err != nil {
		if errors.Is(err, objstore.ErrPreconditionFailed) {
			return fmt.Errorf("%w: %s", ErrVersionMismatch, w.path)
		}
		return apperr.Transport("좌석표 저장 실패", err)
	}
	return nil
}

// fillColor 패턴 채우기 색을 0~1 RGB 로. 채우기가 없으면 nil.
func fillColor(style *excelize.Style) *Color {
	if style == nil || style.Fill.Pattern == 0 || len(style.Fill.Color) == 0 {
		return nil
	}
	hex := strings.TrimPrefix(strings.TrimSpace(style.Fill.Color[0]), "#")
	if len(hex) == 8 {
		hex = hex[2:] // ARGB
	}
	if len(hex) != 6 {
		// 테마 색 등 RGB 로 풀 수 없는 채우기도 색칠된 셀로 본다
		return &Color{}
	}
	channel := func(s string) float64 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0
		}
		return float64(v) / 255
	}
	return &Color{Red: channel(hex[0:2]), Green: channel(hex[2:4]), Blue: channel(hex[4:6])}
}
