// Package locator 는 (직원, 기간) 키를 오브젝트 스토어 안의 장부 파일 경로로 바꾼다.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"mealbook/internal/apperr"
	"mealbook/internal/objstore"
	"mealbook/internal/util"
)

var (
	// ErrFolderNotFound 학기 폴더가 없음
	ErrFolderNotFound = apperr.New(apperr.KindNotFound, "해당 학기 폴더를 찾을 수 없습니다")
	// ErrFileNotFound 폴더는 있으나 직원 파일이 없음
	ErrFileNotFound = apperr.New(apperr.KindNotFound, "직원 장부 파일을 찾을 수 없습니다")
)

// workbookExts 장부로 인정하는 확장자
var workbookExts = []string{".xlsx", ".xls"}

// SemesterFolder "{year}년 상반기|하반기"
func SemesterFolder(year, month int) string {
	half := "상반기"
	if month >= 7 {
		half = "하반기"
	}
	return fmt.Sprintf("%d년 %s", year, half)
}

// Locator 장부 파일 탐색기
type Locator struct {
	store objstore.Store
	now   func() time.Time
}

// New 생성
func New(store objstore.Store) *Locator {
	return &Locator{store: store, now: time.Now}
}

// WithClock 연도 미지정 시 사용할 시계를 교체한다 (테스트용)
func (l *Locator) WithClock(now func() time.Time) *Locator {
	l.now = now
	return l
}

// Locate 파일명(확장자 제외)이 직원 이름과 정확히 같은 장부를 찾는다. year 가 0 이면 올해.
func (l *Locator) Locate(ctx context.Context, employeeName string, month, year int) (objstore.ObjectMeta, error) {
	return l.locate(ctx, employeeName, month, year, false)
}

// LocateLenient 정확히 일치하는 파일이 없으면 이름을 포함하는 파일까지 허용한다
func (l *Locator) LocateLenient(ctx context.Context, employeeName string, month, year int) (objstore.ObjectMeta, error) {
	return l.locate(ctx, employeeName, month, year, true)
}

func (l *Locator) locate(ctx context.Context, employeeName string, month, year int, lenient bool) (objstore.ObjectMeta, error) {
	if strings.TrimSpace(employeeName) == "" {
		return objstore.ObjectMeta{}, apperr.Validation("직원 이름이 필요합니다")
	}
	if month < 1 || month > 12 {
		return objstore.ObjectMeta{}, apperr.Validation(fmt.Sprintf("잘못된 월: %d", month))
	}
	if year == 0 {
		year = l.now().Year()
	}

	folder := SemesterFolder(year, month)
	items, err := l.store.List(ctx, folder)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return objstore.ObjectMeta{}, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}
		return objstore.ObjectMeta{}, apperr.Transport("오브젝트 목록 조회 실패", err)
	}

	workbooks := make([]objstore.ObjectMeta, 0, len(items))
	for _, it := range items {
		if isWorkbook(it.Name) {
			workbooks = append(workbooks, it)
		}
	}

	matches := matchExact(workbooks, employeeName)
	if len(matches) == 0 && lenient {
		matches = matchContains(workbooks, employeeName)
	}
	if len(matches) == 0 {
		return objstore.ObjectMeta{}, fmt.Errorf("%w: %s/%s", ErrFileNotFound, folder, employeeName)
	}
	if len(matches) > 1 {
		log.Printf("[locator] %d workbooks match %q in %s, using %s", len(matches), employeeName, folder, matches[0].Name)
	}
	return matches[0], nil
}

func matchExact(items []objstore.ObjectMeta, employeeName string) []objstore.ObjectMeta {
	var out []objstore.ObjectMeta
	for _, it := range items {
		if util.SameName(Stem(it.Name), employeeName) {
			out = append(out, it)
		}
	}
	return out
}

func matchContains(items []objstore.ObjectMeta, employeeName string) []objstore.ObjectMeta {
	var out []objstore.ObjectMeta
	for _, it := range items {
		if util.NameContains(Stem(it.Name), employeeName) {
			out = append(out, it)
		}
	}
	return out
}

// Stem 확장자를 뗀 파일명
func Stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func isWorkbook(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range workbookExts {
		if ext == e {
			return true
		}
	}
	return false
}
