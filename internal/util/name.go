package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName 직원 이름/파일명 비교용 정규화: 앞뒤 공백 제거, NFC, 대소문자 폴딩
//
// macOS 에서 올라온 파일명은 NFD 로 저장되는 경우가 있어 비교 전에 반드시 거쳐야 한다.
func NormalizeName(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	// Caser 는 상태를 가지므로 호출마다 새로 만든다
	return norm.NFC.String(cases.Fold().String(s))
}

// SameName 정규화 후 완전 일치
func SameName(a, b string) bool {
	na := NormalizeName(a)
	return na != "" && na == NormalizeName(b)
}

// NameContains 정규화 후 haystack 이 needle 을 포함하는지
func NameContains(haystack, needle string) bool {
	n := NormalizeName(needle)
	if n == "" {
		return false
	}
	return strings.Contains(NormalizeName(haystack), n)
}
