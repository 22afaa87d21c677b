// Package objstore 는 장부/좌석 워크북이 저장되는 오브젝트 스토어를 추상화한다.
//
// 쓰기는 항상 파일 전체 덮어쓰기이며 부분 쓰기 경로는 없다.
package objstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound 경로(폴더 또는 오브젝트)가 없음
	ErrNotFound = errors.New("object not found")
	// ErrPreconditionFailed PutIf 의 ETag 가 현재 값과 다름
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInvalidPath 루트 밖을 가리키거나 비어 있는 경로
	ErrInvalidPath = errors.New("invalid object path")
)

// ObjectMeta 오브젝트 메타데이터
type ObjectMeta struct {
	Path    string    `json:"path"` // 스토어 루트 기준 "/" 구분 경로
	Name    string    `json:"name"` // 마지막 경로 요소
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	ETag    string    `json:"etag,omitempty"` // List 결과에서는 비어 있을 수 있다
}

// Object 오브젝트 본문과 메타데이터
type Object struct {
	Meta ObjectMeta
	Data []byte
}

// Store 오브젝트 스토어
type Store interface {
	// List prefix 폴더 바로 아래의 오브젝트를 이름순으로 나열한다. 폴더가 없으면 ErrNotFound.
	List(ctx context.Context, prefix string) ([]ObjectMeta, error)
	Get(ctx context.Context, p string) (*Object, error)
	Put(ctx context.Context, p string, data []byte) (ObjectMeta, error)
	// PutIf 현재 ETag 가 etag 와 같을 때만 쓴다. 다르면 ErrPreconditionFailed.
	PutIf(ctx context.Context, p string, data []byte, etag string) (ObjectMeta, error)
}

// ETagOf 내용 기반 ETag
func ETagOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// CleanPath 오브젝트 경로 정규화. 루트를 벗어나면 ErrInvalidPath.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	return cleaned, nil
}
