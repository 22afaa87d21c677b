package objstore

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"
)

// MemoryStore 내장 메모리 오브젝트 스토어 (테스트/데모용)
type MemoryStore struct {
	objects map[string]*Object
	folders map[string]struct{}
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryStore 빈 메모리 스토어
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*Object),
		folders: make(map[string]struct{}),
		now:     time.Now,
	}
}

// MkdirAll 빈 폴더를 만든다. 상위 폴더도 함께 생긴다.
func (s *MemoryStore) MkdirAll(p string) error {
	cleaned, err := CleanPath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFoldersLocked(cleaned)
	return nil
}

func (s *MemoryStore) addFoldersLocked(dir string) {
	for dir != "." && dir != "" {
		s.folders[dir] = struct{}{}
		dir = path.Dir(dir)
	}
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := CleanPath(prefix)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.folders[cleaned]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cleaned)
	}
	out := make([]ObjectMeta, 0)
	for p, obj := range s.objects {
		if path.Dir(p) != cleaned {
			continue
		}
		meta := obj.Meta
		meta.ETag = ""
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, p string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := CleanPath(p)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[cleaned]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cleaned)
	}
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	return &Object{Meta: obj.Meta, Data: data}, nil
}

func (s *MemoryStore) Put(ctx context.Context, p string, data []byte) (ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return ObjectMeta{}, err
	}
	cleaned, err := CleanPath(p)
	if err != nil {
		return ObjectMeta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(cleaned, data), nil
}

func (s *MemoryStore) PutIf(ctx context.Context, p string, data []byte, etag string) (ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return ObjectMeta{}, err
	}
	cleaned, err := CleanPath(p)
	if err != nil {
		return ObjectMeta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := ""
	if obj, ok := s.objects[cleaned]; ok {
		current = obj.Meta.ETag
	}
	if current != etag {
		return ObjectMeta{}, fmt.Errorf("%w: %s", ErrPreconditionFailed, cleaned)
	}
	return s.putLocked(cleaned, data), nil
}

func (s *MemoryStore) putLocked(cleaned string, data []byte) ObjectMeta {
	buf := make([]byte, len(data))
	copy(buf, data)
	meta := ObjectMeta{
		Path:    cleaned,
		Name:    path.Base(cleaned),
		Size:    int64(len(buf)),
		ModTime: s.now(),
		ETag:    ETagOf(buf),
	}
	s.objects[cleaned] = &Object{Meta: meta, Data: buf}
	s.addFoldersLocked(path.Dir(cleaned))
	return meta
}

// Paths 저장된 오브젝트 경로 목록 (정렬됨)
func (s *MemoryStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.objects))
	for p := range s.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
