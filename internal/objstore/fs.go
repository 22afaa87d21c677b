package objstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FSStore 로컬 디렉터리를 오브젝트 스토어로 사용한다 (폴더 = 디렉터리)
type FSStore struct {
	root string
	mu   sync.Mutex // Put/PutIf 직렬화
}

// NewFSStore root 디렉터리를 만들고 스토어를 반환한다
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Root 루트 디렉터리
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) localPath(p string) (string, string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return "", "", err
	}
	return cleaned, filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, dir, err := s.localPath(prefix)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cleaned)
		}
		return nil, fmt.Errorf("failed to list %s: %w", cleaned, err)
	}

	out := make([]ObjectMeta, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ObjectMeta{
			Path:    path.Join(cleaned, e.Name()),
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FSStore) Get(ctx context.Context, p string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, local, err := s.localPath(p)
	if err != nil {
		return nil, err
	}
	return readObject(cleaned, local)
}

func readObject(cleaned, local string) (*Object, error) {
	data, err := os.ReadFile(local)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cleaned)
		}
		return nil, fmt.Errorf("failed to read %s: %w", cleaned, err)
	}
	info, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", cleaned, err)
	}
	return &Object{
		Meta: ObjectMeta{
			Path:    cleaned,
			Name:    path.Base(cleaned),
			Size:    int64(len(data)),
			ModTime: info.ModTime(),
			ETag:    ETagOf(data),
		},
		Data: data,
	}, nil
}

func (s *FSStore) Put(ctx context.Context, p string, data []byte) (ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return ObjectMeta{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(p, data)
}

func (s *FSStore) PutIf(ctx context.Context, p string, data []byte, etag string) (ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return ObjectMeta{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned, local, err := s.localPath(p)
	if err != nil {
		return ObjectMeta{}, err
	}
	current, err := readObject(cleaned, local)
	switch {
	case errors.Is(err, ErrNotFound):
		if etag != "" {
			return ObjectMeta{}, fmt.Errorf("%w: %s", ErrPreconditionFailed, cleaned)
		}
	case err != nil:
		return ObjectMeta{}, err
	case current.Meta.ETag != etag:
		return ObjectMeta{}, fmt.Errorf("%w: %s", ErrPreconditionFailed, cleaned)
	}
	return s.putLocked(p, data)
}

// putLocked 임시 파일에 쓴 뒤 rename 해서 반쯤 쓰인 파일이 보이지 않게 한다
func (s *FSStore) putLocked(p string, data []byte) (ObjectMeta, error) {
	cleaned, local, err := s.localPath(p)
	if err != nil {
		return ObjectMeta{}, err
	}
	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return ObjectMeta{}, fmt.Errorf("failed to create folder for %s: %w", cleaned, err)
	}
	tmp := local + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return ObjectMeta{}, fmt.Errorf("failed to write %s: %w", cleaned, err)
	}
	if err := os.Rename(tmp, local); err != nil {
		_ = os.Remove(tmp)
		return ObjectMeta{}, fmt.Errorf("failed to replace %s: %w", cleaned, err)
	}
	info, err := os.Stat(local)
	if err != nil {
		return ObjectMeta{}, fmt.Errorf("failed to stat %s: %w", cleaned, err)
	}
	return ObjectMeta{
		Path:    cleaned,
		Name:    path.Base(cleaned),
		Size:    int64(len(data)),
		ModTime: info.ModTime(),
		ETag:    ETagOf(data),
	}, nil
}
