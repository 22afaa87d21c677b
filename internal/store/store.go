// Package store 는 장부 쓰기/좌석 배정 저널을 로컬 SQLite 에 보관한다.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// schemaVersion schema.sql 이 바뀌면 올린다. PRAGMA user_version 에 기록된다.
const schemaVersion = 1

// Store 저널 저장소
type Store struct {
	db        *sql.DB
	retention time.Duration
}

// Option Store 설정
type Option func(*Store)

// WithRetention 열 때 d 보다 오래된 저널을 지운다. 0 이면 모두 보관.
func WithRetention(d time.Duration) Option {
	return func(s *Store) { s.retention = d }
}

// New dbPath 의 상위 폴더가 없으면 만든다.
// 웹 서버와 mealbookctl 이 같은 파일을 동시에 열 수 있도록 WAL + busy_timeout 으로 연다.
func New(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if s.retention > 0 {
		n, err := s.Prune(context.Background(), time.Now().Add(-s.retention))
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if n > 0 {
			log.Printf("[store] pruned %d journal entries older than %s", n, s.retention)
		}
	}
	return s, nil
}

// migrate user_version 이 schemaVersion 보다 낮을 때만 schema.sql 을 실행한다
func (s *Store) migrate() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read journal version: %w", err)
	}
	if current > schemaVersion {
		return fmt.Errorf("journal version %d is newer than supported %d", current, schemaVersion)
	}
	if current == schemaVersion {
		return nil
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to stamp journal version: %w", err)
	}
	return nil
}

// Prune before 보다 먼저 기록된 저널을 지우고 지운 개수를 돌려준다. 초 단위로 비교한다.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal WHERE substr(created_at, 1, 19) < ?`,
		before.UTC().Format("2006-01-02T15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return res.RowsAffected()
}

// Close 연결 종료
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
