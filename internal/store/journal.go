package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mealbook/internal/model"
)

const timeLayout = time.RFC3339Nano

// DefaultJournalLimit ListJournal 기본 건수
const DefaultJournalLimit = 100

// JournalFilter 빈 필드는 조건 없음
type JournalFilter struct {
	Employee string
	Action   model.JournalAction
	Limit    int
}

// AppendJournal 저널 한 건 추가
func (s *Store) AppendJournal(ctx context.Context, e model.JournalEntry) error {
	if e.ID == "" {
		return fmt.Errorf("journal entry without id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (id, employee, action, file_path, entry_date, meal, amount, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Employee, string(e.Action), e.FilePath, e.EntryDate, string(e.Meal), e.Amount, e.Detail,
		e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// ListJournal 최근 기록부터
func (s *Store) ListJournal(ctx context.Context, f JournalFilter) ([]model.JournalEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Employee != "" {
		where = append(where, "employee = ?")
		args = append(args, f.Employee)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(f.Action))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultJournalLimit
	}

	query := `SELECT id, employee, action, file_path, entry_date, meal, amount, detail, created_at FROM journal`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal failed: %w", err)
	}
	defer rows.Close()

	out := make([]model.JournalEntry, 0)
	for rows.Next() {
		var (
			e            model.JournalEntry
			action, meal string
			createdAt    string
		)
		if err := rows.Scan(&e.ID, &e.Employee, &action, &e.FilePath, &e.EntryDate, &meal, &e.Amount, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal failed: %w", err)
		}
		e.Action = model.JournalAction(action)
		e.Meal = model.MealType(meal)
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse journal time %q: %w", createdAt, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal failed: %w", err)
	}
	return out, nil
}
