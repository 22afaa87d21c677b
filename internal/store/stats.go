package store

import (
	"context"
	"fmt"

	"mealbook/internal/model"
)

// ActionCount 동작별 저널 건수
type ActionCount struct {
	Action model.JournalAction `json:"action"`
	Count  int                 `json:"count"`
}

// JournalStats 동작별 건수 (건수 내림차순)
func (s *Store) JournalStats(ctx context.Context) ([]ActionCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT action, COUNT(1) AS n FROM journal
		GROUP BY action
		ORDER BY n DESC, action
	`)
	if err != nil {
		return nil, fmt.Errorf("query journal stats failed: %w", err)
	}
	defer rows.Close()

	out := make([]ActionCount, 0)
	for rows.Next() {
		var (
			it     ActionCount
			action string
		)
		if err := rows.Scan(&action, &it.Count); err != nil {
			return nil, fmt.Errorf("scan journal stats failed: %w", err)
		}
		it.Action = model.JournalAction(action)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal stats failed: %w", err)
	}
	return out, nil
}
