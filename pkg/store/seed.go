package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vanderheijden86/sectionview/pkg/model"
)

// Seed writes every section in rows, replacing what was stored before.
// Sections are written in ID order so failures are reproducible.
func (s *RowStore) Seed(ctx context.Context, rows map[string][]model.Row) error {
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s.ReplaceRows(ctx, id, rows[id]); err != nil {
			return fmt.Errorf("seed %s: %w", id, err)
		}
	}
	return nil
}

// DemoRows builds n placeholder rows for a section.
func DemoRows(sectionID string, n int, now time.Time) []model.Row {
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = model.Row{
			ID:        fmt.Sprintf("%s-%d", sectionID, i+1),
			Title:     fmt.Sprintf("%s item %d", sectionID, i+1),
			Body:      fmt.Sprintf("## %s item %d\n\nLoaded from the row store.", sectionID, i+1),
			UpdatedAt: now.Add(-time.Duration(i) * time.Hour),
		}
	}
	return rows
}
