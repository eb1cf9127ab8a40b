// Package memory provides an in-memory RangeReader used for local
// development and tests, keyed by spreadsheet ID and range.
package memory

import (
	"context"
	"fmt"
	"sync"

	"treasurydash/internal/core"
	ports "treasurydash/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	ranges map[string][][]any
}

var _ ports.RangeReader = (*Store)(nil)

func New() *Store {
	return &Store{ranges: map[string][][]any{}}
}

// Seed registers the cell matrix served for a spreadsheet range.
func (s *Store) Seed(spreadsheetID, a1Range string, values [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[key(spreadsheetID, a1Range)] = values
}

func (s *Store) ReadRange(_ context.Context, spreadsheetID, a1Range string) (core.RangeValues, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.RangeValues{
		Range:          a1Range,
		MajorDimension: "ROWS",
		Values:         s.ranges[key(spreadsheetID, a1Range)],
	}, nil
}

func (s *Store) BatchRead(ctx context.Context, spreadsheetID string, a1Ranges []string) ([]core.RangeValues, error) {
	out := make([]core.RangeValues, 0, len(a1Ranges))
	for _, rng := range a1Ranges {
		rv, err := s.ReadRange(ctx, spreadsheetID, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

func key(spreadsheetID, a1Range string) string {
	return fmt.Sprintf("%s!%s", spreadsheetID, a1Range)
}
