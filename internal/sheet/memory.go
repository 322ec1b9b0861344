package sheet

import (
	"context"
	"sync"
)

// MemoryStore is the in-process RowStore used by tests. Same numbering
// semantics as the DynamoDB store.
type MemoryStore struct {
	mu      sync.Mutex
	rows    []Row
	nextRow int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextRow: 2} // row 1 is the header
}

func (s *MemoryStore) Append(ctx context.Context, row Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.Sheet = sheetKey
	row.Row = s.nextRow
	s.nextRow++
	s.rows = append(s.rows, row)
	return row.Row, nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.rows)
	if limit > n {
		limit = n
	}
	out := make([]Row, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.rows[i])
	}
	return out, nil
}

// Len reports how many order rows exist.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
