// Package dedup is the idempotency layer of the ingest service: a small
// token→row map, bounded in size, persisted as one serialized blob so it
// survives restarts.
package dedup

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

const (
	// Capacity is the size ceiling; crossing it triggers a compaction.
	Capacity = 300
	// KeepOnCompact is how many of the most recent entries survive one.
	KeepOnCompact = 200
)

// RowRef ties an idempotency token to the row it produced.
type RowRef struct {
	Row       int       `json:"r"`
	CreatedAt time.Time `json:"t"`
}

// Backing persists the whole map between invocations. Load is called once
// at startup, Save after every Remember.
type Backing interface {
	Load(ctx context.Context) (map[string]RowRef, error)
	Save(ctx context.Context, entries map[string]RowRef) error
}

// Map is the bounded token map. Lookup/Remember are safe for concurrent
// submissions; the whole map is guarded by one mutex, which is fine at
// this size.
type Map struct {
	mu      sync.Mutex
	entries map[string]RowRef
	backing Backing
	nowFunc func() time.Time
}

// NewMap builds the map on top of a backing, loading whatever the backing
// already holds. A nil backing keeps the map purely in memory.
func NewMap(ctx context.Context, backing Backing) (*Map, error) {
	m := &Map{
		entries: map[string]RowRef{},
		backing: backing,
		nowFunc: time.Now,
	}
	if backing != nil {
		loaded, err := backing.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load dedup map: %w", err)
		}
		if loaded != nil {
			m.entries = loaded
		}
	}
	return m, nil
}

// Lookup returns the row a token already produced, if any.
func (m *Map) Lookup(token string) (RowRef, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.entries[token]
	return ref, ok
}

// Remember records token→row, compacts past the ceiling, and persists.
// The caller inserts the row first: a crash in here costs at most one
// duplicate row on retry, never a lost order.
func (m *Map) Remember(ctx context.Context, token string, row int) error {
	if token == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[token] = RowRef{Row: row, CreatedAt: m.nowFunc()}
	if len(m.entries) > Capacity {
		m.entries = compact(m.entries, KeepOnCompact)
	}

	if m.backing == nil {
		return nil
	}
	if err := m.backing.Save(ctx, m.entries); err != nil {
		return fmt.Errorf("save dedup map: %w", err)
	}
	return nil
}

// Len reports the current entry count.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// compact keeps the `keep` most recently recorded entries.
func compact(entries map[string]RowRef, keep int) map[string]RowRef {
	type kv struct {
		token string
		ref   RowRef
	}
	all := make([]kv, 0, len(entries))
	for t, r := range entries {
		all = append(all, kv{t, r})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ref.CreatedAt.After(all[j].ref.CreatedAt)
	})
	if keep > len(all) {
		keep = len(all)
	}
	out := make(map[string]RowRef, keep)
	for _, e := range all[:keep] {
		out[e.token] = e.ref
	}
	return out
}
