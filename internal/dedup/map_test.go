package dedup

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// memoryBacking records saves so tests can assert persistence ordering.
type memoryBacking struct {
	mu        sync.Mutex
	stored    map[string]RowRef
	saveCalls int
}

func (b *memoryBacking) Load(ctx context.Context) (map[string]RowRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stored == nil {
		return nil, nil
	}
	out := make(map[string]RowRef, len(b.stored))
	for k, v := range b.stored {
		out[k] = v
	}
	return out, nil
}

func (b *memoryBacking) Save(ctx context.Context, entries map[string]RowRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveCalls++
	b.stored = make(map[string]RowRef, len(entries))
	for k, v := range entries {
		b.stored[k] = v
	}
	return nil
}

func TestLookupRemember(t *testing.T) {
	ctx := context.Background()
	backing := &memoryBacking{}
	m, err := NewMap(ctx, backing)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}

	if _, ok := m.Lookup("tok-1"); ok {
		t.Fatal("unexpected hit on empty map")
	}
	if err := m.Remember(ctx, "tok-1", 42); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	ref, ok := m.Lookup("tok-1")
	if !ok || ref.Row != 42 {
		t.Fatalf("lookup after remember: ok=%v ref=%+v", ok, ref)
	}
	if backing.saveCalls != 1 {
		t.Fatalf("expected 1 save, got %d", backing.saveCalls)
	}
}

func TestRemember_EmptyTokenIsNoop(t *testing.T) {
	ctx := context.Background()
	backing := &memoryBacking{}
	m, _ := NewMap(ctx, backing)
	if err := m.Remember(ctx, "", 7); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if m.Len() != 0 || backing.saveCalls != 0 {
		t.Fatal("empty token must not be recorded or persisted")
	}
}

func TestCompaction_KeepsMostRecent200(t *testing.T) {
	ctx := context.Background()
	m, _ := NewMap(ctx, nil)

	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	i := 0
	m.nowFunc = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}

	for n := 0; n <= Capacity; n++ { // 301 inserts crosses the ceiling once
		if err := m.Remember(ctx, fmt.Sprintf("tok-%03d", n), n+2); err != nil {
			t.Fatalf("Remember: %v", err)
		}
	}

	if got := m.Len(); got != KeepOnCompact {
		t.Fatalf("after compaction len = %d, want %d", got, KeepOnCompact)
	}
	// the newest entry survives, the oldest is gone
	if _, ok := m.Lookup(fmt.Sprintf("tok-%03d", Capacity)); !ok {
		t.Fatal("newest entry evicted")
	}
	if _, ok := m.Lookup("tok-000"); ok {
		t.Fatal("oldest entry survived compaction")
	}
}

func TestNewMap_LoadsExistingEntries(t *testing.T) {
	ctx := context.Background()
	backing := &memoryBacking{stored: map[string]RowRef{
		"tok-old": {Row: 5, CreatedAt: time.Now()},
	}}
	m, err := NewMap(ctx, backing)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if ref, ok := m.Lookup("tok-old"); !ok || ref.Row != 5 {
		t.Fatalf("persisted entry not loaded: ok=%v ref=%+v", ok, ref)
	}
}
