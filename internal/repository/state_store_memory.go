package repository

import (
	"bytes"
	"container/heap"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/clock"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
	seq       uint64
}

// expiryItem indexes one write. Items outlive overwrites and deletes; the sweep
// drops them when seq no longer matches the live entry.
type expiryItem struct {
	key       string
	expiresAt time.Time
	seq       uint64
}

type expiryHeap []expiryItem

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)        { *h = append(*h, x.(expiryItem)) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MemoryStateStore is the in-process fallback. Reads re-check expiry, so the
// sweep only reclaims memory.
type MemoryStateStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	index   expiryHeap
	seq     uint64

	clock  clock.Clock
	logger *zap.Logger
}

func NewMemoryStateStore(clk clock.Clock, logger *zap.Logger) *MemoryStateStore {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStateStore{
		entries: make(map[string]memEntry),
		clock:   clk,
		logger:  logger,
	}
}

func (s *MemoryStateStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	// Callers may reuse their buffer after Set returns.
	stored := bytes.Clone(value)
	expiresAt := s.clock.Now().Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.entries[key] = memEntry{value: stored, expiresAt: expiresAt, seq: s.seq}
	heap.Push(&s.index, expiryItem{key: key, expiresAt: expiresAt, seq: s.seq})
	return nil
}

func (s *MemoryStateStore) Get(_ context.Context, key string) ([]byte, error) {
	now := s.clock.Now()

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !now.Before(entry.expiresAt) {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(entry.value), nil
}

func (s *MemoryStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStateStore) CompareAndDelete(_ context.Context, key string, expected []byte) (bool, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.expiresAt) || !bytes.Equal(entry.value, expected) {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

// Len reports the number of entries still held in memory, expired or not.
func (s *MemoryStateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep evicts every entry whose expiry has passed and returns how many it removed.
func (s *MemoryStateStore) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for s.index.Len() > 0 && !now.Before(s.index[0].expiresAt) {
		item := heap.Pop(&s.index).(expiryItem)
		entry, ok := s.entries[item.key]
		if ok && entry.seq == item.seq {
			delete(s.entries, item.key)
			evicted++
		}
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStateStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("swept expired entries", zap.Int("evicted", n))
			}
		}
	}
}
