package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const memoryShards = 64

type memoryWindow struct {
	count     int64
	startedAt time.Time
}

type memoryShard struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// MemoryStore is a sharded in-process CounterStore. Keys hash onto
// independent shards so contention on one caller key cannot starve another.
type MemoryStore struct {
	shards [memoryShards]*memoryShard
	now    func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &memoryShard{windows: make(map[string]*memoryWindow)}
	}
	return s
}

// SetNow overrides the clock. Intended for tests.
func (s *MemoryStore) SetNow(now func() time.Time) {
	s.now = now
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryShards]
}

// Incr implements CounterStore. Rollover is lazy: a window older than the
// given length is treated as fresh on the next request instead of being
// swept by a background task.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()
	shard := s.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	w, ok := shard.windows[key]
	if !ok || now.Sub(w.startedAt) >= window {
		w = &memoryWindow{count: 1, startedAt: now}
		shard.windows[key] = w
		return 1, window, nil
	}
	w.count++
	return w.count, window - now.Sub(w.startedAt), nil
}

// Len reports the number of tracked keys. Intended for tests.
func (s *MemoryStore) Len() int {
	total := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		total += len(shard.windows)
		shard.mu.Unlock()
	}
	return total
}
