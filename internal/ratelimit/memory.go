package ratelimit

import (
	"container/list"
	"context"
	"hash/maphash"
	"sync"
	"time"
)

const (
	DefaultShards   = 64
	DefaultCapacity = 4096
)

// MemoryStore is an in-process Store. Keys are spread over shards guarded by
// their own mutex; each shard holds at most capacity keys and evicts the
// least recently hit one when full.
type MemoryStore struct {
	seed     maphash.Seed
	shards   []*shard
	capacity int
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	// nextExpiry is the earliest expiry among entries, zero when empty.
	nextExpiry time.Time
}

type lruItem struct {
	key string
	entry
}

// NewMemoryStore builds a store with the given shard count and per-shard capacity.
func NewMemoryStore(shards, capacity int) *MemoryStore {
	if shards <= 0 {
		shards = DefaultShards
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &MemoryStore{
		seed:     maphash.MakeSeed(),
		shards:   make([]*shard, shards),
		capacity: capacity,
	}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*list.Element), lru: list.New()}
	}
	return s
}

func (s *MemoryStore) shardFor(key string) *shard {
	return s.shards[maphash.String(s.seed, key)%uint64(len(s.shards))]
}

// Hit records a call for key and reports whether it is allowed.
func (s *MemoryStore) Hit(_ context.Context, key string, now time.Time, p Policy) (Decision, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.sweep(now)

	if el, ok := sh.entries[key]; ok {
		item := el.Value.(*lruItem)
		sh.lru.MoveToFront(el)
		return item.evaluate(now, p), nil
	}

	if sh.lru.Len() >= s.capacity {
		sh.evictOldest()
	}
	item := &lruItem{key: key, entry: entry{count: 1, firstAt: now, lastAt: now, window: p.Window}}
	sh.entries[key] = sh.lru.PushFront(item)
	if exp := item.expiresAt(); sh.nextExpiry.IsZero() || exp.Before(sh.nextExpiry) {
		sh.nextExpiry = exp
	}
	return Decision{Allowed: true}, nil
}

// Sweep drops expired entries from every shard.
func (s *MemoryStore) Sweep(now time.Time) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.sweep(now)
		sh.mu.Unlock()
	}
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += sh.lru.Len()
		sh.mu.Unlock()
	}
	return n
}

// sweep removes expired entries. It only walks the shard once the earliest
// known expiry has passed.
func (sh *shard) sweep(now time.Time) {
	if sh.nextExpiry.IsZero() || !now.After(sh.nextExpiry) {
		return
	}
	var next time.Time
	for key, el := range sh.entries {
		item := el.Value.(*lruItem)
		if item.expired(now) {
			sh.lru.Remove(el)
			delete(sh.entries, key)
			continue
		}
		if exp := item.expiresAt(); next.IsZero() || exp.Before(next) {
			next = exp
		}
	}
	sh.nextExpiry = next
}

func (sh *shard) evictOldest() {
	el := sh.lru.Back()
	if el == nil {
		return
	}
	sh.lru.Remove(el)
	delete(sh.entries, el.Value.(*lruItem).key)
}
