package otp

import (
	"context"
	"hash/maphash"
	"sync"
	"time"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

// Mutation computes the next entry of a phone from its current one. cur is nil
// when no entry exists. A nil next deletes the entry. The store persists next
// even when err is non-nil and then returns err to the caller.
type Mutation func(cur *model.OtpEntry) (next *model.OtpEntry, err error)

// Store holds at most one live entry per phone.
type Store interface {
	Put(ctx context.Context, phone string, entry model.OtpEntry) error
	// Update applies fn atomically with respect to other calls for phone.
	Update(ctx context.Context, phone string, fn Mutation) error
}

// MemoryStore keeps entries in process, sharded by phone.
type MemoryStore struct {
	seed   maphash.Seed
	shards []*memoryShard
}

type memoryShard struct {
	mu      sync.Mutex
	entries map[string]model.OtpEntry
}

// DefaultShards is the shard count used when none is given. Mutations,
// including code hash checks, run under the shard lock.
const DefaultShards = 256

// NewMemoryStore builds a store with the given number of shards.
func NewMemoryStore(shards int) *MemoryStore {
	if shards <= 0 {
		shards = DefaultShards
	}
	s := &MemoryStore{seed: maphash.MakeSeed(), shards: make([]*memoryShard, shards)}
	for i := range s.shards {
		s.shards[i] = &memoryShard{entries: make(map[string]model.OtpEntry)}
	}
	return s
}

func (s *MemoryStore) shardFor(phone string) *memoryShard {
	return s.shards[maphash.String(s.seed, phone)%uint64(len(s.shards))]
}

func (s *MemoryStore) Put(_ context.Context, phone string, entry model.OtpEntry) error {
	sh := s.shardFor(phone)
	sh.mu.Lock()
	sh.entries[phone] = entry
	sh.mu.Unlock()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, phone string, fn Mutation) error {
	sh := s.shardFor(phone)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	var cur *model.OtpEntry
	if e, ok := sh.entries[phone]; ok {
		cur = &e
	}

	next, err := fn(cur)
	if next == nil {
		delete(sh.entries, phone)
	} else {
		sh.entries[phone] = *next
	}
	return err
}

// Sweep drops expired entries.
func (s *MemoryStore) Sweep(now time.Time) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		for phone, e := range sh.entries {
			if e.Expired(now) {
				delete(sh.entries, phone)
			}
		}
		sh.mu.Unlock()
	}
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}
