// Package taskset tracks the set of running saga instances. The set is
// sharded by an xxhash of the instance id so that bursts of short-lived
// forks do not contend on a single mutex.
package taskset

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is the shard count used when none is configured.
const DefaultShards = 8

type shard struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// Set is a concurrency-safe set of instance ids.
type Set struct {
	shards []*shard
}

// New returns a set sharded numShards ways, or DefaultShards if numShards
// is not positive.
func New(numShards int) *Set {
	if numShards <= 0 {
		numShards = DefaultShards
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{ids: make(map[string]struct{})}
	}
	return &Set{shards: shards}
}

func (s *Set) shardOf(id string) *shard {
	return s.shards[xxhash.Sum64String(id)%uint64(len(s.shards))]
}

// Add records id as running.
func (s *Set) Add(id string) {
	sh := s.shardOf(id)
	sh.mu.Lock()
	sh.ids[id] = struct{}{}
	sh.mu.Unlock()
}

// Remove forgets id.
func (s *Set) Remove(id string) {
	sh := s.shardOf(id)
	sh.mu.Lock()
	delete(sh.ids, id)
	sh.mu.Unlock()
}

// Contains reports whether id is currently tracked.
func (s *Set) Contains(id string) bool {
	sh := s.shardOf(id)
	sh.mu.Lock()
	_, ok := sh.ids[id]
	sh.mu.Unlock()
	return ok
}

// Len reports how many instances are currently tracked.
func (s *Set) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.ids)
		sh.mu.Unlock()
	}
	return total
}
