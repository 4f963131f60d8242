// Package cache implements the bounded committee-shuffling cache committee
// computation consults before recomputing a shuffle from scratch, grounded
// on the committeeKeyFn/ListKeys/maxCommitteesCacheSize shape the teacher's
// own cache/committee_test.go exercises against a k8s.io/client-go FIFO
// store (the teacher's committee.go implementation itself wasn't in the
// retrieval pack, only its test).
package cache

import (
	"errors"
	"sync"

	"k8s.io/client-go/tools/cache"
)

// maxCommitteesCacheSize bounds how many distinct seeds' shufflings are
// kept at once, evicting the oldest once exceeded.
const maxCommitteesCacheSize = 10

// ErrNotCommittee is returned when the cache.Store is asked to key something
// that isn't a *Committees.
var ErrNotCommittee = errors.New("object is not a committee struct")

// Committees is one epoch's shuffled validator index list plus enough
// metadata to slice out any committee within it.
type Committees struct {
	CommitteeCount  uint64
	Seed            [32]byte
	ShuffledIndices []uint64
	SortedIndices   []uint64
}

func key(seed [32]byte) string {
	return string(seed[:])
}

func committeeKeyFn(obj interface{}) (string, error) {
	item, ok := obj.(*Committees)
	if !ok {
		return "", ErrNotCommittee
	}
	return key(item.Seed), nil
}

// CommitteeCache caches shuffled committee data keyed by seed, evicting in
// insertion order once it grows past maxCommitteesCacheSize.
type CommitteeCache struct {
	CommitteeCache cache.Store

	lock  sync.Mutex
	order []string
}

// NewCommitteesCache constructs an empty, bounded committee cache.
func NewCommitteesCache() *CommitteeCache {
	return &CommitteeCache{
		CommitteeCache: cache.NewStore(committeeKeyFn),
	}
}

// Committee returns the slice of shuffled indices belonging to
// committeeIndex within the epoch identified by seed, or nil if the seed
// isn't cached.
func (c *CommitteeCache) Committee(slot uint64, seed [32]byte, committeeIndex uint64) ([]uint64, error) {
	obj, exists, err := c.CommitteeCache.GetByKey(key(seed))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	item, ok := obj.(*Committees)
	if !ok {
		return nil, ErrNotCommittee
	}
	start, end := startEndIndices(item, committeeIndex)
	if start > uint64(len(item.ShuffledIndices)) || end > uint64(len(item.ShuffledIndices)) {
		return nil, errors.New("committee index out of range for cached shuffling")
	}
	return item.ShuffledIndices[start:end], nil
}

// ActiveIndices returns the full sorted active-validator index list cached
// for the given seed, or nil if absent.
func (c *CommitteeCache) ActiveIndices(seed [32]byte) ([]uint64, error) {
	obj, exists, err := c.CommitteeCache.GetByKey(key(seed))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	item, ok := obj.(*Committees)
	if !ok {
		return nil, ErrNotCommittee
	}
	return item.SortedIndices, nil
}

// AddCommitteeShuffledList inserts a new epoch's shuffling, evicting the
// oldest cached seed first if the cache is already at capacity.
func (c *CommitteeCache) AddCommitteeShuffledList(item *Committees) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	k := key(item.Seed)
	if err := c.CommitteeCache.Add(item); err != nil {
		return err
	}
	c.order = append(c.order, k)
	for len(c.order) > maxCommitteesCacheSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		obj, exists, err := c.CommitteeCache.GetByKey(oldest)
		if err != nil || !exists {
			continue
		}
		_ = c.CommitteeCache.Delete(obj)
	}
	return nil
}

func startEndIndices(item *Committees, committeeIndex uint64) (uint64, uint64) {
	count := item.CommitteeCount
	if count == 0 {
		count = 1
	}
	total := uint64(len(item.ShuffledIndices))
	start := total * committeeIndex / count
	end := total * (committeeIndex + 1) / count
	return start, end
}
