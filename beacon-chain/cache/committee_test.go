package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommitteeCache_MissReturnsNil(t *testing.T) {
	c := NewCommitteesCache()
	committee, err := c.Committee(0, [32]byte{1}, 0)
	require.NoError(t, err)
	require.Nil(t, committee)
}

func TestCommitteeCache_AddAndRetrieve(t *testing.T) {
	c := NewCommitteesCache()
	seed := [32]byte{1, 2, 3}
	item := &Committees{
		CommitteeCount:  2,
		Seed:            seed,
		ShuffledIndices: []uint64{0, 1, 2, 3},
		SortedIndices:   []uint64{0, 1, 2, 3},
	}
	require.NoError(t, c.AddCommitteeShuffledList(item))

	committee0, err := c.Committee(0, seed, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1}, committee0)

	committee1, err := c.Committee(0, seed, 1)
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 3}, committee1)

	active, err := c.ActiveIndices(seed)
	require.NoError(t, err)
	require.Equal(t, item.SortedIndices, active)
}

func TestCommitteeCache_EvictsOldestBeyondCapacity(t *testing.T) {
	c := NewCommitteesCache()
	for i := 0; i < maxCommitteesCacheSize+1; i++ {
		seed := [32]byte{byte(i)}
		require.NoError(t, c.AddCommitteeShuffledList(&Committees{
			Seed:            seed,
			CommitteeCount:  1,
			ShuffledIndices: []uint64{uint64(i)},
			SortedIndices:   []uint64{uint64(i)},
		}))
	}

	evicted, err := c.Committee(0, [32]byte{0}, 0)
	require.NoError(t, err)
	require.Nil(t, evicted)

	kept, err := c.Committee(0, [32]byte{byte(maxCommitteesCacheSize)}, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{uint64(maxCommitteesCacheSize)}, kept)
}
