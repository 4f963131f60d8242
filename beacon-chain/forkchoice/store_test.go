package forkchoice

import (
	"testing"

	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/stretchr/testify/require"
)

func TestStore_HeadDefaultsToJustifiedRoot(t *testing.T) {
	genesis := beacontypes.Root{1}
	s := NewStore(genesis, 0)

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, genesis, head)
}

func TestStore_HeadFollowsHeaviestChild(t *testing.T) {
	genesis := beacontypes.Root{1}
	childA := beacontypes.Root{2}
	childB := beacontypes.Root{3}
	s := NewStore(genesis, 0)

	require.NoError(t, s.ProcessBlock(childA, genesis, 1))
	require.NoError(t, s.ProcessBlock(childB, genesis, 1))

	s.UpdateJustifiedCheckpoint(&beacontypes.Checkpoint{Root: genesis}, map[beacontypes.ValidatorIndex]uint64{
		0: 10,
		1: 5,
	})
	require.NoError(t, s.ProcessAttestation(0, childA, 1))
	require.NoError(t, s.ProcessAttestation(1, childB, 1))

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, childA, head)
}

func TestStore_ProcessBlockRejectsUnknownParent(t *testing.T) {
	genesis := beacontypes.Root{1}
	s := NewStore(genesis, 0)
	err := s.ProcessBlock(beacontypes.Root{9}, beacontypes.Root{8}, 1)
	require.ErrorIs(t, err, ErrUnknownParent)
}

func TestStore_ProcessAttestationRejectsStaleVote(t *testing.T) {
	genesis := beacontypes.Root{1}
	s := NewStore(genesis, 0)
	require.NoError(t, s.ProcessAttestation(0, genesis, 2))
	err := s.ProcessAttestation(0, genesis, 1)
	require.ErrorIs(t, err, ErrStaleAttestation)
}

func TestStore_PruneDropsNonDescendants(t *testing.T) {
	genesis := beacontypes.Root{1}
	stray := beacontypes.Root{2}
	kept := beacontypes.Root{3}
	s := NewStore(genesis, 0)
	require.NoError(t, s.ProcessBlock(stray, genesis, 1))
	require.NoError(t, s.ProcessBlock(kept, genesis, 1))

	s.UpdateFinalizedCheckpoint(&beacontypes.Checkpoint{Root: kept})
	s.Prune()

	require.False(t, s.HasBlock(stray))
	require.True(t, s.HasBlock(kept))
}
