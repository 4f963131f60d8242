// Package blocks implements per-block operation processing: the header,
// randao, eth1 vote and the five operation containers a block body carries.
package blocks

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
)

// ProcessBlockHeader validates and applies a block's header fields to state,
// caching a slimmed header for the next block's parent-root check.
//
// Spec pseudocode definition:
//
//	def process_block_header(state, block) -> None:
//	    assert block.slot == state.slot
//	    assert block.slot > state.latest_block_header.slot
//	    assert block.proposer_index == get_beacon_proposer_index(state)
//	    assert block.parent_root == hash_tree_root(state.latest_block_header)
//	    state.latest_block_header = BeaconBlockHeader(...)
//	    proposer = state.validators[block.proposer_index]
//	    assert not proposer.slashed
func ProcessBlockHeader(st *beacontypes.BeaconState, b *beacontypes.BeaconBlock) (*beacontypes.BeaconState, error) {
	if b.Slot != st.Slot {
		return nil, errors.Errorf("block slot %d does not match state slot %d", b.Slot, st.Slot)
	}
	if st.LatestBlockHeader != nil && b.Slot <= st.LatestBlockHeader.Slot {
		return nil, errors.Errorf("block slot %d must be greater than latest header slot %d", b.Slot, st.LatestBlockHeader.Slot)
	}
	proposerIdx, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute proposer index")
	}
	if b.ProposerIndex != proposerIdx {
		return nil, errors.Errorf("block proposer index %d does not match expected %d", b.ProposerIndex, proposerIdx)
	}
	expectedParentRoot, err := st.LatestBlockHeader.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not hash latest block header")
	}
	if b.ParentRoot != expectedParentRoot {
		return nil, errors.New("block parent root does not match latest block header root")
	}
	header, err := beacontypes.BeaconBlockHeaderFromBlock(b)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute block header")
	}
	st.LatestBlockHeader = header
	if int(b.ProposerIndex) >= len(st.Validators) {
		return nil, errors.Errorf("proposer index %d out of validator set range", b.ProposerIndex)
	}
	if st.Validators[b.ProposerIndex].Slashed {
		return nil, errors.New("block proposer has been slashed")
	}
	return st, nil
}

// CacheStateRoot fills in the previous block header's state root once the
// post-state's root is known, matching the teacher's process_slot caching
// idiom (invariant 2).
func CacheStateRoot(st *beacontypes.BeaconState, stateRoot [32]byte) {
	if st.LatestBlockHeader != nil && st.LatestBlockHeader.StateRoot == ([32]byte{}) {
		st.LatestBlockHeader.StateRoot = stateRoot
	}
}
