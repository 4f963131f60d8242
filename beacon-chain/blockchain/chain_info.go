package blockchain

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
)

// HeadFetcher exposes read-only access to the coordinator's current
// canonical head.
type HeadFetcher interface {
	HeadRoot() beacontypes.Root
	HeadBlock() *beacontypes.SignedBeaconBlock
	HeadState() *beacontypes.BeaconState
	HeadSlot() beacontypes.Slot
}

// ForkFetcher exposes the head state's current fork version.
type ForkFetcher interface {
	CurrentFork() *beacontypes.Fork
}

// FinalizationFetcher exposes the coordinator's justified and finalized
// checkpoints.
type FinalizationFetcher interface {
	JustifiedCheckpoint() *beacontypes.Checkpoint
	FinalizedCheckpoint() *beacontypes.Checkpoint
}

// ParticipationFetcher exposes the head state's attesting-balance
// participation for the previous epoch, a coarse liveness signal.
type ParticipationFetcher interface {
	PreviousEpochAttestingBalance() uint64
}

// GenesisFetcher exposes the coordinator's genesis block root.
type GenesisFetcher interface {
	GenesisRoot() beacontypes.Root
}

// ChainInfoFetcher bundles every read-only query surface the coordinator
// offers, the aggregate interface RPC/REST handlers depend on.
type ChainInfoFetcher interface {
	HeadFetcher
	ForkFetcher
	FinalizationFetcher
	ParticipationFetcher
	GenesisFetcher
}

// HeadRoot returns the coordinator's current canonical head root.
func (s *Service) HeadRoot() beacontypes.Root {
	s.headLock.RLock()
	defer s.headLock.RUnlock()
	return s.headRoot
}

// HeadBlock returns the coordinator's current canonical head block.
func (s *Service) HeadBlock() *beacontypes.SignedBeaconBlock {
	s.headLock.RLock()
	defer s.headLock.RUnlock()
	return s.headBlock
}

// HeadState returns the coordinator's current canonical head state.
func (s *Service) HeadState() *beacontypes.BeaconState {
	s.headLock.RLock()
	defer s.headLock.RUnlock()
	return s.headState
}

// HeadSlot returns the slot of the coordinator's current canonical head.
func (s *Service) HeadSlot() beacontypes.Slot {
	s.headLock.RLock()
	defer s.headLock.RUnlock()
	if s.headBlock == nil {
		return 0
	}
	return s.headBlock.Block.Slot
}

// CurrentFork returns the head state's fork version.
func (s *Service) CurrentFork() *beacontypes.Fork {
	s.headLock.RLock()
	defer s.headLock.RUnlock()
	if s.headState == nil {
		return nil
	}
	return s.headState.Fork
}

// JustifiedCheckpoint returns fork choice's current justified checkpoint.
func (s *Service) JustifiedCheckpoint() *beacontypes.Checkpoint {
	return s.fc.JustifiedCheckpoint()
}

// FinalizedCheckpoint returns fork choice's current finalized checkpoint.
func (s *Service) FinalizedCheckpoint() *beacontypes.Checkpoint {
	return s.fc.FinalizedCheckpoint()
}

// PreviousEpochAttestingBalance sums the effective balance backing every
// attestation recorded for the previous epoch in the head state.
func (s *Service) PreviousEpochAttestingBalance() uint64 {
	s.headLock.RLock()
	defer s.headLock.RUnlock()
	if s.headState == nil {
		return 0
	}
	var total uint64
	for _, a := range s.headState.PreviousEpochAttestations {
		total += attestationWeight(s.headState, a)
	}
	return total
}

func attestationWeight(st *beacontypes.BeaconState, a *beacontypes.PendingAttestation) uint64 {
	indices, err := helpers.AttestingIndicesFromRecord(st, a)
	if err != nil {
		return 0
	}
	var w uint64
	for _, idx := range indices {
		if uint64(idx) < uint64(len(st.Validators)) {
			w += st.Validators[idx].EffectiveBalance
		}
	}
	return w
}

// GenesisRoot returns the coordinator's genesis block root.
func (s *Service) GenesisRoot() beacontypes.Root {
	return s.genesisRoot
}

var (
	_ HeadFetcher          = (*Service)(nil)
	_ ForkFetcher          = (*Service)(nil)
	_ FinalizationFetcher  = (*Service)(nil)
	_ ParticipationFetcher = (*Service)(nil)
	_ GenesisFetcher       = (*Service)(nil)
	_ ChainInfoFetcher     = (*Service)(nil)
)
