package blockchain

import (
	"context"

	corestate "github.com/ethprotolabs/beaconchain/beacon-chain/core/state"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
)

// ProduceBlock assembles an unsigned block atop the current head for the
// given slot and proposer, draining pending operations from the pools and
// computing the resulting post-state root, leaving signing to the caller
// (the validator client's signing policy is out of scope for the
// coordinator).
//
// Spec pseudocode definition: compute_new_block (informal composition of
// process_block's inverse: fill a body, then prove it transitions cleanly)
func (s *Service) ProduceBlock(ctx context.Context, slot beacontypes.Slot, proposerIndex beacontypes.ValidatorIndex, randaoReveal [96]byte, graffiti [32]byte) (*beacontypes.BeaconBlock, error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	s.headLock.RLock()
	parentRoot := s.headRoot
	parentState := s.headState
	s.headLock.RUnlock()
	if parentState == nil {
		return nil, errors.New("no head state to build atop")
	}

	base := parentState.Copy()
	advanced, err := corestate.ProcessSlots(ctx, base, slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not advance state to proposal slot")
	}

	body := &beacontypes.BeaconBlockBody{
		RandaoReveal: randaoReveal,
		Eth1Data:     advanced.Eth1Data,
		Graffiti:     graffiti,
	}
	body.ProposerSlashings = s.cfg.SlashingPool.DrainProposerSlashings(advanced)
	body.AttesterSlashings = s.cfg.SlashingPool.DrainAttesterSlashings(advanced)
	body.Attestations = s.cfg.AttestationPool.DrainForBlock(advanced)
	body.VoluntaryExits = s.cfg.ExitPool.DrainForBlock(advanced)

	block := &beacontypes.BeaconBlock{
		Slot:          slot,
		ProposerIndex: proposerIndex,
		ParentRoot:    parentRoot,
		Body:          body,
	}

	trialSigned := &beacontypes.SignedBeaconBlock{Block: block}
	postState, err := corestate.ProcessBlock(ctx, advanced.Copy(), trialSigned, false)
	if err != nil {
		return nil, errors.Wrap(err, "assembled block does not transition cleanly")
	}
	stateRoot, err := postState.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute trial post-state root")
	}
	block.StateRoot = stateRoot
	return block, nil
}
