package blockchain

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
)

// ErrAttestationSlotOutOfRange is returned when a caller asks for attestation
// data at a slot later than the coordinator's current slot; the caller must
// wait for the clock to reach it rather than get back stale head data.
var ErrAttestationSlotOutOfRange = errors.New("attestation slot is out of range: ahead of current slot")

// ErrAttestationSlotInvalid is returned when a caller asks for attestation
// data at a slot earlier than the coordinator's current slot.
var ErrAttestationSlotInvalid = errors.New("attestation slot is invalid: behind current slot")

// ProduceAttestationData builds the attestation data an attester at slot
// voting on committeeIndex should sign, derived from the current head.
//
// Spec pseudocode definition: get_attestation_data
func (s *Service) ProduceAttestationData(slot beacontypes.Slot, committeeIndex beacontypes.CommitteeIndex) (*beacontypes.AttestationData, error) {
	if s.cfg.Clock != nil {
		current := s.cfg.Clock.CurrentSlot()
		if slot > current {
			return nil, ErrAttestationSlotOutOfRange
		}
		if slot < current {
			return nil, ErrAttestationSlotInvalid
		}
	}

	s.headLock.RLock()
	headState := s.headState
	headRoot := s.headRoot
	s.headLock.RUnlock()
	if headState == nil {
		return nil, errors.New("no head state to build attestation data from")
	}

	return &beacontypes.AttestationData{
		Slot:            slot,
		CommitteeIndex:  committeeIndex,
		BeaconBlockRoot: headRoot,
		Source:          headState.CurrentJustifiedCheckpoint,
		Target: &beacontypes.Checkpoint{
			Epoch: helpers.CurrentEpoch(headState),
			Root:  headRoot,
		},
	}, nil
}
