package blockchain

import (
	"context"

	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// ReceiveAttestation validates an attestation against the current head
// state, stages it in the attestation pool for block production, and feeds
// each attesting validator's vote into fork choice as a potential latest
// message, recomputing head if the vote set changed enough to matter.
//
// Spec pseudocode definition: on_attestation
func (s *Service) ReceiveAttestation(ctx context.Context, att *beacontypes.Attestation) error {
	ctx, span := trace.StartSpan(ctx, "blockchain.ReceiveAttestation")
	defer span.End()

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if att == nil || att.Data == nil {
		return errors.New("nil attestation")
	}
	if !s.fc.HasBlock(att.Data.BeaconBlockRoot) {
		return errors.New("attestation references unknown beacon block root")
	}

	s.headLock.RLock()
	headState := s.headState
	s.headLock.RUnlock()
	if headState == nil {
		return errors.New("no head state to validate attestation against")
	}
	if err := helpers.ValidateAttestationSlotRange(headState, att.Data); err != nil {
		return errors.Wrap(err, "attestation outside inclusion range")
	}

	indices, err := helpers.AttestingIndices(headState, att)
	if err != nil {
		return errors.Wrap(err, "could not compute attesting indices")
	}

	if err := s.cfg.AttestationPool.InsertAttestation(att); err != nil {
		return errors.Wrap(err, "could not insert attestation into pool")
	}

	changed := false
	for _, idx := range indices {
		if err := s.fc.ProcessAttestation(idx, att.Data.Target.Root, att.Data.Target.Epoch); err != nil {
			continue
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return errors.Wrap(s.updateHead(ctx), "could not update head after attestation import")
}
