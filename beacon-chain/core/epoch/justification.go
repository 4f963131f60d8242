// Package epoch implements the once-per-epoch state transition: attestation
// tallying, justification and finalization, the registry and slashings
// cycle, and the per-epoch resets process_final_updates performs.
package epoch

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
)

// MatchingAttestations returns the pending attestations recorded for the
// given epoch: the current-epoch records if epoch is the current epoch,
// otherwise the previous-epoch records. They are not filtered by target root.
func MatchingAttestations(st *beacontypes.BeaconState, epoch beacontypes.Epoch) []*beacontypes.PendingAttestation {
	var records []*beacontypes.PendingAttestation
	if epoch == helpers.CurrentEpoch(st) {
		records = st.CurrentEpochAttestations
	} else {
		records = st.PreviousEpochAttestations
	}
	return records
}

// AttestingBalance sums the effective balance of the distinct validators
// attesting in the supplied records, whatever their target.
func AttestingBalance(st *beacontypes.BeaconState, records []*beacontypes.PendingAttestation) uint64 {
	seen := make(map[beacontypes.ValidatorIndex]bool)
	for _, r := range records {
		indices, err := helpers.AttestingIndicesFromRecord(st, r)
		if err != nil {
			continue
		}
		for _, idx := range indices {
			seen[idx] = true
		}
	}
	indices := make([]beacontypes.ValidatorIndex, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	return helpers.TotalBalance(st, indices)
}

// ProcessJustificationAndFinalization updates the justified/finalized
// checkpoints from the previous and current epoch's attesting balances,
// following the four Casper FFG justification rules.
//
// Spec pseudocode definition: process_justification_and_finalization
func ProcessJustificationAndFinalization(st *beacontypes.BeaconState) (*beacontypes.BeaconState, error) {
	currentEpoch := helpers.CurrentEpoch(st)
	if currentEpoch <= helpers.PrevEpoch(helpers.PrevEpoch(currentEpoch))+1 {
		return st, nil
	}
	previousEpoch := helpers.PreviousEpoch(st)
	totalActive := helpers.TotalActiveBalance(st)

	prevAttesting := AttestingBalance(st, MatchingAttestations(st, previousEpoch))
	currAttesting := AttestingBalance(st, MatchingAttestations(st, currentEpoch))

	oldPrevJustified := st.PreviousJustifiedCheckpoint
	oldCurrJustified := st.CurrentJustifiedCheckpoint

	st.PreviousJustifiedCheckpoint = st.CurrentJustifiedCheckpoint

	bits := st.JustificationBits[0]
	bits = (bits << 1) & 0xFE

	if prevAttesting*3 >= totalActive*2 {
		root, err := epochBoundaryRoot(st, previousEpoch)
		if err != nil {
			return nil, err
		}
		st.CurrentJustifiedCheckpoint = &beacontypes.Checkpoint{Epoch: previousEpoch, Root: root}
		bits |= 1 << 1
	}
	if currAttesting*3 >= totalActive*2 {
		root, err := epochBoundaryRoot(st, currentEpoch)
		if err != nil {
			return nil, err
		}
		st.CurrentJustifiedCheckpoint = &beacontypes.Checkpoint{Epoch: currentEpoch, Root: root}
		bits |= 1
	}
	st.JustificationBits[0] = bits

	// The 2nd/3rd/4th most-recent epochs are each checked for the
	// justification run that finalizes an older checkpoint.
	if bits&0b1110 == 0b1110 && oldPrevJustified.Epoch+3 == currentEpoch {
		st.FinalizedCheckpoint = oldPrevJustified
	}
	if bits&0b0110 == 0b0110 && oldPrevJustified.Epoch+2 == currentEpoch {
		st.FinalizedCheckpoint = oldPrevJustified
	}
	if bits&0b0111 == 0b0111 && oldCurrJustified.Epoch+2 == currentEpoch {
		st.FinalizedCheckpoint = oldCurrJustified
	}
	if bits&0b0011 == 0b0011 && oldCurrJustified.Epoch+1 == currentEpoch {
		st.FinalizedCheckpoint = oldCurrJustified
	}
	return st, nil
}

func epochBoundaryRoot(st *beacontypes.BeaconState, epoch beacontypes.Epoch) (beacontypes.Root, error) {
	slot := helpers.StartSlot(epoch)
	if slot == st.Slot {
		return st.LatestBlockHeader.HashTreeRoot()
	}
	idx := uint64(slot) % uint64(len(st.BlockRoots))
	return st.BlockRoots[idx], nil
}
