package helpers

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	types "github.com/prysmaticlabs/eth2-types"
)

// AttestingIndices returns the validator indices, in committee order, that
// set a bit in the attestation's aggregation bitlist.
func AttestingIndices(st *beacontypes.BeaconState, att *beacontypes.Attestation) ([]types.ValidatorIndex, error) {
	committee, err := BeaconCommittee(st, att.Data.Slot, att.Data.CommitteeIndex)
	if err != nil {
		return nil, err
	}
	if uint64(att.AggregationBits.Len()) != uint64(len(committee)) {
		return nil, errors.Errorf("aggregation bitlist length %d does not match committee size %d", att.AggregationBits.Len(), len(committee))
	}
	var indices []types.ValidatorIndex
	for i, v := range committee {
		if att.AggregationBits.BitAt(uint64(i)) {
			indices = append(indices, v)
		}
	}
	return indices, nil
}

// ValidateAttestationSlotRange checks that an attestation's target slot is
// neither from the future nor older than allowed for inclusion.
//
// Spec pseudocode definition:
//
//	assert data.target.epoch in (get_previous_epoch(state), get_current_epoch(state))
//	assert data.target.epoch == compute_epoch_at_slot(data.slot)
//	assert data.slot + MIN_ATTESTATION_INCLUSION_DELAY <= state.slot <= data.slot + SLOTS_PER_EPOCH
func ValidateAttestationSlotRange(st *beacontypes.BeaconState, data *beacontypes.AttestationData) error {
	if data.Target.Epoch != SlotToEpoch(data.Slot) {
		return errors.New("target epoch does not match attestation slot's epoch")
	}
	current := CurrentEpoch(st)
	previous := PreviousEpoch(st)
	if data.Target.Epoch != current && data.Target.Epoch != previous {
		return errors.New("target epoch is not current or previous epoch")
	}
	minInclusion := data.Slot + params.BeaconConfig().MinAttestationInclusionDelay
	maxInclusion := data.Slot + params.BeaconConfig().SlotsPerEpoch
	if st.Slot < minInclusion || st.Slot > maxInclusion {
		return errors.Errorf("state slot %d outside attestation inclusion window [%d, %d]", st.Slot, minInclusion, maxInclusion)
	}
	return nil
}

// IsSlashableAttestationData reports whether two attestation data represent
// a double vote or a surround vote, the two FFG slashing conditions.
func IsSlashableAttestationData(d1, d2 *beacontypes.AttestationData) bool {
	if d1 == nil || d2 == nil {
		return false
	}
	doubleVote := d1.Target.Epoch == d2.Target.Epoch && !sameAttestationData(d1, d2)
	surroundVote := d1.Source.Epoch < d2.Source.Epoch && d2.Target.Epoch < d1.Target.Epoch
	surroundVote = surroundVote || (d2.Source.Epoch < d1.Source.Epoch && d1.Target.Epoch < d2.Target.Epoch)
	return doubleVote || surroundVote
}

// AttestingIndicesFromRecord re-derives the committee for a pending
// attestation record and returns the indices that set a bit, used by epoch
// processing to tally attesting balance without keeping a live Attestation.
func AttestingIndicesFromRecord(st *beacontypes.BeaconState, r *beacontypes.PendingAttestation) ([]types.ValidatorIndex, error) {
	committee, err := BeaconCommittee(st, r.Data.Slot, r.Data.CommitteeIndex)
	if err != nil {
		return nil, err
	}
	var indices []types.ValidatorIndex
	for i, v := range committee {
		if uint64(i) < uint64(r.AggregationBits.Len()) && r.AggregationBits.BitAt(uint64(i)) {
			indices = append(indices, v)
		}
	}
	return indices, nil
}

func sameAttestationData(d1, d2 *beacontypes.AttestationData) bool {
	return d1.Slot == d2.Slot &&
		d1.CommitteeIndex == d2.CommitteeIndex &&
		d1.BeaconBlockRoot == d2.BeaconBlockRoot &&
		d1.Source.Epoch == d2.Source.Epoch && d1.Source.Root == d2.Source.Root &&
		d1.Target.Epoch == d2.Target.Epoch && d1.Target.Root == d2.Target.Root
}
