package helpers

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	types "github.com/prysmaticlabs/eth2-types"
)

// ActiveValidatorIndices returns every validator index active at epoch.
//
// Spec pseudocode definition:
//
//	def get_active_validator_indices(state, epoch) -> Sequence[ValidatorIndex]:
//	    return [i for i, v in enumerate(state.validators) if is_active_validator(v, epoch)]
func ActiveValidatorIndices(st *beacontypes.BeaconState, epoch types.Epoch) []types.ValidatorIndex {
	var indices []types.ValidatorIndex
	for i, v := range st.Validators {
		if v.IsActive(epoch) {
			indices = append(indices, types.ValidatorIndex(i))
		}
	}
	return indices
}

// TotalActiveBalance sums the effective balance of every validator active at
// the state's current epoch.
func TotalActiveBalance(st *beacontypes.BeaconState) uint64 {
	epoch := CurrentEpoch(st)
	var total uint64
	for _, v := range st.Validators {
		if v.IsActive(epoch) {
			total += v.EffectiveBalance
		}
	}
	return maxU64(total, params.BeaconConfig().EffectiveBalanceIncrement)
}

// TotalBalance sums the effective balances of the given validator indices.
func TotalBalance(st *beacontypes.BeaconState, indices []types.ValidatorIndex) uint64 {
	var total uint64
	for _, idx := range indices {
		if int(idx) >= len(st.Validators) {
			continue
		}
		total += st.Validators[idx].EffectiveBalance
	}
	return maxU64(total, params.BeaconConfig().EffectiveBalanceIncrement)
}

// IsEligibleForActivationQueue reports whether a validator not yet queued for
// activation may join the queue this epoch.
func IsEligibleForActivationQueue(v *beacontypes.Validator) bool {
	return v.ActivationEligibilityEpoch == params.BeaconConfig().FarFutureEpoch &&
		v.EffectiveBalance == params.BeaconConfig().MaxEffectiveBalance
}

// ValidatorChurnLimit returns the maximum number of validators that may enter
// or exit the active set in a single epoch.
func ValidatorChurnLimit(st *beacontypes.BeaconState) uint64 {
	active := uint64(len(ActiveValidatorIndices(st, CurrentEpoch(st))))
	limit := active / params.BeaconConfig().ChurnLimitQuotient
	return maxU64(params.BeaconConfig().MinPerEpochChurnLimit, limit)
}

// BeaconProposerIndex computes the proposer for the state's current slot via
// randao-seeded effective-balance-weighted sampling.
//
// Spec pseudocode definition:
//
//	def get_beacon_proposer_index(state) -> ValidatorIndex:
//	    epoch = get_current_epoch(state)
//	    seed = hash(get_seed(state, epoch, DOMAIN_BEACON_PROPOSER) + uint_to_bytes(state.slot))
//	    indices = get_active_validator_indices(state, epoch)
//	    return compute_proposer_index(state, indices, seed)
func BeaconProposerIndex(st *beacontypes.BeaconState) (types.ValidatorIndex, error) {
	epoch := CurrentEpoch(st)
	seed, err := Seed(st, epoch, params.BeaconConfig().DomainBeaconProposer)
	if err != nil {
		return 0, err
	}
	buf := append(seed[:], bytesFromUint64(uint64(st.Slot))...)
	seedWithSlot := hash(buf)
	indices := ActiveValidatorIndices(st, epoch)
	return ComputeProposerIndex(st, indices, seedWithSlot)
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
