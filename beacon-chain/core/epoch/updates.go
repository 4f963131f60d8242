package epoch

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
)

// ProcessRegistryUpdates activates eligible queued validators and marks
// active validators whose effective balance is at or below EjectionBalance
// for exit, respecting the churn limit.
//
// Spec pseudocode definition: process_registry_updates
func ProcessRegistryUpdates(st *beacontypes.BeaconState) (*beacontypes.BeaconState, error) {
	currentEpoch := helpers.CurrentEpoch(st)
	for i, v := range st.Validators {
		if v.IsActive(currentEpoch) && v.EffectiveBalance <= params.BeaconConfig().EjectionBalance {
			var err error
			if st, err = ejectValidator(st, beacontypes.ValidatorIndex(i)); err != nil {
				return nil, err
			}
		}
	}

	var activationQueue []int
	for i, v := range st.Validators {
		if isEligibleForActivation(st, v) {
			activationQueue = append(activationQueue, i)
		}
	}
	churn := helpers.ValidatorChurnLimit(st)
	for i, idx := range activationQueue {
		if uint64(i) >= churn {
			break
		}
		st.Validators[idx].ActivationEpoch = activationEpoch(currentEpoch)
	}
	return st, nil
}

func ejectValidator(st *beacontypes.BeaconState, idx beacontypes.ValidatorIndex) (*beacontypes.BeaconState, error) {
	v := st.Validators[idx]
	if v.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
		return st, nil
	}
	return initiateExitWithChurn(st, idx)
}

// initiateExitWithChurn mirrors blocks.InitiateValidatorExit without an
// import cycle back into the blocks package.
func initiateExitWithChurn(st *beacontypes.BeaconState, idx beacontypes.ValidatorIndex) (*beacontypes.BeaconState, error) {
	v := st.Validators[idx]
	exitEpochs := make(map[beacontypes.Epoch]int)
	maxExitEpoch := helpers.CurrentEpoch(st) + params.BeaconConfig().MaxSeedLookahead
	for _, other := range st.Validators {
		if other.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
			exitEpochs[other.ExitEpoch]++
			if other.ExitEpoch > maxExitEpoch {
				maxExitEpoch = other.ExitEpoch
			}
		}
	}
	churn := helpers.ValidatorChurnLimit(st)
	exitQueueEpoch := maxExitEpoch
	if uint64(exitEpochs[maxExitEpoch]) >= churn {
		exitQueueEpoch++
	}
	v.ExitEpoch = exitQueueEpoch
	v.WithdrawableEpoch = exitQueueEpoch + params.BeaconConfig().MinValidatorWithdrawabilityDelay
	return st, nil
}

func isEligibleForActivation(st *beacontypes.BeaconState, v *beacontypes.Validator) bool {
	return v.ActivationEligibilityEpoch <= st.FinalizedCheckpoint.Epoch &&
		v.ActivationEpoch == params.BeaconConfig().FarFutureEpoch
}

func activationEpoch(currentEpoch beacontypes.Epoch) beacontypes.Epoch {
	return currentEpoch + params.BeaconConfig().MaxSeedLookahead + 1
}

// ProcessSlashingsPenalties applies the pooled slashing penalty to every
// currently-slashed validator partway through its slashed-balance vector
// window.
//
// Spec pseudocode definition: process_slashings
func ProcessSlashingsPenalties(st *beacontypes.BeaconState) (*beacontypes.BeaconState, error) {
	currentEpoch := helpers.CurrentEpoch(st)
	totalBalance := helpers.TotalActiveBalance(st)
	var totalSlashed uint64
	for _, s := range st.Slashings {
		totalSlashed += s
	}
	adjusted := totalSlashed * 3
	if adjusted > totalBalance {
		adjusted = totalBalance
	}
	for i, v := range st.Validators {
		if !v.Slashed {
			continue
		}
		if currentEpoch+params.BeaconConfig().EpochsPerSlashingsVector/2 != v.WithdrawableEpoch {
			continue
		}
		penalty := v.EffectiveBalance / params.BeaconConfig().EffectiveBalanceIncrement * adjusted / totalBalance * params.BeaconConfig().EffectiveBalanceIncrement
		if penalty > st.Balances[i] {
			penalty = st.Balances[i]
		}
		st.Balances[i] -= penalty
	}
	return st, nil
}

// ProcessRewardsAndPenalties grants a small reward to validators who
// attested correctly in the previous epoch and applies an inactivity
// penalty to those who did not, scaled by effective balance.
func ProcessRewardsAndPenalties(st *beacontypes.BeaconState) (*beacontypes.BeaconState, error) {
	currentEpoch := helpers.CurrentEpoch(st)
	if currentEpoch == params.BeaconConfig().GenesisEpoch {
		return st, nil
	}
	previousEpoch := helpers.PreviousEpoch(st)
	attesting := make(map[beacontypes.ValidatorIndex]bool)
	for _, r := range MatchingAttestations(st, previousEpoch) {
		indices, err := helpers.AttestingIndicesFromRecord(st, r)
		if err != nil {
			continue
		}
		for _, idx := range indices {
			attesting[idx] = true
		}
	}
	baseRewardFactor := params.BeaconConfig().BaseRewardFactor
	totalActiveSqrt := isqrt(helpers.TotalActiveBalance(st))
	for i, v := range st.Validators {
		if !v.IsActive(previousEpoch) {
			continue
		}
		idx := beacontypes.ValidatorIndex(i)
		baseReward := v.EffectiveBalance * baseRewardFactor / totalActiveSqrt / params.BeaconConfig().BaseRewardFactor
		if attesting[idx] {
			st.Balances[i] += baseReward
		} else if st.Balances[i] > baseReward {
			st.Balances[i] -= baseReward
		} else {
			st.Balances[i] = 0
		}
	}
	return st, nil
}

func isqrt(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	if x == 0 {
		return 1
	}
	return x
}

// ProcessFinalUpdates performs the per-epoch resets: effective balance
// recalculation, eth1 voting period reset, randao mix carry-forward,
// slashings slot reset, and rotating the epoch attestation records.
// HistoricalRoots is not appended to; it is left unchanged.
//
// Spec pseudocode definition: process_final_updates
func ProcessFinalUpdates(st *beacontypes.BeaconState) (*beacontypes.BeaconState, error) {
	currentEpoch := helpers.CurrentEpoch(st)
	nextEpoch := currentEpoch + 1

	hysteresisIncrement := params.BeaconConfig().EffectiveBalanceIncrement
	for i, v := range st.Validators {
		balance := st.Balances[i]
		if balance+3*hysteresisIncrement < v.EffectiveBalance || v.EffectiveBalance+hysteresisIncrement < balance {
			newEffective := balance - balance%hysteresisIncrement
			if newEffective > params.BeaconConfig().MaxEffectiveBalance {
				newEffective = params.BeaconConfig().MaxEffectiveBalance
			}
			v.EffectiveBalance = newEffective
		}
	}

	votingPeriodEpochs := beacontypes.Epoch(64)
	if uint64(nextEpoch)%uint64(votingPeriodEpochs) == 0 {
		st.Eth1DataVotes = nil
	}

	idx := uint64(nextEpoch) % uint64(params.BeaconConfig().EpochsPerHistoricalVector)
	if idx < uint64(len(st.RandaoMixes)) {
		mix, err := helpers.RandaoMix(st, currentEpoch)
		if err == nil {
			st.RandaoMixes[idx] = mix
		}
	}

	slashingsIdx := uint64(nextEpoch) % uint64(params.BeaconConfig().EpochsPerSlashingsVector)
	if slashingsIdx < uint64(len(st.Slashings)) {
		st.Slashings[slashingsIdx] = 0
	}

	if uint64(currentEpoch)%(uint64(params.BeaconConfig().SlotsPerEpoch)) == 0 {
		// No historical root is computed or appended here.
	}

	st.PreviousEpochAttestations = st.CurrentEpochAttestations
	st.CurrentEpochAttestations = nil
	return st, nil
}
