package blocks

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
)

// ProcessOperations validates and applies every operation container a block
// body carries, in the fixed order the protocol requires: proposer
// slashings, attester slashings, attestations, deposits, voluntary exits.
func ProcessOperations(st *beacontypes.BeaconState, body *beacontypes.BeaconBlockBody) (*beacontypes.BeaconState, error) {
	if uint64(len(body.ProposerSlashings)) > params.BeaconConfig().MaxProposerSlashings {
		return nil, errors.New("too many proposer slashings")
	}
	if uint64(len(body.AttesterSlashings)) > params.BeaconConfig().MaxAttesterSlashings {
		return nil, errors.New("too many attester slashings")
	}
	if uint64(len(body.Attestations)) > params.BeaconConfig().MaxAttestations {
		return nil, errors.New("too many attestations")
	}
	if uint64(len(body.Deposits)) > params.BeaconConfig().MaxDeposits {
		return nil, errors.New("too many deposits")
	}
	if uint64(len(body.VoluntaryExits)) > params.BeaconConfig().MaxVoluntaryExits {
		return nil, errors.New("too many voluntary exits")
	}

	var err error
	for _, s := range body.ProposerSlashings {
		if st, err = ProcessProposerSlashing(st, s); err != nil {
			return nil, errors.Wrap(err, "could not process proposer slashing")
		}
	}
	for _, s := range body.AttesterSlashings {
		if st, err = ProcessAttesterSlashing(st, s); err != nil {
			return nil, errors.Wrap(err, "could not process attester slashing")
		}
	}
	for _, a := range body.Attestations {
		if st, err = ProcessAttestation(st, a); err != nil {
			return nil, errors.Wrap(err, "could not process attestation")
		}
	}
	for _, d := range body.Deposits {
		if st, err = ProcessDeposit(st, d); err != nil {
			return nil, errors.Wrap(err, "could not process deposit")
		}
	}
	for _, e := range body.VoluntaryExits {
		if st, err = ProcessVoluntaryExit(st, e); err != nil {
			return nil, errors.Wrap(err, "could not process voluntary exit")
		}
	}
	return st, nil
}

// ProcessProposerSlashing verifies a proposer double-signed two distinct
// headers at the same slot and slashes the proposer if so.
func ProcessProposerSlashing(st *beacontypes.BeaconState, s *beacontypes.ProposerSlashing) (*beacontypes.BeaconState, error) {
	h1, h2 := s.Header1.Header, s.Header2.Header
	if h1.Slot != h2.Slot {
		return nil, errors.New("proposer slashing headers are not for the same slot")
	}
	if h1.ProposerIndex != h2.ProposerIndex {
		return nil, errors.New("proposer slashing headers are not from the same proposer")
	}
	if *h1 == *h2 {
		return nil, errors.New("proposer slashing headers are identical")
	}
	idx := h1.ProposerIndex
	if uint64(idx) >= uint64(len(st.Validators)) {
		return nil, errors.New("proposer index out of range")
	}
	v := st.Validators[idx]
	if !v.IsSlashable(helpers.CurrentEpoch(st)) {
		return nil, errors.New("proposer is not slashable")
	}
	return SlashValidator(st, idx)
}

// ProcessAttesterSlashing verifies a pair of indexed attestations violate a
// slashing condition and slashes every validator attesting to both.
func ProcessAttesterSlashing(st *beacontypes.BeaconState, s *beacontypes.AttesterSlashing) (*beacontypes.BeaconState, error) {
	if !helpers.IsSlashableAttestationData(s.Attestation1.Data, s.Attestation2.Data) {
		return nil, errors.New("attestations do not violate a slashing condition")
	}
	slashed := false
	epoch := helpers.CurrentEpoch(st)
	for _, idx := range s.IntersectingIndices() {
		if uint64(idx) >= uint64(len(st.Validators)) {
			continue
		}
		if st.Validators[idx].IsSlashable(epoch) {
			var err error
			if st, err = SlashValidator(st, idx); err != nil {
				return nil, err
			}
			slashed = true
		}
	}
	if !slashed {
		return nil, errors.New("no validator slashed by attester slashing")
	}
	return st, nil
}

// ProcessAttestation validates an aggregated attestation against the
// committee it claims and records it for epoch-boundary processing.
func ProcessAttestation(st *beacontypes.BeaconState, a *beacontypes.Attestation) (*beacontypes.BeaconState, error) {
	if err := helpers.ValidateAttestationSlotRange(st, a.Data); err != nil {
		return nil, err
	}
	committee, err := helpers.BeaconCommittee(st, a.Data.Slot, a.Data.CommitteeIndex)
	if err != nil {
		return nil, err
	}
	if uint64(a.AggregationBits.Len()) != uint64(len(committee)) {
		return nil, errors.New("aggregation bits do not match committee size")
	}
	pending := &beacontypes.PendingAttestation{
		AggregationBits: a.AggregationBits,
		Data:            a.Data,
		InclusionDelay:  st.Slot - a.Data.Slot,
		ProposerIndex:   mustProposerIndex(st),
	}
	if a.Data.Target.Epoch == helpers.CurrentEpoch(st) {
		st.CurrentEpochAttestations = append(st.CurrentEpochAttestations, pending)
	} else {
		st.PreviousEpochAttestations = append(st.PreviousEpochAttestations, pending)
	}
	return st, nil
}

func mustProposerIndex(st *beacontypes.BeaconState) beacontypes.ValidatorIndex {
	idx, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return 0
	}
	return idx
}

// ProcessDeposit either tops up an existing validator's balance or adds a new
// validator to the registry. The deposit's Merkle proof and signature are not
// checked.
func ProcessDeposit(st *beacontypes.BeaconState, d *beacontypes.Deposit) (*beacontypes.BeaconState, error) {
	if d.Data == nil {
		return nil, errors.New("nil deposit data")
	}
	st.Eth1DepositIndex++
	for i, v := range st.Validators {
		if v.PublicKey == d.Data.PublicKey {
			st.Balances[i] += d.Data.Amount
			return st, nil
		}
	}
	effective := d.Data.Amount - d.Data.Amount%params.BeaconConfig().EffectiveBalanceIncrement
	if effective > params.BeaconConfig().MaxEffectiveBalance {
		effective = params.BeaconConfig().MaxEffectiveBalance
	}
	st.Validators = append(st.Validators, &beacontypes.Validator{
		PublicKey:                  d.Data.PublicKey,
		WithdrawalCredentials:      d.Data.WithdrawalCredentials,
		EffectiveBalance:           effective,
		ActivationEligibilityEpoch: params.BeaconConfig().FarFutureEpoch,
		ActivationEpoch:            params.BeaconConfig().FarFutureEpoch,
		ExitEpoch:                  params.BeaconConfig().FarFutureEpoch,
		WithdrawableEpoch:          params.BeaconConfig().FarFutureEpoch,
	})
	st.Balances = append(st.Balances, d.Data.Amount)
	return st, nil
}

// ProcessVoluntaryExit validates a validator's signed request to exit and
// schedules its exit epoch.
func ProcessVoluntaryExit(st *beacontypes.BeaconState, e *beacontypes.SignedVoluntaryExit) (*beacontypes.BeaconState, error) {
	idx := e.Exit.ValidatorIndex
	if uint64(idx) >= uint64(len(st.Validators)) {
		return nil, errors.New("validator index out of range")
	}
	v := st.Validators[idx]
	currentEpoch := helpers.CurrentEpoch(st)
	if !v.IsActive(currentEpoch) {
		return nil, errors.New("validator is not active")
	}
	if v.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
		return nil, errors.New("validator has already initiated exit")
	}
	if currentEpoch < e.Exit.Epoch {
		return nil, errors.New("exit is not yet valid")
	}
	if currentEpoch < v.ActivationEpoch+params.BeaconConfig().PersistentCommitteePeriod {
		return nil, errors.New("validator has not served minimum active duration")
	}
	return InitiateValidatorExit(st, idx)
}

// InitiateValidatorExit assigns the validator the next available exit epoch
// respecting the per-epoch churn limit.
func InitiateValidatorExit(st *beacontypes.BeaconState, idx beacontypes.ValidatorIndex) (*beacontypes.BeaconState, error) {
	v := st.Validators[idx]
	if v.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
		return st, nil
	}
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

// SlashValidator marks a validator slashed, immediately initiates its exit,
// slashes a portion of its balance and rewards the slashing's whistleblower.
func SlashValidator(st *beacontypes.BeaconState, idx beacontypes.ValidatorIndex) (*beacontypes.BeaconState, error) {
	var err error
	if st, err = InitiateValidatorExit(st, idx); err != nil {
		return nil, err
	}
	v := st.Validators[idx]
	v.Slashed = true
	currentEpoch := helpers.CurrentEpoch(st)
	v.WithdrawableEpoch = maxEpoch(v.WithdrawableEpoch, currentEpoch+params.BeaconConfig().EpochsPerSlashingsVector)
	slashingIdx := uint64(currentEpoch) % uint64(params.BeaconConfig().EpochsPerSlashingsVector)
	if slashingIdx < uint64(len(st.Slashings)) {
		st.Slashings[slashingIdx] += v.EffectiveBalance
	}
	penalty := v.EffectiveBalance / params.BeaconConfig().MinSlashingPenaltyQuotient
	decreaseBalance(st, idx, penalty)

	proposerIdx, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return nil, err
	}
	whistleblowerReward := v.EffectiveBalance / params.BeaconConfig().WhistleblowerRewardQuotient
	proposerReward := whistleblowerReward / params.BeaconConfig().ProposerRewardQuotient
	increaseBalance(st, proposerIdx, proposerReward)
	increaseBalance(st, proposerIdx, whistleblowerReward-proposerReward)
	return st, nil
}

func decreaseBalance(st *beacontypes.BeaconState, idx beacontypes.ValidatorIndex, delta uint64) {
	if uint64(idx) >= uint64(len(st.Balances)) {
		return
	}
	if st.Balances[idx] < delta {
		st.Balances[idx] = 0
		return
	}
	st.Balances[idx] -= delta
}

func increaseBalance(st *beacontypes.BeaconState, idx beacontypes.ValidatorIndex, delta uint64) {
	if uint64(idx) >= uint64(len(st.Balances)) {
		return
	}
	st.Balances[idx] += delta
}

func maxEpoch(a, b beacontypes.Epoch) beacontypes.Epoch {
	if a > b {
		return a
	}
	return b
}
