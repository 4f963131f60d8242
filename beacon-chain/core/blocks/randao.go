package blocks

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/bls"
	"github.com/ethprotolabs/beaconchain/shared/hashutil"
	"github.com/pkg/errors"
)

// ProcessRandao verifies the block's RANDAO reveal against the proposer's
// public key and mixes it into the epoch's randao mix.
//
// Spec pseudocode definition:
//
//	def process_randao(state, body) -> None:
//	    epoch = get_current_epoch(state)
//	    proposer = state.validators[get_beacon_proposer_index(state)]
//	    signing_root = compute_signing_root(epoch, get_domain(state, DOMAIN_RANDAO))
//	    assert bls.Verify(proposer.pubkey, signing_root, body.randao_reveal)
//	    mix = xor(get_randao_mix(state, epoch), hash(body.randao_reveal))
//	    state.randao_mixes[epoch % EPOCHS_PER_HISTORICAL_VECTOR] = mix
func ProcessRandao(st *beacontypes.BeaconState, body *beacontypes.BeaconBlockBody, verifySignature bool) (*beacontypes.BeaconState, error) {
	proposerIdx, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute proposer index")
	}
	if int(proposerIdx) >= len(st.Validators) {
		return nil, errors.New("proposer index out of range")
	}
	proposer := st.Validators[proposerIdx]
	if verifySignature {
		epoch := helpers.CurrentEpoch(st)
		valid, err := bls.VerifyRandaoReveal(proposer.PublicKey[:], epoch, body.RandaoReveal[:])
		if err != nil {
			return nil, errors.Wrap(err, "could not verify randao reveal")
		}
		if !valid {
			return nil, errors.New("invalid randao reveal signature")
		}
	}
	epoch := helpers.CurrentEpoch(st)
	currentMix, err := helpers.RandaoMix(st, epoch)
	if err != nil {
		return nil, err
	}
	revealHash := hashutil.Hash(body.RandaoReveal[:])
	mixed := xorBytes32(currentMix, revealHash)
	idx := uint64(epoch) % uint64(params.BeaconConfig().EpochsPerHistoricalVector)
	if idx < uint64(len(st.RandaoMixes)) {
		st.RandaoMixes[idx] = mixed
	}
	return st, nil
}

func xorBytes32(a, b [32]byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// ProcessEth1DataInBlock appends the block's eth1 vote and advances the
// canonical eth1 data once a majority of votes in the current voting period
// agree.
//
// Spec pseudocode definition:
//
//	def process_eth1_data(state, body) -> None:
//	    state.eth1_data_votes.append(body.eth1_data)
//	    if state.eth1_data_votes.count(body.eth1_data) * 2 > EPOCHS_PER_ETH1_VOTING_PERIOD * SLOTS_PER_EPOCH:
//	        state.eth1_data = body.eth1_data
func ProcessEth1DataInBlock(st *beacontypes.BeaconState, body *beacontypes.BeaconBlockBody) (*beacontypes.BeaconState, error) {
	if body.Eth1Data == nil {
		return nil, errors.New("nil eth1 data")
	}
	st.Eth1DataVotes = append(st.Eth1DataVotes, body.Eth1Data)
	count := 0
	for _, vote := range st.Eth1DataVotes {
		if *vote == *body.Eth1Data {
			count++
		}
	}
	votingPeriodSlots := uint64(params.BeaconConfig().SlotsPerEpoch) * eth1VotingPeriodEpochs
	if uint64(count)*2 > votingPeriodSlots {
		st.Eth1Data = body.Eth1Data
	}
	return st, nil
}

const eth1VotingPeriodEpochs = 64
