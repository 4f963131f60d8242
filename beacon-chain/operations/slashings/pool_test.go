package slashings

import (
	"testing"

	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/stretchr/testify/require"
)

func stateWithValidators(n int) *beacontypes.BeaconState {
	st := &beacontypes.BeaconState{Validators: make([]*beacontypes.Validator, n)}
	for i := range st.Validators {
		st.Validators[i] = &beacontypes.Validator{
			ExitEpoch:         params.BeaconConfig().FarFutureEpoch,
			WithdrawableEpoch: params.BeaconConfig().FarFutureEpoch,
		}
	}
	return st
}

func TestPool_ProposerSlashings_DedupAndDrain(t *testing.T) {
	p := NewPool()
	st := stateWithValidators(3)

	mkSlashing := func(proposer beacontypes.ValidatorIndex) *beacontypes.ProposerSlashing {
		return &beacontypes.ProposerSlashing{
			Header1: &beacontypes.SignedBeaconBlockHeader{Header: &beacontypes.BeaconBlockHeader{ProposerIndex: proposer}},
			Header2: &beacontypes.SignedBeaconBlockHeader{Header: &beacontypes.BeaconBlockHeader{ProposerIndex: proposer}},
		}
	}
	p.InsertProposerSlashing(mkSlashing(0))
	p.InsertProposerSlashing(mkSlashing(0))
	p.InsertProposerSlashing(mkSlashing(1))

	drained := p.DrainProposerSlashings(st)
	require.Len(t, drained, 2)
}

func TestPool_ProposerSlashings_SkipsUnslashable(t *testing.T) {
	p := NewPool()
	st := stateWithValidators(1)
	st.Validators[0].Slashed = true

	p.InsertProposerSlashing(&beacontypes.ProposerSlashing{
		Header1: &beacontypes.SignedBeaconBlockHeader{Header: &beacontypes.BeaconBlockHeader{ProposerIndex: 0}},
		Header2: &beacontypes.SignedBeaconBlockHeader{Header: &beacontypes.BeaconBlockHeader{ProposerIndex: 0}},
	})

	require.Empty(t, p.DrainProposerSlashings(st))
}

func TestPool_AttesterSlashings_DrainAndPrune(t *testing.T) {
	p := NewPool()
	st := stateWithValidators(2)

	s := &beacontypes.AttesterSlashing{
		Attestation1: &beacontypes.IndexedAttestation{AttestingIndices: []beacontypes.ValidatorIndex{0, 1}},
		Attestation2: &beacontypes.IndexedAttestation{AttestingIndices: []beacontypes.ValidatorIndex{1}},
	}
	p.InsertAttesterSlashing(s)
	require.Len(t, p.DrainAttesterSlashings(st), 1)

	st.Validators[1].Slashed = true
	p.Prune(st)
	require.Empty(t, p.DrainAttesterSlashings(st))
}
