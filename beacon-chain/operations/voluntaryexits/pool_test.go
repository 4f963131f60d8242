package voluntaryexits

import (
	"testing"

	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/stretchr/testify/require"
)

func activeValidators(n int) *beacontypes.BeaconState {
	st := &beacontypes.BeaconState{Validators: make([]*beacontypes.Validator, n)}
	for i := range st.Validators {
		st.Validators[i] = &beacontypes.Validator{ExitEpoch: params.BeaconConfig().FarFutureEpoch}
	}
	return st
}

func TestPool_InsertAndDrain(t *testing.T) {
	p := NewPool()
	st := activeValidators(2)

	p.InsertVoluntaryExit(&beacontypes.SignedVoluntaryExit{Exit: &beacontypes.VoluntaryExit{ValidatorIndex: 0}})
	p.InsertVoluntaryExit(&beacontypes.SignedVoluntaryExit{Exit: &beacontypes.VoluntaryExit{ValidatorIndex: 1}})

	require.Len(t, p.DrainForBlock(st), 2)
}

func TestPool_InsertReplacesPriorForSameValidator(t *testing.T) {
	p := NewPool()
	st := activeValidators(1)
	st.Slot = 2 * params.BeaconConfig().SlotsPerEpoch

	p.InsertVoluntaryExit(&beacontypes.SignedVoluntaryExit{Exit: &beacontypes.VoluntaryExit{ValidatorIndex: 0, Epoch: 1}})
	p.InsertVoluntaryExit(&beacontypes.SignedVoluntaryExit{Exit: &beacontypes.VoluntaryExit{ValidatorIndex: 0, Epoch: 2}})

	drained := p.DrainForBlock(st)
	require.Len(t, drained, 1)
	require.Equal(t, beacontypes.Epoch(2), drained[0].Exit.Epoch)
}

func TestPool_PruneDropsExitedValidators(t *testing.T) {
	p := NewPool()
	st := activeValidators(1)
	p.InsertVoluntaryExit(&beacontypes.SignedVoluntaryExit{Exit: &beacontypes.VoluntaryExit{ValidatorIndex: 0}})

	st.Validators[0].ExitEpoch = 5
	p.Prune(st)

	require.Empty(t, p.DrainForBlock(st))
}
