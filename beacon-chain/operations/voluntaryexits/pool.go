// Package voluntaryexits implements the voluntary-exit pool: one entry per
// exiting validator, drained into blocks up to the protocol max and pruned
// once a validator has actually exited.
package voluntaryexits

import (
	"sync"

	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
)

// Pool stages signed voluntary exits pending inclusion in a block.
type Pool interface {
	InsertVoluntaryExit(exit *beacontypes.SignedVoluntaryExit)
	DrainForBlock(st *beacontypes.BeaconState) []*beacontypes.SignedVoluntaryExit
	Prune(st *beacontypes.BeaconState)
}

type pool struct {
	lock sync.Mutex

	byValidator map[beacontypes.ValidatorIndex]*beacontypes.SignedVoluntaryExit
}

// NewPool constructs an empty voluntary-exit pool.
func NewPool() Pool {
	return &pool{byValidator: make(map[beacontypes.ValidatorIndex]*beacontypes.SignedVoluntaryExit)}
}

// InsertVoluntaryExit stages an exit, keyed by validator so a later
// resubmission for the same validator replaces rather than duplicates.
func (p *pool) InsertVoluntaryExit(exit *beacontypes.SignedVoluntaryExit) {
	if exit == nil || exit.Exit == nil {
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.byValidator[exit.Exit.ValidatorIndex] = exit
}

// DrainForBlock returns up to MAX_VOLUNTARY_EXITS exits for validators that
// are still active (and not already exiting) under st.
func (p *pool) DrainForBlock(st *beacontypes.BeaconState) []*beacontypes.SignedVoluntaryExit {
	p.lock.Lock()
	defer p.lock.Unlock()
	var out []*beacontypes.SignedVoluntaryExit
	epoch := helpers.CurrentEpoch(st)
	for idx, exit := range p.byValidator {
		if int(idx) >= len(st.Validators) {
			continue
		}
		v := st.Validators[idx]
		if !v.IsActive(epoch) || v.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
			continue
		}
		if exit.Exit.Epoch > epoch {
			continue
		}
		out = append(out, exit)
		if uint64(len(out)) >= params.BeaconConfig().MaxVoluntaryExits {
			break
		}
	}
	return out
}

// Prune drops exits for validators that have already left the active set
// (their exit has already been processed into the state).
func (p *pool) Prune(st *beacontypes.BeaconState) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for idx := range p.byValidator {
		if int(idx) >= len(st.Validators) || st.Validators[idx].ExitEpoch != params.BeaconConfig().FarFutureEpoch {
			delete(p.byValidator, idx)
		}
	}
}
