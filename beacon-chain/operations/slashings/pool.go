// Package slashings implements the proposer- and attester-slashing pools: a
// dedup-by-offending-validator insert and a drain that selects up to the
// protocol max per kind for the next block.
package slashings

import (
	"sync"

	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
)

// Pool stages proposer and attester slashings seen from gossip/RPC pending
// inclusion in a block.
type Pool interface {
	InsertProposerSlashing(s *beacontypes.ProposerSlashing)
	InsertAttesterSlashing(s *beacontypes.AttesterSlashing)
	DrainProposerSlashings(st *beacontypes.BeaconState) []*beacontypes.ProposerSlashing
	DrainAttesterSlashings(st *beacontypes.BeaconState) []*beacontypes.AttesterSlashing
	Prune(st *beacontypes.BeaconState)
}

type pool struct {
	lock sync.Mutex

	proposer map[beacontypes.ValidatorIndex]*beacontypes.ProposerSlashing
	attester []*beacontypes.AttesterSlashing
}

// NewPool constructs an empty slashings pool.
func NewPool() Pool {
	return &pool{proposer: make(map[beacontypes.ValidatorIndex]*beacontypes.ProposerSlashing)}
}

// InsertProposerSlashing stages a proposer slashing, keyed by the offending
// proposer so duplicates for the same proposer collapse to one entry.
func (p *pool) InsertProposerSlashing(s *beacontypes.ProposerSlashing) {
	if s == nil || s.Header1 == nil || s.Header1.Header == nil {
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.proposer[s.Header1.Header.ProposerIndex] = s
}

// InsertAttesterSlashing stages an attester slashing.
func (p *pool) InsertAttesterSlashing(s *beacontypes.AttesterSlashing) {
	if s == nil {
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.attester = append(p.attester, s)
}

// DrainProposerSlashings returns up to MAX_PROPOSER_SLASHINGS entries whose
// offending validator is still slashable under st.
func (p *pool) DrainProposerSlashings(st *beacontypes.BeaconState) []*beacontypes.ProposerSlashing {
	p.lock.Lock()
	defer p.lock.Unlock()
	var out []*beacontypes.ProposerSlashing
	epoch := helpers.CurrentEpoch(st)
	for idx, s := range p.proposer {
		if int(idx) >= len(st.Validators) || !st.Validators[idx].IsSlashable(epoch) {
			continue
		}
		out = append(out, s)
		if uint64(len(out)) >= params.BeaconConfig().MaxProposerSlashings {
			break
		}
	}
	return out
}

// DrainAttesterSlashings returns up to MAX_ATTESTER_SLASHINGS entries that
// still slash at least one currently-slashable validator.
func (p *pool) DrainAttesterSlashings(st *beacontypes.BeaconState) []*beacontypes.AttesterSlashing {
	p.lock.Lock()
	defer p.lock.Unlock()
	var out []*beacontypes.AttesterSlashing
	epoch := helpers.CurrentEpoch(st)
	for _, s := range p.attester {
		slashable := false
		for _, idx := range s.IntersectingIndices() {
			if int(idx) < len(st.Validators) && st.Validators[idx].IsSlashable(epoch) {
				slashable = true
				break
			}
		}
		if !slashable {
			continue
		}
		out = append(out, s)
		if uint64(len(out)) >= params.BeaconConfig().MaxAttesterSlashings {
			break
		}
	}
	return out
}

// Prune removes slashings for validators that are no longer slashable
// (already slashed and exited, or no intersecting slashable validator).
func (p *pool) Prune(st *beacontypes.BeaconState) {
	p.lock.Lock()
	defer p.lock.Unlock()
	epoch := helpers.CurrentEpoch(st)
	for idx := range p.proposer {
		if int(idx) >= len(st.Validators) || !st.Validators[idx].IsSlashable(epoch) {
			delete(p.proposer, idx)
		}
	}
	kept := p.attester[:0]
	for _, s := range p.attester {
		for _, idx := range s.IntersectingIndices() {
			if int(idx) < len(st.Validators) && st.Validators[idx].IsSlashable(epoch) {
				kept = append(kept, s)
				break
			}
		}
	}
	p.attester = kept
}
