// Package attestations implements the block-bound attestation pool: an
// insert that aggregates by (data, committee), a drain that selects up to
// the protocol max for the next block, and a prune by finalized epoch.
// Split out the way the teacher splits operations/attestations from
// its slashing and exit pools, but collapsed to the single aggregated pool
// spec.md's OperationPool names rather than the teacher's four-way
// aggregated/unaggregated/block/forkchoice split.
package attestations

import (
	"sync"

	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/bls"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "operations-attestations")

// Pool is the attestation staging area between p2p/RPC ingestion and block
// production.
type Pool interface {
	InsertAttestation(att *beacontypes.Attestation) error
	DrainForBlock(st *beacontypes.BeaconState) []*beacontypes.Attestation
	Prune(finalizedEpoch beacontypes.Epoch)
	Count() int
}

type key struct {
	slot            beacontypes.Slot
	committeeIndex  beacontypes.CommitteeIndex
	beaconBlockRoot beacontypes.Root
	sourceEpoch     beacontypes.Epoch
	targetEpoch     beacontypes.Epoch
	targetRoot      beacontypes.Root
}

func keyFor(data *beacontypes.AttestationData) key {
	return key{
		slot:            data.Slot,
		committeeIndex:  data.CommitteeIndex,
		beaconBlockRoot: data.BeaconBlockRoot,
		sourceEpoch:     data.Source.Epoch,
		targetEpoch:     data.Target.Epoch,
		targetRoot:      data.Target.Root,
	}
}

// pool is the default in-memory Pool implementation.
type pool struct {
	lock  sync.Mutex
	byKey map[key]*beacontypes.Attestation
}

// NewPool constructs an empty attestation pool.
func NewPool() Pool {
	return &pool{byKey: make(map[key]*beacontypes.Attestation)}
}

// InsertAttestation aggregates an incoming attestation into any existing
// attestation for the same data by OR-ing aggregation bits and aggregating
// the two BLS signatures, so the merged attestation's signature still
// verifies against its expanded signer set.
func (p *pool) InsertAttestation(att *beacontypes.Attestation) error {
	if att == nil || att.Data == nil {
		return errors.New("nil attestation")
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	k := keyFor(att.Data)
	existing, ok := p.byKey[k]
	if !ok {
		p.byKey[k] = att
		return nil
	}
	if existing.AggregationBits.Len() != att.AggregationBits.Len() {
		return errors.New("aggregation bitlist length mismatch for existing attestation")
	}
	mergedSig, err := aggregateSignatures(existing.Signature, att.Signature)
	if err != nil {
		return errors.Wrap(err, "could not aggregate attestation signatures")
	}
	existing.AggregationBits = existing.AggregationBits.Or(att.AggregationBits)
	existing.Signature = mergedSig
	return nil
}

// aggregateSignatures sums two compressed BLS signatures into one.
func aggregateSignatures(a, b [96]byte) ([96]byte, error) {
	var out [96]byte
	sigA, err := bls.SignatureFromBytes(a[:])
	if err != nil {
		return out, errors.Wrap(err, "could not deserialize existing signature")
	}
	sigB, err := bls.SignatureFromBytes(b[:])
	if err != nil {
		return out, errors.Wrap(err, "could not deserialize incoming signature")
	}
	copy(out[:], bls.AggregateSignatures([]*bls.Signature{sigA, sigB}).Marshal())
	return out, nil
}

// DrainForBlock returns up to MAX_ATTESTATIONS attestations usable in a
// block built atop st, without removing them from the pool (multiple
// candidate blocks at a slot may each want to include the same votes).
func (p *pool) DrainForBlock(st *beacontypes.BeaconState) []*beacontypes.Attestation {
	p.lock.Lock()
	defer p.lock.Unlock()
	var out []*beacontypes.Attestation
	for _, att := range p.byKey {
		if err := helpers.ValidateAttestationSlotRange(st, att.Data); err != nil {
			continue
		}
		out = append(out, att)
		if uint64(len(out)) >= params.BeaconConfig().MaxAttestations {
			break
		}
	}
	return out
}

// Prune drops every attestation targeting an epoch at or before the newly
// finalized epoch, since it can never again be included in a block.
func (p *pool) Prune(finalizedEpoch beacontypes.Epoch) {
	p.lock.Lock()
	defer p.lock.Unlock()
	before := len(p.byKey)
	for k, att := range p.byKey {
		if att.Data.Target.Epoch <= finalizedEpoch {
			delete(p.byKey, k)
		}
	}
	if removed := before - len(p.byKey); removed > 0 {
		log.WithField("removed", removed).Debug("Pruned finalized attestations from pool")
	}
}

// Count returns the number of distinct attestation data entries staged.
func (p *pool) Count() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.byKey)
}
