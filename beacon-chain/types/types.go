// Package types defines the phase-0 wire and persisted data structures for
// the beacon chain core: blocks, state, attestations and the operations a
// block body carries. Hash-tree-root and signing-root methods are written by
// hand against the fastssz runtime hasher rather than generated by sszgen.
package types

import (
	types "github.com/prysmaticlabs/eth2-types"
)

// Slot, Epoch and ValidatorIndex are the domain-typed primitives used
// throughout the core instead of bare uint64, matching eth2-types.
type (
	Slot           = types.Slot
	Epoch          = types.Epoch
	ValidatorIndex = types.ValidatorIndex
	CommitteeIndex = types.CommitteeIndex
)

// Root is a 32-byte Merkle or signing root.
type Root = [32]byte

// Fork records the last two fork versions a chain has passed through and the
// epoch at which the switch occurred.
type Fork struct {
	PreviousVersion [4]byte
	CurrentVersion  [4]byte
	Epoch           Epoch
}

// Checkpoint is an (epoch, root) pair identifying a specific point the chain
// voted on for justification or finalization.
type Checkpoint struct {
	Epoch Epoch
	Root  Root
}

// BeaconBlockHeader is the slimmed-down header stored in state in place of a
// full block body, per invariant 2 of the state machine.
type BeaconBlockHeader struct {
	Slot          Slot
	ProposerIndex ValidatorIndex
	ParentRoot    Root
	StateRoot     Root
	BodyRoot      Root
}

// SignedBeaconBlockHeader pairs a header with its proposer signature.
type SignedBeaconBlockHeader struct {
	Header    *BeaconBlockHeader
	Signature [96]byte
}
