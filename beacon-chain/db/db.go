// Package db defines the persistence contract the beacon chain coordinator
// depends on: content-addressed blocks and states plus the sentinel keys
// (head root, justified/finalized checkpoints) a restarting node reloads
// from, matching the teacher's db.Database interface split from its kv
// implementation.
package db

import (
	"context"

	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
)

// Database is the full persistence surface the coordinator is built
// against; db/kv.Store is its production bbolt-backed implementation and
// db/testing provides an in-memory double for tests.
type Database interface {
	Block(ctx context.Context, root beacontypes.Root) (*beacontypes.SignedBeaconBlock, error)
	HasBlock(ctx context.Context, root beacontypes.Root) bool
	SaveBlock(ctx context.Context, block *beacontypes.SignedBeaconBlock) error
	DeleteBlock(ctx context.Context, root beacontypes.Root) error
	BlocksBySlot(ctx context.Context, slot beacontypes.Slot) ([]*beacontypes.SignedBeaconBlock, error)

	State(ctx context.Context, root beacontypes.Root) (*beacontypes.BeaconState, error)
	SaveState(ctx context.Context, st *beacontypes.BeaconState, root beacontypes.Root) error
	HasState(ctx context.Context, root beacontypes.Root) bool

	HeadBlockRoot(ctx context.Context) (beacontypes.Root, error)
	SaveHeadBlockRoot(ctx context.Context, root beacontypes.Root) error

	GenesisBlockRoot(ctx context.Context) (beacontypes.Root, error)
	SaveGenesisBlockRoot(ctx context.Context, root beacontypes.Root) error

	JustifiedCheckpoint(ctx context.Context) (*beacontypes.Checkpoint, error)
	SaveJustifiedCheckpoint(ctx context.Context, c *beacontypes.Checkpoint) error

	FinalizedCheckpoint(ctx context.Context) (*beacontypes.Checkpoint, error)
	SaveFinalizedCheckpoint(ctx context.Context, c *beacontypes.Checkpoint) error

	Close() error
}

// ErrNotFound reports a key the store has never seen, distinct from a decode
// failure on a key that does exist. The bolt and in-memory stores do not
// return it; their lookups return a nil value and a nil error for a missing key.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "requested item not found in db" }
