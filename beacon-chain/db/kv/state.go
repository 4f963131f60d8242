package kv

import (
	"context"

	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// State retrieves the beacon state stored under the given root, normally the
// post-state of the block with the same root.
func (s *Store) State(ctx context.Context, root beacontypes.Root) (*beacontypes.BeaconState, error) {
	var st *beacontypes.BeaconState
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(statesBucket).Get(root[:])
		if enc == nil {
			return nil
		}
		st = &beacontypes.BeaconState{}
		return decode(enc, st)
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not decode state")
	}
	return st, nil
}

// HasState reports whether a state is stored under the given root.
func (s *Store) HasState(ctx context.Context, root beacontypes.Root) bool {
	exists := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(statesBucket).Get(root[:]) != nil
		return nil
	})
	return exists
}

// SaveState persists a beacon state keyed by the caller-supplied root
// (normally its owning block's root, not the state's own hash tree root,
// since the block and its immediate post-state are always fetched together).
func (s *Store) SaveState(ctx context.Context, st *beacontypes.BeaconState, root beacontypes.Root) error {
	enc, err := encode(st)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(statesBucket).Put(root[:], enc)
	})
}
