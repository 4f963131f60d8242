package kv

import (
	"context"

	"github.com/ethprotolabs/beaconchain/beacon-chain/db"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	bolt "go.etcd.io/bbolt"
)

// HeadBlockRoot returns the persisted canonical head root, letting a
// restarting coordinator skip recomputation of a head it already settled on.
func (s *Store) HeadBlockRoot(ctx context.Context) (beacontypes.Root, error) {
	return s.sentinelRoot(headBlockRootKey)
}

// SaveHeadBlockRoot persists the canonical head root.
func (s *Store) SaveHeadBlockRoot(ctx context.Context, root beacontypes.Root) error {
	return s.putSentinel(headBlockRootKey, root[:])
}

// GenesisBlockRoot returns the persisted genesis block root.
func (s *Store) GenesisBlockRoot(ctx context.Context) (beacontypes.Root, error) {
	return s.sentinelRoot(genesisBlockRootKey)
}

// SaveGenesisBlockRoot persists the genesis block root.
func (s *Store) SaveGenesisBlockRoot(ctx context.Context, root beacontypes.Root) error {
	return s.putSentinel(genesisBlockRootKey, root[:])
}

// JustifiedCheckpoint returns the persisted justified checkpoint.
func (s *Store) JustifiedCheckpoint(ctx context.Context) (*beacontypes.Checkpoint, error) {
	return s.sentinelCheckpoint(justifiedCheckpointKey)
}

// SaveJustifiedCheckpoint persists the justified checkpoint.
func (s *Store) SaveJustifiedCheckpoint(ctx context.Context, c *beacontypes.Checkpoint) error {
	enc, err := encode(c)
	if err != nil {
		return err
	}
	return s.putSentinel(justifiedCheckpointKey, enc)
}

// FinalizedCheckpoint returns the persisted finalized checkpoint.
func (s *Store) FinalizedCheckpoint(ctx context.Context) (*beacontypes.Checkpoint, error) {
	return s.sentinelCheckpoint(finalizedCheckpointKey)
}

// SaveFinalizedCheckpoint persists the finalized checkpoint.
func (s *Store) SaveFinalizedCheckpoint(ctx context.Context, c *beacontypes.Checkpoint) error {
	enc, err := encode(c)
	if err != nil {
		return err
	}
	return s.putSentinel(finalizedCheckpointKey, enc)
}

func (s *Store) putSentinel(key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sentinelBucket).Put(key, value)
	})
}

func (s *Store) sentinelRoot(key []byte) (beacontypes.Root, error) {
	var root beacontypes.Root
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sentinelBucket).Get(key)
		if v == nil {
			return nil
		}
		copy(root[:], v)
		return nil
	})
	return root, err
}

func (s *Store) sentinelCheckpoint(key []byte) (*beacontypes.Checkpoint, error) {
	var c *beacontypes.Checkpoint
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sentinelBucket).Get(key)
		if v == nil {
			return nil
		}
		c = &beacontypes.Checkpoint{}
		return decode(v, c)
	})
	return c, err
}

var _ db.Database = (*Store)(nil)
