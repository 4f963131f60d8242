package kv

import (
	"context"
	"fmt"

	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Block retrieves a signed block by its root, consulting the hot-block
// cache before falling back to bolt.
func (s *Store) Block(ctx context.Context, root beacontypes.Root) (*beacontypes.SignedBeaconBlock, error) {
	if v, ok := s.blockCache.Get(root); ok {
		return v.(*beacontypes.SignedBeaconBlock), nil
	}
	var block *beacontypes.SignedBeaconBlock
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blocksBucket)
		enc := bkt.Get(root[:])
		if enc == nil {
			return nil
		}
		block = &beacontypes.SignedBeaconBlock{}
		return decode(enc, block)
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not decode block")
	}
	if block != nil {
		s.blockCache.Set(root, block, 1)
	}
	return block, nil
}

// HasBlock reports whether a block is stored under the given root.
func (s *Store) HasBlock(ctx context.Context, root beacontypes.Root) bool {
	if _, ok := s.blockCache.Get(root); ok {
		return true
	}
	exists := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blocksBucket)
		exists = bkt.Get(root[:]) != nil
		return nil
	})
	return exists
}

// SaveBlock persists a signed block keyed by its HashTreeRoot (signature
// included) and indexes it
// by slot for BlocksBySlot lookups.
func (s *Store) SaveBlock(ctx context.Context, block *beacontypes.SignedBeaconBlock) error {
	root, err := block.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute block root")
	}
	enc, err := encode(block)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(blocksBucket).Put(root[:], enc); err != nil {
			return err
		}
		idxBkt := tx.Bucket(blockSlotIndexBkt)
		key := slotIndexKey(block.Block.Slot, root)
		return idxBkt.Put(key, root[:])
	})
	if err != nil {
		return errors.Wrap(err, "could not save block")
	}
	s.blockCache.Set(root, block, 1)
	return nil
}

// DeleteBlock removes a block and its slot index entry.
func (s *Store) DeleteBlock(ctx context.Context, root beacontypes.Root) error {
	block, err := s.Block(ctx, root)
	if err != nil {
		return err
	}
	s.blockCache.Del(root)
	return s.db.Update(func(tx *bolt.Tx) error {
		if block != nil {
			key := slotIndexKey(block.Block.Slot, root)
			if err := tx.Bucket(blockSlotIndexBkt).Delete(key); err != nil {
				return err
			}
		}
		return tx.Bucket(blocksBucket).Delete(root[:])
	})
}

// BlocksBySlot returns every block stored at the given slot (normally one,
// but forks can briefly leave more than one competing block at a slot).
func (s *Store) BlocksBySlot(ctx context.Context, slot beacontypes.Slot) ([]*beacontypes.SignedBeaconBlock, error) {
	var roots [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(blockSlotIndexBkt).Cursor()
		prefix := []byte(fmt.Sprintf("%020d/", uint64(slot)))
		for k, v := cur.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = cur.Next() {
			root := make([]byte, len(v))
			copy(root, v)
			roots = append(roots, root)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	blocks := make([]*beacontypes.SignedBeaconBlock, 0, len(roots))
	for _, r := range roots {
		var root beacontypes.Root
		copy(root[:], r)
		b, err := s.Block(ctx, root)
		if err != nil {
			return nil, err
		}
		if b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

func slotIndexKey(slot beacontypes.Slot, root beacontypes.Root) []byte {
	return []byte(fmt.Sprintf("%020d/%x", uint64(slot), root))
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
