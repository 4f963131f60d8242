// Package testing provides an in-memory db.Database double, matching the
// teacher's db/testing/p2p/operations-testing convention of a hand-written
// test double per interface rather than a heavier generated mock for simple
// storage contracts.
package testing

import (
	"context"
	"sync"

	"github.com/ethprotolabs/beaconchain/beacon-chain/db"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
)

// Store is an in-memory db.Database used by package tests that don't need
// bolt's durability.
type Store struct {
	mu sync.RWMutex

	blocks      map[beacontypes.Root]*beacontypes.SignedBeaconBlock
	states      map[beacontypes.Root]*beacontypes.BeaconState
	headRoot    beacontypes.Root
	genesisRoot beacontypes.Root
	justified   *beacontypes.Checkpoint
	finalized   *beacontypes.Checkpoint
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		blocks: make(map[beacontypes.Root]*beacontypes.SignedBeaconBlock),
		states: make(map[beacontypes.Root]*beacontypes.BeaconState),
	}
}

// Block returns the block saved under root, or nil if absent.
func (s *Store) Block(ctx context.Context, root beacontypes.Root) (*beacontypes.SignedBeaconBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blocks[root], nil
}

// HasBlock reports whether a block is saved under root.
func (s *Store) HasBlock(ctx context.Context, root beacontypes.Root) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocks[root]
	return ok
}

// SaveBlock saves a block keyed by its own hash tree root.
func (s *Store) SaveBlock(ctx context.Context, block *beacontypes.SignedBeaconBlock) error {
	root, err := block.HashTreeRoot()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[root] = block
	return nil
}

// DeleteBlock removes a saved block.
func (s *Store) DeleteBlock(ctx context.Context, root beacontypes.Root) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blocks, root)
	return nil
}

// BlocksBySlot linearly scans for every saved block at the given slot.
func (s *Store) BlocksBySlot(ctx context.Context, slot beacontypes.Slot) ([]*beacontypes.SignedBeaconBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*beacontypes.SignedBeaconBlock
	for _, b := range s.blocks {
		if b.Block.Slot == slot {
			out = append(out, b)
		}
	}
	return out, nil
}

// State returns the state saved under root, or nil if absent.
func (s *Store) State(ctx context.Context, root beacontypes.Root) (*beacontypes.BeaconState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[root], nil
}

// HasState reports whether a state is saved under root.
func (s *Store) HasState(ctx context.Context, root beacontypes.Root) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.states[root]
	return ok
}

// SaveState saves a state under the given root.
func (s *Store) SaveState(ctx context.Context, st *beacontypes.BeaconState, root beacontypes.Root) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[root] = st
	return nil
}

// HeadBlockRoot returns the saved canonical head root.
func (s *Store) HeadBlockRoot(ctx context.Context) (beacontypes.Root, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headRoot, nil
}

// SaveHeadBlockRoot saves the canonical head root.
func (s *Store) SaveHeadBlockRoot(ctx context.Context, root beacontypes.Root) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headRoot = root
	return nil
}

// GenesisBlockRoot returns the saved genesis block root.
func (s *Store) GenesisBlockRoot(ctx context.Context) (beacontypes.Root, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.genesisRoot, nil
}

// SaveGenesisBlockRoot saves the genesis block root.
func (s *Store) SaveGenesisBlockRoot(ctx context.Context, root beacontypes.Root) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genesisRoot = root
	return nil
}

// JustifiedCheckpoint returns the saved justified checkpoint.
func (s *Store) JustifiedCheckpoint(ctx context.Context) (*beacontypes.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.justified, nil
}

// SaveJustifiedCheckpoint saves the justified checkpoint.
func (s *Store) SaveJustifiedCheckpoint(ctx context.Context, c *beacontypes.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.justified = c
	return nil
}

// FinalizedCheckpoint returns the saved finalized checkpoint.
func (s *Store) FinalizedCheckpoint(ctx context.Context) (*beacontypes.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalized, nil
}

// SaveFinalizedCheckpoint saves the finalized checkpoint.
func (s *Store) SaveFinalizedCheckpoint(ctx context.Context, c *beacontypes.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = c
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

var _ db.Database = (*Store)(nil)
