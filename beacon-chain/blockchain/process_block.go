package blockchain

import (
	"context"

	corestate "github.com/ethprotolabs/beaconchain/beacon-chain/core/state"
	"github.com/ethprotolabs/beaconchain/beacon-chain/forkchoice"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// ErrParentUnknown is returned when a block's parent hasn't been seen yet,
// the caller's cue to hold the block for a later retry once the parent
// arrives.
var ErrParentUnknown = errors.New("parent block root not found")

// ErrFutureSlot is returned when a block's slot is ahead of the coordinator's
// present slot; the caller should hold the block and retry once the clock
// catches up rather than treat it as invalid.
var ErrFutureSlot = errors.New("block slot is ahead of the current slot")

// ReceiveBlock runs the full block-acceptance path: load the parent state,
// transition it by the new block, update fork choice and persistence, and
// recompute head — the single entry point every block source (gossip, RPC,
// initial sync) funnels through, serialized by the coordinator's write
// lock. The returned BlockProcessingOutcome tells the caller exactly which
// branch of on_block was taken; err carries the underlying failure, if any,
// for outcomes other than Processed and BlockIsAlreadyKnown.
//
// Spec pseudocode definition: on_block
func (s *Service) ReceiveBlock(ctx context.Context, signed *beacontypes.SignedBeaconBlock) (BlockProcessingOutcome, error) {
	ctx, span := trace.StartSpan(ctx, "blockchain.ReceiveBlock")
	defer span.End()

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if signed == nil || signed.Block == nil {
		return Invalid, errors.New("nil signed block")
	}
	b := signed.Block

	root, err := signed.HashTreeRoot()
	if err != nil {
		return Invalid, errors.Wrap(err, "could not hash incoming block")
	}
	if s.cfg.Database.HasBlock(ctx, root) {
		return BlockIsAlreadyKnown, nil
	}
	if !s.cfg.Database.HasBlock(ctx, b.ParentRoot) {
		return ParentUnknown, ErrParentUnknown
	}
	if s.cfg.Clock != nil && b.Slot > s.cfg.Clock.CurrentSlot() {
		return FutureSlot, ErrFutureSlot
	}

	preState, err := s.cfg.Database.State(ctx, b.ParentRoot)
	if err != nil || preState == nil {
		return Invalid, errors.Wrap(err, "could not load parent state")
	}
	preState = preState.Copy()

	postState, err := corestate.ExecuteStateTransition(ctx, preState, signed, corestate.DefaultConfig())
	if err != nil {
		if errors.Is(err, corestate.ErrStateRootMismatch) {
			return StateRootMismatch, err
		}
		return Invalid, errors.Wrap(err, "could not apply state transition")
	}

	if err := s.fc.ProcessBlock(root, b.ParentRoot, b.Slot); err != nil {
		if errors.Is(err, forkchoice.ErrFinalizedDescendant) {
			return FinalizedSlot, err
		}
		return Invalid, errors.Wrap(err, "could not insert block into fork choice store")
	}

	if err := s.cfg.Database.SaveBlock(ctx, signed); err != nil {
		return Invalid, errors.Wrap(err, "could not save block")
	}
	if err := s.cfg.Database.SaveState(ctx, postState, root); err != nil {
		return Invalid, errors.Wrap(err, "could not save post-state")
	}

	// A zero checkpoint root means justification/finalization hasn't advanced
	// past genesis yet; fork choice already seeds its own checkpoints at the
	// real genesis block root; only a checkpoint that has actually advanced
	// should ever replace them.
	if postState.CurrentJustifiedCheckpoint != nil && postState.CurrentJustifiedCheckpoint.Root != (beacontypes.Root{}) {
		s.fc.UpdateJustifiedCheckpoint(postState.CurrentJustifiedCheckpoint, balancesAtCheckpoint(postState))
		if err := s.cfg.Database.SaveJustifiedCheckpoint(ctx, postState.CurrentJustifiedCheckpoint); err != nil {
			return Invalid, errors.Wrap(err, "could not save justified checkpoint")
		}
	}
	if postState.FinalizedCheckpoint != nil && postState.FinalizedCheckpoint.Root != (beacontypes.Root{}) {
		s.fc.UpdateFinalizedCheckpoint(postState.FinalizedCheckpoint)
		if err := s.cfg.Database.SaveFinalizedCheckpoint(ctx, postState.FinalizedCheckpoint); err != nil {
			return Invalid, errors.Wrap(err, "could not save finalized checkpoint")
		}
		s.fc.Prune()
		s.cfg.AttestationPool.Prune(postState.FinalizedCheckpoint.Epoch)
		s.cfg.SlashingPool.Prune(postState)
		s.cfg.ExitPool.Prune(postState)
	}

	if err := s.updateHead(ctx); err != nil {
		return Invalid, errors.Wrap(err, "could not update head after block import")
	}

	log.WithField("root", root).WithField("slot", b.Slot).Info("Imported new block")
	return Processed, nil
}

// updateHead recomputes fork choice's head and, if it changed, loads the
// corresponding state and persists the new canonical head root.
func (s *Service) updateHead(ctx context.Context) error {
	head, err := s.fc.Head()
	if err != nil {
		return errors.Wrap(err, "could not compute fork choice head")
	}
	s.headLock.RLock()
	unchanged := head == s.headRoot
	s.headLock.RUnlock()
	if unchanged {
		return nil
	}

	headBlock, err := s.cfg.Database.Block(ctx, head)
	if err != nil || headBlock == nil {
		return errors.Wrap(err, "could not load new head block")
	}
	headState, err := s.cfg.Database.State(ctx, head)
	if err != nil || headState == nil {
		return errors.Wrap(err, "could not load new head state")
	}
	if err := s.cfg.Database.SaveHeadBlockRoot(ctx, head); err != nil {
		return errors.Wrap(err, "could not save new head block root")
	}
	s.setHead(head, headBlock, headState)
	log.WithField("root", head).WithField("slot", headBlock.Block.Slot).Debug("Head updated")
	return nil
}
