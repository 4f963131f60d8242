// Package blockchain implements the beacon chain coordinator: the
// single-writer owner of canonical head, block/attestation ingestion,
// state-transition invocation and fork-choice driving, matching the
// teacher's beacon-chain/blockchain Service but rebuilt against fork choice
// and state-transition packages this module defines itself rather than the
// teacher's proto-based equivalents.
package blockchain

import (
	"context"
	"sync"

	"github.com/ethprotolabs/beaconchain/beacon-chain/core/state"
	"github.com/ethprotolabs/beaconchain/beacon-chain/db"
	"github.com/ethprotolabs/beaconchain/beacon-chain/forkchoice"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/attestations"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/slashings"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/voluntaryexits"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	"github.com/ethprotolabs/beaconchain/beacon-chain/slotutil"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
)

// Config wires the coordinator's dependencies, each swappable for a test
// double without touching Service itself.
type Config struct {
	Database        db.Database
	AttestationPool attestations.Pool
	SlashingPool    slashings.Pool
	ExitPool        voluntaryexits.Pool
	Clock           slotutil.Clock
	GenesisDeposits []*beacontypes.Deposit
	GenesisEth1Data *beacontypes.Eth1Data
	GenesisTime     uint64
}

// Service is the beacon chain coordinator: it owns the canonical head and
// is the only component allowed to mutate it. Every exported mutating
// method takes writeLock so block/attestation processing never interleaves.
type Service struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg *Config

	writeLock sync.Mutex

	fc *forkchoice.Store

	headLock  sync.RWMutex
	headRoot  beacontypes.Root
	headState *beacontypes.BeaconState
	headBlock *beacontypes.SignedBeaconBlock

	genesisRoot beacontypes.Root
}

// NewService constructs a coordinator around cfg without starting it.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	return &Service{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
	}, nil
}

// Start brings the coordinator's head up to date: if the database already
// has a genesis block, it resumes from the persisted head and checkpoints;
// otherwise it builds genesis state from the configured deposit set and
// persists it, matching the restart-bootstrap contract every chain-start
// path must satisfy.
func (s *Service) Start() error {
	genesisRoot, err := s.cfg.Database.GenesisBlockRoot(s.ctx)
	if err != nil {
		return errors.Wrap(err, "could not read genesis block root")
	}
	var zero beacontypes.Root
	if genesisRoot != zero && s.cfg.Database.HasBlock(s.ctx, genesisRoot) {
		return s.resume(genesisRoot)
	}
	return s.initializeFromGenesis()
}

// initializeFromGenesis builds the genesis state and block, persists them,
// and seeds fork choice and the coordinator's head at the genesis root.
func (s *Service) initializeFromGenesis() error {
	st, err := state.GenesisBeaconState(s.cfg.GenesisDeposits, s.cfg.GenesisTime, s.cfg.GenesisEth1Data)
	if err != nil {
		return errors.Wrap(err, "could not build genesis state")
	}
	block := &beacontypes.BeaconBlock{
		Slot: params.BeaconConfig().GenesisSlot,
		Body: &beacontypes.BeaconBlockBody{Eth1Data: s.cfg.GenesisEth1Data},
	}
	stateRoot, err := st.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not hash genesis state")
	}
	block.StateRoot = stateRoot
	signed := &beacontypes.SignedBeaconBlock{Block: block}
	root, err := signed.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not hash genesis block")
	}

	if err := s.cfg.Database.SaveBlock(s.ctx, signed); err != nil {
		return errors.Wrap(err, "could not save genesis block")
	}
	if err := s.cfg.Database.SaveState(s.ctx, st, root); err != nil {
		return errors.Wrap(err, "could not save genesis state")
	}
	if err := s.cfg.Database.SaveGenesisBlockRoot(s.ctx, root); err != nil {
		return errors.Wrap(err, "could not save genesis block root")
	}
	if err := s.cfg.Database.SaveHeadBlockRoot(s.ctx, root); err != nil {
		return errors.Wrap(err, "could not save head block root")
	}
	if err := s.cfg.Database.SaveJustifiedCheckpoint(s.ctx, st.CurrentJustifiedCheckpoint); err != nil {
		return errors.Wrap(err, "could not save genesis justified checkpoint")
	}
	if err := s.cfg.Database.SaveFinalizedCheckpoint(s.ctx, st.FinalizedCheckpoint); err != nil {
		return errors.Wrap(err, "could not save genesis finalized checkpoint")
	}

	s.genesisRoot = root
	s.fc = forkchoice.NewStore(root, block.Slot)
	s.setHead(root, signed, st)
	log.WithField("genesisRoot", root).Info("Initialized beacon chain from genesis")
	return nil
}

// resume reloads the coordinator's head and fork choice bookkeeping from a
// database that already has a genesis block, so a restarted process picks
// up exactly where it left off rather than replaying from genesis.
func (s *Service) resume(genesisRoot beacontypes.Root) error {
	s.genesisRoot = genesisRoot
	genesisBlock, err := s.cfg.Database.Block(s.ctx, genesisRoot)
	if err != nil {
		return errors.Wrap(err, "could not load genesis block")
	}
	s.fc = forkchoice.NewStore(genesisRoot, genesisBlock.Block.Slot)

	headRoot, err := s.cfg.Database.HeadBlockRoot(s.ctx)
	if err != nil {
		return errors.Wrap(err, "could not load head block root")
	}
	headBlock, err := s.cfg.Database.Block(s.ctx, headRoot)
	if err != nil || headBlock == nil {
		return errors.Wrap(err, "could not load persisted head block")
	}
	headState, err := s.cfg.Database.State(s.ctx, headRoot)
	if err != nil || headState == nil {
		return errors.Wrap(err, "could not load persisted head state")
	}

	justified, err := s.cfg.Database.JustifiedCheckpoint(s.ctx)
	if err != nil {
		return errors.Wrap(err, "could not load justified checkpoint")
	}
	finalized, err := s.cfg.Database.FinalizedCheckpoint(s.ctx)
	if err != nil {
		return errors.Wrap(err, "could not load finalized checkpoint")
	}
	if justified != nil && justified.Root != (beacontypes.Root{}) {
		s.fc.UpdateJustifiedCheckpoint(justified, balancesAtCheckpoint(headState))
	}
	if finalized != nil && finalized.Root != (beacontypes.Root{}) {
		s.fc.UpdateFinalizedCheckpoint(finalized)
	}
	if err := s.fc.ProcessBlock(headRoot, headBlock.Block.ParentRoot, headBlock.Block.Slot); err != nil {
		log.WithError(err).Debug("Head block already known to fork choice store")
	}

	s.setHead(headRoot, headBlock, headState)
	log.WithField("headRoot", headRoot).Info("Resumed beacon chain from persisted head")
	return nil
}

// Stop cancels the coordinator's context and releases its database handle.
func (s *Service) Stop() error {
	s.cancel()
	return s.cfg.Database.Close()
}

func (s *Service) setHead(root beacontypes.Root, block *beacontypes.SignedBeaconBlock, st *beacontypes.BeaconState) {
	s.headLock.Lock()
	defer s.headLock.Unlock()
	s.headRoot = root
	s.headBlock = block
	s.headState = st
}

func balancesAtCheckpoint(st *beacontypes.BeaconState) map[beacontypes.ValidatorIndex]uint64 {
	balances := make(map[beacontypes.ValidatorIndex]uint64, len(st.Validators))
	for i, v := range st.Validators {
		balances[beacontypes.ValidatorIndex(i)] = v.EffectiveBalance
	}
	return balances
}
