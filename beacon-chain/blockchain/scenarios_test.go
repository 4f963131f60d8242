package blockchain

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/ethprotolabs/beaconchain/beacon-chain/core/helpers"
	corestate "github.com/ethprotolabs/beaconchain/beacon-chain/core/state"
	beaconslotutil "github.com/ethprotolabs/beaconchain/beacon-chain/slotutil"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/bls"
	"github.com/ethprotolabs/beaconchain/shared/hashutil"
	"github.com/ethprotolabs/beaconchain/shared/interop"
	bitfield "github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"
)

// harness wires a coordinator over a mock clock and exposes the proposer
// keys matching its genesis validator set, so scenario tests can produce
// blocks that pass real RANDAO verification instead of faking the
// transition.
type harness struct {
	t      *testing.T
	svc    *Service
	clock  *beaconslotutil.MockClock
	ctx    context.Context
	secret []*bls.SecretKey
}

func newHarness(t *testing.T, numValidators uint64) *harness {
	t.Helper()
	secrets, _, err := interop.DeterministicallyGenerateKeys(0, numValidators)
	require.NoError(t, err)
	clock := beaconslotutil.NewMockClock(time.Unix(0, 0))
	cfg := testConfigWithClock(t, numValidators, clock)
	svc, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start())
	return &harness{t: t, svc: svc, clock: clock, ctx: context.Background(), secret: secrets}
}

// buildBlock advances the clock to slot, computes the correct proposer and
// RANDAO reveal for that slot atop the coordinator's current head, and
// returns a signed block ready to submit via ReceiveBlock.
func (h *harness) buildBlock(slot beacontypes.Slot) *beacontypes.SignedBeaconBlock {
	h.t.Helper()
	h.clock.SetSlot(slot)

	advanced, err := corestate.ProcessSlots(h.ctx, h.svc.HeadState().Copy(), slot)
	require.NoError(h.t, err)
	proposerIdx, err := helpers.BeaconProposerIndex(advanced)
	require.NoError(h.t, err)
	epoch := helpers.CurrentEpoch(advanced)

	reveal := signEpoch(h.secret[proposerIdx], epoch)

	block, err := h.svc.ProduceBlock(h.ctx, slot, proposerIdx, reveal, [32]byte{})
	require.NoError(h.t, err)
	return &beacontypes.SignedBeaconBlock{Block: block}
}

// signEpoch reproduces shared/bls's unexported epoch signing root so tests
// can mint a RANDAO reveal that verifies against process_randao.
func signEpoch(secret *bls.SecretKey, epoch beacontypes.Epoch) [96]byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint64(buf, uint64(epoch))
	msg := hashutil.Hash(buf)
	sig := secret.Sign(msg[:])
	var out [96]byte
	copy(out[:], sig.Marshal())
	return out
}

func TestScenarios_ReceiveBlockProcessesAValidBlock(t *testing.T) {
	h := newHarness(t, 4)
	signed := h.buildBlock(1)

	outcome, err := h.svc.ReceiveBlock(h.ctx, signed)
	require.NoError(t, err)
	require.Equal(t, Processed, outcome)
	require.Equal(t, beacontypes.Slot(1), h.svc.HeadSlot())
}

func TestScenarios_ReceiveBlockIsAlreadyKnownOnResubmit(t *testing.T) {
	h := newHarness(t, 4)
	signed := h.buildBlock(1)

	outcome, err := h.svc.ReceiveBlock(h.ctx, signed)
	require.NoError(t, err)
	require.Equal(t, Processed, outcome)

	outcome, err = h.svc.ReceiveBlock(h.ctx, signed)
	require.NoError(t, err)
	require.Equal(t, BlockIsAlreadyKnown, outcome)
}

func TestScenarios_ReceiveBlockRejectsUnknownParent(t *testing.T) {
	h := newHarness(t, 4)
	signed := h.buildBlock(1)
	signed.Block.ParentRoot = beacontypes.Root{0xAA}

	outcome, err := h.svc.ReceiveBlock(h.ctx, signed)
	require.Error(t, err)
	require.Equal(t, ParentUnknown, outcome)
}

func TestScenarios_ReceiveBlockRejectsFutureSlot(t *testing.T) {
	h := newHarness(t, 4)
	h.clock.SetSlot(1)

	advanced, err := corestate.ProcessSlots(h.ctx, h.svc.HeadState().Copy(), 2)
	require.NoError(t, err)
	proposerIdx, err := helpers.BeaconProposerIndex(advanced)
	require.NoError(t, err)
	reveal := signEpoch(h.secret[proposerIdx], helpers.CurrentEpoch(advanced))
	block, err := h.svc.ProduceBlock(h.ctx, 2, proposerIdx, reveal, [32]byte{})
	require.NoError(t, err)
	signed := &beacontypes.SignedBeaconBlock{Block: block}

	outcome, err := h.svc.ReceiveBlock(h.ctx, signed)
	require.ErrorIs(t, err, ErrFutureSlot)
	require.Equal(t, FutureSlot, outcome)
	require.Equal(t, beacontypes.Slot(0), h.svc.HeadSlot())
}

func TestScenarios_ReceiveBlockRejectsStateRootMismatch(t *testing.T) {
	h := newHarness(t, 4)
	signed := h.buildBlock(1)
	signed.Block.StateRoot = beacontypes.Root{0xFF}

	outcome, err := h.svc.ReceiveBlock(h.ctx, signed)
	require.Error(t, err)
	require.Equal(t, StateRootMismatch, outcome)
}

func TestScenarios_ReceiveBlockRejectsNonFinalizedDescendant(t *testing.T) {
	h := newHarness(t, 4)
	signed := h.buildBlock(1)
	h.svc.fc.UpdateFinalizedCheckpoint(&beacontypes.Checkpoint{Root: beacontypes.Root{0xFE}})

	outcome, err := h.svc.ReceiveBlock(h.ctx, signed)
	require.Error(t, err)
	require.Equal(t, FinalizedSlot, outcome)
}

func TestScenarios_ProduceAttestationDataRejectsOutOfRangeSlot(t *testing.T) {
	h := newHarness(t, 4)
	h.clock.SetSlot(1)

	_, err := h.svc.ProduceAttestationData(2, 0)
	require.ErrorIs(t, err, ErrAttestationSlotOutOfRange)

	_, err = h.svc.ProduceAttestationData(0, 0)
	require.ErrorIs(t, err, ErrAttestationSlotInvalid)

	data, err := h.svc.ProduceAttestationData(1, 0)
	require.NoError(t, err)
	require.Equal(t, beacontypes.Slot(1), data.Slot)
}

func TestScenarios_ReceiveAttestationStagesItForTheNextBlock(t *testing.T) {
	h := newHarness(t, 4)
	signed := h.buildBlock(1)
	outcome, err := h.svc.ReceiveBlock(h.ctx, signed)
	require.NoError(t, err)
	require.Equal(t, Processed, outcome)

	headState := h.svc.HeadState()
	committee, err := helpers.BeaconCommittee(headState, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, committee)

	data := &beacontypes.AttestationData{
		Slot:            0,
		CommitteeIndex:  0,
		BeaconBlockRoot: h.svc.GenesisRoot(),
		Source:          &beacontypes.Checkpoint{Root: headState.PreviousJustifiedCheckpoint.Root},
		Target:          &beacontypes.Checkpoint{Epoch: 0, Root: h.svc.GenesisRoot()},
	}
	root, err := data.SigningRoot()
	require.NoError(t, err)

	bits := bitfield.NewBitlist(uint64(len(committee)))
	bits.SetBitAt(0, true)
	sig := h.secret[committee[0]].Sign(root[:])
	var rawSig [96]byte
	copy(rawSig[:], sig.Marshal())

	att := &beacontypes.Attestation{AggregationBits: bits, Data: data, Signature: rawSig}
	require.NoError(t, h.svc.ReceiveAttestation(h.ctx, att))
	require.Equal(t, 1, h.svc.cfg.AttestationPool.Count())
}
