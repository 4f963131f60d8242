package types

import (
	ssz "github.com/ferranbt/fastssz"
	bitfield "github.com/prysmaticlabs/go-bitfield"
)

// BeaconState is the full consensus-critical state machine: the validator
// registry, balances, randomness, history roots and the checkpoints fork
// choice and finality reason about.
type BeaconState struct {
	GenesisTime           uint64
	GenesisValidatorsRoot Root
	Slot                  Slot
	Fork                  *Fork
	LatestBlockHeader     *BeaconBlockHeader

	BlockRoots      [][32]byte
	StateRoots      [][32]byte
	HistoricalRoots []Root

	Eth1Data         *Eth1Data
	Eth1DataVotes    []*Eth1Data
	Eth1DepositIndex uint64

	Validators []*Validator
	Balances   []uint64

	RandaoMixes [][32]byte
	Slashings   []uint64

	PreviousEpochAttestations []*PendingAttestation
	CurrentEpochAttestations  []*PendingAttestation

	JustificationBits           [1]byte
	PreviousJustifiedCheckpoint *Checkpoint
	CurrentJustifiedCheckpoint  *Checkpoint
	FinalizedCheckpoint         *Checkpoint
}

// PendingAttestation is the per-epoch record kept for attestations included
// in blocks during that epoch, used by epoch processing to compute rewards
// and justification/finalization source votes.
type PendingAttestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	InclusionDelay  Slot
	ProposerIndex   ValidatorIndex
}

// Copy returns a deep-enough copy of the state for use as a mutable working
// copy during a state transition, matching the teacher's copy-on-write
// pattern for per-block state derivation.
func (s *BeaconState) Copy() *BeaconState {
	cpy := *s
	cpy.Fork = copyFork(s.Fork)
	cpy.LatestBlockHeader = copyHeader(s.LatestBlockHeader)
	cpy.BlockRoots = append([][32]byte(nil), s.BlockRoots...)
	cpy.StateRoots = append([][32]byte(nil), s.StateRoots...)
	cpy.HistoricalRoots = append([]Root(nil), s.HistoricalRoots...)
	if s.Eth1Data != nil {
		e := *s.Eth1Data
		cpy.Eth1Data = &e
	}
	cpy.Eth1DataVotes = append([]*Eth1Data(nil), s.Eth1DataVotes...)
	cpy.Validators = append([]*Validator(nil), s.Validators...)
	cpy.Balances = append([]uint64(nil), s.Balances...)
	cpy.RandaoMixes = append([][32]byte(nil), s.RandaoMixes...)
	cpy.Slashings = append([]uint64(nil), s.Slashings...)
	cpy.PreviousEpochAttestations = append([]*PendingAttestation(nil), s.PreviousEpochAttestations...)
	cpy.CurrentEpochAttestations = append([]*PendingAttestation(nil), s.CurrentEpochAttestations...)
	cpy.PreviousJustifiedCheckpoint = copyCheckpoint(s.PreviousJustifiedCheckpoint)
	cpy.CurrentJustifiedCheckpoint = copyCheckpoint(s.CurrentJustifiedCheckpoint)
	cpy.FinalizedCheckpoint = copyCheckpoint(s.FinalizedCheckpoint)
	return &cpy
}

func copyFork(f *Fork) *Fork {
	if f == nil {
		return nil
	}
	cpy := *f
	return &cpy
}

func copyHeader(h *BeaconBlockHeader) *BeaconBlockHeader {
	if h == nil {
		return nil
	}
	cpy := *h
	return &cpy
}

func copyCheckpoint(c *Checkpoint) *Checkpoint {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}

// HashTreeRoot computes the state's Merkle root.
func (s *BeaconState) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

// HashTreeRootWith ssz-hashes the state into the running hasher. Vector
// fields (block/state roots, randao mixes, slashings) are merkleized at the
// lengths the active config gave them; list fields are mixed in against fixed
// limits (1<<24 for historical roots, 1<<40 for validators and balances).
func (s *BeaconState) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(s.GenesisTime)
	hh.PutBytes(s.GenesisValidatorsRoot[:])
	hh.PutUint64(uint64(s.Slot))
	if s.Fork == nil || s.LatestBlockHeader == nil {
		return errNilField("Fork/LatestBlockHeader")
	}
	{
		i := hh.Index()
		hh.PutBytes(s.Fork.PreviousVersion[:])
		hh.PutBytes(s.Fork.CurrentVersion[:])
		hh.PutUint64(uint64(s.Fork.Epoch))
		hh.Merkleize(i)
	}
	if err := s.LatestBlockHeader.HashTreeRootWith(hh); err != nil {
		return err
	}
	putRootVector(hh, s.BlockRoots)
	putRootVector(hh, s.StateRoots)
	{
		subIndx := hh.Index()
		for _, r := range s.HistoricalRoots {
			hh.PutBytes(r[:])
		}
		hh.MerkleizeWithMixin(subIndx, uint64(len(s.HistoricalRoots)), 1<<24)
	}
	if s.Eth1Data == nil {
		return errNilField("Eth1Data")
	}
	{
		i := hh.Index()
		hh.PutBytes(s.Eth1Data.DepositRoot[:])
		hh.PutUint64(s.Eth1Data.DepositCount)
		hh.PutBytes(s.Eth1Data.BlockHash[:])
		hh.Merkleize(i)
	}
	hh.PutUint64(s.Eth1DepositIndex)
	{
		subIndx := hh.Index()
		for _, v := range s.Validators {
			if err := v.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, uint64(len(s.Validators)), 1<<40)
	}
	{
		subIndx := hh.Index()
		for _, b := range s.Balances {
			hh.PutUint64(b)
		}
		hh.MerkleizeWithMixin(subIndx, uint64(len(s.Balances)), 1<<40)
	}
	putRootVector(hh, s.RandaoMixes)
	{
		subIndx := hh.Index()
		for _, sl := range s.Slashings {
			hh.PutUint64(sl)
		}
		hh.Merkleize(subIndx)
	}
	hh.PutBytes(s.JustificationBits[:])
	for _, c := range []*Checkpoint{s.PreviousJustifiedCheckpoint, s.CurrentJustifiedCheckpoint, s.FinalizedCheckpoint} {
		if c == nil {
			return errNilField("Checkpoint")
		}
		i := hh.Index()
		hh.PutUint64(uint64(c.Epoch))
		hh.PutBytes(c.Root[:])
		hh.Merkleize(i)
	}
	hh.Merkleize(indx)
	return nil
}

func putRootVector(hh *ssz.Hasher, roots [][32]byte) {
	subIndx := hh.Index()
	for _, r := range roots {
		hh.PutBytes(r[:])
	}
	hh.Merkleize(subIndx)
}
