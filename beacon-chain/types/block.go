package types

import (
	ssz "github.com/ferranbt/fastssz"
	bitfield "github.com/prysmaticlabs/go-bitfield"
)

// BeaconBlock is the unsigned block proposed by a validator for a slot.
type BeaconBlock struct {
	Slot          Slot
	ProposerIndex ValidatorIndex
	ParentRoot    Root
	StateRoot     Root
	Body          *BeaconBlockBody
}

// SignedBeaconBlock pairs a block with its proposer signature.
type SignedBeaconBlock struct {
	Block     *BeaconBlock
	Signature [96]byte
}

// BeaconBlockBody carries the operations a proposer bundles into a slot.
type BeaconBlockBody struct {
	RandaoReveal      [96]byte
	Eth1Data          *Eth1Data
	Graffiti          [32]byte
	ProposerSlashings []*ProposerSlashing
	AttesterSlashings []*AttesterSlashing
	Attestations      []*Attestation
	Deposits          []*Deposit
	VoluntaryExits    []*SignedVoluntaryExit
}

// Eth1Data is the eth1 chain view a proposer attests to in its block.
type Eth1Data struct {
	DepositRoot  Root
	DepositCount uint64
	BlockHash    Root
}

const (
	maxProposerSlashings = 16
	maxAttesterSlashings = 1
	maxAttestations      = 128
	maxDeposits          = 16
	maxVoluntaryExits    = 16
)

// HashTreeRoot computes the block's Merkle root.
func (b *BeaconBlock) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz-hashes the block into the running hasher.
func (b *BeaconBlock) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(b.Slot))
	hh.PutUint64(uint64(b.ProposerIndex))
	hh.PutBytes(b.ParentRoot[:])
	hh.PutBytes(b.StateRoot[:])
	if b.Body == nil {
		return errNilField("Body")
	}
	if err := b.Body.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

// SigningRoot computes the root a proposer signs over: the block's tree
// root, without the signature. No signing domain is mixed in.
func (b *BeaconBlock) SigningRoot() ([32]byte, error) {
	return b.HashTreeRoot()
}

// HashTreeRoot computes the signed block's Merkle root over the block and its
// signature, so it differs from the inner BeaconBlock's HashTreeRoot.
func (s *SignedBeaconBlock) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

// HashTreeRootWith ssz-hashes the signed block into the running hasher.
func (s *SignedBeaconBlock) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if s.Block == nil {
		return errNilField("Block")
	}
	if err := s.Block.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.PutBytes(s.Signature[:])
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the body's Merkle root.
func (b *BeaconBlockBody) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz-hashes the body into the running hasher.
func (b *BeaconBlockBody) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(b.RandaoReveal[:])
	if b.Eth1Data == nil {
		return errNilField("Eth1Data")
	}
	{
		i := hh.Index()
		hh.PutBytes(b.Eth1Data.DepositRoot[:])
		hh.PutUint64(b.Eth1Data.DepositCount)
		hh.PutBytes(b.Eth1Data.BlockHash[:])
		hh.Merkleize(i)
	}
	hh.PutBytes(b.Graffiti[:])

	{
		subIndx := hh.Index()
		num := uint64(len(b.ProposerSlashings))
		for _, s := range b.ProposerSlashings {
			if err := s.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, maxProposerSlashings)
	}
	{
		subIndx := hh.Index()
		num := uint64(len(b.AttesterSlashings))
		for _, s := range b.AttesterSlashings {
			if err := s.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, maxAttesterSlashings)
	}
	{
		subIndx := hh.Index()
		num := uint64(len(b.Attestations))
		for _, a := range b.Attestations {
			if err := a.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, maxAttestations)
	}
	{
		subIndx := hh.Index()
		num := uint64(len(b.Deposits))
		for _, d := range b.Deposits {
			if err := d.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, maxDeposits)
	}
	{
		subIndx := hh.Index()
		num := uint64(len(b.VoluntaryExits))
		for _, e := range b.VoluntaryExits {
			if err := e.HashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, maxVoluntaryExits)
	}
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the header's Merkle root.
func (h *BeaconBlockHeader) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(h)
}

// HashTreeRootWith ssz-hashes the header into the running hasher.
func (h *BeaconBlockHeader) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(h.Slot))
	hh.PutUint64(uint64(h.ProposerIndex))
	hh.PutBytes(h.ParentRoot[:])
	hh.PutBytes(h.StateRoot[:])
	hh.PutBytes(h.BodyRoot[:])
	hh.Merkleize(indx)
	return nil
}

// BeaconBlockHeaderFromBlock derives the slimmed header latest_block_header
// caches in state, with StateRoot zeroed per invariant 2 (filled in once the
// post-state is known).
func BeaconBlockHeaderFromBlock(b *BeaconBlock) (*BeaconBlockHeader, error) {
	if b.Body == nil {
		return nil, errNilField("Body")
	}
	bodyRoot, err := b.Body.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	return &BeaconBlockHeader{
		Slot:          b.Slot,
		ProposerIndex: b.ProposerIndex,
		ParentRoot:    b.ParentRoot,
		StateRoot:     Root{},
		BodyRoot:      bodyRoot,
	}, nil
}

// AggregationBitsFrom returns the aggregation bitlist sized to a committee.
func AggregationBitsFrom(committeeSize uint64) bitfield.Bitlist {
	return bitfield.NewBitlist(committeeSize)
}
