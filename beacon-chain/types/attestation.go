package types

import (
	ssz "github.com/ferranbt/fastssz"
	bitfield "github.com/prysmaticlabs/go-bitfield"
)

const maxValidatorsPerCommittee = 2048

// AttestationData is the vote a validator casts: its LMD-GHOST head vote and
// its FFG source/target checkpoints.
type AttestationData struct {
	Slot            Slot
	CommitteeIndex  CommitteeIndex
	BeaconBlockRoot Root
	Source          *Checkpoint
	Target          *Checkpoint
}

// Attestation is an aggregated vote by a committee over a single
// AttestationData, with one aggregate BLS signature.
type Attestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	Signature       [96]byte
}

// IndexedAttestation is the validator-index form of an attestation used for
// slashing detection and signature verification.
type IndexedAttestation struct {
	AttestingIndices []ValidatorIndex
	Data             *AttestationData
	Signature        [96]byte
}

// HashTreeRoot computes the attestation data's Merkle root.
func (d *AttestationData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(d)
}

// HashTreeRootWith ssz-hashes attestation data into the running hasher.
func (d *AttestationData) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(d.Slot))
	hh.PutUint64(uint64(d.CommitteeIndex))
	hh.PutBytes(d.BeaconBlockRoot[:])
	if d.Source == nil || d.Target == nil {
		return errNilField("Source/Target")
	}
	{
		i := hh.Index()
		hh.PutUint64(uint64(d.Source.Epoch))
		hh.PutBytes(d.Source.Root[:])
		hh.Merkleize(i)
	}
	{
		i := hh.Index()
		hh.PutUint64(uint64(d.Target.Epoch))
		hh.PutBytes(d.Target.Root[:])
		hh.Merkleize(i)
	}
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the attestation's Merkle root.
func (a *Attestation) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(a)
}

// HashTreeRootWith ssz-hashes the attestation into the running hasher.
func (a *Attestation) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if err := hh.PutBitlist(a.AggregationBits, maxValidatorsPerCommittee); err != nil {
		return err
	}
	if a.Data == nil {
		return errNilField("Data")
	}
	if err := a.Data.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.PutBytes(a.Signature[:])
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the indexed attestation's Merkle root.
func (a *IndexedAttestation) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(a)
}

// HashTreeRootWith ssz-hashes the indexed attestation into the running hasher.
func (a *IndexedAttestation) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	{
		subIndx := hh.Index()
		for _, idx := range a.AttestingIndices {
			hh.PutUint64(uint64(idx))
		}
		hh.MerkleizeWithMixin(subIndx, uint64(len(a.AttestingIndices)), maxValidatorsPerCommittee)
	}
	if a.Data == nil {
		return errNilField("Data")
	}
	if err := a.Data.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.PutBytes(a.Signature[:])
	hh.Merkleize(indx)
	return nil
}

// SigningRoot returns the root a validator signs when casting this vote.
func (d *AttestationData) SigningRoot() ([32]byte, error) {
	return d.HashTreeRoot()
}
