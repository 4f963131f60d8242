package types

import (
	ssz "github.com/ferranbt/fastssz"
)

// ProposerSlashing proves a validator signed two distinct blocks at the same
// slot.
type ProposerSlashing struct {
	Header1 *SignedBeaconBlockHeader
	Header2 *SignedBeaconBlockHeader
}

// AttesterSlashing proves a validator cast two attestations that violate the
// slashing conditions (double vote or surround vote).
type AttesterSlashing struct {
	Attestation1 *IndexedAttestation
	Attestation2 *IndexedAttestation
}

// VoluntaryExit lets a validator signal its own exit once eligible.
type VoluntaryExit struct {
	Epoch          Epoch
	ValidatorIndex ValidatorIndex
}

// SignedVoluntaryExit pairs an exit with the validator's signature.
type SignedVoluntaryExit struct {
	Exit      *VoluntaryExit
	Signature [96]byte
}

// HashTreeRoot computes the proposer slashing's Merkle root.
func (s *ProposerSlashing) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

// HashTreeRootWith ssz-hashes the proposer slashing into the running hasher.
func (s *ProposerSlashing) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if s.Header1 == nil || s.Header2 == nil {
		return errNilField("Header1/Header2")
	}
	for _, h := range []*SignedBeaconBlockHeader{s.Header1, s.Header2} {
		i := hh.Index()
		if err := h.Header.HashTreeRootWith(hh); err != nil {
			return err
		}
		hh.PutBytes(h.Signature[:])
		hh.Merkleize(i)
	}
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the attester slashing's Merkle root.
func (s *AttesterSlashing) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

// HashTreeRootWith ssz-hashes the attester slashing into the running hasher.
func (s *AttesterSlashing) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if s.Attestation1 == nil || s.Attestation2 == nil {
		return errNilField("Attestation1/Attestation2")
	}
	if err := s.Attestation1.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := s.Attestation2.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

// IntersectingIndices returns the validator indices present in both
// attestations, the set slashable if the pair violates a slashing condition.
func (s *AttesterSlashing) IntersectingIndices() []ValidatorIndex {
	seen := make(map[ValidatorIndex]bool, len(s.Attestation1.AttestingIndices))
	for _, idx := range s.Attestation1.AttestingIndices {
		seen[idx] = true
	}
	var out []ValidatorIndex
	for _, idx := range s.Attestation2.AttestingIndices {
		if seen[idx] {
			out = append(out, idx)
		}
	}
	return out
}

// HashTreeRoot computes the voluntary exit's Merkle root.
func (e *VoluntaryExit) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(e)
}

// HashTreeRootWith ssz-hashes the voluntary exit into the running hasher.
func (e *VoluntaryExit) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(e.Epoch))
	hh.PutUint64(uint64(e.ValidatorIndex))
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the signed voluntary exit's Merkle root.
func (e *SignedVoluntaryExit) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(e)
}

// HashTreeRootWith ssz-hashes the signed voluntary exit into the running hasher.
func (e *SignedVoluntaryExit) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if e.Exit == nil {
		return errNilField("Exit")
	}
	if err := e.Exit.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.PutBytes(e.Signature[:])
	hh.Merkleize(indx)
	return nil
}
