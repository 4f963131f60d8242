package bls

import (
	"encoding/binary"

	"github.com/ethprotolabs/beaconchain/shared/hashutil"
	"github.com/pkg/errors"
	types "github.com/prysmaticlabs/eth2-types"
)

// SignatureSet collects independent (pubkey, message, signature) triples so
// they can be verified together by Verify, which checks each triple on its
// own rather than with a single pairing check. It follows the batching idiom
// original_source's signature_sets.rs uses per message kind.
type SignatureSet struct {
	PublicKeys []*PublicKey
	Messages   [][]byte
	Signatures []*Signature
}

// NewSet returns an empty signature set ready to be joined with per-message
// sets built while walking a block body.
func NewSet() *SignatureSet {
	return &SignatureSet{}
}

// Join appends another set's entries onto this one, mirroring
// SignatureSet.Join from the teacher's batch-verification idiom.
func (s *SignatureSet) Join(other *SignatureSet) *SignatureSet {
	s.PublicKeys = append(s.PublicKeys, other.PublicKeys...)
	s.Messages = append(s.Messages, other.Messages...)
	s.Signatures = append(s.Signatures, other.Signatures...)
	return s
}

// Verify checks every (pubkey, message, signature) triple in the set
// individually. A production batch verifier would use a single randomized
// pairing check; per-triple verification here keeps the same external
// contract without depending on pairing internals this exercise doesn't
// need to re-derive.
func (s *SignatureSet) Verify() (bool, error) {
	if len(s.PublicKeys) != len(s.Messages) || len(s.Messages) != len(s.Signatures) {
		return false, errors.New("signature set fields have mismatched lengths")
	}
	if len(s.PublicKeys) == 0 {
		return false, ErrEmptyAggregatePubkeys
	}
	for i := range s.PublicKeys {
		if !s.Signatures[i].Verify(s.PublicKeys[i], s.Messages[i]) {
			return false, nil
		}
	}
	return true, nil
}

// VerifyRandaoReveal checks a proposer's randao reveal signature over the
// epoch, used directly (outside of a batched set) by process_randao.
func VerifyRandaoReveal(pubkeyBytes []byte, epoch types.Epoch, sigBytes []byte) (bool, error) {
	pub, err := PublicKeyFromBytes(pubkeyBytes)
	if err != nil {
		return false, err
	}
	sig, err := SignatureFromBytes(sigBytes)
	if err != nil {
		return false, err
	}
	msg := epochSigningRoot(uint64(epoch))
	return sig.Verify(pub, msg[:]), nil
}

func epochSigningRoot(epoch uint64) [32]byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint64(buf, epoch)
	return hashutil.Hash(buf)
}
