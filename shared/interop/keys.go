// Package interop generates deterministic validator keys and genesis
// deposits for local chain starts, matching the teacher's shared/interop
// role (its own generate_keys.go wasn't in the retrieval pack, only its
// cross-check test) without reproducing the upstream test vectors, since
// this rebuild's key derivation isn't required to be spec-bit-exact.
package interop

import (
	"encoding/binary"

	"github.com/ethprotolabs/beaconchain/shared/bls"
	"github.com/ethprotolabs/beaconchain/shared/hashutil"
)

// DeterministicallyGenerateKeys derives numKeys (secret, public) key pairs
// starting at startIndex, reproducible across runs for the same range.
func DeterministicallyGenerateKeys(startIndex, numKeys uint64) ([]*bls.SecretKey, []*bls.PublicKey, error) {
	secrets := make([]*bls.SecretKey, numKeys)
	publics := make([]*bls.PublicKey, numKeys)
	for i := uint64(0); i < numKeys; i++ {
		seed := seedFor(startIndex + i)
		sk := bls.SecretKeyFromSeed(seed[:])
		secrets[i] = sk
		publics[i] = sk.PublicKey()
	}
	return secrets, publics, nil
}

func seedFor(index uint64) [32]byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, index)
	return hashutil.Hash(buf)
}
