// Package bls wraps BLS12-381 signature verification for the beacon chain
// core: single-message verification (randao reveals, voluntary exits),
// aggregation, and signature sets verified triple by triple. The only
// backend is herumi's; there is no blst-backed implementation.
package bls

import (
	"sync"

	"github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
)

var initOnce sync.Once

func ensureInit() {
	initOnce.Do(func() {
		if err := bls.Init(bls.BLS12_381); err != nil {
			panic(errors.Wrap(err, "could not initialize bls backend"))
		}
		if err := bls.SetETHmode(bls.EthModeDraft07); err != nil {
			panic(errors.Wrap(err, "could not set bls eth2 mode"))
		}
	})
}

// PublicKey wraps a deserialized BLS public key.
type PublicKey struct {
	p bls.PublicKey
}

// PublicKeyFromBytes deserializes a compressed public key.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	ensureInit()
	var p bls.PublicKey
	if err := p.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize public key")
	}
	return &PublicKey{p: p}, nil
}

// Marshal returns the compressed serialization of the public key.
func (k *PublicKey) Marshal() []byte {
	return k.p.Serialize()
}

// SecretKey wraps a BLS secret key, used by interop/test fixtures that need
// to produce real signatures without a validator client attached.
type SecretKey struct {
	s bls.SecretKey
}

// RandKey generates a new secret key from the system CSPRNG.
func RandKey() *SecretKey {
	ensureInit()
	var s bls.SecretKey
	s.SetByCSPRNG()
	return &SecretKey{s: s}
}

// SecretKeyFromSeed derives a secret key deterministically from seed,
// letting interop/test fixtures reproduce the same validator set across
// runs without a CSPRNG.
func SecretKeyFromSeed(seed []byte) *SecretKey {
	ensureInit()
	var s bls.SecretKey
	s.SetHashOf(seed)
	return &SecretKey{s: s}
}

// PublicKey derives the public key for this secret key.
func (k *SecretKey) PublicKey() *PublicKey {
	return &PublicKey{p: *k.s.GetPublicKey()}
}

// Sign signs msg, returning the resulting signature.
func (k *SecretKey) Sign(msg []byte) *Signature {
	return &Signature{s: *k.s.SignByte(msg)}
}

// Marshal returns the secret key's raw bytes.
func (k *SecretKey) Marshal() []byte {
	return k.s.Serialize()
}

// Signature wraps a deserialized BLS signature.
type Signature struct {
	s bls.Sign
}

// Marshal returns the compressed serialization of the signature.
func (s *Signature) Marshal() []byte {
	return s.s.Serialize()
}

// SignatureFromBytes deserializes a compressed signature.
func SignatureFromBytes(b []byte) (*Signature, error) {
	ensureInit()
	var s bls.Sign
	if err := s.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize signature")
	}
	return &Signature{s: s}, nil
}

// Verify checks a single signature against a single public key and message.
func (s *Signature) Verify(pub *PublicKey, msg []byte) bool {
	return s.s.Verify(&pub.p, string(msg))
}

// AggregatePublicKeys sums the given public keys into a single aggregate.
// An empty key set is rejected rather than silently returning an identity
// element, since an empty aggregate would make every signature "valid".
func AggregatePublicKeys(pubs []*PublicKey) (*PublicKey, error) {
	if len(pubs) == 0 {
		return nil, ErrEmptyAggregatePubkeys
	}
	agg := pubs[0].p
	for _, p := range pubs[1:] {
		agg.Add(&p.p)
	}
	return &PublicKey{p: agg}, nil
}

// ErrEmptyAggregatePubkeys is returned when an aggregate signature set is
// constructed from zero public keys; such a set is rejected rather than
// treated as vacuously valid.
var ErrEmptyAggregatePubkeys = errors.New("cannot aggregate zero public keys")

// AggregateSignatures sums a set of signatures into a single aggregate
// signature, used before verifying a SignatureSet's combined proof.
func AggregateSignatures(sigs []*Signature) *Signature {
	if len(sigs) == 0 {
		return &Signature{}
	}
	agg := sigs[0].s
	for _, s := range sigs[1:] {
		agg.Add(&s.s)
	}
	return &Signature{s: agg}
}
