package bls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecretKey_SignAndVerify(t *testing.T) {
	sk := RandKey()
	pub := sk.PublicKey()
	msg := []byte("attestation data root")

	sig := sk.Sign(msg)
	require.True(t, sig.Verify(pub, msg))
	require.False(t, sig.Verify(pub, []byte("different message")))
}

func TestSecretKeyFromSeed_Deterministic(t *testing.T) {
	seed := []byte("fixed validator seed")
	a := SecretKeyFromSeed(seed)
	b := SecretKeyFromSeed(seed)
	require.Equal(t, a.Marshal(), b.Marshal())
}

func TestAggregatePublicKeys_RejectsEmpty(t *testing.T) {
	_, err := AggregatePublicKeys(nil)
	require.ErrorIs(t, err, ErrEmptyAggregatePubkeys)
}

func TestAggregateSignatures_VerifiesAgainstAggregatePubkeys(t *testing.T) {
	sk1, sk2 := RandKey(), RandKey()
	msg := []byte("block root")

	agg, err := AggregatePublicKeys([]*PublicKey{sk1.PublicKey(), sk2.PublicKey()})
	require.NoError(t, err)

	sig := AggregateSignatures([]*Signature{sk1.Sign(msg), sk2.Sign(msg)})
	require.True(t, sig.Verify(agg, msg))
}
