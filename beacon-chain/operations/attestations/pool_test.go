package attestations

import (
	"testing"

	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/bls"
	bitfield "github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"
)

func sampleData() *beacontypes.AttestationData {
	return &beacontypes.AttestationData{
		Slot:            5,
		CommitteeIndex:  0,
		BeaconBlockRoot: beacontypes.Root{1},
		Source:          &beacontypes.Checkpoint{Epoch: 0, Root: beacontypes.Root{2}},
		Target:          &beacontypes.Checkpoint{Epoch: 1, Root: beacontypes.Root{3}},
	}
}

func signedAttestation(t *testing.T, data *beacontypes.AttestationData, committeeSize uint64, bit uint64, signer *bls.SecretKey) *beacontypes.Attestation {
	t.Helper()
	bits := bitfield.NewBitlist(committeeSize)
	bits.SetBitAt(bit, true)
	root, err := data.SigningRoot()
	require.NoError(t, err)
	sig := signer.Sign(root[:])
	var raw [96]byte
	copy(raw[:], sig.Marshal())
	return &beacontypes.Attestation{AggregationBits: bits, Data: data, Signature: raw}
}

func TestPool_InsertAttestationMergesBitsAndAggregatesSignature(t *testing.T) {
	p := NewPool()
	data := sampleData()
	keyA := bls.SecretKeyFromSeed([]byte("voter-a"))
	keyB := bls.SecretKeyFromSeed([]byte("voter-b"))

	attA := signedAttestation(t, data, 2, 0, keyA)
	require.NoError(t, p.InsertAttestation(attA))
	attB := signedAttestation(t, data, 2, 1, keyB)
	require.NoError(t, p.InsertAttestation(attB))

	require.Equal(t, 1, p.Count())

	root, err := data.SigningRoot()
	require.NoError(t, err)
	aggPub, err := bls.AggregatePublicKeys([]*bls.PublicKey{keyA.PublicKey(), keyB.PublicKey()})
	require.NoError(t, err)

	internal := p.(*pool)
	stored := internal.byKey[keyFor(data)]
	require.True(t, stored.AggregationBits.BitAt(0))
	require.True(t, stored.AggregationBits.BitAt(1))

	sig, err := bls.SignatureFromBytes(stored.Signature[:])
	require.NoError(t, err)
	require.True(t, sig.Verify(aggPub, root[:]))
}

func TestPool_InsertAttestationRejectsBitlistLengthMismatch(t *testing.T) {
	p := NewPool()
	data := sampleData()
	key := bls.SecretKeyFromSeed([]byte("voter-a"))

	require.NoError(t, p.InsertAttestation(signedAttestation(t, data, 2, 0, key)))
	err := p.InsertAttestation(signedAttestation(t, data, 3, 0, key))
	require.Error(t, err)
}

func TestPool_PrunesFinalizedAttestations(t *testing.T) {
	p := NewPool()
	data := sampleData()
	key := bls.SecretKeyFromSeed([]byte("voter-a"))
	require.NoError(t, p.InsertAttestation(signedAttestation(t, data, 2, 0, key)))
	require.Equal(t, 1, p.Count())

	p.Prune(data.Target.Epoch)
	require.Equal(t, 0, p.Count())
}

func TestPool_InsertAttestationRejectsNil(t *testing.T) {
	p := NewPool()
	require.Error(t, p.InsertAttestation(nil))
	require.Error(t, p.InsertAttestation(&beacontypes.Attestation{}))
}
