package interop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeterministicallyGenerateKeys_Reproducible(t *testing.T) {
	secretsA, publicsA, err := DeterministicallyGenerateKeys(0, 4)
	require.NoError(t, err)
	secretsB, publicsB, err := DeterministicallyGenerateKeys(0, 4)
	require.NoError(t, err)

	require.Len(t, secretsA, 4)
	for i := range secretsA {
		require.Equal(t, secretsA[i].Marshal(), secretsB[i].Marshal())
		require.Equal(t, publicsA[i].Marshal(), publicsB[i].Marshal())
	}
}

func TestDeterministicallyGenerateKeys_DistinctAcrossIndex(t *testing.T) {
	secrets, _, err := DeterministicallyGenerateKeys(0, 2)
	require.NoError(t, err)
	require.NotEqual(t, secrets[0].Marshal(), secrets[1].Marshal())
}

func TestGenesisDeposits(t *testing.T) {
	deposits, err := GenesisDeposits(8)
	require.NoError(t, err)
	require.Len(t, deposits, 8)

	seen := make(map[[48]byte]bool)
	for _, d := range deposits {
		require.NotNil(t, d.Data)
		require.False(t, seen[d.Data.PublicKey], "expected unique public keys across generated deposits")
		seen[d.Data.PublicKey] = true
		require.NotZero(t, d.Data.Amount)
		require.NotEqual(t, [96]byte{}, d.Data.Signature)
	}
}
