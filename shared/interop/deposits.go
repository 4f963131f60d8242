package interop

import (
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/bls"
	"github.com/ethprotolabs/beaconchain/shared/hashutil"
)

// GenesisDeposits builds numValidators full-balance deposits signed by
// deterministically generated keys, for local chain starts that need a
// populated validator set without an eth1 deposit contract.
func GenesisDeposits(numValidators uint64) ([]*beacontypes.Deposit, error) {
	secrets, publics, err := DeterministicallyGenerateKeys(0, numValidators)
	if err != nil {
		return nil, err
	}
	deposits := make([]*beacontypes.Deposit, numValidators)
	for i := uint64(0); i < numValidators; i++ {
		deposits[i] = depositFromKey(secrets[i], publics[i])
	}
	return deposits, nil
}

func depositFromKey(secret *bls.SecretKey, public *bls.PublicKey) *beacontypes.Deposit {
	withdrawalCreds := withdrawalCredentials(public)
	data := &beacontypes.DepositData{
		Amount:                params.BeaconConfig().MaxEffectiveBalance,
		WithdrawalCredentials: withdrawalCreds,
	}
	copy(data.PublicKey[:], public.Marshal())
	root, err := data.HashTreeRoot()
	if err == nil {
		sig := secret.Sign(root[:])
		copy(data.Signature[:], sig.Marshal())
	}
	return &beacontypes.Deposit{Data: data}
}

func withdrawalCredentials(public *bls.PublicKey) beacontypes.Root {
	var creds beacontypes.Root
	hashed := hashutil.Hash(public.Marshal())
	copy(creds[:], hashed[:])
	creds[0] = params.BeaconConfig().BLSWithdrawalPrefixByte
	return creds
}
