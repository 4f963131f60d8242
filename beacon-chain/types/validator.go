package types

import (
	ssz "github.com/ferranbt/fastssz"
)

// Validator is a registry entry: identity, balance thresholds and the
// lifecycle epochs that gate activation, exit and slashing withdrawal.
type Validator struct {
	PublicKey                  [48]byte
	WithdrawalCredentials      Root
	EffectiveBalance           uint64
	Slashed                    bool
	ActivationEligibilityEpoch Epoch
	ActivationEpoch            Epoch
	ExitEpoch                  Epoch
	WithdrawableEpoch          Epoch
}

// DepositData is the data a depositor submits to the eth1 deposit contract.
type DepositData struct {
	PublicKey             [48]byte
	WithdrawalCredentials Root
	Amount                uint64
	Signature             [96]byte
}

// Deposit bundles deposit data with its eth1 deposit-tree Merkle proof.
type Deposit struct {
	Proof [][32]byte
	Data  *DepositData
}

// IsActive reports whether the validator is active at the given epoch.
func (v *Validator) IsActive(epoch Epoch) bool {
	return v.ActivationEpoch <= epoch && epoch < v.ExitEpoch
}

// IsSlashable reports whether the validator can currently be slashed.
func (v *Validator) IsSlashable(epoch Epoch) bool {
	return !v.Slashed && v.ActivationEpoch <= epoch && epoch < v.WithdrawableEpoch
}

// HashTreeRoot computes the validator's Merkle root.
func (v *Validator) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(v)
}

// HashTreeRootWith ssz-hashes the validator into the running hasher.
func (v *Validator) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(v.PublicKey[:])
	hh.PutBytes(v.WithdrawalCredentials[:])
	hh.PutUint64(v.EffectiveBalance)
	hh.PutBool(v.Slashed)
	hh.PutUint64(uint64(v.ActivationEligibilityEpoch))
	hh.PutUint64(uint64(v.ActivationEpoch))
	hh.PutUint64(uint64(v.ExitEpoch))
	hh.PutUint64(uint64(v.WithdrawableEpoch))
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the deposit data's Merkle root.
func (d *DepositData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(d)
}

// HashTreeRootWith ssz-hashes deposit data into the running hasher.
func (d *DepositData) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(d.PublicKey[:])
	hh.PutBytes(d.WithdrawalCredentials[:])
	hh.PutUint64(d.Amount)
	hh.PutBytes(d.Signature[:])
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the deposit's Merkle root.
func (d *Deposit) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(d)
}

// HashTreeRootWith ssz-hashes the deposit into the running hasher.
func (d *Deposit) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	{
		subIndx := hh.Index()
		for _, p := range d.Proof {
			hh.PutBytes(p[:])
		}
		hh.Merkleize(subIndx)
	}
	if d.Data == nil {
		return errNilField("Data")
	}
	if err := d.Data.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}
