// Package helpers implements the small pure functions state transition and
// fork choice build on: slot/epoch arithmetic, committee computation and
// validator-set queries against a BeaconState.
package helpers

import (
	"time"

	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	types "github.com/prysmaticlabs/eth2-types"
)

// SlotToTime returns the wall-clock time a given slot begins, measured from
// genesis.
//
// Spec pseudocode definition:
//
//	def compute_slot_start_time(genesis_time, slot) -> uint64:
//	    return genesis_time + slot * SECONDS_PER_SLOT
func SlotToTime(genesisTime uint64, slot types.Slot) (time.Time, error) {
	if slot > types.Slot(1<<63/params.BeaconConfig().SecondsPerSlot) {
		return time.Time{}, errors.New("slot is too large to convert to a time")
	}
	offset := uint64(slot) * params.BeaconConfig().SecondsPerSlot
	return time.Unix(int64(genesisTime+offset), 0), nil
}

// SlotToEpoch converts a slot to its containing epoch.
func SlotToEpoch(slot types.Slot) types.Epoch {
	return params.SlotToEpoch(slot)
}

// StartSlot returns the first slot of an epoch.
func StartSlot(epoch types.Epoch) types.Slot {
	return params.EpochStartSlot(epoch)
}

// IsEpochStart returns true if the given slot is the first slot of an epoch.
func IsEpochStart(slot types.Slot) bool {
	return slot%params.BeaconConfig().SlotsPerEpoch == 0
}

// IsEpochEnd returns true if the given slot is the last slot of an epoch.
func IsEpochEnd(slot types.Slot) bool {
	return IsEpochStart(slot + 1)
}

// PrevEpoch returns the epoch before the given epoch, or the genesis epoch
// if called on or before genesis.
func PrevEpoch(epoch types.Epoch) types.Epoch {
	if epoch == 0 {
		return 0
	}
	return epoch - 1
}

// CurrentEpoch returns the epoch of the state's current slot.
func CurrentEpoch(st *beacontypes.BeaconState) types.Epoch {
	return SlotToEpoch(st.Slot)
}

// PreviousEpoch returns the epoch prior to the state's current epoch.
func PreviousEpoch(st *beacontypes.BeaconState) types.Epoch {
	return PrevEpoch(CurrentEpoch(st))
}
