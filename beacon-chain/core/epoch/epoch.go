package epoch

import (
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
)

// ProcessEpoch runs the full once-per-epoch transition in protocol order:
// justification/finalization, rewards and penalties, registry updates,
// slashings, and the final per-epoch resets.
func ProcessEpoch(st *beacontypes.BeaconState) (*beacontypes.BeaconState, error) {
	var err error
	if st, err = ProcessJustificationAndFinalization(st); err != nil {
		return nil, errors.Wrap(err, "could not process justification and finalization")
	}
	if st, err = ProcessRewardsAndPenalties(st); err != nil {
		return nil, errors.Wrap(err, "could not process rewards and penalties")
	}
	if st, err = ProcessRegistryUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process registry updates")
	}
	if st, err = ProcessSlashingsPenalties(st); err != nil {
		return nil, errors.Wrap(err, "could not process slashings")
	}
	if st, err = ProcessFinalUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process final updates")
	}
	return st, nil
}
