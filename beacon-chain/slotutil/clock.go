// Package slotutil exposes the genesis-relative slot clock the coordinator
// and its query-side fetchers depend on, wrapping shared/slotutil's tickers
// the way the teacher's beacon-chain/utils package wraps them for the chain
// service.
package slotutil

import (
	"time"

	types "github.com/prysmaticlabs/eth2-types"

	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	"github.com/ethprotolabs/beaconchain/shared/slotutil"
)

// Clock answers genesis-relative slot/epoch questions and hands out tickers
// for components that need to act once per slot or epoch.
type Clock interface {
	GenesisTime() time.Time
	CurrentSlot() types.Slot
	NewSlotTicker() *slotutil.SlotTicker
	NewEpochTicker() *slotutil.EpochTicker
}

// RealClock is the wall-clock-backed Clock implementation used outside of
// tests.
type RealClock struct {
	genesisTime time.Time
}

// NewClock constructs a RealClock anchored at genesisTime.
func NewClock(genesisTime time.Time) *RealClock {
	return &RealClock{genesisTime: genesisTime}
}

// GenesisTime returns the clock's genesis anchor.
func (c *RealClock) GenesisTime() time.Time {
	return c.genesisTime
}

// CurrentSlot returns the slot that contains the current wall-clock time,
// or 0 if genesis hasn't happened yet.
func (c *RealClock) CurrentSlot() types.Slot {
	now := time.Now()
	if now.Before(c.genesisTime) {
		return 0
	}
	elapsed := now.Sub(c.genesisTime)
	return types.Slot(uint64(elapsed.Seconds()) / params.BeaconConfig().SecondsPerSlot)
}

// NewSlotTicker hands out a ticker firing once per slot from now on.
func (c *RealClock) NewSlotTicker() *slotutil.SlotTicker {
	return slotutil.NewSlotTicker(c.genesisTime, params.BeaconConfig().SecondsPerSlot)
}

// NewEpochTicker hands out a ticker firing once per epoch from now on.
func (c *RealClock) NewEpochTicker() *slotutil.EpochTicker {
	return slotutil.NewEpochTicker(c.genesisTime, params.BeaconConfig().SecondsPerSlot*params.BeaconConfig().SlotsPerEpoch)
}
