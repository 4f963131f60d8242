package slotutil

import (
	"time"

	types "github.com/prysmaticlabs/eth2-types"

	"github.com/ethprotolabs/beaconchain/shared/slotutil"
)

// MockClock is a manually-advanced Clock for deterministic tests.
type MockClock struct {
	genesisTime time.Time
	slot        types.Slot
}

// NewMockClock constructs a MockClock starting at slot 0.
func NewMockClock(genesisTime time.Time) *MockClock {
	return &MockClock{genesisTime: genesisTime}
}

// GenesisTime returns the mock clock's genesis anchor.
func (c *MockClock) GenesisTime() time.Time {
	return c.genesisTime
}

// CurrentSlot returns the manually-set current slot.
func (c *MockClock) CurrentSlot() types.Slot {
	return c.slot
}

// SetSlot overrides the current slot, letting a test drive the coordinator
// forward without waiting on a wall clock.
func (c *MockClock) SetSlot(slot types.Slot) {
	c.slot = slot
}

// NewSlotTicker is unused by tests that drive slots manually via SetSlot;
// it returns a ticker that never fires.
func (c *MockClock) NewSlotTicker() *slotutil.SlotTicker {
	return slotutil.NewSlotTicker(time.Now().Add(24*365*time.Hour), 12)
}

// NewEpochTicker is unused by tests that drive slots manually via SetSlot;
// it returns a ticker that never fires.
func (c *MockClock) NewEpochTicker() *slotutil.EpochTicker {
	return slotutil.NewEpochTicker(time.Now().Add(24*365*time.Hour), 384)
}

var _ Clock = (*MockClock)(nil)
var _ Clock = (*RealClock)(nil)
