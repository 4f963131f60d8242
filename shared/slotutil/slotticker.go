package slotutil

import (
	"time"

	types "github.com/prysmaticlabs/eth2-types"
)

// SlotTicker notifies its channel once every slot, mirroring EpochTicker's
// genesis-relative firing rule at slot granularity.
type SlotTicker struct {
	c    chan types.Slot
	done chan struct{}
}

// NewSlotTicker constructs a ticker firing every secondsPerSlot seconds
// relative to genesisTime.
func NewSlotTicker(genesisTime time.Time, secondsPerSlot uint64) *SlotTicker {
	t := &SlotTicker{
		c:    make(chan types.Slot),
		done: make(chan struct{}),
	}
	t.start(genesisTime, secondsPerSlot, time.Since, time.Until, time.After)
	return t
}

// C returns the channel new slot numbers are delivered on.
func (t *SlotTicker) C() <-chan types.Slot {
	return t.c
}

// Done stops the ticker's goroutine.
func (t *SlotTicker) Done() {
	close(t.done)
}

func (t *SlotTicker) start(
	genesisTime time.Time,
	secondsPerSlot uint64,
	since, until func(time.Time) time.Duration,
	after func(time.Duration) <-chan time.Time,
) {
	d := time.Duration(secondsPerSlot) * time.Second

	go func() {
		sinceGenesis := since(genesisTime)
		var nextTick time.Duration
		var slot uint64
		if sinceGenesis < 0 {
			nextTick = until(genesisTime)
			slot = 0
		} else {
			elapsed := uint64(sinceGenesis / d)
			nextTick = d - (sinceGenesis % d)
			slot = elapsed + 1
		}

		ticker := after(nextTick)
		for {
			select {
			case <-ticker:
				select {
				case t.c <- types.Slot(slot):
				case <-t.done:
					return
				}
				slot++
				ticker = after(d)
			case <-t.done:
				return
			}
		}
	}()
}
