// Package slotutil provides tickers that fire once per slot and once per
// epoch relative to a genesis time, used by the slot clock rather than
// letting every consumer compute its own timers.
package slotutil

import (
	"time"

	types "github.com/prysmaticlabs/eth2-types"
)

// EpochTicker notifies its channel once every epoch. If genesis is still
// ahead, the first tick comes at genesis and delivers epoch 0; otherwise it
// comes at the next epoch boundary and delivers that epoch. It never fires
// immediately on start.
type EpochTicker struct {
	c    chan types.Epoch
	done chan struct{}
}

// NewEpochTicker constructs a ticker firing every secondsPerEpoch seconds
// relative to genesisTime.
func NewEpochTicker(genesisTime time.Time, secondsPerEpoch uint64) *EpochTicker {
	t := &EpochTicker{
		c:    make(chan types.Epoch),
		done: make(chan struct{}),
	}
	t.start(genesisTime, secondsPerEpoch, time.Since, time.Until, time.After)
	return t
}

// C returns the channel new epoch numbers are delivered on.
func (t *EpochTicker) C() <-chan types.Epoch {
	return t.c
}

// Done stops the ticker's goroutine.
func (t *EpochTicker) Done() {
	close(t.done)
}

func (t *EpochTicker) start(
	genesisTime time.Time,
	secondsPerEpoch uint64,
	since, until func(time.Time) time.Duration,
	after func(time.Duration) <-chan time.Time,
) {
	d := time.Duration(secondsPerEpoch) * time.Second

	go func() {
		sinceGenesis := since(genesisTime)
		var nextTick time.Duration
		var epoch uint64
		if sinceGenesis < 0 {
			// Genesis hasn't happened yet; first tick delivers epoch 0.
			nextTick = until(genesisTime)
			epoch = 0
		} else {
			elapsedEpochs := uint64(sinceGenesis / d)
			nextTick = d - (sinceGenesis % d)
			epoch = elapsedEpochs + 1
		}

		ticker := after(nextTick)
		for {
			select {
			case <-ticker:
				select {
				case t.c <- types.Epoch(epoch):
				case <-t.done:
					return
				}
				epoch++
				ticker = after(d)
			case <-t.done:
				return
			}
		}
	}()
}
