package slotutil

import (
	"testing"
	"time"

	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	"github.com/stretchr/testify/require"
)

func TestRealClock_CurrentSlotBeforeGenesisIsZero(t *testing.T) {
	c := NewClock(time.Now().Add(time.Hour))
	require.Equal(t, uint64(0), uint64(c.CurrentSlot()))
}

func TestRealClock_CurrentSlotAdvancesWithElapsedTime(t *testing.T) {
	secondsPerSlot := params.BeaconConfig().SecondsPerSlot
	genesis := time.Now().Add(-time.Duration(3*secondsPerSlot) * time.Second)
	c := NewClock(genesis)
	require.Equal(t, uint64(3), uint64(c.CurrentSlot()))
}

func TestMockClock_SetSlot(t *testing.T) {
	c := NewMockClock(time.Now())
	require.Equal(t, uint64(0), uint64(c.CurrentSlot()))
	c.SetSlot(7)
	require.Equal(t, uint64(7), uint64(c.CurrentSlot()))
}
