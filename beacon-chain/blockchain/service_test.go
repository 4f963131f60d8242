package blockchain

import (
	"context"
	"testing"
	"time"

	dbtest "github.com/ethprotolabs/beaconchain/beacon-chain/db/testing"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/attestations"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/slashings"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/voluntaryexits"
	beaconslotutil "github.com/ethprotolabs/beaconchain/beacon-chain/slotutil"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/interop"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *Config {
	return testConfigWithClock(t, 4, beaconslotutil.NewMockClock(time.Unix(0, 0)))
}

// testConfigWithClock builds a Config around clock so scenario tests can
// drive the coordinator's notion of the present slot directly instead of
// waiting on a wall clock.
func testConfigWithClock(t *testing.T, numValidators uint64, clock beaconslotutil.Clock) *Config {
	d, err := interop.GenesisDeposits(numValidators)
	require.NoError(t, err)
	return &Config{
		Database:        dbtest.NewStore(),
		AttestationPool: attestations.NewPool(),
		SlashingPool:    slashings.NewPool(),
		ExitPool:        voluntaryexits.NewPool(),
		Clock:           clock,
		GenesisDeposits: d,
		GenesisEth1Data: &beacontypes.Eth1Data{},
		GenesisTime:     0,
	}
}

func TestService_StartFromGenesis(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	require.NotEqual(t, beacontypes.Root{}, s.HeadRoot())
	require.Equal(t, s.GenesisRoot(), s.HeadRoot())
	require.Len(t, s.HeadState().Validators, 4)
	require.NoError(t, s.Stop())
}

func TestService_ResumesFromPersistedHead(t *testing.T) {
	cfg := testConfig(t)
	first, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, first.Start())

	genesisRoot := first.GenesisRoot()
	headRoot := first.HeadRoot()

	second, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, second.Start())

	require.Equal(t, genesisRoot, second.GenesisRoot())
	require.Equal(t, headRoot, second.HeadRoot())
	require.Len(t, second.HeadState().Validators, 4)
}
