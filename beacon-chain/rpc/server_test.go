package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/ethprotolabs/beaconchain/beacon-chain/blockchain"
	dbtest "github.com/ethprotolabs/beaconchain/beacon-chain/db/testing"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/attestations"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/slashings"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/voluntaryexits"
	beaconslotutil "github.com/ethprotolabs/beaconchain/beacon-chain/slotutil"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/interop"
	"github.com/stretchr/testify/require"
)

func newTestChain(t *testing.T) (*blockchain.Service, *beaconslotutil.MockClock) {
	deposits, err := interop.GenesisDeposits(4)
	require.NoError(t, err)
	clock := beaconslotutil.NewMockClock(time.Unix(0, 0))
	cfg := &blockchain.Config{
		Database:        dbtest.NewStore(),
		AttestationPool: attestations.NewPool(),
		SlashingPool:    slashings.NewPool(),
		ExitPool:        voluntaryexits.NewPool(),
		Clock:           clock,
		GenesisDeposits: deposits,
		GenesisEth1Data: &beacontypes.Eth1Data{},
		GenesisTime:     0,
	}
	chain, err := blockchain.NewService(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, chain.Start())
	return chain, clock
}

func TestServer_ProduceAttestationData(t *testing.T) {
	chain, clock := newTestChain(t)
	clock.SetSlot(1)
	s := NewServer(chain, "127.0.0.1:0")

	data, err := s.ProduceAttestationData(1, 0)
	require.NoError(t, err)
	require.Equal(t, beacontypes.Slot(1), data.Slot)
	require.Equal(t, chain.HeadRoot(), data.BeaconBlockRoot)
}

func TestServer_GRPCServerRegistersHealthService(t *testing.T) {
	chain, _ := newTestChain(t)
	s := NewServer(chain, "127.0.0.1:0")
	require.NotNil(t, s.GRPCServer())
	_, ok := s.GRPCServer().GetServiceInfo()["grpc.health.v1.Health"]
	require.True(t, ok)
}
