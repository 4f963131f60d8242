package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func newTestChain(t *testing.T) *blockchain.Service {
	deposits, err := interop.GenesisDeposits(4)
	require.NoError(t, err)
	cfg := &blockchain.Config{
		Database:        dbtest.NewStore(),
		AttestationPool: attestations.NewPool(),
		SlashingPool:    slashings.NewPool(),
		ExitPool:        voluntaryexits.NewPool(),
		Clock:           beaconslotutil.NewMockClock(time.Unix(0, 0)),
		GenesisDeposits: deposits,
		GenesisEth1Data: &beacontypes.Eth1Data{},
		GenesisTime:     1600000000,
	}
	chain, err := blockchain.NewService(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, chain.Start())
	return chain
}

func TestServer_GenesisTime(t *testing.T) {
	s := NewServer(newTestChain(t))
	req := httptest.NewRequest(http.MethodGet, "/node/genesis_time", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]uint64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, uint64(1600000000), body["genesis_time"])
}

func TestServer_StateRoot(t *testing.T) {
	s := NewServer(newTestChain(t))
	req := httptest.NewRequest(http.MethodGet, "/beacon/state_root", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["state_root"], 64)
}

func TestServer_UnknownRouteIsNotFound(t *testing.T) {
	s := NewServer(newTestChain(t))
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_WrongMethodIsNotAllowed(t *testing.T) {
	s := NewServer(newTestChain(t))
	req := httptest.NewRequest(http.MethodDelete, "/node/genesis_time", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_ProduceAttestation(t *testing.T) {
	s := NewServer(newTestChain(t))
	req := httptest.NewRequest(http.MethodGet, "/validator/attestation?slot=0", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var data beacontypes.AttestationData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
}
