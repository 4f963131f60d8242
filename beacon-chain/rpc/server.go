// Package rpc binds the coordinator's block/attestation production and
// ingestion methods onto a gRPC transport. No compiled protobuf service is
// registered (protoc isn't run in this build), so the exposed surface is
// the health/reflection services gRPC ships with the transport itself is
// still real; see DESIGN.md for why message framing stops there.
package rpc

import (
	"context"

	"github.com/ethprotolabs/beaconchain/beacon-chain/blockchain"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var log = logrus.WithField("prefix", "rpc")

// Server wraps the beacon chain coordinator with the methods a validator
// client or block/attestation relay calls.
type Server struct {
	chain *blockchain.Service

	grpcServer *grpc.Server
	healthSrv  *health.Server
	listenAddr string
}

// NewServer constructs an RPC server bound to chain, listening at addr once
// Start is called.
func NewServer(chain *blockchain.Service, addr string) *Server {
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)
	return &Server{chain: chain, grpcServer: grpcServer, healthSrv: healthSrv, listenAddr: addr}
}

// ProduceBlock assembles an unsigned block for slot/proposerIndex atop the
// coordinator's current head.
func (s *Server) ProduceBlock(ctx context.Context, slot beacontypes.Slot, proposerIndex beacontypes.ValidatorIndex, randaoReveal [96]byte, graffiti [32]byte) (*beacontypes.BeaconBlock, error) {
	return s.chain.ProduceBlock(ctx, slot, proposerIndex, randaoReveal, graffiti)
}

// PublishBlock submits a signed block for import. A non-Processed,
// non-BlockIsAlreadyKnown outcome is surfaced as an error to the caller.
func (s *Server) PublishBlock(ctx context.Context, signed *beacontypes.SignedBeaconBlock) error {
	outcome, err := s.chain.ReceiveBlock(ctx, signed)
	if outcome == blockchain.Processed || outcome == blockchain.BlockIsAlreadyKnown {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.Errorf("block rejected: %s", outcome)
}

// ProduceAttestationData builds the attestation data an attester should
// sign for slot/committeeIndex.
func (s *Server) ProduceAttestationData(slot beacontypes.Slot, committeeIndex beacontypes.CommitteeIndex) (*beacontypes.AttestationData, error) {
	return s.chain.ProduceAttestationData(slot, committeeIndex)
}

// PublishAttestation submits a signed attestation for import.
func (s *Server) PublishAttestation(ctx context.Context, att *beacontypes.Attestation) error {
	return s.chain.ReceiveAttestation(ctx, att)
}

// GRPCServer returns the underlying *grpc.Server for use by a net.Listener
// caller, e.g. in tests that want an in-process bufconn.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}
