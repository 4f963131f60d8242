// Package main starts a beacon chain node: it wires the coordinator to a
// bbolt-backed database, its operation pools, and the RPC/REST transports,
// following the teacher's beacon-chain/main.go entrypoint shape.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/ethprotolabs/beaconchain/beacon-chain/blockchain"
	"github.com/ethprotolabs/beaconchain/beacon-chain/db/kv"
	beaconflags "github.com/ethprotolabs/beaconchain/beacon-chain/flags"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/attestations"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/slashings"
	"github.com/ethprotolabs/beaconchain/beacon-chain/operations/voluntaryexits"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	"github.com/ethprotolabs/beaconchain/beacon-chain/rest"
	"github.com/ethprotolabs/beaconchain/beacon-chain/rpc"
	"github.com/ethprotolabs/beaconchain/beacon-chain/slotutil"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/interop"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "beacon-chain"
	app.Usage = "beacon chain node"
	app.Flags = beaconflags.All
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("beacon-chain exited with error")
	}
}

func run(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.String(beaconflags.VerbosityFlag.Name))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if c.Bool(beaconflags.MinimalConfigFlag.Name) {
		params.UseMinimalConfig()
	}

	dataDir := c.String(beaconflags.DataDirFlag.Name)
	if c.Bool(beaconflags.ClearDB.Name) {
		if err := os.RemoveAll(dataDir); err != nil {
			return err
		}
	}

	store, err := kv.NewKVStore(dataDir)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}

	genesisTime := c.Uint64(beaconflags.GenesisTimeFlag.Name)
	if genesisTime == 0 {
		genesisTime = uint64(time.Now().Unix())
	}

	numValidators := c.Uint64(beaconflags.InteropNumValidatorsFlag.Name)
	genesisDeposits, err := interop.GenesisDeposits(numValidators)
	if err != nil {
		return fmt.Errorf("could not generate genesis deposits: %w", err)
	}

	ctx := context.Background()
	cfg := &blockchain.Config{
		Database:        store,
		AttestationPool: attestations.NewPool(),
		SlashingPool:    slashings.NewPool(),
		ExitPool:        voluntaryexits.NewPool(),
		Clock:           slotutil.NewClock(time.Unix(int64(genesisTime), 0)),
		GenesisDeposits: genesisDeposits,
		GenesisEth1Data: &beacontypes.Eth1Data{},
		GenesisTime:     genesisTime,
	}
	chain, err := blockchain.NewService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := chain.Start(); err != nil {
		return fmt.Errorf("could not start beacon chain: %w", err)
	}
	defer func() {
		if err := chain.Stop(); err != nil {
			logrus.WithError(err).Error("Error stopping beacon chain")
		}
	}()

	rpcAddr := fmt.Sprintf("%s:%d", c.String(beaconflags.RPCHost.Name), c.Int(beaconflags.RPCPort.Name))
	rpcServer := rpc.NewServer(chain, rpcAddr)
	lis, err := net.Listen("tcp", rpcAddr)
	if err != nil {
		return fmt.Errorf("could not bind rpc listener: %w", err)
	}
	go func() {
		if err := rpcServer.GRPCServer().Serve(lis); err != nil {
			logrus.WithError(err).Error("RPC server stopped")
		}
	}()

	restAddr := fmt.Sprintf("%s:%d", c.String(beaconflags.RPCHost.Name), c.Int(beaconflags.RESTPort.Name))
	restServer := rest.NewServer(chain)
	go func() {
		if err := http.ListenAndServe(restAddr, restServer.Handler()); err != nil {
			logrus.WithError(err).Error("REST server stopped")
		}
	}()

	logrus.WithField("rpcAddr", rpcAddr).WithField("restAddr", restAddr).Info("Beacon chain node started")
	select {}
}
