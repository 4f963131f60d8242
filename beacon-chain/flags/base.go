// Package flags defines the beacon chain node's CLI surface.
package flags

import "github.com/urfave/cli/v2"

var (
	// DataDirFlag defines the directory the node's bbolt database lives in.
	DataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Directory for the beacon chain database",
		Value: "./beacon-chain-data",
	}
	// GenesisTimeFlag overrides the genesis time used when no persisted
	// genesis block is found, for deterministic local chain starts.
	GenesisTimeFlag = &cli.Uint64Flag{
		Name:  "genesis-time",
		Usage: "Unix genesis time to use when bootstrapping a new chain",
	}
	// MinimalConfigFlag switches the active protocol config to the
	// small-preset parameters.
	MinimalConfigFlag = &cli.BoolFlag{
		Name:  "minimal-config",
		Usage: "Use a minimal-preset protocol configuration",
	}
	// RPCHost is the interface the gRPC server binds to.
	RPCHost = &cli.StringFlag{
		Name:  "rpc-host",
		Usage: "Host on which the RPC server binds",
		Value: "127.0.0.1",
	}
	// RPCPort is the port the gRPC server binds to.
	RPCPort = &cli.IntFlag{
		Name:  "rpc-port",
		Usage: "Port on which the RPC server binds",
		Value: 4000,
	}
	// RESTPort is the port the JSON/REST gateway binds to.
	RESTPort = &cli.IntFlag{
		Name:  "rest-port",
		Usage: "Port on which the REST gateway binds",
		Value: 4001,
	}
	// ClearDB wipes the database at startup before bootstrapping.
	ClearDB = &cli.BoolFlag{
		Name:  "clear-db",
		Usage: "Clears the beacon chain database before starting",
	}
	// VerbosityFlag sets the logrus log level.
	VerbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (trace, debug, info, warn, error)",
		Value: "info",
	}
	// InteropNumValidatorsFlag seeds genesis with this many deterministically
	// keyed validators when no persisted chain exists yet.
	InteropNumValidatorsFlag = &cli.Uint64Flag{
		Name:  "interop-num-validators",
		Usage: "Number of deterministically generated validators to include in a fresh genesis state",
		Value: 8,
	}
)

// All is every flag the beacon-chain command registers.
var All = []cli.Flag{
	DataDirFlag,
	GenesisTimeFlag,
	MinimalConfigFlag,
	RPCHost,
	RPCPort,
	RESTPort,
	ClearDB,
	VerbosityFlag,
	InteropNumValidatorsFlag,
}
