package commands

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/multisend"
	"github.com/iov-one/quorum/x/proxy"
	"github.com/iov-one/quorum/x/safe"
	"github.com/iov-one/quorum/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// GasLimit is the gas limit of every message the CLI submits.
const GasLimit = 10000000

// DelegateCallGuardArtifact is a guard refusing every delegate call.
var DelegateCallGuardArtifact = host.NewArtifact("quorum.DelegateCallGuard", guard.NewDelegateCallGuard())

// Artifacts lists the code a local chain can run.
func Artifacts() []host.Artifact {
	return []host.Artifact{
		safe.Artifact,
		proxy.Artifact,
		proxy.FactoryArtifact,
		multisend.Artifact,
		multisend.CallOnlyArtifact,
		guard.AllowlistArtifact,
		DelegateCallGuardArtifact,
	}
}

// Node is a local chain opened from a home directory.
type Node struct {
	Config Config
	Chain  *host.Chain
	Logger log.Logger
	db     *store.LevelDB
}

// NewLogger returns a logger writing to w, filtered by level.
func NewLogger(w io.Writer, level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "log level: %s", err)
	}
	return log.NewFilter(logger, opt).With("module", "quorum"), nil
}

// OpenNode opens the chain configured in cfg. Close it when done.
func OpenNode(home string, cfg Config, logs io.Writer) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := NewLogger(logs, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	db, err := store.NewLevelDB(cfg.DatabasePath(home))
	if err != nil {
		return nil, err
	}
	chain := host.NewChain(db, big.NewInt(cfg.ChainID), host.NewRegistry(Artifacts()...),
		host.WithGasSchedule(cfg.Gas),
		host.WithLogger(logger),
		host.WithDecorators(
			utils.NewLogging(),
			utils.NewRecovery(),
			utils.NewActionTagger(),
		),
	)
	return &Node{Config: cfg, Chain: chain, Logger: logger, db: db}, nil
}

// Close releases the database.
func (n *Node) Close() error {
	return n.db.Close()
}

// Deployer is the account deploying the library contracts.
func (n *Node) Deployer() common.Address {
	return common.HexToAddress(n.Config.Contracts.Deployer)
}

// Deploy creates an artifact from the deployer with given salt.
func (n *Node) Deploy(ctx context.Context, a host.Artifact, salt uint64) (common.Address, error) {
	rcpt, err := n.Chain.Submit(ctx, host.Msg{
		From:     n.Deployer(),
		Data:     a.DeploymentData(nil),
		Salt:     common.BigToHash(new(big.Int).SetUint64(salt)),
		GasLimit: GasLimit,
	})
	if err != nil {
		return common.Address{}, err
	}
	if rcpt.Err != nil {
		return common.Address{}, errors.Wrapf(rcpt.Err, "deploy %s", a.Name)
	}
	n.Logger.Info("contract deployed", "name", a.Name, "address", rcpt.ContractAddress.Hex())
	return rcpt.ContractAddress, nil
}

// Submit sends a message without gas fee from an account.
func (n *Node) Submit(ctx context.Context, from, to common.Address, input []byte, value *big.Int) (*host.Receipt, error) {
	return n.Chain.Submit(ctx, host.Msg{
		From:     from,
		To:       &to,
		Data:     input,
		Value:    value,
		GasLimit: GasLimit,
	})
}

// Query runs a read only call from the deployer.
func (n *Node) Query(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	return n.Chain.Query(ctx, n.Deployer(), to, input)
}

// Contract returns a configured contract address, failing when init did
// not deploy it.
func (n *Node) Contract(name, hex string) (common.Address, error) {
	if !common.IsHexAddress(hex) {
		return common.Address{}, errors.Wrapf(errors.ErrNotFound, "%s address not configured", name)
	}
	return common.HexToAddress(hex), nil
}
