/*
Package hosttest provides a chain fixture for testing contracts.
*/
package hosttest

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/require"
)

// ChainID of every fixture chain.
var ChainID = big.NewInt(5)

// GasLimit of every message a fixture submits.
const GasLimit = 8000000

// Fixture is an in-memory chain with a funded deployer.
type Fixture struct {
	Chain    *host.Chain
	Deployer common.Address
}

// New returns a fixture able to deploy given artifacts.
func New(t testing.TB, artifacts ...host.Artifact) *Fixture {
	t.Helper()
	return &Fixture{
		Chain:    host.NewChain(store.MemStore(), ChainID, host.NewRegistry(artifacts...)),
		Deployer: common.HexToAddress("0x00000000000000000000000000000000000000d0"),
	}
}

// Deploy creates an artifact from the deployer account and fails the
// test if the deployment fails.
func (f *Fixture) Deploy(t testing.TB, a host.Artifact, args []byte, salt uint64) common.Address {
	t.Helper()
	rcpt, err := f.Chain.Submit(context.Background(), host.Msg{
		From:     f.Deployer,
		Data:     a.DeploymentData(args),
		Salt:     common.BigToHash(new(big.Int).SetUint64(salt)),
		GasLimit: GasLimit,
	})
	require.NoError(t, err)
	require.NoError(t, rcpt.Err)
	return rcpt.ContractAddress
}

// Submit sends a message without gas fee and fails the test only if it
// cannot be processed. Execution errors are in the receipt.
func (f *Fixture) Submit(t testing.TB, from, to common.Address, input []byte, value *big.Int) *host.Receipt {
	t.Helper()
	rcpt, err := f.Chain.Submit(context.Background(), host.Msg{
		From:     from,
		To:       &to,
		Data:     input,
		Value:    value,
		GasLimit: GasLimit,
	})
	require.NoError(t, err)
	return rcpt
}

// Query runs a read only call.
func (f *Fixture) Query(t testing.TB, to common.Address, input []byte) ([]byte, error) {
	t.Helper()
	return f.Chain.Query(context.Background(), f.Deployer, to, input)
}

// Fund sets the balance of addr.
func (f *Fixture) Fund(t testing.TB, addr common.Address, amount *big.Int) {
	t.Helper()
	require.NoError(t, f.Chain.SetBalance(addr, amount))
}

// Balance returns the balance of addr.
func (f *Fixture) Balance(t testing.TB, addr common.Address) *big.Int {
	t.Helper()
	b, err := f.Chain.Balance(addr)
	require.NoError(t, err)
	return b
}

// Storage returns a storage slot of addr.
func (f *Fixture) Storage(t testing.TB, addr common.Address, slot common.Hash) common.Hash {
	t.Helper()
	v, err := f.Chain.Storage(addr, slot)
	require.NoError(t, err)
	return v
}
