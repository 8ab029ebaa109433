package safe

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/host/hosttest"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/multisend"
	"github.com/iov-one/quorum/x/proxy"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/token"
	"github.com/iov-one/quorum/x/txhash"
	"github.com/stretchr/testify/require"
)

var (
	recorderArtifact      = host.NewArtifact("test.Recorder", quorumtest.Recorder)
	reverterArtifact      = host.NewArtifact("test.Reverter", quorumtest.Reverter)
	tokenArtifact         = host.NewArtifact("test.Token", token.New("Fee Token", "FEE", 18))
	delegateGuardArtifact = host.NewArtifact("test.DelegateCallGuard", guard.NewDelegateCallGuard())
)

type fixture struct {
	*hosttest.Fixture
	keys      []quorumtest.Key
	singleton common.Address
	factory   common.Address
	multisend common.Address
	recorder  common.Address
	reverter  common.Address
	salt      int64
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	h := hosttest.New(t,
		Artifact,
		proxy.Artifact,
		proxy.FactoryArtifact,
		multisend.Artifact,
		recorderArtifact,
		reverterArtifact,
		tokenArtifact,
		delegateGuardArtifact,
		guard.AllowlistArtifact,
	)
	return &fixture{
		Fixture:   h,
		keys:      quorumtest.SortedKeys(3),
		singleton: h.Deploy(t, Artifact, nil, 1),
		factory:   h.Deploy(t, proxy.FactoryArtifact, nil, 2),
		multisend: h.Deploy(t, multisend.Artifact, nil, 3),
		recorder:  h.Deploy(t, recorderArtifact, nil, 4),
		reverter:  h.Deploy(t, reverterArtifact, nil, 5),
	}
}

// newAccount deploys an account owned by all fixture keys that requires
// threshold signatures.
func (f *fixture) newAccount(t testing.TB, threshold int64) common.Address {
	t.Helper()
	f.salt++
	setup := SetupParams{
		Owners:    quorumtest.Addresses(f.keys),
		Threshold: big.NewInt(threshold),
	}
	rcpt := f.Submit(t, f.Deployer, f.factory, proxy.CreateInput(f.singleton, setup.Input(), big.NewInt(f.salt)), nil)
	require.NoError(t, rcpt.Err)
	out, err := proxy.FactoryDefinition().Unpack("createProxyWithNonce", rcpt.ReturnData)
	require.NoError(t, err)
	return out[0].(common.Address)
}

func (f *fixture) nonce(t testing.TB, account common.Address) *big.Int {
	t.Helper()
	return f.Storage(t, account, NonceSlot).Big()
}

// digest returns what owners sign to authorize tx at the current nonce.
func (f *fixture) digest(t testing.TB, account common.Address, tx txhash.Tx) common.Hash {
	t.Helper()
	tx.Nonce = f.nonce(t, account)
	digest, err := txhash.Digest(tx, txhash.DomainSeparator(hosttest.ChainID, account))
	require.NoError(t, err)
	return digest
}

// sign returns a bundle of plain signatures of given keys.
func (f *fixture) sign(t testing.TB, digest common.Hash, keys ...quorumtest.Key) []byte {
	t.Helper()
	var b sigs.Bundle
	for _, k := range keys {
		sig, err := sigs.SignDigest(k.Private, digest)
		require.NoError(t, err)
		b = append(b, sig)
	}
	return b.Encode()
}

// signInOrder lays out plain signatures in the given order, without the
// sorting a Bundle applies.
func (f *fixture) signInOrder(t testing.TB, digest common.Hash, keys ...quorumtest.Key) []byte {
	t.Helper()
	var b []byte
	for _, k := range keys {
		sig, err := sigs.SignDigest(k.Private, digest)
		require.NoError(t, err)
		b = append(b, sig.R.Bytes()...)
		b = append(b, sig.S.Bytes()...)
		b = append(b, sig.V)
	}
	return b
}

func execInput(tx txhash.Tx, signatures []byte) []byte {
	input, err := accountABI.Pack("execTransaction",
		tx.To,
		orZero(tx.Value),
		nonNil(tx.Data),
		uint8(tx.Operation),
		orZero(tx.SafeTxGas),
		orZero(tx.BaseGas),
		orZero(tx.GasPrice),
		tx.GasToken,
		tx.RefundReceiver,
		nonNil(signatures),
	)
	if err != nil {
		panic(err)
	}
	return input
}

// exec submits tx signed by the first two fixture keys.
func (f *fixture) exec(t testing.TB, account common.Address, tx txhash.Tx) *host.Receipt {
	t.Helper()
	bundle := f.sign(t, f.digest(t, account, tx), f.keys[0], f.keys[1])
	return f.Submit(t, f.Deployer, account, execInput(tx, bundle), nil)
}

// execSelf runs an administrative call of the account on itself and
// requires it to succeed.
func (f *fixture) execSelf(t testing.TB, account common.Address, input []byte) *host.Receipt {
	t.Helper()
	rcpt := f.exec(t, account, txhash.Tx{To: account, Data: input})
	require.NoError(t, rcpt.Err)
	require.True(t, success(t, rcpt))
	return rcpt
}

func success(t testing.TB, rcpt *host.Receipt) bool {
	t.Helper()
	out, err := accountABI.Unpack("execTransaction", rcpt.ReturnData)
	require.NoError(t, err)
	return out[0].(bool)
}

func pack(t testing.TB, method string, args ...interface{}) []byte {
	t.Helper()
	input, err := accountABI.Pack(method, args...)
	require.NoError(t, err)
	return input
}

func (f *fixture) query(t testing.TB, account common.Address, method string, args ...interface{}) []interface{} {
	t.Helper()
	out, err := f.Query(t, account, pack(t, method, args...))
	require.NoError(t, err)
	values, err := accountABI.Unpack(method, out)
	require.NoError(t, err)
	return values
}

// event returns the non indexed values of the first log of the named
// account event, or nil if there is none.
func event(t testing.TB, rcpt *host.Receipt, name string) []interface{} {
	t.Helper()
	id := accountABI.Events[name].ID
	for _, l := range rcpt.Logs {
		if len(l.Topics) > 0 && l.Topics[0] == id {
			values, err := x.DecodeEvent(accountABI, name, l.Topics, l.Data)
			require.NoError(t, err)
			return values
		}
	}
	return nil
}

// submitPaid submits a message with a gas price of one from a funded
// submitter.
func (f *fixture) submitPaid(t testing.TB, from, to common.Address, input []byte) *host.Receipt {
	t.Helper()
	rcpt, err := f.Chain.Submit(context.Background(), host.Msg{
		From:     from,
		To:       &to,
		Data:     input,
		GasLimit: hosttest.GasLimit,
		GasPrice: big.NewInt(1),
	})
	require.NoError(t, err)
	return rcpt
}

func counter(t testing.TB, f *fixture, addr common.Address) int64 {
	t.Helper()
	return f.Storage(t, addr, quorumtest.CounterSlot).Big().Int64()
}

