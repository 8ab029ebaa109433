package safe

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/host/hosttest"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/owners"
	"github.com/iov-one/quorum/x/proxy"
	"github.com/iov-one/quorum/x/txhash"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	f := newFixture(t)
	addrs := quorumtest.Addresses(f.keys)

	cases := map[string]struct {
		params     SetupParams
		wantReason string
	}{
		"valid": {
			params: SetupParams{Owners: addrs, Threshold: big.NewInt(2)},
		},
		"with fallback handler": {
			params: SetupParams{Owners: addrs, Threshold: big.NewInt(1), FallbackHandler: f.recorder},
		},
		"duplicated owner": {
			params:     SetupParams{Owners: []common.Address{addrs[0], addrs[1], addrs[0]}, Threshold: big.NewInt(1)},
			wantReason: "GS204",
		},
		"repeated owner": {
			params:     SetupParams{Owners: []common.Address{addrs[0], addrs[0]}, Threshold: big.NewInt(1)},
			wantReason: "GS203",
		},
		"sentinel owner": {
			params:     SetupParams{Owners: []common.Address{quorum.Sentinel}, Threshold: big.NewInt(1)},
			wantReason: "GS203",
		},
		"threshold above owners": {
			params:     SetupParams{Owners: addrs, Threshold: big.NewInt(4)},
			wantReason: "GS201",
		},
		"zero threshold": {
			params:     SetupParams{Owners: addrs, Threshold: big.NewInt(0)},
			wantReason: "GS202",
		},
		"failing initialization call": {
			params:     SetupParams{Owners: addrs, Threshold: big.NewInt(1), To: f.reverter},
			wantReason: "GS000",
		},
		"unpaid setup": {
			params:     SetupParams{Owners: addrs, Threshold: big.NewInt(1), Payment: big.NewInt(10)},
			wantReason: "GS011",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f.salt++
			rcpt := f.Submit(t, f.Deployer, f.factory, proxy.CreateInput(f.singleton, tc.params.Input(), big.NewInt(f.salt)), nil)
			assert.Reason(t, tc.wantReason, rcpt.Err)
			if tc.wantReason != "" {
				assert.IsErr(t, errors.ErrDeployment, rcpt.Err)
				return
			}
			out, err := proxy.FactoryDefinition().Unpack("createProxyWithNonce", rcpt.ReturnData)
			require.NoError(t, err)
			account := out[0].(common.Address)

			owned := f.query(t, account, "getOwners")
			assert.Equal(t, tc.params.Owners, owned[0].([]common.Address))
			threshold := f.query(t, account, "getThreshold")
			assert.Equal(t, tc.params.Threshold.Uint64(), threshold[0].(*big.Int).Uint64())
			assert.Equal(t, tc.params.FallbackHandler, quorum.WordAddress(f.Storage(t, account, FallbackHandlerSlot)))
			assert.Equal(t, f.singleton, quorum.WordAddress(f.Storage(t, account, SingletonSlot)))

			var setup []interface{}
			for _, l := range rcpt.Logs {
				if l.Address == account && l.Topics[0] == accountABI.Events["SafeSetup"].ID {
					setup, err = accountABI.Events["SafeSetup"].Inputs.NonIndexed().Unpack(l.Data)
					require.NoError(t, err)
					assert.Equal(t, quorum.AddressWord(f.factory), l.Topics[1])
				}
			}
			require.NotNil(t, setup)
			assert.Equal(t, tc.params.Owners, setup[0].([]common.Address))
		})
	}
}

func TestSetupOnlyOnce(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 1)
	input := SetupParams{Owners: []common.Address{f.Deployer}, Threshold: big.NewInt(1)}.Input()

	rcpt := f.Submit(t, f.Deployer, account, input, nil)
	assert.Reason(t, "GS200", rcpt.Err)
	assert.IsErr(t, errors.ErrState, rcpt.Err)

	// The singleton is locked when it is deployed.
	rcpt = f.Submit(t, f.Deployer, f.singleton, input, nil)
	assert.Reason(t, "GS200", rcpt.Err)
}

func TestSetupPayment(t *testing.T) {
	f := newFixture(t)
	setup := SetupParams{
		Owners:          quorumtest.Addresses(f.keys),
		Threshold:       big.NewInt(1),
		Payment:         big.NewInt(1000),
		PaymentReceiver: quorumtest.NewAddress(),
	}
	nonce := big.NewInt(77)
	account := proxy.CalculateAddress(f.factory, f.singleton, setup.Input(), nonce)
	// Funds can be sent before the account exists.
	f.Fund(t, account, big.NewInt(5000))

	rcpt := f.Submit(t, f.Deployer, f.factory, proxy.CreateInput(f.singleton, setup.Input(), nonce), nil)
	require.NoError(t, rcpt.Err)
	assert.Equal(t, int64(1000), f.Balance(t, setup.PaymentReceiver).Int64())
	assert.Equal(t, int64(4000), f.Balance(t, account).Int64())
}

func TestAddressDeterminism(t *testing.T) {
	f := newFixture(t)
	setup := SetupParams{Owners: quorumtest.Addresses(f.keys), Threshold: big.NewInt(2)}
	nonce := big.NewInt(1)
	want := proxy.CalculateAddress(f.factory, f.singleton, setup.Input(), nonce)

	other := SetupParams{Owners: quorumtest.Addresses(f.keys), Threshold: big.NewInt(3)}
	assert.Equal(t, false, want == proxy.CalculateAddress(f.factory, f.singleton, other.Input(), nonce))

	rcpt := f.Submit(t, f.Deployer, f.factory, proxy.CreateInput(f.singleton, setup.Input(), nonce), nil)
	require.NoError(t, rcpt.Err)
	out, err := proxy.FactoryDefinition().Unpack("createProxyWithNonce", rcpt.ReturnData)
	require.NoError(t, err)
	assert.Equal(t, want, out[0].(common.Address))

	// The address is taken.
	rcpt = f.Submit(t, f.Deployer, f.factory, proxy.CreateInput(f.singleton, setup.Input(), nonce), nil)
	assert.IsErr(t, errors.ErrAddressOccupied, rcpt.Err)
}

func TestAdministrationRequiresSelf(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)

	calls := map[string][]byte{
		"addOwnerWithThreshold": pack(t, "addOwnerWithThreshold", quorumtest.NewAddress(), big.NewInt(1)),
		"changeThreshold":       pack(t, "changeThreshold", big.NewInt(1)),
		"enableModule":          pack(t, "enableModule", quorumtest.NewAddress()),
		"setGuard":              pack(t, "setGuard", common.Address{}),
		"setFallbackHandler":    pack(t, "setFallbackHandler", f.recorder),
		"changeMasterCopy":      pack(t, "changeMasterCopy", f.singleton),
	}
	for name, input := range calls {
		t.Run(name, func(t *testing.T) {
			// Even an owner cannot call it directly.
			rcpt := f.Submit(t, f.keys[0].Address, account, input, nil)
			assert.Reason(t, "GS031", rcpt.Err)
			assert.IsErr(t, errors.ErrUnauthorized, rcpt.Err)
		})
	}
}

func TestOwnerManagement(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	added := quorumtest.NewKey()

	f.execSelf(t, account, pack(t, "addOwnerWithThreshold", added.Address, big.NewInt(3)))
	out := f.query(t, account, "getOwners")
	assert.Equal(t, 4, len(out[0].([]common.Address)))
	assert.Equal(t, added.Address, out[0].([]common.Address)[0])

	// Three signatures are now required.
	rcpt := f.exec(t, account, txhash.Tx{To: f.recorder})
	assert.Reason(t, "GS020", rcpt.Err)

	// A failing administrative call fails the execution, not the message.
	tx := txhash.Tx{To: account, Data: pack(t, "addOwnerWithThreshold", f.keys[0].Address, big.NewInt(3))}
	bundle := f.sign(t, f.digest(t, account, tx), f.keys[0], f.keys[1], f.keys[2])
	rcpt = f.Submit(t, f.Deployer, account, execInput(tx, bundle), nil)
	require.NoError(t, rcpt.Err)
	assert.Equal(t, false, success(t, rcpt))
}

func TestExecFromModule(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	module := quorumtest.NewAddress()
	f.execSelf(t, account, pack(t, "enableModule", module))
	nonce := f.nonce(t, account).Int64()

	rcpt := f.Submit(t, module, account, pack(t, "execTransactionFromModuleReturnData", f.recorder, big.NewInt(0), []byte("module"), uint8(0)), nil)
	require.NoError(t, rcpt.Err)
	out, err := accountABI.Unpack("execTransactionFromModuleReturnData", rcpt.ReturnData)
	require.NoError(t, err)
	assert.Equal(t, true, out[0].(bool))
	assert.Equal(t, []byte("module"), out[1].([]byte))
	assert.Equal(t, int64(1), counter(t, f, f.recorder))
	// Module executions do not consume a nonce.
	assert.Equal(t, nonce, f.nonce(t, account).Int64())

	var found bool
	for _, l := range rcpt.Logs {
		if l.Topics[0] == accountABI.Events["ExecutionFromModuleSuccess"].ID {
			found = true
			assert.Equal(t, quorum.AddressWord(module), l.Topics[1])
		}
	}
	assert.Equal(t, true, found)

	rcpt = f.Submit(t, module, account, pack(t, "execTransactionFromModuleReturnData", f.reverter, big.NewInt(0), []byte{}, uint8(0)), nil)
	require.NoError(t, rcpt.Err)
	out, err = accountABI.Unpack("execTransactionFromModuleReturnData", rcpt.ReturnData)
	require.NoError(t, err)
	assert.Equal(t, false, out[0].(bool))
	reason, err := host.RevertReason(out[1].([]byte))
	require.NoError(t, err)
	assert.Equal(t, true, len(reason) > 0)

	rcpt = f.Submit(t, module, account, pack(t, "execTransactionFromModule", f.recorder, big.NewInt(0), []byte{}, uint8(2)), nil)
	assert.IsErr(t, errors.ErrInput, rcpt.Err)

	for name, sender := range map[string]common.Address{
		"stranger": quorumtest.NewAddress(),
		"owner":    f.keys[0].Address,
		"sentinel": quorum.Sentinel,
	} {
		t.Run(name, func(t *testing.T) {
			rcpt := f.Submit(t, sender, account, pack(t, "execTransactionFromModule", f.recorder, big.NewInt(0), []byte{}, uint8(0)), nil)
			assert.Reason(t, "GS104", rcpt.Err)
			assert.IsErr(t, errors.ErrUnauthorized, rcpt.Err)
		})
	}
}

func TestGuard(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	g := f.Deploy(t, delegateGuardArtifact, nil, 30)

	rcpt := f.execSelf(t, account, pack(t, "setGuard", g))
	assert.Equal(t, g, quorum.WordAddress(f.Storage(t, account, guard.GuardSlot)))
	require.NotNil(t, rcpt)

	// Calls pass the guard.
	rcpt = f.exec(t, account, txhash.Tx{To: f.recorder})
	require.NoError(t, rcpt.Err)
	assert.Equal(t, true, success(t, rcpt))

	// Delegate calls are vetoed, which fails the whole message.
	nonce := f.nonce(t, account)
	rcpt = f.exec(t, account, txhash.Tx{To: f.multisend, Operation: quorum.DelegateCall})
	assert.IsErr(t, errors.ErrGuardVeto, rcpt.Err)
	assert.Equal(t, nonce.Int64(), f.nonce(t, account).Int64())

	// Setting a contract that is not a guard is refused.
	tx := txhash.Tx{To: account, Data: pack(t, "setGuard", f.reverter)}
	rcpt = f.exec(t, account, tx)
	require.NoError(t, rcpt.Err)
	assert.Equal(t, false, success(t, rcpt))
	assert.Equal(t, g, quorum.WordAddress(f.Storage(t, account, guard.GuardSlot)))

	f.execSelf(t, account, pack(t, "setGuard", common.Address{}))
	rcpt = f.exec(t, account, txhash.Tx{To: f.multisend, Operation: quorum.DelegateCall})
	require.NoError(t, rcpt.Err)
}

func TestAllowlistGuard(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	g := f.Deploy(t, guard.AllowlistArtifact, nil, 31)

	// Targets are allowed before the guard is installed.
	rcpt := f.exec(t, account, txhash.Tx{To: g, Data: guard.AllowTargetInput(f.recorder)})
	require.NoError(t, rcpt.Err)
	assert.Equal(t, true, success(t, rcpt))
	f.execSelf(t, account, pack(t, "setGuard", g))

	rcpt = f.exec(t, account, txhash.Tx{To: f.recorder})
	require.NoError(t, rcpt.Err)
	assert.Equal(t, true, success(t, rcpt))

	rcpt = f.exec(t, account, txhash.Tx{To: f.reverter})
	assert.IsErr(t, errors.ErrGuardVeto, rcpt.Err)

	// The account can still manage itself.
	f.execSelf(t, account, pack(t, "changeThreshold", big.NewInt(1)))

	// Modules are checked too.
	module := quorumtest.NewAddress()
	f.execSelf(t, account, pack(t, "enableModule", module))
	rcpt = f.Submit(t, module, account, pack(t, "execTransactionFromModule", f.reverter, big.NewInt(0), []byte{}, uint8(0)), nil)
	assert.IsErr(t, errors.ErrGuardVeto, rcpt.Err)
}

func TestFallbackHandler(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	sender := quorumtest.NewAddress()

	// Without a handler unknown calls do nothing.
	rcpt := f.Submit(t, sender, account, []byte("hello"), nil)
	require.NoError(t, rcpt.Err)
	assert.Equal(t, int64(0), counter(t, f, f.recorder))

	rcpt = f.execSelf(t, account, pack(t, "setFallbackHandler", f.recorder))
	values := event(t, rcpt, "ChangedFallbackHandler")
	require.NotNil(t, values)
	assert.Equal(t, f.recorder, values[0].(common.Address))

	rcpt = f.Submit(t, sender, account, []byte("hello"), nil)
	require.NoError(t, rcpt.Err)
	assert.Equal(t, []byte("hello"), rcpt.ReturnData[:5])
	want := crypto.Keccak256Hash([]byte("hello"), sender.Bytes())
	assert.Equal(t, want, f.Storage(t, f.recorder, quorumtest.RecordedSlot))

	// The account cannot handle its own fallback.
	rcpt = f.exec(t, account, txhash.Tx{To: account, Data: pack(t, "setFallbackHandler", account)})
	require.NoError(t, rcpt.Err)
	assert.Equal(t, false, success(t, rcpt))
}

func TestReceive(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	sender := quorumtest.NewAddress()
	f.Fund(t, sender, big.NewInt(500))

	rcpt := f.Submit(t, sender, account, nil, big.NewInt(300))
	require.NoError(t, rcpt.Err)
	assert.Equal(t, int64(300), f.Balance(t, account).Int64())
	require.Len(t, rcpt.Logs, 1)
	assert.Equal(t, accountABI.Events["SafeReceived"].ID, rcpt.Logs[0].Topics[0])
	assert.Equal(t, quorum.AddressWord(sender), rcpt.Logs[0].Topics[1])
	values := event(t, rcpt, "SafeReceived")
	assert.Equal(t, int64(300), values[0].(*big.Int).Int64())

	// Owners can send it on.
	dest := quorumtest.NewAddress()
	rcpt = f.exec(t, account, txhash.Tx{To: dest, Value: big.NewInt(100)})
	require.NoError(t, rcpt.Err)
	assert.Equal(t, true, success(t, rcpt))
	assert.Equal(t, int64(100), f.Balance(t, dest).Int64())
	assert.Equal(t, int64(200), f.Balance(t, account).Int64())
}

func TestChangeMasterCopy(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	next := f.Deploy(t, Artifact, nil, 40)

	rcpt := f.exec(t, account, txhash.Tx{To: account, Data: pack(t, "changeMasterCopy", quorumtest.NewAddress())})
	require.NoError(t, rcpt.Err)
	assert.Equal(t, false, success(t, rcpt))

	rcpt = f.execSelf(t, account, pack(t, "changeMasterCopy", next))
	values := event(t, rcpt, "ChangedMasterCopy")
	require.NotNil(t, values)
	assert.Equal(t, next, values[0].(common.Address))
	assert.Equal(t, quorum.AddressWord(next), f.Storage(t, account, SingletonSlot))

	out, err := f.Query(t, account, quorum.MustParseABI(proxy.ProxyABI).Methods["masterCopy"].ID)
	require.NoError(t, err)
	assert.Equal(t, next, common.BytesToAddress(out))

	// The account keeps working with the new implementation.
	rcpt = f.exec(t, account, txhash.Tx{To: f.recorder})
	require.NoError(t, rcpt.Err)
	assert.Equal(t, true, success(t, rcpt))
}

func TestViews(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)

	out := f.query(t, account, "VERSION")
	assert.Equal(t, quorum.Version, out[0].(string))

	out = f.query(t, account, "getChainId")
	assert.Equal(t, 0, hosttest.ChainID.Cmp(out[0].(*big.Int)))

	out = f.query(t, account, "domainSeparator")
	assert.Equal(t, [32]byte(txhash.DomainSeparator(hosttest.ChainID, account)), out[0].([32]byte))

	tx := txhash.Tx{To: f.recorder, Value: big.NewInt(1), Data: []byte("x"), GasPrice: big.NewInt(3)}
	want := f.digest(t, account, tx)
	out = f.query(t, account, "getTransactionHash",
		tx.To, tx.Value, tx.Data, uint8(0), big.NewInt(0), big.NewInt(0), tx.GasPrice, common.Address{}, common.Address{}, big.NewInt(0))
	assert.Equal(t, [32]byte(want), out[0].([32]byte))

	out = f.query(t, account, "encodeTransactionData",
		tx.To, tx.Value, tx.Data, uint8(0), big.NewInt(0), big.NewInt(0), tx.GasPrice, common.Address{}, common.Address{}, big.NewInt(0))
	assert.Equal(t, want, crypto.Keccak256Hash(out[0].([]byte)))

	out = f.query(t, account, "nonce")
	assert.Equal(t, int64(0), out[0].(*big.Int).Int64())

	out = f.query(t, account, "getStorageAt", owners.ThresholdSlot.Big(), big.NewInt(1))
	assert.Equal(t, quorum.Uint64Word(2).Bytes(), out[0].([]byte))

	out = f.query(t, account, "getStorageAt", big.NewInt(0), big.NewInt(0))
	assert.Equal(t, []byte{}, out[0].([]byte))

	_, err := f.Query(t, account, pack(t, "getStorageAt", big.NewInt(0), big.NewInt(maxStorageRead+1)))
	assert.IsErr(t, errors.ErrInput, err)
}

func TestCheckSignaturesView(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)
	digest := crypto.Keccak256Hash([]byte("message"))
	bundle := f.sign(t, digest, f.keys[0], f.keys[1])

	_, err := f.Query(t, account, pack(t, "checkSignatures", digest, []byte{}, bundle))
	assert.Nil(t, err)

	_, err = f.Query(t, account, pack(t, "checkNSignatures", digest, []byte{}, bundle, big.NewInt(3)))
	assert.Reason(t, "GS020", err)

	_, err = f.Query(t, account, pack(t, "checkNSignatures", digest, []byte{}, bundle[:65], big.NewInt(1)))
	assert.Nil(t, err)
}

func TestDomainSeparatorFollowsChainID(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, 2)

	ctx := quorum.WithChainID(context.Background(), big.NewInt(99))
	out, err := f.Chain.Query(ctx, f.Deployer, account, pack(t, "domainSeparator"))
	require.NoError(t, err)
	assert.Equal(t, txhash.DomainSeparator(big.NewInt(99), account), common.BytesToHash(out))
}
