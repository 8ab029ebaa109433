package proxy

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/x"
)

// FactoryABI declares the proxy factory.
const FactoryABI = `[
	{"type":"function","name":"proxyCreationCode","stateMutability":"pure",
	 "inputs":[],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"createProxyWithNonce","stateMutability":"nonpayable",
	 "inputs":[{"name":"_singleton","type":"address"},{"name":"initializer","type":"bytes"},{"name":"saltNonce","type":"uint256"}],
	 "outputs":[{"name":"proxy","type":"address"}]},
	{"type":"function","name":"createProxyWithCallback","stateMutability":"nonpayable",
	 "inputs":[{"name":"_singleton","type":"address"},{"name":"initializer","type":"bytes"},{"name":"saltNonce","type":"uint256"},{"name":"callback","type":"address"}],
	 "outputs":[{"name":"proxy","type":"address"}]},
	{"type":"function","name":"calculateCreateProxyWithNonceAddress","stateMutability":"view",
	 "inputs":[{"name":"_singleton","type":"address"},{"name":"initializer","type":"bytes"},{"name":"saltNonce","type":"uint256"}],
	 "outputs":[{"name":"proxy","type":"address"}]},
	{"type":"event","name":"ProxyCreation","anonymous":false,
	 "inputs":[{"name":"proxy","type":"address","indexed":false},{"name":"singleton","type":"address","indexed":false}]}
]`

// CallbackABI declares the notification sent after a deployment with
// callback.
const CallbackABI = `[
	{"type":"function","name":"proxyCreated","stateMutability":"nonpayable",
	 "inputs":[{"name":"proxy","type":"address"},{"name":"_singleton","type":"address"},{"name":"initializer","type":"bytes"},{"name":"saltNonce","type":"uint256"}],
	 "outputs":[]}
]`

var (
	factoryABI  = quorum.MustParseABI(FactoryABI)
	callbackABI = quorum.MustParseABI(CallbackABI)
)

// FactoryDefinition returns the parsed factory ABI.
func FactoryDefinition() abi.ABI {
	return factoryABI
}

// CallbackDefinition returns the parsed callback ABI.
func CallbackDefinition() abi.ABI {
	return callbackABI
}

// Salt returns the deployment salt of a proxy. It binds the initializer,
// so that nobody can front-run a deployment with another setup.
func Salt(initializer []byte, saltNonce *big.Int) common.Hash {
	return crypto.Keccak256Hash(crypto.Keccak256(initializer), quorum.BigWord(saltNonce).Bytes())
}

// CallbackSaltNonce returns the salt nonce used by a deployment with a
// callback.
func CallbackSaltNonce(saltNonce *big.Int, callback common.Address) *big.Int {
	return crypto.Keccak256Hash(quorum.BigWord(saltNonce).Bytes(), callback.Bytes()).Big()
}

// CalculateAddress returns the address factory deploys a proxy of
// singleton at, for given initializer and salt nonce.
func CalculateAddress(factory, singleton common.Address, initializer []byte, saltNonce *big.Int) common.Address {
	return host.CreateAddress(factory, Salt(initializer, saltNonce), DeploymentData(singleton))
}

// Factory deploys proxies.
type Factory struct {
	*quorum.Router
}

// FactoryArtifact is the deployable factory code.
var FactoryArtifact = host.NewArtifact("quorum.ProxyFactory", NewFactory())

// NewFactory returns the factory contract.
func NewFactory() *Factory {
	f := &Factory{Router: quorum.NewRouter(factoryABI)}
	f.Handle("proxyCreationCode", handleCreationCode)
	f.Handle("createProxyWithNonce", handleCreateWithNonce)
	f.Handle("createProxyWithCallback", handleCreateWithCallback)
	f.Handle("calculateCreateProxyWithNonceAddress", handleCalculate)
	return f
}

// Deploy creates a proxy of singleton and, unless initializer is empty,
// calls it with initializer. Both steps succeed or neither does.
func Deploy(ctx context.Context, env quorum.Env, singleton common.Address, initializer []byte, saltNonce *big.Int) (common.Address, error) {
	if !env.HasCode(singleton) {
		return common.Address{}, errors.Wrapf(errors.ErrDeployment, "singleton contract %s not deployed", singleton.Hex())
	}
	proxy, err := env.Create2(ctx, nil, DeploymentData(singleton), Salt(initializer, saltNonce))
	if err != nil {
		return common.Address{}, err
	}
	if len(initializer) > 0 {
		if _, err := env.Call(ctx, proxy, nil, initializer, env.GasLeft()); err != nil {
			return common.Address{}, errors.Wrapf(errors.ErrDeployment, "initializer: %s", err)
		}
	}
	x.Emit(env, factoryABI, "ProxyCreation", proxy, singleton)
	quorum.GetLogger(ctx).Debug("proxy created", "proxy", proxy.Hex(), "singleton", singleton.Hex())
	return proxy, nil
}

// DeployWithCallback deploys like Deploy and then notifies callback,
// which may abort the deployment by failing.
func DeployWithCallback(ctx context.Context, env quorum.Env, singleton common.Address, initializer []byte, saltNonce *big.Int, callback common.Address) (common.Address, error) {
	proxy, err := Deploy(ctx, env, singleton, initializer, CallbackSaltNonce(saltNonce, callback))
	if err != nil {
		return common.Address{}, err
	}
	if callback == (common.Address{}) {
		return proxy, nil
	}
	input, err := callbackABI.Pack("proxyCreated", proxy, singleton, nonNil(initializer), saltNonce)
	if err != nil {
		return common.Address{}, errors.Wrap(errors.ErrHuman, err.Error())
	}
	if _, err := env.Call(ctx, callback, nil, input, env.GasLeft()); err != nil {
		return common.Address{}, errors.Wrapf(errors.ErrDeployment, "callback: %s", err)
	}
	return proxy, nil
}

type createArgs struct {
	Singleton   common.Address
	Initializer []byte
	SaltNonce   *big.Int
	Callback    common.Address
}

func handleCreationCode(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{Artifact.CreationCode()}, nil
}

func handleCreateWithNonce(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args createArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	proxy, err := Deploy(ctx, env, args.Singleton, args.Initializer, args.SaltNonce)
	if err != nil {
		return nil, err
	}
	return []interface{}{proxy}, nil
}

func handleCreateWithCallback(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args createArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	proxy, err := DeployWithCallback(ctx, env, args.Singleton, args.Initializer, args.SaltNonce, args.Callback)
	if err != nil {
		return nil, err
	}
	return []interface{}{proxy}, nil
}

func handleCalculate(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args createArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	return []interface{}{CalculateAddress(env.Self(), args.Singleton, args.Initializer, args.SaltNonce)}, nil
}

// CreateInput returns the createProxyWithNonce call.
func CreateInput(singleton common.Address, initializer []byte, saltNonce *big.Int) []byte {
	input, err := factoryABI.Pack("createProxyWithNonce", singleton, nonNil(initializer), saltNonce)
	if err != nil {
		panic(err)
	}
	return input
}

// CreateWithCallbackInput returns the createProxyWithCallback call.
func CreateWithCallbackInput(singleton common.Address, initializer []byte, saltNonce *big.Int, callback common.Address) []byte {
	input, err := factoryABI.Pack("createProxyWithCallback", singleton, nonNil(initializer), saltNonce, callback)
	if err != nil {
		panic(err)
	}
	return input
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
