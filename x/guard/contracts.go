package guard

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/x"
)

// checkArgs are the decoded arguments of checkTransaction.
type checkArgs struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      uint8
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Signatures     []byte
	MsgSender      common.Address
}

// newRouter returns a router for a guard whose checkTransaction is served
// by check. checkAfterExecution accepts every outcome.
func newRouter(check func(ctx context.Context, env quorum.Env, args checkArgs) error, extra ...abi.ABI) *quorum.Router {
	r := quorum.NewRouter(quorum.MergeABI(append([]abi.ABI{guardABI}, extra...)...))
	r.Handle("checkTransaction", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		var args checkArgs
		if err := call.Decode(&args); err != nil {
			return nil, err
		}
		return nil, check(ctx, env, args)
	})
	r.Handle("checkAfterExecution", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		return nil, nil
	})
	r.Handle("supportsInterface", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		id := call.Args[0].([4]byte)
		return []interface{}{id == InterfaceID || id == ERC165InterfaceID}, nil
	})
	return r
}

// NewDelegateCallGuard returns a guard that refuses delegate calls, except
// to the given targets. Delegate calls run foreign code with the full
// authority of the account, so they are commonly limited to known
// libraries such as multisend.
func NewDelegateCallGuard(allowed ...common.Address) quorum.Contract {
	targets := make(map[common.Address]bool, len(allowed))
	for _, a := range allowed {
		targets[a] = true
	}
	return newRouter(func(ctx context.Context, env quorum.Env, args checkArgs) error {
		if quorum.Operation(args.Operation) == quorum.DelegateCall && !targets[args.To] {
			return errors.Wrapf(errors.ErrUnauthorized, "delegate call to %s is not allowed", args.To.Hex())
		}
		return nil
	})
}

// AllowlistABI declares the methods an account uses to manage its
// allowlist on an AllowlistGuard.
const AllowlistABI = `[
	{"type":"function","name":"allowTarget","stateMutability":"nonpayable",
	 "inputs":[{"name":"target","type":"address"}],"outputs":[]},
	{"type":"function","name":"disallowTarget","stateMutability":"nonpayable",
	 "inputs":[{"name":"target","type":"address"}],"outputs":[]},
	{"type":"function","name":"isAllowed","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"},{"name":"target","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"TargetAllowed","anonymous":false,
	 "inputs":[{"name":"account","type":"address","indexed":true},{"name":"target","type":"address","indexed":false}]},
	{"type":"event","name":"TargetDisallowed","anonymous":false,
	 "inputs":[{"name":"account","type":"address","indexed":true},{"name":"target","type":"address","indexed":false}]}
]`

var allowlistABI = quorum.MustParseABI(AllowlistABI)

var allowlistBase = quorum.Slot(0)

func allowSlot(account, target common.Address) common.Hash {
	return quorum.MappingSlot(quorum.AddressWord(target), quorum.MappingSlot(quorum.AddressWord(account), allowlistBase))
}

// NewAllowlistGuard returns a guard shared by many accounts. Each account
// may only call the targets it allowed, by calling allowTarget on the
// guard from an execution. Calls to the account itself are always
// allowed, so that it can still manage its settings.
func NewAllowlistGuard() quorum.Contract {
	r := newRouter(func(ctx context.Context, env quorum.Env, args checkArgs) error {
		account := env.Caller()
		if args.To == account {
			return nil
		}
		if env.GetState(allowSlot(account, args.To)) == (common.Hash{}) {
			return errors.Wrapf(errors.ErrUnauthorized, "target %s is not allowed for %s", args.To.Hex(), account.Hex())
		}
		return nil
	}, allowlistABI)
	r.Handle("allowTarget", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		target := call.Args[0].(common.Address)
		env.SetState(allowSlot(env.Caller(), target), quorum.Uint64Word(1))
		x.Emit(env, allowlistABI, "TargetAllowed", env.Caller(), target)
		return nil, nil
	})
	r.Handle("disallowTarget", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		target := call.Args[0].(common.Address)
		env.SetState(allowSlot(env.Caller(), target), common.Hash{})
		x.Emit(env, allowlistABI, "TargetDisallowed", env.Caller(), target)
		return nil, nil
	})
	r.Handle("isAllowed", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		account := call.Args[0].(common.Address)
		target := call.Args[1].(common.Address)
		return []interface{}{env.GetState(allowSlot(account, target)) != (common.Hash{})}, nil
	})
	return r
}

// AllowTargetInput returns the call an account makes to allow target.
func AllowTargetInput(target common.Address) []byte {
	input, err := allowlistABI.Pack("allowTarget", target)
	if err != nil {
		panic(err)
	}
	return input
}

// AllowlistArtifact is the deployable AllowlistGuard.
var AllowlistArtifact = host.NewArtifact("quorum.AllowlistGuard", NewAllowlistGuard())
