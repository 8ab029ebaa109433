package guard

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/txhash"
)

// GuardSlot holds the address of the installed guard.
var GuardSlot = quorum.NamedSlot("guard_manager.guard.address")

// ABI is the interface every guard implements.
const ABI = `[
	{"type":"function","name":"checkTransaction","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"},
		{"name":"safeTxGas","type":"uint256"},
		{"name":"baseGas","type":"uint256"},
		{"name":"gasPrice","type":"uint256"},
		{"name":"gasToken","type":"address"},
		{"name":"refundReceiver","type":"address"},
		{"name":"signatures","type":"bytes"},
		{"name":"msgSender","type":"address"}],
	 "outputs":[]},
	{"type":"function","name":"checkAfterExecution","stateMutability":"nonpayable",
	 "inputs":[{"name":"txHash","type":"bytes32"},{"name":"success","type":"bool"}],"outputs":[]},
	{"type":"function","name":"supportsInterface","stateMutability":"view",
	 "inputs":[{"name":"interfaceId","type":"bytes4"}],"outputs":[{"name":"","type":"bool"}]}
]`

// ManagerABI declares the account side of guard management.
const ManagerABI = `[
	{"type":"function","name":"setGuard","stateMutability":"nonpayable",
	 "inputs":[{"name":"guard","type":"address"}],"outputs":[]},
	{"type":"event","name":"ChangedGuard","anonymous":false,
	 "inputs":[{"name":"guard","type":"address","indexed":false}]}
]`

var (
	guardABI   = quorum.MustParseABI(ABI)
	managerABI = quorum.MustParseABI(ManagerABI)
)

// Definition returns the parsed guard interface.
func Definition() abi.ABI {
	return guardABI
}

// ManagerDefinition returns the parsed account side ABI.
func ManagerDefinition() abi.ABI {
	return managerABI
}

// ERC165InterfaceID is the interface id of supportsInterface itself.
var ERC165InterfaceID = [4]byte{0x01, 0xff, 0xc9, 0xa7}

// InterfaceID is the ERC-165 id of the guard interface, the xor of the
// selectors of both hooks.
var InterfaceID = interfaceID(guardABI.Methods["checkTransaction"], guardABI.Methods["checkAfterExecution"])

func interfaceID(methods ...abi.Method) [4]byte {
	var id [4]byte
	for _, m := range methods {
		for i := range id {
			id[i] ^= m.ID[i]
		}
	}
	return id
}

// Get returns the installed guard or the zero address.
func Get(st quorum.StateReader) common.Address {
	return quorum.WordAddress(st.GetState(GuardSlot))
}

// Set installs g, or removes the guard when g is the zero address.
func Set(ctx context.Context, env quorum.Env, g common.Address) error {
	if g != (common.Address{}) {
		ok, err := Supports(ctx, env, g, InterfaceID)
		if err != nil || !ok {
			return errors.Wrapf(errors.ErrInput, "GS300: guard %s does not implement the guard interface", g.Hex())
		}
	}
	env.SetState(GuardSlot, quorum.AddressWord(g))
	x.Emit(env, managerABI, "ChangedGuard", g)
	return nil
}

// Supports asks contract c whether it implements interface id.
func Supports(ctx context.Context, env quorum.Env, c common.Address, id [4]byte) (bool, error) {
	input, err := guardABI.Pack("supportsInterface", id)
	if err != nil {
		return false, errors.Wrap(errors.ErrHuman, err.Error())
	}
	out, err := env.StaticCall(ctx, c, input, env.GasLeft())
	if err != nil {
		return false, err
	}
	values, err := guardABI.Unpack("supportsInterface", out)
	if err != nil || len(values) != 1 {
		return false, errors.Wrap(errors.ErrInput, "malformed supportsInterface answer")
	}
	ok, _ := values[0].(bool)
	return ok, nil
}

// Check carries what a guard sees before an execution.
type Check struct {
	txhash.Tx
	Signatures []byte
	Sender     common.Address
}

// Pre runs the pre-execution hook of guard g. Any failure is a veto.
func Pre(ctx context.Context, env quorum.Env, g common.Address, c Check) error {
	if g == (common.Address{}) {
		return nil
	}
	input, err := guardABI.Pack("checkTransaction",
		c.To,
		orZero(c.Value),
		nonNil(c.Data),
		uint8(c.Operation),
		orZero(c.SafeTxGas),
		orZero(c.BaseGas),
		orZero(c.GasPrice),
		c.GasToken,
		c.RefundReceiver,
		nonNil(c.Signatures),
		c.Sender,
	)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if _, err := env.Call(ctx, g, nil, input, env.GasLeft()); err != nil {
		return errors.Wrapf(errors.ErrGuardVeto, "guard %s: %s", g.Hex(), err)
	}
	return nil
}

// Post runs the post-execution hook of guard g.
func Post(ctx context.Context, env quorum.Env, g common.Address, hash common.Hash, success bool) error {
	if g == (common.Address{}) {
		return nil
	}
	input, err := guardABI.Pack("checkAfterExecution", [32]byte(hash), success)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	if _, err := env.Call(ctx, g, nil, input, env.GasLeft()); err != nil {
		return errors.Wrapf(errors.ErrGuardVeto, "guard %s after execution: %s", g.Hex(), err)
	}
	return nil
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
