package quorum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum/errors"
)

// Operation selects how an account performs a sub-call.
type Operation uint8

const (
	// Call runs the target code in the target's own context.
	Call Operation = 0
	// DelegateCall runs the target code in the caller's context, keeping
	// the caller's storage, balance and identity.
	DelegateCall Operation = 1
)

// Validate returns an error if the operation is not known.
func (o Operation) Validate() error {
	switch o {
	case Call, DelegateCall:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "unknown operation %d", o)
	}
}

func (o Operation) String() string {
	switch o {
	case Call:
		return "call"
	case DelegateCall:
		return "delegatecall"
	default:
		return "unknown"
	}
}

// StateReader reads slot addressed storage of a single account.
type StateReader interface {
	GetState(slot common.Hash) common.Hash
}

// State reads and writes slot addressed storage of a single account.
type State interface {
	StateReader
	SetState(slot, value common.Hash)
}

// Env is the view a running contract has of the host ledger. It describes
// a single call frame.
//
// Storage and gas accessors do not return errors. A storage failure, a
// write inside a static frame or gas exhaustion aborts the frame by
// panicking with a registered error, and the host turns it back into that
// error when the frame unwinds.
type Env interface {
	// Self is the account whose storage and balance the running code
	// operates on.
	Self() common.Address
	// CodeAddress is the account whose code is running. It differs from
	// Self only inside a delegate call.
	CodeAddress() common.Address
	// Caller is the immediate sender of this frame.
	Caller() common.Address
	// Value is the native amount sent along with this frame.
	Value() *big.Int
	// IsStatic is true when state changes are forbidden.
	IsStatic() bool

	State

	Balance(addr common.Address) *big.Int
	HasCode(addr common.Address) bool

	// GasLeft returns the gas still available to this frame.
	GasLeft() uint64
	// UseGas charges the frame.
	UseGas(amount uint64)

	Call(ctx context.Context, to common.Address, value *big.Int, input []byte, gas uint64) ([]byte, error)
	DelegateCall(ctx context.Context, to common.Address, input []byte, gas uint64) ([]byte, error)
	StaticCall(ctx context.Context, to common.Address, input []byte, gas uint64) ([]byte, error)

	// Create2 deploys initCode at an address derived from Self, salt and
	// the hash of initCode.
	Create2(ctx context.Context, value *big.Int, initCode []byte, salt common.Hash) (common.Address, error)

	// Emit appends an event log attributed to Self.
	Emit(topics []common.Hash, data []byte)
}

// Contract is code that can be deployed on the host.
type Contract interface {
	Run(ctx context.Context, env Env, input []byte) ([]byte, error)
}

// Constructor is implemented by contracts that initialize storage when they
// are deployed. args are the bytes appended to the creation code.
type Constructor interface {
	Construct(ctx context.Context, env Env, args []byte) error
}

// ContractFunc adapts a function to the Contract interface.
type ContractFunc func(ctx context.Context, env Env, input []byte) ([]byte, error)

// Run implements Contract.
func (f ContractFunc) Run(ctx context.Context, env Env, input []byte) ([]byte, error) {
	return f(ctx, env, input)
}

// Decorator wraps a Contract to provide common functionality
// like logging or panic recovery to every call frame.
type Decorator interface {
	Run(ctx context.Context, env Env, input []byte, next Contract) ([]byte, error)
}
