package quorumtest

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// World is the shared state behind a set of Env frames. Unlike the host
// ledger, it never rolls anything back: use it to unit test contract logic,
// not atomicity.
type World struct {
	Storage   map[common.Address]State
	Balances  map[common.Address]*big.Int
	Contracts map[common.Address]quorum.Contract
	Logs      []*types.Log
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{
		Storage:   make(map[common.Address]State),
		Balances:  make(map[common.Address]*big.Int),
		Contracts: make(map[common.Address]quorum.Contract),
	}
}

// State returns the storage of an account.
func (w *World) State(addr common.Address) State {
	st, ok := w.Storage[addr]
	if !ok {
		st = NewState()
		w.Storage[addr] = st
	}
	return st
}

// Env returns a frame running the code of self, called by caller.
func (w *World) Env(self, caller common.Address) *Env {
	return &Env{
		world:  w,
		self:   self,
		code:   self,
		caller: caller,
		value:  new(big.Int),
		gas:    10000000,
	}
}

// Env is an in memory quorum.Env.
type Env struct {
	world  *World
	self   common.Address
	code   common.Address
	caller common.Address
	value  *big.Int
	static bool
	gas    uint64
}

var _ quorum.Env = (*Env)(nil)

// WithValue sets the value carried by the frame.
func (e *Env) WithValue(v *big.Int) *Env {
	e.value = new(big.Int).Set(v)
	return e
}

// WithStatic marks the frame as read only.
func (e *Env) WithStatic() *Env {
	e.static = true
	return e
}

// WithGas sets the gas available to the frame.
func (e *Env) WithGas(gas uint64) *Env {
	e.gas = gas
	return e
}

func (e *Env) Self() common.Address        { return e.self }
func (e *Env) CodeAddress() common.Address { return e.code }
func (e *Env) Caller() common.Address      { return e.caller }
func (e *Env) Value() *big.Int             { return new(big.Int).Set(e.value) }
func (e *Env) IsStatic() bool              { return e.static }
func (e *Env) GasLeft() uint64             { return e.gas }

func (e *Env) UseGas(amount uint64) {
	if amount > e.gas {
		e.gas = 0
		panic(errors.Wrap(errors.ErrOutOfGas, "test frame"))
	}
	e.gas -= amount
}

func (e *Env) GetState(slot common.Hash) common.Hash {
	return e.world.State(e.self).GetState(slot)
}

func (e *Env) SetState(slot, value common.Hash) {
	if e.static {
		panic(errors.Wrap(errors.ErrWriteProtection, "storage write"))
	}
	e.world.State(e.self).SetState(slot, value)
}

func (e *Env) Balance(addr common.Address) *big.Int {
	if b, ok := e.world.Balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (e *Env) HasCode(addr common.Address) bool {
	_, ok := e.world.Contracts[addr]
	return ok
}

func (e *Env) Emit(topics []common.Hash, data []byte) {
	if e.static {
		panic(errors.Wrap(errors.ErrWriteProtection, "log"))
	}
	e.world.Logs = append(e.world.Logs, &types.Log{Address: e.self, Topics: topics, Data: data})
}

func (e *Env) Call(ctx context.Context, to common.Address, value *big.Int, input []byte, gas uint64) ([]byte, error) {
	if value != nil && value.Sign() != 0 {
		if e.static {
			return nil, errors.Wrap(errors.ErrWriteProtection, "value transfer")
		}
		if e.Balance(e.self).Cmp(value) < 0 {
			return nil, errors.Wrap(errors.ErrAmount, "insufficient funds")
		}
		e.world.Balances[e.self] = new(big.Int).Sub(e.Balance(e.self), value)
		e.world.Balances[to] = new(big.Int).Add(e.Balance(to), value)
	}
	child := &Env{world: e.world, self: to, code: to, caller: e.self, value: new(big.Int), static: e.static, gas: gas}
	if value != nil {
		child.value.Set(value)
	}
	return e.run(ctx, child, to, input)
}

func (e *Env) DelegateCall(ctx context.Context, to common.Address, input []byte, gas uint64) ([]byte, error) {
	child := &Env{world: e.world, self: e.self, code: to, caller: e.caller, value: e.value, static: e.static, gas: gas}
	return e.run(ctx, child, to, input)
}

func (e *Env) StaticCall(ctx context.Context, to common.Address, input []byte, gas uint64) ([]byte, error) {
	child := &Env{world: e.world, self: to, code: to, caller: e.self, value: new(big.Int), static: true, gas: gas}
	return e.run(ctx, child, to, input)
}

func (e *Env) Create2(ctx context.Context, value *big.Int, initCode []byte, salt common.Hash) (common.Address, error) {
	return common.Address{}, errors.Wrap(errors.ErrHuman, "deployment is not supported by test frames")
}

func (e *Env) run(ctx context.Context, child *Env, code common.Address, input []byte) (ret []byte, err error) {
	c, ok := e.world.Contracts[code]
	if !ok {
		return nil, nil
	}
	defer errors.Recover(&err)
	return c.Run(ctx, child, input)
}
