package host

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// frame is a single contract invocation. It implements quorum.Env.
type frame struct {
	chain  *Chain
	store  quorum.KVCacheWrap
	self   common.Address
	code   common.Address
	caller common.Address
	value  *big.Int
	static bool
	depth  int
	gas    uint64
	logs   []*types.Log
}

var _ quorum.Env = (*frame)(nil)

func (f *frame) accounts() accounts {
	return accounts{kv: f.store}
}

func (f *frame) Self() common.Address        { return f.self }
func (f *frame) CodeAddress() common.Address { return f.code }
func (f *frame) Caller() common.Address      { return f.caller }
func (f *frame) Value() *big.Int             { return new(big.Int).Set(f.value) }
func (f *frame) IsStatic() bool              { return f.static }
func (f *frame) GasLeft() uint64             { return f.gas }

// UseGas charges the frame. Running out of gas aborts the frame.
func (f *frame) UseGas(amount uint64) {
	if amount > f.gas {
		f.gas = 0
		panic(errors.Wrapf(errors.ErrOutOfGas, "frame of %s", f.self.Hex()))
	}
	f.gas -= amount
}

func (f *frame) GetState(slot common.Hash) common.Hash {
	f.UseGas(f.chain.gas.SLoadGas)
	value, err := f.accounts().storage(f.self, slot)
	if err != nil {
		panic(err)
	}
	return value
}

func (f *frame) SetState(slot, value common.Hash) {
	if f.static {
		panic(errors.Wrap(errors.ErrWriteProtection, "storage write"))
	}
	acc := f.accounts()
	current, err := acc.storage(f.self, slot)
	if err != nil {
		panic(err)
	}
	if current == (common.Hash{}) && value != (common.Hash{}) {
		f.UseGas(f.chain.gas.SStoreSetGas)
	} else {
		f.UseGas(f.chain.gas.SStoreGas)
	}
	if err := acc.setStorage(f.self, slot, value); err != nil {
		panic(err)
	}
}

func (f *frame) Balance(addr common.Address) *big.Int {
	f.UseGas(f.chain.gas.BalanceGas)
	amount, err := f.accounts().balance(addr)
	if err != nil {
		panic(err)
	}
	return amount
}

func (f *frame) HasCode(addr common.Address) bool {
	f.UseGas(f.chain.gas.BalanceGas)
	code, err := f.accounts().code(addr)
	if err != nil {
		panic(err)
	}
	return len(code) != 0
}

func (f *frame) Emit(topics []common.Hash, data []byte) {
	if f.static {
		panic(errors.Wrap(errors.ErrWriteProtection, "log"))
	}
	f.UseGas(f.chain.gas.LogCost(len(topics), len(data)))
	f.logs = append(f.logs, &types.Log{
		Address: f.self,
		Topics:  append([]common.Hash(nil), topics...),
		Data:    append([]byte(nil), data...),
	})
}

func (f *frame) Call(ctx context.Context, to common.Address, value *big.Int, input []byte, gas uint64) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if f.static && value.Sign() != 0 {
		return nil, errors.Wrap(errors.ErrWriteProtection, "value transfer")
	}
	cost := f.chain.gas.CallGas
	if value.Sign() != 0 {
		cost = addGas(cost, f.chain.gas.CallValueGas)
	}
	f.UseGas(cost)
	gas = f.reserve(gas)
	if value.Sign() != 0 {
		gas = addGas(gas, f.chain.gas.CallStipend)
	}
	return f.sub(ctx, frameMsg{
		caller: f.self,
		self:   to,
		code:   to,
		value:  value,
		input:  input,
		gas:    gas,
		static: f.static,
		send:   true,
	})
}

func (f *frame) DelegateCall(ctx context.Context, to common.Address, input []byte, gas uint64) ([]byte, error) {
	f.UseGas(f.chain.gas.CallGas)
	return f.sub(ctx, frameMsg{
		caller: f.caller,
		self:   f.self,
		code:   to,
		value:  f.value,
		input:  input,
		gas:    f.reserve(gas),
		static: f.static,
	})
}

func (f *frame) StaticCall(ctx context.Context, to common.Address, input []byte, gas uint64) ([]byte, error) {
	f.UseGas(f.chain.gas.CallGas)
	return f.sub(ctx, frameMsg{
		caller: f.self,
		self:   to,
		code:   to,
		value:  new(big.Int),
		input:  input,
		gas:    f.reserve(gas),
		static: true,
	})
}

func (f *frame) Create2(ctx context.Context, value *big.Int, initCode []byte, salt common.Hash) (common.Address, error) {
	if f.static {
		return common.Address{}, errors.Wrap(errors.ErrWriteProtection, "deployment")
	}
	if value == nil {
		value = new(big.Int)
	}
	f.UseGas(f.chain.gas.CreateGas)
	gas := f.reserve(f.gas)
	addr, left, logs, err := f.chain.create(ctx, f.store, createMsg{
		creator: f.self,
		value:   value,
		code:    initCode,
		salt:    salt,
		gas:     gas,
		depth:   f.depth + 1,
	})
	f.gas += left
	if err != nil {
		return common.Address{}, err
	}
	f.logs = append(f.logs, logs...)
	return addr, nil
}

// reserve takes gas for a sub-call out of this frame. The sub-call gets
// what it asked for, but never more than all but one 64th of what is left.
func (f *frame) reserve(requested uint64) uint64 {
	if max := forwardable(f.gas); requested > max {
		requested = max
	}
	f.gas -= requested
	return requested
}

func (f *frame) sub(ctx context.Context, m frameMsg) ([]byte, error) {
	m.depth = f.depth + 1
	ret, left, logs, err := f.chain.call(ctx, f.store, m)
	f.gas += left
	if err != nil {
		return ret, err
	}
	f.logs = append(f.logs, logs...)
	return ret, nil
}
