package host

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// QueryGas is the gas available to a read only query.
const QueryGas = 50000000

// Chain is the host ledger. It is safe for concurrent use, messages are
// processed one at a time.
type Chain struct {
	mu         sync.Mutex
	db         quorum.CacheableKVStore
	registry   *Registry
	gas        GasSchedule
	chainID    *big.Int
	decorators Decorators
	logger     log.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithGasSchedule replaces the default gas prices.
func WithGasSchedule(s GasSchedule) Option {
	return func(c *Chain) {
		c.gas = s
	}
}

// WithDecorators wraps every contract frame with given decorators.
func WithDecorators(ds ...quorum.Decorator) Option {
	return func(c *Chain) {
		c.decorators = c.decorators.Chain(ds...)
	}
}

// WithLogger sets the logger passed to contracts through the context.
func WithLogger(l log.Logger) Option {
	return func(c *Chain) {
		c.logger = l
	}
}

// NewChain returns a chain keeping its state in db.
func NewChain(db quorum.CacheableKVStore, chainID *big.Int, registry *Registry, opts ...Option) *Chain {
	if chainID == nil || chainID.Sign() <= 0 {
		panic("chain ID must be a positive number")
	}
	c := &Chain{
		db:       db,
		registry: registry,
		gas:      DefaultGasSchedule(),
		chainID:  new(big.Int).Set(chainID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChainID returns the chain identifier.
func (c *Chain) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Registry returns the artifacts this chain can deploy.
func (c *Chain) Registry() *Registry {
	return c.registry
}

// GasSchedule returns the gas prices in use.
func (c *Chain) GasSchedule() GasSchedule {
	return c.gas
}

// Msg is a message submitted by an externally owned account.
type Msg struct {
	From common.Address
	// To is the called account. When nil, Data is deployment data and the
	// new account address is derived from From and Salt.
	To       *common.Address
	Value    *big.Int
	Data     []byte
	Salt     common.Hash
	GasLimit uint64
	GasPrice *big.Int
}

// Receipt describes the outcome of a processed message.
type Receipt struct {
	Success bool
	GasUsed uint64
	// ReturnData is the output of the called contract, or the revert data
	// when the message failed.
	ReturnData      []byte
	Err             error
	Logs            []*types.Log
	ContractAddress common.Address
}

// Submit processes a message and commits its effects. The gas fee is
// charged even when execution fails. An error is returned only when the
// message cannot be processed at all: gas limit below the intrinsic gas,
// insufficient funds or a storage failure.
func (c *Chain) Submit(ctx context.Context, msg Msg) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.process(ctx, msg, true)
}

// Simulate processes a message like Submit but drops all its effects.
func (c *Chain) Simulate(ctx context.Context, msg Msg) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.process(ctx, msg, false)
}

func (c *Chain) process(ctx context.Context, msg Msg, commit bool) (*Receipt, error) {
	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}
	price := msg.GasPrice
	if price == nil {
		price = new(big.Int)
	}
	intrinsic := c.gas.IntrinsicGas(msg.Data)
	if msg.To == nil {
		intrinsic = addGas(intrinsic, c.gas.CreateGas)
	}
	if msg.GasLimit < intrinsic {
		return nil, errors.Wrapf(errors.ErrOutOfGas, "intrinsic gas %d exceeds limit %d", intrinsic, msg.GasLimit)
	}

	ctx = c.context(ctx, msg.From, price)
	outer := c.db.CacheWrap()
	defer outer.Discard()
	acc := accounts{kv: outer}

	fee := new(big.Int).Mul(new(big.Int).SetUint64(msg.GasLimit), price)
	have, err := acc.balance(msg.From)
	if err != nil {
		return nil, err
	}
	if need := new(big.Int).Add(fee, value); have.Cmp(need) < 0 {
		return nil, errors.Wrapf(errors.ErrAmount, "insufficient funds: %s has %s, needs %s", msg.From.Hex(), have, need)
	}
	if err := acc.setBalance(msg.From, have.Sub(have, fee)); err != nil {
		return nil, err
	}

	gas := msg.GasLimit - intrinsic
	var (
		rcpt Receipt
		left uint64
	)
	if msg.To == nil {
		rcpt.ContractAddress, left, rcpt.Logs, rcpt.Err = c.create(ctx, outer, createMsg{
			creator: msg.From,
			value:   value,
			code:    msg.Data,
			salt:    msg.Salt,
			gas:     gas,
		})
	} else {
		rcpt.ReturnData, left, rcpt.Logs, rcpt.Err = c.call(ctx, outer, frameMsg{
			caller: msg.From,
			self:   *msg.To,
			code:   *msg.To,
			value:  value,
			input:  msg.Data,
			gas:    gas,
			send:   true,
		})
	}
	rcpt.Success = rcpt.Err == nil
	rcpt.GasUsed = msg.GasLimit - left

	refund := new(big.Int).Mul(new(big.Int).SetUint64(left), price)
	after, err := acc.balance(msg.From)
	if err != nil {
		return nil, err
	}
	if err := acc.setBalance(msg.From, after.Add(after, refund)); err != nil {
		return nil, err
	}

	logger := quorum.GetLogger(ctx).With("gas_used", rcpt.GasUsed, "logs", len(rcpt.Logs))
	if rcpt.Err != nil {
		logger.Info("message failed", "err", rcpt.Err)
	} else {
		logger.Debug("message processed")
	}

	if commit {
		if err := outer.Write(); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	return &rcpt, nil
}

// Query runs a read only call against the current state.
func (c *Chain) Query(ctx context.Context, from, to common.Address, input []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx = c.context(ctx, from, new(big.Int))
	wrap := c.db.CacheWrap()
	defer wrap.Discard()
	ret, _, _, err := c.call(ctx, wrap, frameMsg{
		caller: from,
		self:   to,
		code:   to,
		value:  new(big.Int),
		input:  input,
		gas:    QueryGas,
		static: true,
	})
	return ret, err
}

func (c *Chain) context(ctx context.Context, origin common.Address, price *big.Int) context.Context {
	if c.logger != nil {
		ctx = quorum.WithLogger(ctx, c.logger)
	}
	if quorum.GetChainID(ctx).Sign() == 0 {
		ctx = quorum.WithChainID(ctx, c.chainID)
	}
	ctx = quorum.WithOrigin(ctx, origin)
	ctx = quorum.WithGasPrice(ctx, price)
	return quorum.WithLogInfo(ctx, "origin", origin.Hex())
}

// frameMsg describes a call frame to open.
type frameMsg struct {
	caller common.Address
	self   common.Address
	code   common.Address
	value  *big.Int
	input  []byte
	gas    uint64
	static bool
	depth  int
	// send is set when value moves from caller to self. Delegate calls
	// only carry the value of their parent frame.
	send bool
}

// call runs a frame on a cache wrap of parent. It returns the output, the
// gas left and the logs the frame produced.
func (c *Chain) call(ctx context.Context, parent quorum.CacheableKVStore, m frameMsg) ([]byte, uint64, []*types.Log, error) {
	if m.depth > c.gas.MaxCallDepth {
		return nil, m.gas, nil, errors.Wrap(errors.ErrState, "max call depth exceeded")
	}
	store := parent.CacheWrap()
	acc := accounts{kv: store}
	if m.send {
		if err := acc.transfer(m.caller, m.self, m.value); err != nil {
			store.Discard()
			return RevertData(err), m.gas, nil, err
		}
	}
	code, err := acc.code(m.code)
	if err != nil {
		store.Discard()
		return nil, m.gas, nil, err
	}
	if len(code) == 0 {
		if err := store.Write(); err != nil {
			return nil, m.gas, nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		return nil, m.gas, nil, nil
	}
	contract, ok := c.registry.Lookup(code)
	if !ok {
		store.Discard()
		err := errors.Wrapf(errors.ErrNoCode, "unknown code at %s", m.code.Hex())
		return RevertData(err), m.gas, nil, err
	}

	f := &frame{
		chain:  c,
		store:  store,
		self:   m.self,
		code:   m.code,
		caller: m.caller,
		value:  m.value,
		static: m.static,
		depth:  m.depth,
		gas:    m.gas,
	}
	ret, err := c.run(ctx, f, contract, m.input)
	if err != nil {
		store.Discard()
		return RevertData(err), f.gas, nil, err
	}
	if err := store.Write(); err != nil {
		return nil, f.gas, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ret, f.gas, f.logs, nil
}

// run executes a contract within a frame. Panics carrying registered
// errors, like running out of gas, become the returned error.
func (c *Chain) run(ctx context.Context, f *frame, contract quorum.Contract, input []byte) (ret []byte, err error) {
	defer errors.Recover(&err)
	return c.decorators.WithContract(contract).Run(ctx, f, input)
}

// createMsg describes a deterministic deployment.
type createMsg struct {
	creator common.Address
	value   *big.Int
	code    []byte
	salt    common.Hash
	gas     uint64
	depth   int
}

// CreateAddress returns the address a deployment of code by creator with
// given salt ends up at.
func CreateAddress(creator common.Address, salt common.Hash, code []byte) common.Address {
	return crypto.CreateAddress2(creator, salt, crypto.Keccak256(code))
}

func (c *Chain) create(ctx context.Context, parent quorum.CacheableKVStore, m createMsg) (common.Address, uint64, []*types.Log, error) {
	if m.depth > c.gas.MaxCallDepth {
		return common.Address{}, m.gas, nil, errors.Wrap(errors.ErrState, "max call depth exceeded")
	}
	addr := CreateAddress(m.creator, m.salt, m.code)

	store := parent.CacheWrap()
	acc := accounts{kv: store}
	existing, err := acc.code(addr)
	if err != nil {
		store.Discard()
		return common.Address{}, m.gas, nil, err
	}
	if len(existing) != 0 {
		store.Discard()
		return common.Address{}, m.gas, nil, errors.Wrapf(errors.ErrAddressOccupied, "%s", addr.Hex())
	}
	artifact, args, err := c.registry.resolve(m.code)
	if err != nil {
		store.Discard()
		return common.Address{}, m.gas, nil, err
	}
	if err := acc.transfer(m.creator, addr, m.value); err != nil {
		store.Discard()
		return common.Address{}, m.gas, nil, err
	}
	if err := acc.setCode(addr, artifact.RuntimeCode()); err != nil {
		store.Discard()
		return common.Address{}, m.gas, nil, err
	}

	f := &frame{
		chain:  c,
		store:  store,
		self:   addr,
		code:   addr,
		caller: m.creator,
		value:  m.value,
		depth:  m.depth,
		gas:    m.gas,
	}
	if ctor, ok := artifact.Contract.(quorum.Constructor); ok {
		if err := construct(ctx, f, ctor, args); err != nil {
			store.Discard()
			return common.Address{}, f.gas, nil, errors.Wrapf(err, "construct %s", artifact.Name)
		}
	}
	if err := store.Write(); err != nil {
		return common.Address{}, f.gas, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return addr, f.gas, f.logs, nil
}

func construct(ctx context.Context, f *frame, ctor quorum.Constructor, args []byte) (err error) {
	defer errors.Recover(&err)
	return ctor.Construct(ctx, f, args)
}

// SetBalance overwrites the balance of an account. Use it to fund accounts
// at genesis.
func (c *Chain) SetBalance(addr common.Address, amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return accounts{kv: c.db}.setBalance(addr, amount)
}

// Balance returns the balance of an account.
func (c *Chain) Balance(addr common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return accounts{kv: c.db}.balance(addr)
}

// Storage returns the value of a storage slot of an account.
func (c *Chain) Storage(addr common.Address, slot common.Hash) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return accounts{kv: c.db}.storage(addr, slot)
}

// Code returns the runtime code of an account.
func (c *Chain) Code(addr common.Address) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return accounts{kv: c.db}.code(addr)
}
