package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
)

var (
	balancesSlot   = quorum.Slot(0)
	allowancesSlot = quorum.Slot(1)
	supplySlot     = quorum.Slot(2)
)

// ABI declares the token interface.
const ABI = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Transfer","anonymous":false,
	 "inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,
	 "inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

var tokenABI = quorum.MustParseABI(ABI)

// Definition returns the parsed token ABI.
func Definition() abi.ABI {
	return tokenABI
}

// Token is a deployable fungible token.
type Token struct {
	*quorum.Router
	name     string
	symbol   string
	decimals uint8
}

var _ quorum.Constructor = (*Token)(nil)

// New returns a token contract. Its constructor arguments are the initial
// holder and the total supply, see ConstructorArgs.
func New(name, symbol string, decimals uint8) *Token {
	t := &Token{
		Router:   quorum.NewRouter(tokenABI),
		name:     name,
		symbol:   symbol,
		decimals: decimals,
	}
	t.Handle("name", func(context.Context, quorum.Env, quorum.MethodCall) ([]interface{}, error) {
		return []interface{}{t.name}, nil
	})
	t.Handle("symbol", func(context.Context, quorum.Env, quorum.MethodCall) ([]interface{}, error) {
		return []interface{}{t.symbol}, nil
	})
	t.Handle("decimals", func(context.Context, quorum.Env, quorum.MethodCall) ([]interface{}, error) {
		return []interface{}{t.decimals}, nil
	})
	t.Handle("totalSupply", handleTotalSupply)
	t.Handle("balanceOf", handleBalanceOf)
	t.Handle("allowance", handleAllowance)
	t.Handle("transfer", handleTransfer)
	t.Handle("approve", handleApprove)
	t.Handle("transferFrom", handleTransferFrom)
	return t
}

var ctorArgs = abi.Arguments{
	{Name: "holder", Type: mustType("address")},
	{Name: "supply", Type: mustType("uint256")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// ConstructorArgs encodes the deployment arguments of a token.
func ConstructorArgs(holder common.Address, supply *big.Int) []byte {
	b, err := ctorArgs.Pack(holder, supply)
	if err != nil {
		panic(err)
	}
	return b
}

// Construct mints the whole supply to the holder.
func (t *Token) Construct(ctx context.Context, env quorum.Env, args []byte) error {
	values, err := ctorArgs.Unpack(args)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "token arguments: %s", err)
	}
	holder := values[0].(common.Address)
	supply := values[1].(*big.Int)
	if holder == (common.Address{}) {
		return errors.Field("Holder", errors.ErrInput, "required")
	}
	env.SetState(supplySlot, quorum.BigWord(supply))
	env.SetState(balanceSlot(holder), quorum.BigWord(supply))
	x.Emit(env, tokenABI, "Transfer", common.Address{}, holder, supply)
	return nil
}

func balanceSlot(addr common.Address) common.Hash {
	return quorum.MappingSlot(quorum.AddressWord(addr), balancesSlot)
}

func allowanceSlot(owner, spender common.Address) common.Hash {
	return quorum.MappingSlot(quorum.AddressWord(spender), quorum.MappingSlot(quorum.AddressWord(owner), allowancesSlot))
}

// BalanceOf returns the balance of addr.
func BalanceOf(st quorum.StateReader, addr common.Address) *big.Int {
	return st.GetState(balanceSlot(addr)).Big()
}

// Transfer moves amount from src to dest. It fails if src does not hold
// enough.
func Transfer(env quorum.Env, src, dest common.Address, amount *big.Int) error {
	if dest == (common.Address{}) {
		return errors.Field("To", errors.ErrInput, "transfer to the zero address")
	}
	if amount.Sign() < 0 {
		return errors.Field("Amount", errors.ErrAmount, "negative")
	}
	have := BalanceOf(env, src)
	if have.Cmp(amount) < 0 {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %s has %s, needs %s", src.Hex(), have, amount)
	}
	env.SetState(balanceSlot(src), quorum.BigWord(have.Sub(have, amount)))
	got := BalanceOf(env, dest)
	env.SetState(balanceSlot(dest), quorum.BigWord(got.Add(got, amount)))
	x.Emit(env, tokenABI, "Transfer", src, dest, amount)
	return nil
}

func handleTotalSupply(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{env.GetState(supplySlot).Big()}, nil
}

func handleBalanceOf(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{BalanceOf(env, call.Args[0].(common.Address))}, nil
}

func handleAllowance(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	owner := call.Args[0].(common.Address)
	spender := call.Args[1].(common.Address)
	return []interface{}{env.GetState(allowanceSlot(owner, spender)).Big()}, nil
}

func handleTransfer(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	to := call.Args[0].(common.Address)
	amount := call.Args[1].(*big.Int)
	if err := Transfer(env, env.Caller(), to, amount); err != nil {
		return nil, err
	}
	return []interface{}{true}, nil
}

func handleApprove(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	spender := call.Args[0].(common.Address)
	amount := call.Args[1].(*big.Int)
	env.SetState(allowanceSlot(env.Caller(), spender), quorum.BigWord(amount))
	x.Emit(env, tokenABI, "Approval", env.Caller(), spender, amount)
	return []interface{}{true}, nil
}

func handleTransferFrom(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	from := call.Args[0].(common.Address)
	to := call.Args[1].(common.Address)
	amount := call.Args[2].(*big.Int)

	slot := allowanceSlot(from, env.Caller())
	allowed := env.GetState(slot).Big()
	if allowed.Cmp(amount) < 0 {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "allowance of %s is %s", env.Caller().Hex(), allowed)
	}
	env.SetState(slot, quorum.BigWord(allowed.Sub(allowed, amount)))
	if err := Transfer(env, from, to, amount); err != nil {
		return nil, err
	}
	return []interface{}{true}, nil
}

// TransferInput returns the input of a transfer call.
func TransferInput(to common.Address, amount *big.Int) []byte {
	input, err := tokenABI.Pack("transfer", to, amount)
	if err != nil {
		panic(err)
	}
	return input
}

// BalanceOfInput returns the input of a balanceOf call.
func BalanceOfInput(addr common.Address) []byte {
	input, err := tokenABI.Pack("balanceOf", addr)
	if err != nil {
		panic(err)
	}
	return input
}
