package safe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/token"
)

// CostModel computes what an account refunds for an execution.
type CostModel interface {
	// Payment returns the refund for gasUsed gas spent by the execution
	// and baseGas gas spent around it, at gasPrice. native is false when
	// the refund is paid in a token.
	Payment(ctx context.Context, gasUsed, baseGas, gasPrice *big.Int, native bool) *big.Int
}

// DefaultCostModel refunds (gasUsed + baseGas) * gasPrice. A refund in
// the native unit never uses a price above the one the submitter paid.
type DefaultCostModel struct{}

var _ CostModel = DefaultCostModel{}

// Payment implements CostModel.
func (DefaultCostModel) Payment(ctx context.Context, gasUsed, baseGas, gasPrice *big.Int, native bool) *big.Int {
	price := gasPrice
	if native {
		if paid := quorum.GetGasPrice(ctx); paid.Cmp(price) < 0 {
			price = paid
		}
	}
	total := new(big.Int).Add(gasUsed, baseGas)
	return total.Mul(total, price)
}

// tokenTransferReserve is the gas kept back when calling a gas token.
const tokenTransferReserve = 10000

// pay refunds an execution.
func (a *Account) pay(ctx context.Context, env quorum.Env, gasUsed, baseGas, gasPrice *big.Int, gasToken, receiver common.Address) (*big.Int, error) {
	native := gasToken == (common.Address{})
	payment := a.costs.Payment(ctx, gasUsed, orZero(baseGas), gasPrice, native)
	if err := sendPayment(ctx, env, payment, gasToken, receiver); err != nil {
		return nil, err
	}
	return payment, nil
}

// sendPayment transfers amount to receiver, in gasToken or in the native
// unit when gasToken is zero. The receiver defaults to the submitter of
// the top-level message.
func sendPayment(ctx context.Context, env quorum.Env, amount *big.Int, gasToken, receiver common.Address) error {
	if receiver == (common.Address{}) {
		receiver = quorum.GetOrigin(ctx)
	}
	if gasToken == (common.Address{}) {
		if _, err := env.Call(ctx, receiver, amount, nil, 0); err != nil {
			return errors.Wrapf(errors.ErrAmount, "GS011: could not pay gas costs with native unit: %s", err)
		}
		return nil
	}
	if !transferToken(ctx, env, gasToken, receiver, amount) {
		return errors.Wrapf(errors.ErrAmount, "GS012: could not pay gas costs with token %s", gasToken.Hex())
	}
	return nil
}

// transferToken calls transfer on a token. Tokens that return nothing
// are trusted, the others must return true.
func transferToken(ctx context.Context, env quorum.Env, tok, receiver common.Address, amount *big.Int) bool {
	var gas uint64
	if left := env.GasLeft(); left > tokenTransferReserve {
		gas = left - tokenTransferReserve
	}
	out, err := env.Call(ctx, tok, nil, token.TransferInput(receiver, amount), gas)
	if err != nil {
		return false
	}
	if len(out) == 0 {
		return true
	}
	values, err := token.Definition().Unpack("transfer", out)
	if err != nil || len(values) != 1 {
		return false
	}
	ok, _ := values[0].(bool)
	return ok
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
