package safe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/modules"
	"github.com/iov-one/quorum/x/owners"
)

// SetupParams initialize a new account.
type SetupParams struct {
	Owners    []common.Address
	Threshold *big.Int
	// To is delegate called with Data once owners are set, for example to
	// enable modules. Zero skips the call.
	To              common.Address
	Data            []byte
	FallbackHandler common.Address
	// Payment is paid to PaymentReceiver, in PaymentToken or in the
	// native unit when PaymentToken is zero.
	PaymentToken    common.Address
	Payment         *big.Int
	PaymentReceiver common.Address
}

// Input returns the setup call, which is the initializer of a proxy.
func (p SetupParams) Input() []byte {
	input, err := accountABI.Pack("setup",
		p.Owners,
		orZero(p.Threshold),
		p.To,
		nonNil(p.Data),
		p.FallbackHandler,
		p.PaymentToken,
		orZero(p.Payment),
		p.PaymentReceiver,
	)
	if err != nil {
		panic(err)
	}
	return input
}

// Setup initializes an account. It can run only once.
func (a *Account) Setup(ctx context.Context, env quorum.Env, p SetupParams) error {
	threshold := orZero(p.Threshold)
	if !threshold.IsUint64() {
		return errors.Wrap(errors.ErrThreshold, "GS201: threshold cannot exceed owner count")
	}
	if err := owners.Setup(env, p.Owners, threshold.Uint64()); err != nil {
		return err
	}
	if p.FallbackHandler != (common.Address{}) {
		if err := setFallbackHandler(env, p.FallbackHandler); err != nil {
			return err
		}
	}
	if err := modules.Setup(env); err != nil {
		return err
	}
	if p.To != (common.Address{}) {
		if _, err := env.DelegateCall(ctx, p.To, p.Data, env.GasLeft()); err != nil {
			return errors.Wrapf(errors.ErrState, "GS000: could not finish initialization: %s", err)
		}
	}
	if payment := orZero(p.Payment); payment.Sign() > 0 {
		if err := sendPayment(ctx, env, payment, p.PaymentToken, p.PaymentReceiver); err != nil {
			return err
		}
	}
	x.Emit(env, accountABI, "SafeSetup", env.Caller(), p.Owners, threshold, p.To, p.FallbackHandler)
	return nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
