package safe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/modules"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/txhash"
)

// Gas an execution keeps for itself around the sub-call.
const (
	callReserve  = 2500
	eventReserve = 500
)

// ExecTransaction runs tx once the owners signed it with the current
// nonce. tx.Nonce is ignored.
//
// The returned flag tells whether the sub-call succeeded. A failing
// sub-call is not an error: the nonce still advances and the submitter is
// still refunded. Errors are returned when the execution is not
// authorized, when there is not enough gas for the sub-call, when a guard
// vetoes it or when the refund cannot be paid.
func (a *Account) ExecTransaction(ctx context.Context, env quorum.Env, tx txhash.Tx, signatures []byte) (bool, error) {
	nonce := Nonce(env)
	tx.Nonce = nonce
	digest, err := txhash.Digest(tx, DomainSeparator(ctx, env))
	if err != nil {
		return false, err
	}
	if err := sigs.CheckSignatures(ctx, env, digest, signatures); err != nil {
		return false, err
	}
	env.SetState(NonceSlot, quorum.BigWord(new(big.Int).Add(nonce, big.NewInt(1))))

	safeTxGas := orZero(tx.SafeTxGas)
	gasPrice := orZero(tx.GasPrice)
	if err := checkGas(env.GasLeft(), safeTxGas); err != nil {
		return false, err
	}

	g := guard.Get(env)
	if err := guard.Pre(ctx, env, g, guard.Check{Tx: tx, Signatures: signatures, Sender: env.Caller()}); err != nil {
		return false, err
	}

	gas := safeTxGas.Uint64()
	if gasPrice.Sign() == 0 {
		gas = saturatingSub(env.GasLeft(), callReserve)
	}
	start := env.GasLeft()
	_, callErr := execute(ctx, env, tx.To, tx.Value, tx.Data, tx.Operation, gas)
	gasUsed := new(big.Int).SetUint64(start - env.GasLeft())
	success := callErr == nil

	payment := new(big.Int)
	if gasPrice.Sign() > 0 {
		payment, err = a.pay(ctx, env, gasUsed, tx.BaseGas, gasPrice, tx.GasToken, tx.RefundReceiver)
		if err != nil {
			return false, err
		}
	}
	if success {
		x.Emit(env, accountABI, "ExecutionSuccess", digest, payment)
	} else {
		x.Emit(env, accountABI, "ExecutionFailure", digest, payment)
	}

	if err := guard.Post(ctx, env, g, digest, success); err != nil {
		return false, err
	}

	logger := quorum.GetLogger(ctx).With("account", env.Self().Hex(), "digest", digest.Hex(), "payment", payment)
	if callErr != nil {
		logger.Info("execution failed", "err", callErr)
	} else {
		logger.Debug("execution succeeded")
	}
	return success, nil
}

// checkGas makes sure the sub-call can get safeTxGas after the 1/64
// retained by every call, and that enough is left to emit the outcome.
func checkGas(left uint64, safeTxGas *big.Int) error {
	need := new(big.Int).Mul(safeTxGas, big.NewInt(64))
	need.Div(need, big.NewInt(63))
	if alt := new(big.Int).Add(safeTxGas, big.NewInt(callReserve)); alt.Cmp(need) > 0 {
		need = alt
	}
	need.Add(need, big.NewInt(eventReserve))
	if need.Cmp(new(big.Int).SetUint64(left)) > 0 {
		return errors.Wrapf(errors.ErrOutOfGas, "GS010: not enough gas to execute transaction: need %s, have %d", need, left)
	}
	return nil
}

// ExecFromModule runs a call on behalf of an enabled module, without
// signatures, nonce or refund. It returns the output of the call, or its
// revert data when it failed.
func (a *Account) ExecFromModule(ctx context.Context, env quorum.Env, to common.Address, value *big.Int, data []byte, op quorum.Operation) (bool, []byte, error) {
	module := env.Caller()
	if module == quorum.Sentinel || !modules.IsEnabled(env, module) {
		return false, nil, errors.Wrapf(errors.ErrUnauthorized, "GS104: method can only be called from an enabled module, not %s", module.Hex())
	}
	if err := op.Validate(); err != nil {
		return false, nil, errors.Field("Operation", err, "")
	}

	g := guard.Get(env)
	check := guard.Check{
		Tx:     txhash.Tx{To: to, Value: value, Data: data, Operation: op},
		Sender: module,
	}
	if err := guard.Pre(ctx, env, g, check); err != nil {
		return false, nil, err
	}

	ret, err := execute(ctx, env, to, value, data, op, env.GasLeft())
	success := err == nil
	if !success {
		ret = host.RevertData(err)
		x.Emit(env, accountABI, "ExecutionFromModuleFailure", module)
	} else {
		x.Emit(env, accountABI, "ExecutionFromModuleSuccess", module)
	}

	if err := guard.Post(ctx, env, g, moduleTxHash(to, value, data, op, module), success); err != nil {
		return false, nil, err
	}
	return success, ret, nil
}

// moduleTxHash identifies a module execution towards the guard.
func moduleTxHash(to common.Address, value *big.Int, data []byte, op quorum.Operation, module common.Address) common.Hash {
	return crypto.Keccak256Hash(
		to.Bytes(),
		quorum.BigWord(orZero(value)).Bytes(),
		data,
		[]byte{byte(op)},
		module.Bytes(),
	)
}

// execute performs a sub-call. A delegate call ignores value.
func execute(ctx context.Context, env quorum.Env, to common.Address, value *big.Int, data []byte, op quorum.Operation, gas uint64) ([]byte, error) {
	if op == quorum.DelegateCall {
		return env.DelegateCall(ctx, to, data, gas)
	}
	return env.Call(ctx, to, value, data, gas)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
