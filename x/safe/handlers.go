package safe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/txhash"
)

func (a *Account) handleSetup(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var p SetupParams
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	return nil, a.Setup(ctx, env, p)
}

// txArgs are the transaction fields shared by execution and hashing
// methods.
type txArgs struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      uint8
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
}

func (t txArgs) tx() txhash.Tx {
	return txhash.Tx{
		To:             t.To,
		Value:          t.Value,
		Data:           t.Data,
		Operation:      quorum.Operation(t.Operation),
		SafeTxGas:      t.SafeTxGas,
		BaseGas:        t.BaseGas,
		GasPrice:       t.GasPrice,
		GasToken:       t.GasToken,
		RefundReceiver: t.RefundReceiver,
	}
}

func (a *Account) handleExecTransaction(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args struct {
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
	}
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	tx := txArgs{
		To:             args.To,
		Value:          args.Value,
		Data:           args.Data,
		Operation:      args.Operation,
		SafeTxGas:      args.SafeTxGas,
		BaseGas:        args.BaseGas,
		GasPrice:       args.GasPrice,
		GasToken:       args.GasToken,
		RefundReceiver: args.RefundReceiver,
	}.tx()
	success, err := a.ExecTransaction(ctx, env, tx, args.Signatures)
	if err != nil {
		return nil, err
	}
	return []interface{}{success}, nil
}

type moduleArgs struct {
	To        common.Address
	Value     *big.Int
	Data      []byte
	Operation uint8
}

func (a *Account) handleExecFromModule(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args moduleArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	success, _, err := a.ExecFromModule(ctx, env, args.To, args.Value, args.Data, quorum.Operation(args.Operation))
	if err != nil {
		return nil, err
	}
	return []interface{}{success}, nil
}

func (a *Account) handleExecFromModuleReturnData(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args moduleArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	success, ret, err := a.ExecFromModule(ctx, env, args.To, args.Value, args.Data, quorum.Operation(args.Operation))
	if err != nil {
		return nil, err
	}
	return []interface{}{success, nonNil(ret)}, nil
}

func handleApproveHash(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return nil, ApproveHash(env, call.Args[0].([32]byte))
}

func handleApprovedHashes(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	owner := call.Args[0].(common.Address)
	hash := call.Args[1].([32]byte)
	return []interface{}{env.GetState(sigs.ApprovalSlot(owner, hash)).Big()}, nil
}

func handleCheckSignatures(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	digest := call.Args[0].([32]byte)
	return nil, sigs.CheckSignatures(ctx, env, digest, call.Args[2].([]byte))
}

func handleCheckNSignatures(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	digest := call.Args[0].([32]byte)
	required := call.Args[3].(*big.Int)
	if !required.IsUint64() {
		return nil, errors.Wrap(errors.ErrSignature, "GS020: signatures data too short")
	}
	return nil, sigs.Check(ctx, env, digest, call.Args[2].([]byte), required.Uint64())
}

func handleChangeMasterCopy(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return nil, ChangeMasterCopy(env, call.Args[0].(common.Address))
}

func handleSetFallbackHandler(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return nil, SetFallbackHandler(env, call.Args[0].(common.Address))
}

func handleNonce(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{Nonce(env)}, nil
}

func handleChainID(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{quorum.GetChainID(ctx)}, nil
}

func handleVersion(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{quorum.Version}, nil
}

func handleDomainSeparator(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{DomainSeparator(ctx, env)}, nil
}

func decodeHashArgs(call quorum.MethodCall) (txhash.Tx, error) {
	var args struct {
		To             common.Address
		Value          *big.Int
		Data           []byte
		Operation      uint8
		SafeTxGas      *big.Int
		BaseGas        *big.Int
		GasPrice       *big.Int
		GasToken       common.Address
		RefundReceiver common.Address
		Nonce          *big.Int
	}
	if err := call.Decode(&args); err != nil {
		return txhash.Tx{}, err
	}
	tx := txArgs{
		To:             args.To,
		Value:          args.Value,
		Data:           args.Data,
		Operation:      args.Operation,
		SafeTxGas:      args.SafeTxGas,
		BaseGas:        args.BaseGas,
		GasPrice:       args.GasPrice,
		GasToken:       args.GasToken,
		RefundReceiver: args.RefundReceiver,
	}.tx()
	tx.Nonce = args.Nonce
	return tx, nil
}

func handleTransactionHash(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	tx, err := decodeHashArgs(call)
	if err != nil {
		return nil, err
	}
	digest, err := txhash.Digest(tx, DomainSeparator(ctx, env))
	if err != nil {
		return nil, err
	}
	return []interface{}{digest}, nil
}

func handleEncodeTransactionData(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	tx, err := decodeHashArgs(call)
	if err != nil {
		return nil, err
	}
	encoded, err := txhash.Encode(tx, DomainSeparator(ctx, env))
	if err != nil {
		return nil, err
	}
	return []interface{}{encoded}, nil
}

// maxStorageRead bounds the number of slots getStorageAt reads at once.
const maxStorageRead = 1 << 16

func handleStorageAt(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	offset := call.Args[0].(*big.Int)
	length := call.Args[1].(*big.Int)
	if !length.IsUint64() || length.Uint64() > maxStorageRead {
		return nil, errors.Field("Length", errors.ErrInput, "at most %d slots can be read at once", maxStorageRead)
	}
	res := []byte{}
	slot := new(big.Int).Set(offset)
	for i := uint64(0); i < length.Uint64(); i++ {
		res = append(res, env.GetState(quorum.BigWord(slot)).Bytes()...)
		slot.Add(slot, big.NewInt(1))
	}
	return []interface{}{res}, nil
}
