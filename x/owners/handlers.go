package owners

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
)

// RegisterRoutes registers the owner management methods. Mutators run only
// when auth accepts the call.
func RegisterRoutes(r *quorum.Router, auth x.Authenticator) {
	r.Handle("addOwnerWithThreshold", x.Guarded(auth, handleAddOwner))
	r.Handle("removeOwner", x.Guarded(auth, handleRemoveOwner))
	r.Handle("swapOwner", x.Guarded(auth, handleSwapOwner))
	r.Handle("changeThreshold", x.Guarded(auth, handleChangeThreshold))
	r.Handle("getThreshold", handleGetThreshold)
	r.Handle("isOwner", handleIsOwner)
	r.Handle("getOwners", handleGetOwners)
}

type addOwnerArgs struct {
	Owner     common.Address
	Threshold *big.Int
}

func handleAddOwner(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args addOwnerArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	threshold, err := thresholdArg(args.Threshold)
	if err != nil {
		return nil, err
	}
	return nil, Add(env, args.Owner, threshold)
}

type removeOwnerArgs struct {
	PrevOwner common.Address
	Owner     common.Address
	Threshold *big.Int
}

func handleRemoveOwner(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args removeOwnerArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	threshold, err := thresholdArg(args.Threshold)
	if err != nil {
		return nil, err
	}
	return nil, Remove(env, args.PrevOwner, args.Owner, threshold)
}

type swapOwnerArgs struct {
	PrevOwner common.Address
	OldOwner  common.Address
	NewOwner  common.Address
}

func handleSwapOwner(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args swapOwnerArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	return nil, Swap(env, args.PrevOwner, args.OldOwner, args.NewOwner)
}

func handleChangeThreshold(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	threshold, err := thresholdArg(call.Args[0].(*big.Int))
	if err != nil {
		return nil, err
	}
	return nil, ChangeThreshold(env, threshold)
}

func handleGetThreshold(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{new(big.Int).SetUint64(Threshold(env))}, nil
}

func handleIsOwner(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{IsOwner(env, call.Args[0].(common.Address))}, nil
}

func handleGetOwners(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	owners := List(env)
	if owners == nil {
		owners = []common.Address{}
	}
	return []interface{}{owners}, nil
}

// thresholdArg narrows a threshold argument. Values that do not fit are
// larger than any owner count.
func thresholdArg(n *big.Int) (uint64, error) {
	if !n.IsUint64() {
		return 0, errors.Wrap(errors.ErrThreshold, "GS201: threshold cannot exceed owner count")
	}
	return n.Uint64(), nil
}
