package modules

import (
	"context"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x"
)

// RegisterRoutes registers the module management methods. Mutators run
// only when auth accepts the call.
func RegisterRoutes(r *quorum.Router, auth x.Authenticator) {
	r.Handle("enableModule", x.Guarded(auth, handleEnable))
	r.Handle("disableModule", x.Guarded(auth, handleDisable))
	r.Handle("isModuleEnabled", handleIsEnabled)
	r.Handle("getModulesPaginated", handlePage)
}

func handleEnable(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return nil, Enable(env, call.Args[0].(common.Address))
}

type disableArgs struct {
	PrevModule common.Address
	Module     common.Address
}

func handleDisable(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args disableArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	return nil, Disable(env, args.PrevModule, args.Module)
}

func handleIsEnabled(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return []interface{}{IsEnabled(env, call.Args[0].(common.Address))}, nil
}

type pageArgs struct {
	Start    common.Address
	PageSize *big.Int
}

func handlePage(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	var args pageArgs
	if err := call.Decode(&args); err != nil {
		return nil, err
	}
	size := math.MaxInt32
	if args.PageSize.IsInt64() && args.PageSize.Int64() < int64(size) {
		size = int(args.PageSize.Int64())
	}
	items, next, err := Page(env, args.Start, size)
	if err != nil {
		return nil, err
	}
	return []interface{}{items, next}, nil
}
