package guard

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x"
)

// RegisterRoutes registers setGuard, which runs only when auth accepts
// the call.
func RegisterRoutes(r *quorum.Router, auth x.Authenticator) {
	r.Handle("setGuard", x.Guarded(auth, handleSetGuard))
}

func handleSetGuard(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
	return nil, Set(ctx, env, call.Args[0].(common.Address))
}
