package x

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Authenticator decides whether the current frame may run an
// administrative method. It is passed into the RegisterRoutes functions of
// extensions, so that another policy can be plugged in without touching
// them.
type Authenticator interface {
	Authorize(ctx context.Context, env quorum.Env) error
}

// SelfAuth accepts only calls an account makes to itself. Administrative
// methods are thus reachable only through an authorized execution.
type SelfAuth struct{}

var _ Authenticator = SelfAuth{}

// Authorize implements Authenticator.
func (SelfAuth) Authorize(ctx context.Context, env quorum.Env) error {
	if env.Caller() != env.Self() {
		return errors.Wrap(errors.ErrUnauthorized, "GS031: method can only be called from this contract")
	}
	return nil
}

// Guarded wraps a handler so that it runs only once auth accepts the call.
func Guarded(auth Authenticator, h quorum.MethodHandler) quorum.MethodHandler {
	return func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		if err := auth.Authorize(ctx, env); err != nil {
			return nil, err
		}
		return h(ctx, env, call)
	}
}
