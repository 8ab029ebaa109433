package host

import (
	"context"
	"reflect"

	"github.com/iov-one/quorum"
)

// Decorators holds a chain of decorators, not yet resolved by a Contract
type Decorators struct {
	chain []quorum.Decorator
}

/*
ChainDecorators takes a chain of decorators,
and upon adding a final Contract,
returns a Contract that will execute this whole stack.

  host.ChainDecorators(
    utils.NewLogging(),
    utils.NewRecovery(),
  ).WithContract(
    safe.NewContract(),
  )
*/
func ChainDecorators(chain ...quorum.Decorator) Decorators {
	chain = cutoffNil(chain)
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain
func (d Decorators) Chain(chain ...quorum.Decorator) Decorators {
	chain = cutoffNil(chain)
	newChain := append(append([]quorum.Decorator(nil), d.chain...), chain...)
	return Decorators{newChain}
}

// cutoffNil will in-place remove all all nil values from given slice.
func cutoffNil(ds []quorum.Decorator) []quorum.Decorator {
	var cutoff int
	for i := 0; i < len(ds); i++ {
		ds[i-cutoff] = ds[i]
		if ds[i] == nil || (reflect.ValueOf(ds[i]).Kind() == reflect.Ptr && reflect.ValueOf(ds[i]).IsNil()) {
			cutoff++
		}
	}
	return ds[:len(ds)-cutoff]
}

// WithContract resolves the stack and returns a concrete Contract
// that will pass through the chain of decorators before calling
// the final Contract.
func (d Decorators) WithContract(c quorum.Contract) quorum.Contract {
	// start wrapping the contract from last decorator to first one
	// as the top of the chain is understood to be executed first
	for i := len(d.chain) - 1; i >= 0; i-- {
		c = step{d: d.chain[i], next: c}
	}
	return c
}

// step captures one step executing a decorator around a
// specific Contract.
type step struct {
	d    quorum.Decorator
	next quorum.Contract
}

var _ quorum.Contract = step{}

// Run passes the contract into the decorator, implements Contract
func (s step) Run(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	return s.d.Run(ctx, env, input, s.next)
}
