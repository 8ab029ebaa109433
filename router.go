package quorum

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/iov-one/quorum/errors"
)

// MethodCall is a decoded ABI method invocation.
type MethodCall struct {
	Method *abi.Method
	Args   []interface{}
}

// Decode copies the call arguments into v, which must be a pointer to a
// struct whose field names are the camel cased argument names.
func (c MethodCall) Decode(v interface{}) error {
	if err := c.Method.Inputs.Copy(v, c.Args); err != nil {
		return errors.Wrapf(errors.ErrInput, "decode %s: %s", c.Method.Name, err)
	}
	return nil
}

// MethodHandler processes a decoded call and returns the values to encode
// as the method outputs.
type MethodHandler func(ctx context.Context, env Env, call MethodCall) ([]interface{}, error)

// Router dispatches calls to handlers by ABI method selector.
type Router struct {
	abi      abi.ABI
	handlers map[string]MethodHandler
	receive  Contract
	fallback Contract
}

var _ Contract = (*Router)(nil)

// NewRouter creates a router for methods of the given ABI.
func NewRouter(a abi.ABI) *Router {
	return &Router{
		abi:      a,
		handlers: make(map[string]MethodHandler),
	}
}

// Handle registers a handler for a method declared in the ABI. Registering
// an unknown method or registering a method twice panics.
func (r *Router) Handle(method string, h MethodHandler) {
	if _, ok := r.abi.Methods[method]; !ok {
		panic("method " + method + " not declared in the ABI")
	}
	if _, ok := r.handlers[method]; ok {
		panic("method " + method + " already registered")
	}
	r.handlers[method] = h
}

// Receive sets the contract called for plain value transfers with no input.
func (r *Router) Receive(c Contract) {
	r.receive = c
}

// Fallback sets the contract called when no handler matches the input.
func (r *Router) Fallback(c Contract) {
	r.fallback = c
}

// ABI returns the interface this router serves.
func (r *Router) ABI() abi.ABI {
	return r.abi
}

// Run implements Contract.
func (r *Router) Run(ctx context.Context, env Env, input []byte) ([]byte, error) {
	if len(input) == 0 && r.receive != nil {
		return r.receive.Run(ctx, env, input)
	}
	if len(input) < 4 {
		return r.runFallback(ctx, env, input)
	}
	method, err := r.abi.MethodById(input[:4])
	if err != nil {
		return r.runFallback(ctx, env, input)
	}
	h, ok := r.handlers[method.Name]
	if !ok {
		return r.runFallback(ctx, env, input)
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unpack %s: %s", method.Name, err)
	}
	out, err := h(ctx, env, MethodCall{Method: method, Args: args})
	if err != nil {
		return nil, err
	}
	res, err := method.Outputs.Pack(out...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "pack %s: %s", method.Name, err)
	}
	return res, nil
}

func (r *Router) runFallback(ctx context.Context, env Env, input []byte) ([]byte, error) {
	if r.fallback == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "no method matches the input")
	}
	return r.fallback.Run(ctx, env, input)
}

// MustParseABI parses a JSON ABI definition and panics on failure. Use it
// only for package level definitions.
func MustParseABI(def string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return a
}

// MergeABI combines the methods and events of given definitions. It panics
// when two definitions declare the same name differently.
func MergeABI(defs ...abi.ABI) abi.ABI {
	res := abi.ABI{
		Methods: make(map[string]abi.Method),
		Events:  make(map[string]abi.Event),
		Errors:  make(map[string]abi.Error),
	}
	for _, d := range defs {
		for name, m := range d.Methods {
			if prev, ok := res.Methods[name]; ok && prev.Sig != m.Sig {
				panic("conflicting method " + name)
			}
			res.Methods[name] = m
		}
		for name, e := range d.Events {
			if prev, ok := res.Events[name]; ok && prev.Sig != e.Sig {
				panic("conflicting event " + name)
			}
			res.Events[name] = e
		}
		for name, e := range d.Errors {
			res.Errors[name] = e
		}
	}
	return res
}
