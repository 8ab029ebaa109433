package quorum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the quorum module

const (
	contextKeyChainID contextKey = iota
	contextKeyLogger
	contextKeyOrigin
	contextKeyGasPrice
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()
)

// WithChainID sets the chain identifier for the context.
// Panics if already set, or the identifier is not positive.
func WithChainID(ctx context.Context, chainID *big.Int) context.Context {
	if ctx.Value(contextKeyChainID) != nil {
		panic("Chain ID already set in context")
	}
	if chainID == nil || chainID.Sign() <= 0 {
		panic("Chain ID must be a positive number")
	}
	return context.WithValue(ctx, contextKeyChainID, new(big.Int).Set(chainID))
}

// GetChainID returns the chain identifier or zero if not set.
func GetChainID(ctx context.Context) *big.Int {
	val, _ := ctx.Value(contextKeyChainID).(*big.Int)
	if val == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(val)
}

// WithOrigin sets the externally owned account that submitted the
// top-level message.
func WithOrigin(ctx context.Context, origin common.Address) context.Context {
	return context.WithValue(ctx, contextKeyOrigin, origin)
}

// GetOrigin returns the submitter of the top-level message.
func GetOrigin(ctx context.Context) common.Address {
	val, _ := ctx.Value(contextKeyOrigin).(common.Address)
	return val
}

// WithGasPrice sets the price per gas unit the submitter pays.
func WithGasPrice(ctx context.Context, price *big.Int) context.Context {
	if price == nil {
		price = new(big.Int)
	}
	return context.WithValue(ctx, contextKeyGasPrice, new(big.Int).Set(price))
}

// GetGasPrice returns the price per gas unit of the top-level message.
func GetGasPrice(ctx context.Context) *big.Int {
	val, _ := ctx.Value(contextKeyGasPrice).(*big.Int)
	if val == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(val)
}

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}
