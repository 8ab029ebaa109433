package utils

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	self   = common.HexToAddress("0x5afe")
	caller = common.HexToAddress("0xca11e4")
)

// panicContract always panics with the given value.
type panicContract struct {
	value interface{}
}

func (p panicContract) Run(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	panic(p.value)
}

// writeContract stores value at slot and then fails with err, if any.
type writeContract struct {
	slot, value common.Hash
	err         error
}

func (w writeContract) Run(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	env.SetState(w.slot, w.value)
	return input, w.err
}

// logContract writes one log line.
var logContract = quorum.ContractFunc(func(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	quorum.GetLogger(ctx).Info("running")
	return nil, nil
})

var errWrite = errors.Wrap(errors.ErrRevert, "write failed")

// bufferLogger returns a context logging to the returned buffer.
func bufferLogger() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))
	return quorum.WithLogger(context.Background(), logger), &buf
}
