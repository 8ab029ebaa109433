package quorumtest

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Reverter fails every call with ErrRevert.
var Reverter = quorum.ContractFunc(func(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	return nil, errors.Wrap(errors.ErrRevert, "reverter")
})

// RecordedSlot holds the hash of the last input a Recorder received.
var RecordedSlot = quorum.Slot(0)

// CounterSlot holds the number of calls a Recorder received.
var CounterSlot = quorum.Slot(1)

// RecordedTopic is the only topic of the log a Recorder emits.
var RecordedTopic = crypto.Keccak256Hash([]byte("Recorded(address,uint256)"))

// Recorder stores the hash of every input it receives, counts calls and
// emits a log with the caller and the value. It echoes the input.
var Recorder = quorum.ContractFunc(func(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	env.SetState(RecordedSlot, crypto.Keccak256Hash(input))
	count := env.GetState(CounterSlot).Big()
	env.SetState(CounterSlot, quorum.BigWord(count.Add(count, big.NewInt(1))))
	data := append(quorum.AddressWord(env.Caller()).Bytes(), common.BigToHash(env.Value()).Bytes()...)
	env.Emit([]common.Hash{RecordedTopic}, data)
	return input, nil
})

// Burner consumes all gas it is given.
var Burner = quorum.ContractFunc(func(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	env.UseGas(env.GasLeft() + 1)
	return nil, nil
})
