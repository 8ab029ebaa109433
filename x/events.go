package x

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Emit logs the named event of given ABI. args are the event inputs in
// declaration order, indexed ones become topics.
//
// Packing failures are coding errors and panic.
func Emit(env quorum.Env, a abi.ABI, name string, args ...interface{}) {
	topics, data, err := EncodeEvent(a, name, args...)
	if err != nil {
		panic(err)
	}
	env.Emit(topics, data)
}

// EncodeEvent returns the topics and data of a log of the named event.
func EncodeEvent(a abi.ABI, name string, args ...interface{}) ([]common.Hash, []byte, error) {
	event, ok := a.Events[name]
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrHuman, "unknown event %s", name)
	}
	if len(args) != len(event.Inputs) {
		return nil, nil, errors.Wrapf(errors.ErrHuman, "event %s: want %d arguments, got %d", name, len(event.Inputs), len(args))
	}
	topics := []common.Hash{event.ID}
	var (
		indexed []interface{}
		plain   []interface{}
	)
	for i, in := range event.Inputs {
		if in.Indexed {
			indexed = append(indexed, args[i])
		} else {
			plain = append(plain, args[i])
		}
	}
	for _, arg := range indexed {
		rules, err := abi.MakeTopics([]interface{}{arg})
		if err != nil {
			return nil, nil, errors.Wrapf(errors.ErrHuman, "event %s: %s", name, err)
		}
		topics = append(topics, rules[0][0])
	}
	data, err := event.Inputs.NonIndexed().Pack(plain...)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrHuman, "event %s: %s", name, err)
	}
	return topics, data, nil
}

// DecodeEvent unpacks the non indexed inputs of a log of the named event.
// It fails if the log is of another event.
func DecodeEvent(a abi.ABI, name string, topics []common.Hash, data []byte) ([]interface{}, error) {
	event, ok := a.Events[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "unknown event %s", name)
	}
	if len(topics) == 0 || topics[0] != event.ID {
		return nil, errors.Wrapf(errors.ErrType, "not a %s log", name)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "event %s: %s", name, err)
	}
	return values, nil
}
