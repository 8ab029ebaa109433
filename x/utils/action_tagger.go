package utils

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/quorum"
)

// ActionTagger adds the called method selector to the logging context of
// a frame, under ActionKey. Input shorter than a selector is tagged as a
// receive.
//
// It should come after Logging in the decorator chain, so that frame logs
// carry the tag of the frame and not of its parent.
type ActionTagger struct{}

var _ quorum.Decorator = ActionTagger{}

// ActionKey is used by ActionTagger as the logging key
const ActionKey = "action"

// ReceiveAction tags frames without a method selector.
const ReceiveAction = "receive"

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Run tags the context and passes the call along.
func (ActionTagger) Run(ctx context.Context, env quorum.Env, input []byte, next quorum.Contract) ([]byte, error) {
	return next.Run(quorum.WithLogInfo(ctx, ActionKey, Action(input)), env, input)
}

// Action returns the tag of a frame with given input.
func Action(input []byte) string {
	if len(input) < 4 {
		return ReceiveAction
	}
	return hexutil.Encode(input[:4])
}
