package quorumtest

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
)

// State is an in memory quorum.State. Zero words are never stored, so two
// states holding the same values compare equal.
type State map[common.Hash]common.Hash

var _ quorum.State = State{}

// NewState returns an empty storage.
func NewState() State {
	return make(State)
}

// GetState implements quorum.StateReader.
func (s State) GetState(slot common.Hash) common.Hash {
	return s[slot]
}

// SetState implements quorum.State.
func (s State) SetState(slot, value common.Hash) {
	if value == (common.Hash{}) {
		delete(s, slot)
		return
	}
	s[slot] = value
}

// Clone returns an independent copy.
func (s State) Clone() State {
	c := make(State, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}
