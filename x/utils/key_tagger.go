package utils

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
)

// KeyTagger is a decorator that records all storage writes performed by
// a frame and reports them to a Changes collector once the frame
// succeeds. Writes of failing frames are dropped.
//
// A frame may succeed while one of its ancestors fails later. The
// collector then still lists its writes, so it describes attempted
// rather than committed changes.
type KeyTagger struct {
	changes *Changes
}

var _ quorum.Decorator = KeyTagger{}

// NewKeyTagger creates a KeyTagger decorator reporting to changes
func NewKeyTagger(changes *Changes) KeyTagger {
	return KeyTagger{changes: changes}
}

// Run passes a recording environment into the contract.
func (k KeyTagger) Run(ctx context.Context, env quorum.Env, input []byte, next quorum.Contract) ([]byte, error) {
	rec := &recordingEnv{Env: env, writes: make(map[common.Hash]common.Hash)}
	res, err := next.Run(ctx, rec, input)
	if err != nil {
		return res, err
	}
	k.changes.add(env.Self(), rec.writes)
	return res, nil
}

// recordingEnv remembers the last value written to each slot.
type recordingEnv struct {
	quorum.Env
	writes map[common.Hash]common.Hash
}

func (r *recordingEnv) SetState(slot, value common.Hash) {
	r.Env.SetState(slot, value)
	r.writes[slot] = value
}

// Change is a storage slot write.
type Change struct {
	Address common.Address
	Slot    common.Hash
	Value   common.Hash
}

// Changes collects storage writes. It is safe for concurrent use.
type Changes struct {
	mu     sync.Mutex
	writes map[common.Address]map[common.Hash]common.Hash
}

// NewChanges returns an empty collector.
func NewChanges() *Changes {
	return &Changes{writes: make(map[common.Address]map[common.Hash]common.Hash)}
}

func (c *Changes) add(addr common.Address, writes map[common.Hash]common.Hash) {
	if len(writes) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.writes[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash, len(writes))
		c.writes[addr] = m
	}
	for k, v := range writes {
		m[k] = v
	}
}

// List returns the recorded writes sorted by address and slot.
func (c *Changes) List() []Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	var res []Change
	for addr, m := range c.writes {
		for slot, value := range m {
			res = append(res, Change{Address: addr, Slot: slot, Value: value})
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if c := bytes.Compare(res[i].Address.Bytes(), res[j].Address.Bytes()); c != 0 {
			return c < 0
		}
		return bytes.Compare(res[i].Slot.Bytes(), res[j].Slot.Bytes()) < 0
	})
	return res
}

// Reset forgets all recorded writes.
func (c *Changes) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = make(map[common.Address]map[common.Hash]common.Hash)
}
