package orm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// LinkedSet is a set of addresses stored under a mapping base slot.
type LinkedSet struct {
	base common.Hash
}

// NewLinkedSet returns a set whose mapping lives at the given base slot.
func NewLinkedSet(base common.Hash) LinkedSet {
	return LinkedSet{base: base}
}

// Base returns the mapping base slot.
func (s LinkedSet) Base() common.Hash {
	return s.base
}

// Next returns the successor of given member, the zero address when the
// address is not linked at all.
func (s LinkedSet) Next(st quorum.StateReader, addr common.Address) common.Address {
	return quorum.WordAddress(st.GetState(s.slot(addr)))
}

func (s LinkedSet) setNext(st quorum.State, addr, next common.Address) {
	st.SetState(s.slot(addr), quorum.AddressWord(next))
}

func (s LinkedSet) slot(addr common.Address) common.Hash {
	return quorum.MappingSlot(quorum.AddressWord(addr), s.base)
}

// Initialized returns true once the sentinel links to something.
func (s LinkedSet) Initialized(st quorum.StateReader) bool {
	return s.Next(st, quorum.Sentinel) != (common.Address{})
}

// Init creates an empty set.
func (s LinkedSet) Init(st quorum.State) error {
	if s.Initialized(st) {
		return errors.Wrap(errors.ErrState, "already initialized")
	}
	s.setNext(st, quorum.Sentinel, quorum.Sentinel)
	return nil
}

// Setup creates a set holding given members, in order. It fails if the set
// is already initialized, any member is reserved or any member repeats.
func (s LinkedSet) Setup(st quorum.State, members []common.Address) error {
	if s.Initialized(st) {
		return errors.Wrap(errors.ErrState, "already initialized")
	}
	current := quorum.Sentinel
	for i, m := range members {
		field := fmt.Sprintf("Members.%d", i)
		if quorum.IsReserved(m) || m == current {
			return errors.Field(field, errors.ErrInput, "invalid member %s", m.Hex())
		}
		if s.Next(st, m) != (common.Address{}) {
			return errors.Field(field, errors.ErrDuplicate, "member %s", m.Hex())
		}
		s.setNext(st, current, m)
		current = m
	}
	s.setNext(st, current, quorum.Sentinel)
	return nil
}

// Contains returns true if addr is a member.
func (s LinkedSet) Contains(st quorum.StateReader, addr common.Address) bool {
	return addr != quorum.Sentinel && s.Next(st, addr) != (common.Address{})
}

// Add inserts addr at the head of the list.
func (s LinkedSet) Add(st quorum.State, addr common.Address) error {
	if quorum.IsReserved(addr) {
		return errors.Wrapf(errors.ErrInput, "invalid member %s", addr.Hex())
	}
	if s.Next(st, addr) != (common.Address{}) {
		return errors.Wrapf(errors.ErrDuplicate, "member %s", addr.Hex())
	}
	head := s.Next(st, quorum.Sentinel)
	if head == (common.Address{}) {
		head = quorum.Sentinel
	}
	s.setNext(st, addr, head)
	s.setNext(st, quorum.Sentinel, addr)
	return nil
}

// Remove unlinks addr. prev must point to addr.
func (s LinkedSet) Remove(st quorum.State, prev, addr common.Address) error {
	if quorum.IsReserved(addr) {
		return errors.Wrapf(errors.ErrInput, "invalid member %s", addr.Hex())
	}
	if s.Next(st, prev) != addr {
		return errors.Wrapf(errors.ErrNotFound, "%s does not precede %s", prev.Hex(), addr.Hex())
	}
	s.setNext(st, prev, s.Next(st, addr))
	s.setNext(st, addr, common.Address{})
	return nil
}

// Swap replaces old with replacement at the same position. prev must point
// to old.
func (s LinkedSet) Swap(st quorum.State, prev, old, replacement common.Address) error {
	if quorum.IsReserved(replacement) {
		return errors.Wrapf(errors.ErrInput, "invalid member %s", replacement.Hex())
	}
	if s.Next(st, replacement) != (common.Address{}) {
		return errors.Wrapf(errors.ErrDuplicate, "member %s", replacement.Hex())
	}
	if quorum.IsReserved(old) {
		return errors.Wrapf(errors.ErrInput, "invalid member %s", old.Hex())
	}
	if s.Next(st, prev) != old {
		return errors.Wrapf(errors.ErrNotFound, "%s does not precede %s", prev.Hex(), old.Hex())
	}
	s.setNext(st, replacement, s.Next(st, old))
	s.setNext(st, prev, replacement)
	s.setNext(st, old, common.Address{})
	return nil
}

// List returns all members in list order.
func (s LinkedSet) List(st quorum.StateReader) []common.Address {
	var res []common.Address
	for cur := s.Next(st, quorum.Sentinel); !quorum.IsReserved(cur); cur = s.Next(st, cur) {
		res = append(res, cur)
	}
	return res
}

// Page returns up to size members following start, which is either the
// sentinel or a member. next is the sentinel when the end of the list was
// reached, otherwise the last returned member, to be used as start of the
// following page.
func (s LinkedSet) Page(st quorum.StateReader, start common.Address, size int) ([]common.Address, common.Address, error) {
	if start != quorum.Sentinel && !s.Contains(st, start) {
		return nil, common.Address{}, errors.Wrapf(errors.ErrInput, "invalid start %s", start.Hex())
	}
	if size <= 0 {
		return nil, common.Address{}, errors.Wrap(errors.ErrInput, "page size must be positive")
	}
	var items []common.Address
	cur := s.Next(st, start)
	for !quorum.IsReserved(cur) && len(items) < size {
		items = append(items, cur)
		cur = s.Next(st, cur)
	}
	next := cur
	if next != quorum.Sentinel && len(items) > 0 {
		next = items[len(items)-1]
	}
	return items, next, nil
}
