package owners

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/iov-one/quorum/x"
)

var (
	// OwnersSlot is the base slot of the owner linked set.
	OwnersSlot = quorum.Slot(2)
	// CountSlot holds the number of owners.
	CountSlot = quorum.Slot(3)
	// ThresholdSlot holds the number of signatures an execution requires.
	ThresholdSlot = quorum.Slot(4)
)

// ABI declares the owner management methods and events.
const ABI = `[
	{"type":"function","name":"addOwnerWithThreshold","stateMutability":"nonpayable",
	 "inputs":[{"name":"owner","type":"address"},{"name":"_threshold","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"removeOwner","stateMutability":"nonpayable",
	 "inputs":[{"name":"prevOwner","type":"address"},{"name":"owner","type":"address"},{"name":"_threshold","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"swapOwner","stateMutability":"nonpayable",
	 "inputs":[{"name":"prevOwner","type":"address"},{"name":"oldOwner","type":"address"},{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"changeThreshold","stateMutability":"nonpayable",
	 "inputs":[{"name":"_threshold","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getThreshold","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"isOwner","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getOwners","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"event","name":"AddedOwner","anonymous":false,
	 "inputs":[{"name":"owner","type":"address","indexed":false}]},
	{"type":"event","name":"RemovedOwner","anonymous":false,
	 "inputs":[{"name":"owner","type":"address","indexed":false}]},
	{"type":"event","name":"ChangedThreshold","anonymous":false,
	 "inputs":[{"name":"threshold","type":"uint256","indexed":false}]}
]`

var ownersABI = quorum.MustParseABI(ABI)

// Definition returns the parsed ABI.
func Definition() abi.ABI {
	return ownersABI
}

var set = orm.NewLinkedSet(OwnersSlot)

// Threshold returns the current threshold, zero before setup.
func Threshold(st quorum.StateReader) uint64 {
	return st.GetState(ThresholdSlot).Big().Uint64()
}

// Count returns the number of owners.
func Count(st quorum.StateReader) uint64 {
	return st.GetState(CountSlot).Big().Uint64()
}

// IsOwner returns true if addr is an owner.
func IsOwner(st quorum.StateReader, addr common.Address) bool {
	return set.Contains(st, addr)
}

// List returns all owners, the most recently added first.
func List(st quorum.StateReader) []common.Address {
	return set.List(st)
}

// Setup initializes the owner set. It can be called only once.
func Setup(env quorum.Env, owners []common.Address, threshold uint64) error {
	if Threshold(env) != 0 {
		return errors.Wrap(errors.ErrState, "GS200: owners have already been setup")
	}
	if threshold > uint64(len(owners)) {
		return errors.Wrapf(errors.ErrThreshold, "GS201: threshold %d exceeds %d owners", threshold, len(owners))
	}
	if threshold == 0 {
		return errors.Wrap(errors.ErrThreshold, "GS202: threshold needs to be greater than 0")
	}
	for i, o := range owners {
		if o == env.Self() {
			return errors.Field(fieldName(i), errors.ErrInput, "GS203: account cannot own itself")
		}
	}
	if err := set.Setup(env, owners); err != nil {
		return reason(err)
	}
	env.SetState(CountSlot, quorum.Uint64Word(uint64(len(owners))))
	env.SetState(ThresholdSlot, quorum.Uint64Word(threshold))
	return nil
}

// Add adds an owner and updates the threshold when it differs.
func Add(env quorum.Env, owner common.Address, threshold uint64) error {
	if owner == env.Self() {
		return errors.Wrap(errors.ErrInput, "GS203: account cannot own itself")
	}
	count := Count(env) + 1
	if err := checkThreshold(threshold, count); err != nil {
		return err
	}
	if err := set.Add(env, owner); err != nil {
		return reason(err)
	}
	env.SetState(CountSlot, quorum.Uint64Word(count))
	x.Emit(env, ownersABI, "AddedOwner", owner)
	return updateThreshold(env, threshold)
}

// Remove removes owner, which must follow prev in the list, and updates
// the threshold when it differs.
func Remove(env quorum.Env, prev, owner common.Address, threshold uint64) error {
	count := Count(env)
	if count == 0 {
		return errors.Wrap(errors.ErrState, "owners have not been setup")
	}
	if err := checkThreshold(threshold, count-1); err != nil {
		return err
	}
	if err := set.Remove(env, prev, owner); err != nil {
		return reason(err)
	}
	env.SetState(CountSlot, quorum.Uint64Word(count-1))
	x.Emit(env, ownersABI, "RemovedOwner", owner)
	return updateThreshold(env, threshold)
}

// Swap replaces old, which must follow prev in the list, with replacement.
func Swap(env quorum.Env, prev, old, replacement common.Address) error {
	if replacement == env.Self() {
		return errors.Wrap(errors.ErrInput, "GS203: account cannot own itself")
	}
	if err := set.Swap(env, prev, old, replacement); err != nil {
		return reason(err)
	}
	x.Emit(env, ownersABI, "RemovedOwner", old)
	x.Emit(env, ownersABI, "AddedOwner", replacement)
	return nil
}

// ChangeThreshold sets a new threshold.
func ChangeThreshold(env quorum.Env, threshold uint64) error {
	if err := checkThreshold(threshold, Count(env)); err != nil {
		return err
	}
	env.SetState(ThresholdSlot, quorum.Uint64Word(threshold))
	x.Emit(env, ownersABI, "ChangedThreshold", new(big.Int).SetUint64(threshold))
	return nil
}

func updateThreshold(env quorum.Env, threshold uint64) error {
	if Threshold(env) == threshold {
		return nil
	}
	return ChangeThreshold(env, threshold)
}

func checkThreshold(threshold, count uint64) error {
	if threshold > count {
		return errors.Wrapf(errors.ErrThreshold, "GS201: threshold %d exceeds %d owners", threshold, count)
	}
	if threshold == 0 {
		return errors.Wrap(errors.ErrThreshold, "GS202: threshold needs to be greater than 0")
	}
	return nil
}

// reason labels linked set failures with the reason codes clients match.
func reason(err error) error {
	switch {
	case errors.ErrInput.Is(err):
		return errors.Wrap(err, "GS203: invalid owner address provided")
	case errors.ErrDuplicate.Is(err):
		return errors.Wrap(err, "GS204: address is already an owner")
	case errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "GS205: invalid prevOwner, owner pair provided")
	}
	return err
}

func fieldName(i int) string {
	return "Owners." + strconv.Itoa(i)
}
