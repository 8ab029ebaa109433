/*
Package modules keeps the set of modules enabled on an account. A module
may trigger executions without a signature bundle.
*/
package modules

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/iov-one/quorum/x"
)

// ModulesSlot is the base slot of the module linked set.
var ModulesSlot = quorum.Slot(1)

// ABI declares the module management methods and events.
const ABI = `[
	{"type":"function","name":"enableModule","stateMutability":"nonpayable",
	 "inputs":[{"name":"module","type":"address"}],"outputs":[]},
	{"type":"function","name":"disableModule","stateMutability":"nonpayable",
	 "inputs":[{"name":"prevModule","type":"address"},{"name":"module","type":"address"}],"outputs":[]},
	{"type":"function","name":"isModuleEnabled","stateMutability":"view",
	 "inputs":[{"name":"module","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getModulesPaginated","stateMutability":"view",
	 "inputs":[{"name":"start","type":"address"},{"name":"pageSize","type":"uint256"}],
	 "outputs":[{"name":"array","type":"address[]"},{"name":"next","type":"address"}]},
	{"type":"event","name":"EnabledModule","anonymous":false,
	 "inputs":[{"name":"module","type":"address","indexed":false}]},
	{"type":"event","name":"DisabledModule","anonymous":false,
	 "inputs":[{"name":"module","type":"address","indexed":false}]}
]`

var modulesABI = quorum.MustParseABI(ABI)

// Definition returns the parsed ABI.
func Definition() abi.ABI {
	return modulesABI
}

var set = orm.NewLinkedSet(ModulesSlot)

// Setup initializes an empty module set. It can be called only once.
func Setup(st quorum.State) error {
	if set.Initialized(st) {
		return errors.Wrap(errors.ErrState, "GS100: modules have already been initialized")
	}
	return set.Init(st)
}

// Enable adds a module.
func Enable(env quorum.Env, module common.Address) error {
	if err := set.Add(env, module); err != nil {
		return reason(err)
	}
	x.Emit(env, modulesABI, "EnabledModule", module)
	return nil
}

// Disable removes module, which must follow prev in the list.
func Disable(env quorum.Env, prev, module common.Address) error {
	if err := set.Remove(env, prev, module); err != nil {
		return reason(err)
	}
	x.Emit(env, modulesABI, "DisabledModule", module)
	return nil
}

// IsEnabled returns true if module may execute on behalf of the account.
func IsEnabled(st quorum.StateReader, module common.Address) bool {
	return set.Contains(st, module)
}

// Page returns up to size modules following start, which is either the
// sentinel or an enabled module. next is the sentinel once the list is
// exhausted, otherwise the start of the following page.
func Page(st quorum.StateReader, start common.Address, size int) ([]common.Address, common.Address, error) {
	if start != quorum.Sentinel && !set.Contains(st, start) {
		return nil, common.Address{}, errors.Wrap(errors.ErrInput, "GS105: invalid starting point for fetching paginated modules")
	}
	if size <= 0 {
		return nil, common.Address{}, errors.Wrap(errors.ErrInput, "GS106: invalid page size for fetching paginated modules")
	}
	return set.Page(st, start, size)
}

func reason(err error) error {
	switch {
	case errors.ErrInput.Is(err):
		return errors.Wrap(err, "GS101: invalid module address provided")
	case errors.ErrDuplicate.Is(err):
		return errors.Wrap(err, "GS102: module has already been added")
	case errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "GS103: invalid prevModule, module pair provided")
	}
	return err
}
