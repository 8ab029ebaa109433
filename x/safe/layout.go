package safe

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/modules"
	"github.com/iov-one/quorum/x/owners"
	"github.com/iov-one/quorum/x/sigs"
)

// Field describes one storage field of an account.
type Field struct {
	Name string
	Slot common.Hash
	Type string
}

// Layout describes the storage of one implementation version. Proxies
// keep their storage when they are pointed to another implementation, so
// a new version may only append fields.
type Layout struct {
	Version string
	Fields  []Field
}

// Layouts lists the storage layout of every known version, oldest first.
var Layouts = []Layout{
	{
		Version: "1.1.1",
		Fields: []Field{
			{Name: "singleton", Slot: SingletonSlot, Type: "address"},
			{Name: "modules", Slot: modules.ModulesSlot, Type: "mapping(address => address)"},
			{Name: "owners", Slot: owners.OwnersSlot, Type: "mapping(address => address)"},
			{Name: "ownerCount", Slot: owners.CountSlot, Type: "uint256"},
			{Name: "threshold", Slot: owners.ThresholdSlot, Type: "uint256"},
			{Name: "nonce", Slot: NonceSlot, Type: "uint256"},
			{Name: "domainSeparator", Slot: quorum.Slot(6), Type: "bytes32"},
			{Name: "signedMessages", Slot: quorum.Slot(7), Type: "mapping(bytes32 => uint256)"},
			{Name: "approvedHashes", Slot: sigs.ApprovedHashesSlot, Type: "mapping(address => mapping(bytes32 => uint256))"},
			{Name: "fallbackHandler", Slot: FallbackHandlerSlot, Type: "address"},
		},
	},
	{
		Version: quorum.Version,
		Fields: []Field{
			{Name: "singleton", Slot: SingletonSlot, Type: "address"},
			{Name: "modules", Slot: modules.ModulesSlot, Type: "mapping(address => address)"},
			{Name: "owners", Slot: owners.OwnersSlot, Type: "mapping(address => address)"},
			{Name: "ownerCount", Slot: owners.CountSlot, Type: "uint256"},
			{Name: "threshold", Slot: owners.ThresholdSlot, Type: "uint256"},
			{Name: "nonce", Slot: NonceSlot, Type: "uint256"},
			{Name: "_deprecatedDomainSeparator", Slot: quorum.Slot(6), Type: "bytes32"},
			{Name: "signedMessages", Slot: quorum.Slot(7), Type: "mapping(bytes32 => uint256)"},
			{Name: "approvedHashes", Slot: sigs.ApprovedHashesSlot, Type: "mapping(address => mapping(bytes32 => uint256))"},
			{Name: "fallbackHandler", Slot: FallbackHandlerSlot, Type: "address"},
			{Name: "guard", Slot: guard.GuardSlot, Type: "address"},
		},
	},
}

// CurrentLayout returns the layout of this implementation.
func CurrentLayout() Layout {
	return Layouts[len(Layouts)-1]
}

// CheckPrefixCompatible returns an error unless next keeps every field of
// prev at the same position, slot and type. Fields may be renamed, for
// example when they are deprecated. next must not use a slot twice.
func CheckPrefixCompatible(prev, next Layout) error {
	if len(next.Fields) < len(prev.Fields) {
		return errors.Wrapf(errors.ErrState, "%s drops %d fields of %s", next.Version, len(prev.Fields)-len(next.Fields), prev.Version)
	}
	var errs error
	for i, f := range prev.Fields {
		n := next.Fields[i]
		if n.Slot != f.Slot {
			errs = errors.AppendField(errs, fieldName(i), errors.Wrapf(errors.ErrState, "%s moved from slot %s to %s", f.Name, f.Slot.Hex(), n.Slot.Hex()))
		}
		if n.Type != f.Type {
			errs = errors.AppendField(errs, fieldName(i), errors.Wrapf(errors.ErrState, "%s changed type from %s to %s", f.Name, f.Type, n.Type))
		}
	}
	used := make(map[common.Hash]string, len(next.Fields))
	for i, f := range next.Fields {
		if other, ok := used[f.Slot]; ok {
			errs = errors.AppendField(errs, fieldName(i), errors.Wrapf(errors.ErrDuplicate, "%s shares slot %s with %s", f.Name, f.Slot.Hex(), other))
		}
		used[f.Slot] = f.Name
	}
	return errs
}

func fieldName(i int) string {
	return "Fields." + strconv.Itoa(i)
}
