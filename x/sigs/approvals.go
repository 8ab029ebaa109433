package sigs

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
)

// ApprovedHashesSlot is the base slot of the
// mapping(address => mapping(bytes32 => uint256)) of hashes owners
// approved on-chain.
var ApprovedHashesSlot = quorum.Slot(8)

// ApprovalSlot returns the slot recording whether owner approved hash.
func ApprovalSlot(owner common.Address, hash common.Hash) common.Hash {
	return quorum.MappingSlot(hash, quorum.MappingSlot(quorum.AddressWord(owner), ApprovedHashesSlot))
}

// IsApproved returns true if owner approved hash on-chain.
func IsApproved(st quorum.StateReader, owner common.Address, hash common.Hash) bool {
	return st.GetState(ApprovalSlot(owner, hash)) != (common.Hash{})
}

// Approve records that owner approved hash.
func Approve(st quorum.State, owner common.Address, hash common.Hash) {
	st.SetState(ApprovalSlot(owner, hash), quorum.Uint64Word(1))
}
