package quorum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sentinel marks the head and the tail of a linked address set. It is never
// a valid member.
var Sentinel = common.HexToAddress("0x0000000000000000000000000000000000000001")

// IsReserved returns true for the zero address and the sentinel.
func IsReserved(addr common.Address) bool {
	return addr == (common.Address{}) || addr == Sentinel
}

// Slot returns the storage slot of the n-th top-level field.
func Slot(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n))
}

// NamedSlot returns a slot derived from a name. Named slots sit far away
// from the sequential ones so that new fields never collide with them.
func NamedSlot(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// MappingSlot returns the slot holding the value for key in a mapping whose
// base slot is base: keccak256(pad32(key) ++ base).
func MappingSlot(key, base common.Hash) common.Hash {
	return crypto.Keccak256Hash(key.Bytes(), base.Bytes())
}

// AddressWord left pads an address to a full storage word.
func AddressWord(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// WordAddress reads an address from the low 20 bytes of a word.
func WordAddress(word common.Hash) common.Address {
	return common.BytesToAddress(word.Bytes())
}

// BigWord encodes a non-negative number as a storage word.
func BigWord(n *big.Int) common.Hash {
	return common.BigToHash(n)
}

// Uint64Word encodes a number as a storage word.
func Uint64Word(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n))
}
