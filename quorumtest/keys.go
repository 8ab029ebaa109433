package quorumtest

import (
	"bytes"
	"crypto/ecdsa"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Key is a secp256k1 private key together with its address.
type Key struct {
	Private *ecdsa.PrivateKey
	Address common.Address
}

// NewKey generates a fresh key. It panics if the system random source
// fails.
func NewKey() Key {
	priv, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return Key{Private: priv, Address: crypto.PubkeyToAddress(priv.PublicKey)}
}

// NewAddress returns the address of a fresh key.
func NewAddress() common.Address {
	return NewKey().Address
}

// SortedKeys generates n keys ordered by ascending address.
func SortedKeys(n int) []Key {
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = NewKey()
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Address.Bytes(), keys[j].Address.Bytes()) < 0
	})
	return keys
}

// Addresses returns the addresses of given keys, in the same order.
func Addresses(keys []Key) []common.Address {
	res := make([]common.Address, len(keys))
	for i, k := range keys {
		res[i] = k.Address
	}
	return res
}
