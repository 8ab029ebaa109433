package host

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Account data is kept under a one letter kind prefix followed by the
// account address.
var (
	storagePrefix = []byte("s:")
	balancePrefix = []byte("b:")
	codePrefix    = []byte("c:")
)

func accountKey(prefix []byte, addr common.Address) []byte {
	key := make([]byte, 0, len(prefix)+common.AddressLength+common.HashLength)
	key = append(key, prefix...)
	return append(key, addr.Bytes()...)
}

func storageKey(addr common.Address, slot common.Hash) []byte {
	return append(accountKey(storagePrefix, addr), slot.Bytes()...)
}

// accounts reads and writes account data kept in a KVStore.
type accounts struct {
	kv quorum.KVStore
}

func (a accounts) storage(addr common.Address, slot common.Hash) (common.Hash, error) {
	raw, err := a.kv.Get(storageKey(addr, slot))
	if err != nil {
		return common.Hash{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return common.BytesToHash(raw), nil
}

func (a accounts) setStorage(addr common.Address, slot, value common.Hash) error {
	key := storageKey(addr, slot)
	var err error
	if value == (common.Hash{}) {
		err = a.kv.Delete(key)
	} else {
		err = a.kv.Set(key, value.Bytes())
	}
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (a accounts) balance(addr common.Address) (*big.Int, error) {
	raw, err := a.kv.Get(accountKey(balancePrefix, addr))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return new(big.Int).SetBytes(raw), nil
}

func (a accounts) setBalance(addr common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.Wrap(errors.ErrAmount, "negative balance")
	}
	key := accountKey(balancePrefix, addr)
	var err error
	if amount.Sign() == 0 {
		err = a.kv.Delete(key)
	} else {
		err = a.kv.Set(key, amount.Bytes())
	}
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// transfer moves amount between two accounts. A transfer to self only
// checks the balance.
func (a accounts) transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errors.Wrap(errors.ErrAmount, "negative transfer")
	}
	have, err := a.balance(from)
	if err != nil {
		return err
	}
	if have.Cmp(amount) < 0 {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %s has %s, needs %s", from.Hex(), have, amount)
	}
	if from == to {
		return nil
	}
	if err := a.setBalance(from, new(big.Int).Sub(have, amount)); err != nil {
		return err
	}
	dest, err := a.balance(to)
	if err != nil {
		return err
	}
	return a.setBalance(to, dest.Add(dest, amount))
}

func (a accounts) code(addr common.Address) ([]byte, error) {
	raw, err := a.kv.Get(accountKey(codePrefix, addr))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return raw, nil
}

func (a accounts) setCode(addr common.Address, code []byte) error {
	if err := a.kv.Set(accountKey(codePrefix, addr), code); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
