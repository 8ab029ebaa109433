/*
Package txhash computes the domain separated digest owners sign to
authorize a transaction.

The digest follows the typed structured data hashing scheme: the domain
binds it to one chain and one account, the transaction struct hash binds
all ten transaction fields, with the variable length data hashed first so
that no two distinct transactions encode alike.
*/
package txhash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

var (
	// DomainTypeHash is the type hash of the signing domain.
	DomainTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(uint256 chainId,address verifyingContract)"))

	// TxTypeHash is the type hash of a transaction.
	TxTypeHash = crypto.Keccak256Hash([]byte("SafeTx(address to,uint256 value,bytes data,uint8 operation,uint256 safeTxGas,uint256 baseGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)"))
)

// Tx is a transaction an account executes once enough owners signed it.
type Tx struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      quorum.Operation
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          *big.Int
}

// Validate returns an error if the transaction cannot be encoded.
func (tx Tx) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Operation", tx.Operation.Validate())
	for name, n := range map[string]*big.Int{
		"Value":     tx.Value,
		"SafeTxGas": tx.SafeTxGas,
		"BaseGas":   tx.BaseGas,
		"GasPrice":  tx.GasPrice,
		"Nonce":     tx.Nonce,
	} {
		if n != nil && (n.Sign() < 0 || n.BitLen() > 256) {
			errs = errors.AppendField(errs, name, errors.Wrap(errors.ErrInput, "not an unsigned 256 bit number"))
		}
	}
	return errs
}

var (
	uint256Type, _ = abi.NewType("uint256", "", nil)
	addressType, _ = abi.NewType("address", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)
	uint8Type, _   = abi.NewType("uint8", "", nil)

	domainArgs = abi.Arguments{
		{Type: bytes32Type},
		{Type: uint256Type},
		{Type: addressType},
	}
	txArgs = abi.Arguments{
		{Type: bytes32Type},
		{Type: addressType},
		{Type: uint256Type},
		{Type: bytes32Type},
		{Type: uint8Type},
		{Type: uint256Type},
		{Type: uint256Type},
		{Type: uint256Type},
		{Type: addressType},
		{Type: addressType},
		{Type: uint256Type},
	}
)

// DomainSeparator binds digests to one chain and one account.
func DomainSeparator(chainID *big.Int, account common.Address) common.Hash {
	packed, err := domainArgs.Pack(DomainTypeHash, orZero(chainID), account)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(packed)
}

// StructHash returns the hash of all transaction fields.
func StructHash(tx Tx) (common.Hash, error) {
	if err := tx.Validate(); err != nil {
		return common.Hash{}, err
	}
	packed, err := txArgs.Pack(
		TxTypeHash,
		tx.To,
		orZero(tx.Value),
		crypto.Keccak256Hash(tx.Data),
		uint8(tx.Operation),
		orZero(tx.SafeTxGas),
		orZero(tx.BaseGas),
		orZero(tx.GasPrice),
		tx.GasToken,
		tx.RefundReceiver,
		orZero(tx.Nonce),
	)
	if err != nil {
		return common.Hash{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return crypto.Keccak256Hash(packed), nil
}

// Encode returns the bytes whose hash is the transaction digest:
// 0x19 0x01 followed by the domain separator and the struct hash.
func Encode(tx Tx, domain common.Hash) ([]byte, error) {
	structHash, err := StructHash(tx)
	if err != nil {
		return nil, err
	}
	res := make([]byte, 0, 2+2*common.HashLength)
	res = append(res, 0x19, 0x01)
	res = append(res, domain.Bytes()...)
	return append(res, structHash.Bytes()...), nil
}

// Digest returns the hash owners sign.
func Digest(tx Tx, domain common.Hash) (common.Hash, error) {
	encoded, err := Encode(tx, domain)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
