package txhash

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestTypeHashes(t *testing.T) {
	assert.Equal(t, common.HexToHash("0x47e79534a245952e8b16893a336b85a3d9ea9fa8c573f3d803afb92a79469218"), DomainTypeHash)
	assert.Equal(t, common.HexToHash("0xbb8310d486368db6bd6f849402fdd73ad53d316b5a4b2644ad6efe0f941286d8"), TxTypeHash)
}

func TestDomainSeparator(t *testing.T) {
	account := common.HexToAddress("0x5afe5afe5afe5afe5afe5afe5afe5afe5afe5afe")
	want := crypto.Keccak256Hash(
		DomainTypeHash.Bytes(),
		common.BigToHash(big.NewInt(4)).Bytes(),
		common.BytesToHash(account.Bytes()).Bytes(),
	)
	assert.Equal(t, want, DomainSeparator(big.NewInt(4), account))

	if DomainSeparator(big.NewInt(5), account) == want {
		t.Fatal("domain must depend on the chain")
	}
	if DomainSeparator(big.NewInt(4), common.HexToAddress("0x01")) == want {
		t.Fatal("domain must depend on the account")
	}
}

func TestDigestBindsEveryField(t *testing.T) {
	base := func() Tx {
		return Tx{
			To:             common.HexToAddress("0xaa"),
			Value:          big.NewInt(1),
			Data:           []byte{1, 2, 3},
			Operation:      quorum.Call,
			SafeTxGas:      big.NewInt(50000),
			BaseGas:        big.NewInt(21000),
			GasPrice:       big.NewInt(2),
			GasToken:       common.Address{},
			RefundReceiver: common.Address{},
			Nonce:          big.NewInt(7),
		}
	}
	domain := DomainSeparator(big.NewInt(1), common.HexToAddress("0x5afe"))
	reference, err := Digest(base(), domain)
	assert.Nil(t, err)

	cases := map[string]func(tx *Tx){
		"to":              func(tx *Tx) { tx.To = common.HexToAddress("0xab") },
		"value":           func(tx *Tx) { tx.Value = big.NewInt(2) },
		"data":            func(tx *Tx) { tx.Data = []byte{1, 2} },
		"operation":       func(tx *Tx) { tx.Operation = quorum.DelegateCall },
		"safe tx gas":     func(tx *Tx) { tx.SafeTxGas = big.NewInt(50001) },
		"base gas":        func(tx *Tx) { tx.BaseGas = big.NewInt(21001) },
		"gas price":       func(tx *Tx) { tx.GasPrice = big.NewInt(3) },
		"gas token":       func(tx *Tx) { tx.GasToken = common.HexToAddress("0x70") },
		"refund receiver": func(tx *Tx) { tx.RefundReceiver = common.HexToAddress("0x71") },
		"nonce":           func(tx *Tx) { tx.Nonce = big.NewInt(8) },
	}
	for testName, mutate := range cases {
		t.Run(testName, func(t *testing.T) {
			tx := base()
			mutate(&tx)
			got, err := Digest(tx, domain)
			assert.Nil(t, err)
			if got == reference {
				t.Fatal("digest does not bind the field")
			}
		})
	}

	other := DomainSeparator(big.NewInt(2), common.HexToAddress("0x5afe"))
	got, err := Digest(base(), other)
	assert.Nil(t, err)
	if got == reference {
		t.Fatal("digest does not bind the domain")
	}
}

func TestEncodeLayout(t *testing.T) {
	tx := Tx{To: common.HexToAddress("0xaa")}
	domain := DomainSeparator(big.NewInt(1), common.HexToAddress("0x5afe"))
	encoded, err := Encode(tx, domain)
	assert.Nil(t, err)
	assert.Equal(t, 66, len(encoded))
	assert.Equal(t, []byte{0x19, 0x01}, encoded[:2])
	assert.Equal(t, domain.Bytes(), encoded[2:34])

	structHash, err := StructHash(tx)
	assert.Nil(t, err)
	assert.Equal(t, structHash.Bytes(), encoded[34:])

	digest, err := Digest(tx, domain)
	assert.Nil(t, err)
	assert.Equal(t, crypto.Keccak256Hash(encoded), digest)
}

func TestValidate(t *testing.T) {
	_, err := StructHash(Tx{Operation: 2})
	assert.FieldError(t, err, "Operation", errors.ErrInput)

	_, err = StructHash(Tx{Value: big.NewInt(-1)})
	assert.FieldError(t, err, "Value", errors.ErrInput)
}
