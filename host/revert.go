package host

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]
	revertArgs     = abi.Arguments{{Type: mustType("string")}}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// RevertData encodes an error the way a reverting contract reports it:
// as a call to Error(string) with the error message. A nil error encodes
// to nil.
func RevertData(err error) []byte {
	if err == nil {
		return nil
	}
	packed, perr := revertArgs.Pack(err.Error())
	if perr != nil {
		return nil
	}
	return append(append([]byte{}, revertSelector...), packed...)
}

// RevertReason decodes data produced by RevertData.
func RevertReason(data []byte) (string, error) {
	return abi.UnpackRevert(data)
}
