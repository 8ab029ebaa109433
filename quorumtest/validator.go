package quorumtest

import (
	"context"

	"github.com/iov-one/quorum"
)

// ValidatorABI declares the calls served by a SignatureValidator.
const ValidatorABI = `[
	{"type":"function","name":"isValidSignature","stateMutability":"view",
	 "inputs":[{"name":"_hash","type":"bytes32"},{"name":"_signature","type":"bytes"}],
	 "outputs":[{"name":"","type":"bytes4"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"_hash","type":"bytes32"}],"outputs":[]}
]`

var validatorABI = quorum.MustParseABI(ValidatorABI)

// MagicValue is returned by contracts accepting a signature.
var MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

var approvedBase = quorum.Slot(0)

// NewSignatureValidator returns a contract that accepts a signature over a
// hash once the hash was approved through approve(bytes32) and the
// signature payload is not empty. Any other signature is answered with a
// zero value.
func NewSignatureValidator() quorum.Contract {
	r := quorum.NewRouter(validatorABI)
	r.Handle("approve", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		hash := call.Args[0].([32]byte)
		env.SetState(quorum.MappingSlot(hash, approvedBase), quorum.Uint64Word(1))
		return nil, nil
	})
	r.Handle("isValidSignature", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		hash := call.Args[0].([32]byte)
		sig := call.Args[1].([]byte)
		approved := env.GetState(quorum.MappingSlot(hash, approvedBase)) == quorum.Uint64Word(1)
		if approved && len(sig) > 0 {
			return []interface{}{MagicValue}, nil
		}
		return []interface{}{[4]byte{}}, nil
	})
	return r
}

// ApproveInput returns the input approving hash on a SignatureValidator.
func ApproveInput(hash [32]byte) []byte {
	input, err := validatorABI.Pack("approve", hash)
	if err != nil {
		panic(err)
	}
	return input
}
