package sigs

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/owners"
)

// RecoverCost is the gas charged for every ECDSA recovery.
const RecoverCost = 3000

// MagicValue is what a signer contract returns for a valid signature.
var MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

// ValidatorABI declares the method signer contracts implement.
const ValidatorABI = `[
	{"type":"function","name":"isValidSignature","stateMutability":"view",
	 "inputs":[{"name":"_hash","type":"bytes32"},{"name":"_signature","type":"bytes"}],
	 "outputs":[{"name":"","type":"bytes4"}]}
]`

var validatorABI = quorum.MustParseABI(ValidatorABI)

// Recoverer returns the signer authenticated by a signature.
type Recoverer interface {
	Recover(ctx context.Context, env quorum.Env, digest common.Hash, sig Signature) (common.Address, error)
}

// Recoverers maps every signature kind to the code verifying it.
var Recoverers = map[Kind]Recoverer{
	ContractSignature: contractRecoverer{},
	PreApproved:       approvedRecoverer{},
	PlainECDSA:        ecdsaRecoverer{},
	PrefixedECDSA:     ecdsaRecoverer{prefixed: true},
}

type ecdsaRecoverer struct {
	prefixed bool
}

func (r ecdsaRecoverer) Recover(ctx context.Context, env quorum.Env, digest common.Hash, sig Signature) (common.Address, error) {
	env.UseGas(RecoverCost)
	hash := digest.Bytes()
	v := sig.V - 27
	if r.prefixed {
		hash = accounts.TextHash(hash)
		v = sig.V - 31
	}
	raw := make([]byte, 0, WindowSize)
	raw = append(raw, sig.R.Bytes()...)
	raw = append(raw, sig.S.Bytes()...)
	raw = append(raw, v)
	pub, err := crypto.SigToPub(hash, raw)
	if err != nil {
		return common.Address{}, errors.Wrapf(errors.ErrSignature, "GS026: cannot recover signer: %s", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

type approvedRecoverer struct{}

func (approvedRecoverer) Recover(ctx context.Context, env quorum.Env, digest common.Hash, sig Signature) (common.Address, error) {
	if env.Caller() != sig.Signer && !IsApproved(env, sig.Signer, digest) {
		return common.Address{}, errors.Wrapf(errors.ErrNotApproved, "GS025: hash has not been approved by %s", sig.Signer.Hex())
	}
	return sig.Signer, nil
}

type contractRecoverer struct{}

func (contractRecoverer) Recover(ctx context.Context, env quorum.Env, digest common.Hash, sig Signature) (common.Address, error) {
	input, err := validatorABI.Pack("isValidSignature", [32]byte(digest), sig.Payload)
	if err != nil {
		return common.Address{}, errors.Wrap(errors.ErrHuman, err.Error())
	}
	out, err := env.StaticCall(ctx, sig.Signer, input, env.GasLeft())
	if err != nil {
		return common.Address{}, errors.Wrapf(errors.ErrSignature, "GS024: invalid contract signature provided: %s", err)
	}
	values, err := validatorABI.Unpack("isValidSignature", out)
	if err != nil || len(values) != 1 {
		return common.Address{}, errors.Wrap(errors.ErrSignature, "GS024: invalid contract signature provided")
	}
	if magic, ok := values[0].([4]byte); !ok || magic != MagicValue {
		return common.Address{}, errors.Wrap(errors.ErrSignature, "GS024: invalid contract signature provided")
	}
	return sig.Signer, nil
}

// Check verifies that the first required signatures of bundle are valid
// signatures of distinct owners over digest.
func Check(ctx context.Context, env quorum.Env, digest common.Hash, bundle []byte, required uint64) error {
	sigs, err := Parse(bundle, required)
	if err != nil {
		return err
	}
	var last common.Address
	for i, sig := range sigs {
		signer, err := Recoverers[sig.Kind].Recover(ctx, env, digest, sig)
		if err != nil {
			return errors.Field(windowField(uint64(i)), err, "")
		}
		if bytes.Compare(signer.Bytes(), last.Bytes()) <= 0 || signer == quorum.Sentinel || !owners.IsOwner(env, signer) {
			return errors.Field(windowField(uint64(i)), errors.ErrSignature, "GS026: invalid owner provided: %s", signer.Hex())
		}
		last = signer
	}
	return nil
}

// CheckSignatures verifies the bundle against the current threshold.
func CheckSignatures(ctx context.Context, env quorum.Env, digest common.Hash, bundle []byte) error {
	threshold := owners.Threshold(env)
	if threshold == 0 {
		return errors.Wrap(errors.ErrThreshold, "GS001: threshold needs to be defined")
	}
	return Check(ctx, env, digest, bundle, threshold)
}

// ValidatorInput returns the call a signer contract receives.
func ValidatorInput(digest common.Hash, payload []byte) []byte {
	input, err := validatorABI.Pack("isValidSignature", [32]byte(digest), payload)
	if err != nil {
		panic(err)
	}
	return input
}

// ValidatorDefinition returns the parsed signer contract ABI.
func ValidatorDefinition() abi.ABI {
	return validatorABI
}
