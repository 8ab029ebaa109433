package multisend

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
)

// ABI declares the batch entry point.
const ABI = `[
	{"type":"function","name":"multiSend","stateMutability":"payable",
	 "inputs":[{"name":"transactions","type":"bytes"}],"outputs":[]}
]`

var multisendABI = quorum.MustParseABI(ABI)

// Definition returns the parsed ABI.
func Definition() abi.ABI {
	return multisendABI
}

var (
	// Artifact is the deployable MultiSend library.
	Artifact = host.NewArtifact("quorum.MultiSend", New())
	// CallOnlyArtifact is the deployable MultiSendCallOnly library.
	CallOnlyArtifact = host.NewArtifact("quorum.MultiSendCallOnly", NewCallOnly())
)

// New returns the MultiSend library. It runs only when delegate called.
func New() quorum.Contract {
	r := quorum.NewRouter(multisendABI)
	r.Handle("multiSend", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		if env.Self() == env.CodeAddress() {
			return nil, errors.Wrap(errors.ErrDelegateOnly, "MultiSend should only be called via delegatecall")
		}
		return nil, Send(ctx, env, call.Args[0].([]byte), true)
	})
	return r
}

// NewCallOnly returns the MultiSendCallOnly library.
func NewCallOnly() quorum.Contract {
	r := quorum.NewRouter(multisendABI)
	r.Handle("multiSend", func(ctx context.Context, env quorum.Env, call quorum.MethodCall) ([]interface{}, error) {
		return nil, Send(ctx, env, call.Args[0].([]byte), false)
	})
	return r
}

// Send runs all records of a batch in order. It stops at the first
// failing record.
func Send(ctx context.Context, env quorum.Env, packed []byte, allowDelegate bool) error {
	records, err := Decode(packed)
	if err != nil {
		return err
	}
	for i, r := range records {
		to := r.To
		if to == (common.Address{}) {
			to = env.Self()
		}
		switch r.Operation {
		case quorum.Call:
			_, err = env.Call(ctx, to, r.Value, r.Data, env.GasLeft())
		case quorum.DelegateCall:
			if !allowDelegate {
				return errors.Field(recordField(i), errors.ErrUnauthorized, "delegate call is not allowed")
			}
			_, err = env.DelegateCall(ctx, to, r.Data, env.GasLeft())
		}
		if err != nil {
			return errors.Field(recordField(i), err, "")
		}
	}
	return nil
}

// Input returns the multiSend call running records.
func Input(records []Record) ([]byte, error) {
	packed, err := Encode(records)
	if err != nil {
		return nil, err
	}
	input, err := multisendABI.Pack("multiSend", packed)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return input, nil
}
