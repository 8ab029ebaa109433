package proxy

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
)

// ImplementationSlot holds the address of the singleton.
var ImplementationSlot = quorum.Slot(0)

// ProxyABI declares the only method a proxy answers itself.
const ProxyABI = `[
	{"type":"function","name":"masterCopy","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

var proxyABI = quorum.MustParseABI(ProxyABI)

// Proxy delegates all calls to the singleton stored in its slot 0.
type Proxy struct{}

var (
	_ quorum.Contract    = Proxy{}
	_ quorum.Constructor = Proxy{}
)

// Artifact is the deployable proxy code.
var Artifact = host.NewArtifact("quorum.Proxy", Proxy{})

// Construct stores the singleton, given as a single address word.
func (Proxy) Construct(ctx context.Context, env quorum.Env, args []byte) error {
	if len(args) != common.HashLength {
		return errors.Wrapf(errors.ErrInput, "want a single address argument, got %d bytes", len(args))
	}
	singleton := quorum.WordAddress(common.BytesToHash(args))
	if singleton == (common.Address{}) {
		return errors.Wrap(errors.ErrInput, "invalid singleton address provided")
	}
	env.SetState(ImplementationSlot, quorum.AddressWord(singleton))
	return nil
}

// Run implements quorum.Contract.
func (Proxy) Run(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	singleton := env.GetState(ImplementationSlot)
	if len(input) >= 4 && bytes.Equal(input[:4], proxyABI.Methods["masterCopy"].ID) {
		return singleton.Bytes(), nil
	}
	return env.DelegateCall(ctx, quorum.WordAddress(singleton), input, env.GasLeft())
}

// DeploymentData returns the code deploying a proxy of singleton.
func DeploymentData(singleton common.Address) []byte {
	return Artifact.DeploymentData(quorum.AddressWord(singleton).Bytes())
}
