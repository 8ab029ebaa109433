package host

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Both kinds of code start with the invalid opcode so that no EVM would
// ever execute them.
const (
	codeMarker     = 0xfe
	creationMarker = 0xc0
)

// CreationCodeLen is the length of every artifact creation code.
// Constructor arguments follow it in deployment data.
const CreationCodeLen = 2 + 32

// Artifact binds deployable code to the contract that runs it.
type Artifact struct {
	Name     string
	Contract quorum.Contract
}

// NewArtifact returns an artifact. name must be unique within a Registry.
func NewArtifact(name string, c quorum.Contract) Artifact {
	return Artifact{Name: name, Contract: c}
}

// CreationCode returns the code that deploys this artifact.
func (a Artifact) CreationCode() []byte {
	code := make([]byte, 0, CreationCodeLen)
	code = append(code, codeMarker, creationMarker)
	return append(code, crypto.Keccak256([]byte(a.Name))...)
}

// RuntimeCode returns the code stored at addresses running this artifact.
func (a Artifact) RuntimeCode() []byte {
	return append([]byte{codeMarker}, a.Name...)
}

// DeploymentData returns creation code followed by constructor arguments.
func (a Artifact) DeploymentData(args []byte) []byte {
	return append(a.CreationCode(), args...)
}

// Registry holds all artifacts a chain knows how to deploy and run.
type Registry struct {
	mu         sync.RWMutex
	byCreation map[string]Artifact
	byRuntime  map[string]Artifact
}

// NewRegistry returns a registry holding given artifacts.
func NewRegistry(artifacts ...Artifact) *Registry {
	r := &Registry{
		byCreation: make(map[string]Artifact),
		byRuntime:  make(map[string]Artifact),
	}
	for _, a := range artifacts {
		r.Register(a)
	}
	return r
}

// Register adds an artifact. It panics if the name is taken or the artifact
// has no contract. Use it only during a program startup phase.
func (r *Registry) Register(a Artifact) {
	if a.Contract == nil {
		panic(fmt.Sprintf("artifact %q has no contract", a.Name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(a.RuntimeCode())
	if _, ok := r.byRuntime[key]; ok {
		panic(fmt.Sprintf("artifact %q already registered", a.Name))
	}
	r.byRuntime[key] = a
	r.byCreation[string(a.CreationCode())] = a
}

// Lookup returns the contract running given runtime code.
func (r *Registry) Lookup(runtime []byte) (quorum.Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byRuntime[string(runtime)]
	return a.Contract, ok
}

// resolve splits deployment data into the artifact it deploys and the
// constructor arguments.
func (r *Registry) resolve(initCode []byte) (Artifact, []byte, error) {
	if len(initCode) < CreationCodeLen || !bytes.HasPrefix(initCode, []byte{codeMarker, creationMarker}) {
		return Artifact{}, nil, errors.Wrap(errors.ErrDeployment, "malformed creation code")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byCreation[string(initCode[:CreationCodeLen])]
	if !ok {
		return Artifact{}, nil, errors.Wrap(errors.ErrDeployment, "unknown creation code")
	}
	return a, initCode[CreationCodeLen:], nil
}
