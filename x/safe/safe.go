package safe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/modules"
	"github.com/iov-one/quorum/x/owners"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/txhash"
)

var (
	// SingletonSlot holds the address of the code a proxy delegates to.
	SingletonSlot = quorum.Slot(0)
	// NonceSlot holds the number of executions so far.
	NonceSlot = quorum.Slot(5)
	// FallbackHandlerSlot holds the contract unknown calls are forwarded to.
	FallbackHandlerSlot = quorum.NamedSlot("fallback_manager.handler.address")
)

// Artifact is the deployable singleton.
var Artifact = host.NewArtifact("quorum.Safe", New())

// Account is the account contract.
type Account struct {
	*quorum.Router
	costs CostModel
	auth  x.Authenticator
}

var _ quorum.Constructor = (*Account)(nil)

// Option configures an Account.
type Option func(*Account)

// WithCostModel replaces the formula computing the refund of an
// execution.
func WithCostModel(m CostModel) Option {
	return func(a *Account) {
		a.costs = m
	}
}

// New returns the account contract.
func New(opts ...Option) *Account {
	a := &Account{
		Router: quorum.NewRouter(accountABI),
		costs:  DefaultCostModel{},
		auth:   x.SelfAuth{},
	}
	for _, opt := range opts {
		opt(a)
	}

	owners.RegisterRoutes(a.Router, a.auth)
	modules.RegisterRoutes(a.Router, a.auth)
	guard.RegisterRoutes(a.Router, a.auth)

	a.Handle("setup", a.handleSetup)
	a.Handle("execTransaction", a.handleExecTransaction)
	a.Handle("execTransactionFromModule", a.handleExecFromModule)
	a.Handle("execTransactionFromModuleReturnData", a.handleExecFromModuleReturnData)
	a.Handle("approveHash", handleApproveHash)
	a.Handle("approvedHashes", handleApprovedHashes)
	a.Handle("checkSignatures", handleCheckSignatures)
	a.Handle("checkNSignatures", handleCheckNSignatures)
	a.Handle("changeMasterCopy", x.Guarded(a.auth, handleChangeMasterCopy))
	a.Handle("setFallbackHandler", x.Guarded(a.auth, handleSetFallbackHandler))
	a.Handle("nonce", handleNonce)
	a.Handle("getChainId", handleChainID)
	a.Handle("VERSION", handleVersion)
	a.Handle("domainSeparator", handleDomainSeparator)
	a.Handle("getTransactionHash", handleTransactionHash)
	a.Handle("encodeTransactionData", handleEncodeTransactionData)
	a.Handle("getStorageAt", handleStorageAt)
	a.Receive(quorum.ContractFunc(receive))
	a.Fallback(quorum.ContractFunc(forward))
	return a
}

// Construct runs when the singleton is deployed. It sets a threshold so
// that the singleton itself can never be set up and used as an account.
func (a *Account) Construct(ctx context.Context, env quorum.Env, args []byte) error {
	env.SetState(owners.ThresholdSlot, quorum.Uint64Word(1))
	return nil
}

// Nonce returns the nonce the next execution is signed with.
func Nonce(st quorum.StateReader) *big.Int {
	return st.GetState(NonceSlot).Big()
}

// Singleton returns the address of the account implementation.
func Singleton(st quorum.StateReader) common.Address {
	return quorum.WordAddress(st.GetState(SingletonSlot))
}

// FallbackHandler returns the contract unknown calls are forwarded to.
func FallbackHandler(st quorum.StateReader) common.Address {
	return quorum.WordAddress(st.GetState(FallbackHandlerSlot))
}

// DomainSeparator returns the signing domain of the running account. It
// is derived on every use, so that it follows chain identifier changes.
func DomainSeparator(ctx context.Context, env quorum.Env) common.Hash {
	return txhash.DomainSeparator(quorum.GetChainID(ctx), env.Self())
}

// ChangeMasterCopy points the account to another implementation. The
// implementation must already be deployed.
func ChangeMasterCopy(env quorum.Env, impl common.Address) error {
	if impl == (common.Address{}) || !env.HasCode(impl) {
		return errors.Wrapf(errors.ErrInput, "invalid master copy address provided: %s", impl.Hex())
	}
	env.SetState(SingletonSlot, quorum.AddressWord(impl))
	x.Emit(env, accountABI, "ChangedMasterCopy", impl)
	return nil
}

// SetFallbackHandler installs the contract unknown calls are forwarded
// to. The zero address disables forwarding.
func SetFallbackHandler(env quorum.Env, handler common.Address) error {
	if err := setFallbackHandler(env, handler); err != nil {
		return err
	}
	x.Emit(env, accountABI, "ChangedFallbackHandler", handler)
	return nil
}

func setFallbackHandler(env quorum.Env, handler common.Address) error {
	if handler == env.Self() {
		return errors.Wrap(errors.ErrInput, "GS400: fallback handler cannot be the account itself")
	}
	env.SetState(FallbackHandlerSlot, quorum.AddressWord(handler))
	return nil
}

// ApproveHash records that the calling owner approves hash.
func ApproveHash(env quorum.Env, hash common.Hash) error {
	owner := env.Caller()
	if !owners.IsOwner(env, owner) {
		return errors.Wrap(errors.ErrUnauthorized, "GS030: only owners can approve a hash")
	}
	sigs.Approve(env, owner, hash)
	x.Emit(env, accountABI, "ApproveHash", hash, owner)
	return nil
}

// receive accepts native transfers.
func receive(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	x.Emit(env, accountABI, "SafeReceived", env.Caller(), env.Value())
	return nil, nil
}

// forward passes calls no method matches to the fallback handler, with
// the address of the caller appended to the input.
func forward(ctx context.Context, env quorum.Env, input []byte) ([]byte, error) {
	handler := FallbackHandler(env)
	if handler == (common.Address{}) {
		return nil, nil
	}
	data := make([]byte, 0, len(input)+common.AddressLength)
	data = append(data, input...)
	data = append(data, env.Caller().Bytes()...)
	return env.Call(ctx, handler, nil, data, env.GasLeft())
}
