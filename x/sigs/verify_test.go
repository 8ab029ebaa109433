package sigs

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/x/owners"
	"github.com/stretchr/testify/require"
)

var (
	account   = common.HexToAddress("0x5afe")
	validator = common.HexToAddress("0x1271")
)

func TestCheck(t *testing.T) {
	keys := quorumtest.SortedKeys(3)
	stranger := quorumtest.NewKey()
	digest := crypto.Keccak256Hash([]byte("transaction"))
	other := crypto.Keccak256Hash([]byte("another transaction"))

	plain := func(k quorumtest.Key) Signature {
		sig, err := SignDigest(k.Private, digest)
		require.NoError(t, err)
		return sig
	}
	prefixed := func(k quorumtest.Key) Signature {
		sig, err := SignPrefixed(k.Private, digest)
		require.NoError(t, err)
		return sig
	}

	cases := map[string]struct {
		Bundle     func() []byte
		Caller     common.Address
		Approve    []common.Address
		Validate   bool
		WantErr    *errors.Error
		WantReason string
	}{
		"two plain signatures": {
			Bundle: func() []byte { return Bundle{plain(keys[1]), plain(keys[0])}.Encode() },
		},
		"plain and prefixed signatures": {
			Bundle: func() []byte { return Bundle{prefixed(keys[2]), plain(keys[0])}.Encode() },
		},
		"three signatures for threshold two": {
			Bundle: func() []byte { return Bundle{plain(keys[0]), plain(keys[1]), plain(keys[2])}.Encode() },
		},
		"one signature for threshold two": {
			Bundle:     func() []byte { return Bundle{plain(keys[0])}.Encode() },
			WantErr:    errors.ErrSignature,
			WantReason: "GS020",
		},
		"unsorted signers": {
			Bundle:     func() []byte { return raw(plain(keys[1]), plain(keys[0])) },
			WantErr:    errors.ErrSignature,
			WantReason: "GS026",
		},
		"duplicate signer": {
			Bundle:     func() []byte { return raw(plain(keys[0]), prefixed(keys[0])) },
			WantErr:    errors.ErrSignature,
			WantReason: "GS026",
		},
		"signer is not an owner": {
			Bundle:     func() []byte { return Bundle{plain(keys[0]), plain(stranger)}.Encode() },
			WantErr:    errors.ErrSignature,
			WantReason: "GS026",
		},
		"signature over another digest": {
			Bundle: func() []byte {
				sig, err := SignDigest(keys[1].Private, other)
				require.NoError(t, err)
				return raw(plain(keys[0]), sig)
			},
			WantErr:    errors.ErrSignature,
			WantReason: "GS026",
		},
		"unknown marker": {
			Bundle: func() []byte {
				sig := plain(keys[1])
				sig.V = 5
				return raw(plain(keys[0]), sig)
			},
			WantErr:    errors.ErrSignature,
			WantReason: "GS026",
		},
		"approved by the caller": {
			Bundle: func() []byte { return Bundle{Approved(keys[0].Address), plain(keys[1])}.Encode() },
			Caller: keys[0].Address,
		},
		"approved on-chain": {
			Bundle:  func() []byte { return Bundle{Approved(keys[2].Address), plain(keys[1])}.Encode() },
			Approve: []common.Address{keys[2].Address},
		},
		"not approved": {
			Bundle:     func() []byte { return Bundle{Approved(keys[2].Address), plain(keys[1])}.Encode() },
			WantErr:    errors.ErrNotApproved,
			WantReason: "GS025",
		},
		"approved by a stranger": {
			Bundle:     func() []byte { return Bundle{Approved(stranger.Address), plain(keys[1])}.Encode() },
			Approve:    []common.Address{stranger.Address},
			WantErr:    errors.ErrSignature,
			WantReason: "GS026",
		},
		"valid contract signature": {
			Bundle:   func() []byte { return Bundle{Contract(validator, []byte("proof")), plain(keys[1])}.Encode() },
			Validate: true,
		},
		"rejected contract signature": {
			Bundle:     func() []byte { return Bundle{Contract(validator, []byte("proof")), plain(keys[1])}.Encode() },
			WantErr:    errors.ErrSignature,
			WantReason: "GS024",
		},
		"contract payload inside static part": {
			Bundle: func() []byte {
				return rawContract(validator, 65, plain(keys[1]), []byte("proof"))
			},
			Validate:   true,
			WantErr:    errors.ErrSignature,
			WantReason: "GS021",
		},
		"contract payload length out of bounds": {
			Bundle: func() []byte {
				b := rawContract(validator, 130, plain(keys[1]), []byte("proof"))
				return b[:140]
			},
			Validate:   true,
			WantErr:    errors.ErrSignature,
			WantReason: "GS022",
		},
		"contract payload incomplete": {
			Bundle: func() []byte {
				b := rawContract(validator, 130, plain(keys[1]), []byte("proof"))
				return b[:len(b)-1]
			},
			Validate:   true,
			WantErr:    errors.ErrSignature,
			WantReason: "GS023",
		},
		"contract payload followed by trailing data": {
			Bundle: func() []byte {
				return append(Bundle{Contract(validator, []byte("proof")), plain(keys[1])}.Encode(), 0)
			},
			Validate:   true,
			WantErr:    errors.ErrSignature,
			WantReason: "GS023",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			world := quorumtest.NewWorld()
			world.Contracts[validator] = quorumtest.NewSignatureValidator()
			env := world.Env(account, tc.Caller)
			members := append(quorumtest.Addresses(keys), validator)
			require.NoError(t, owners.Setup(env, members, 2))
			for _, a := range tc.Approve {
				Approve(env, a, digest)
			}
			if tc.Validate {
				_, err := world.Env(account, account).Call(context.Background(), validator, nil, quorumtest.ApproveInput(digest), 100000)
				require.NoError(t, err)
			}

			err := Check(context.Background(), env, digest, tc.Bundle(), 2)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Reason(t, tc.WantReason, err)
		})
	}
}

func TestCheckSignaturesBeyondRequired(t *testing.T) {
	key := quorumtest.SortedKeys(1)[0]
	last := common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff")
	digest := crypto.Keccak256Hash([]byte("transaction"))
	plain, err := SignDigest(key.Private, digest)
	require.NoError(t, err)

	full := Bundle{Contract(validator, []byte("proof")), plain, Contract(last, []byte("second proof"))}.Encode()

	cases := map[string]struct {
		Bundle     []byte
		Required   uint64
		Approved   []common.Address
		WantErr    *errors.Error
		WantReason string
	}{
		"extra contract signature": {
			Bundle:   full,
			Required: 2,
			Approved: []common.Address{validator, last},
		},
		"extra contract signature is not verified": {
			Bundle:   full,
			Required: 2,
			Approved: []common.Address{validator},
		},
		"all signatures required": {
			Bundle:   full,
			Required: 3,
			Approved: []common.Address{validator, last},
		},
		"all signatures required, one rejected": {
			Bundle:     full,
			Required:   3,
			Approved:   []common.Address{validator},
			WantErr:    errors.ErrSignature,
			WantReason: "GS024",
		},
		"trailing data after the extra payload": {
			Bundle:     append(append([]byte(nil), full...), 0),
			Required:   2,
			Approved:   []common.Address{validator, last},
			WantErr:    errors.ErrSignature,
			WantReason: "GS023",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			world := quorumtest.NewWorld()
			world.Contracts[validator] = quorumtest.NewSignatureValidator()
			world.Contracts[last] = quorumtest.NewSignatureValidator()
			env := world.Env(account, account)
			require.NoError(t, owners.Setup(env, []common.Address{validator, key.Address, last}, 2))
			for _, v := range tc.Approved {
				_, err := world.Env(account, account).Call(context.Background(), v, nil, quorumtest.ApproveInput(digest), 100000)
				require.NoError(t, err)
			}

			err := Check(context.Background(), env, digest, tc.Bundle, tc.Required)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Reason(t, tc.WantReason, err)
		})
	}
}

func TestCheckSignaturesRequiresThreshold(t *testing.T) {
	env := quorumtest.NewWorld().Env(account, account)
	err := CheckSignatures(context.Background(), env, common.Hash{}, nil)
	assert.IsErr(t, errors.ErrThreshold, err)
	assert.Reason(t, "GS001", err)
}

func TestCheckChargesRecovery(t *testing.T) {
	keys := quorumtest.SortedKeys(2)
	digest := crypto.Keccak256Hash([]byte("transaction"))
	env := quorumtest.NewWorld().Env(account, account)
	require.NoError(t, owners.Setup(env, quorumtest.Addresses(keys), 2))

	var bundle Bundle
	for _, k := range keys {
		sig, err := SignDigest(k.Private, digest)
		require.NoError(t, err)
		bundle = append(bundle, sig)
	}
	before := env.GasLeft()
	require.NoError(t, Check(context.Background(), env, digest, bundle.Encode(), 2))
	if used := before - env.GasLeft(); used < 2*RecoverCost {
		t.Fatalf("want at least %d gas used, got %d", 2*RecoverCost, used)
	}
}

func TestFromWindow(t *testing.T) {
	key := quorumtest.NewKey()
	digest := crypto.Keccak256Hash([]byte("transaction"))
	for _, signer := range []func() (Signature, error){
		func() (Signature, error) { return SignDigest(key.Private, digest) },
		func() (Signature, error) { return SignPrefixed(key.Private, digest) },
	} {
		sig, err := signer()
		require.NoError(t, err)
		got, err := FromWindow(sig.window(0), digest)
		require.NoError(t, err)
		assert.Equal(t, sig, got)
	}

	got, err := FromWindow(Approved(key.Address).window(0), digest)
	require.NoError(t, err)
	assert.Equal(t, key.Address, got.Signer)

	_, err = FromWindow(Contract(key.Address, nil).window(130), digest)
	assert.IsErr(t, errors.ErrInput, err)
	_, err = FromWindow([]byte{1, 2}, digest)
	assert.IsErr(t, errors.ErrInput, err)
}

// raw concatenates windows without sorting them.
func raw(sigs ...Signature) []byte {
	var b []byte
	for _, s := range sigs {
		b = append(b, s.window(0)...)
	}
	return b
}

// rawContract lays out a contract signature with a payload offset picked
// by the caller, followed by second and the payload.
func rawContract(signer common.Address, offset uint64, second Signature, payload []byte) []byte {
	b := Contract(signer, payload).window(offset)
	b = append(b, second.window(0)...)
	b = append(b, quorum.Uint64Word(uint64(len(payload))).Bytes()...)
	return append(b, payload...)
}
