package owners

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/x"
)

var (
	self  = common.HexToAddress("0x5afe")
	alice = common.HexToAddress("0xa1")
	bob   = common.HexToAddress("0xb0")
	carol = common.HexToAddress("0xc0")
	dave  = common.HexToAddress("0xd0")
)

func TestSetup(t *testing.T) {
	cases := map[string]struct {
		Owners     []common.Address
		Threshold  uint64
		WantErr    *errors.Error
		WantReason string
	}{
		"valid": {
			Owners:    []common.Address{alice, bob, carol},
			Threshold: 2,
		},
		"threshold above owner count": {
			Owners:     []common.Address{alice},
			Threshold:  2,
			WantErr:    errors.ErrThreshold,
			WantReason: "GS201",
		},
		"zero threshold": {
			Owners:     []common.Address{alice},
			Threshold:  0,
			WantErr:    errors.ErrThreshold,
			WantReason: "GS202",
		},
		"zero owner": {
			Owners:     []common.Address{alice, {}},
			Threshold:  1,
			WantErr:    errors.ErrInput,
			WantReason: "GS203",
		},
		"sentinel owner": {
			Owners:     []common.Address{quorum.Sentinel},
			Threshold:  1,
			WantErr:    errors.ErrInput,
			WantReason: "GS203",
		},
		"owning itself": {
			Owners:     []common.Address{alice, self},
			Threshold:  1,
			WantErr:    errors.ErrInput,
			WantReason: "GS203",
		},
		"duplicate owner": {
			Owners:     []common.Address{alice, bob, alice},
			Threshold:  1,
			WantErr:    errors.ErrDuplicate,
			WantReason: "GS204",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := quorumtest.NewWorld().Env(self, self)
			err := Setup(env, tc.Owners, tc.Threshold)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Reason(t, tc.WantReason, err)
			if tc.WantErr != nil {
				return
			}
			assert.Equal(t, tc.Owners, List(env))
			assert.Equal(t, tc.Threshold, Threshold(env))
			assert.Equal(t, uint64(len(tc.Owners)), Count(env))
			assert.Reason(t, "GS200", Setup(env, tc.Owners, tc.Threshold))
		})
	}
}

func TestOwnerMutations(t *testing.T) {
	cases := map[string]struct {
		Mutate        func(env quorum.Env) error
		WantReason    string
		WantOwners    []common.Address
		WantThreshold uint64
		WantEvents    []string
	}{
		"add owner keeping threshold": {
			Mutate:        func(env quorum.Env) error { return Add(env, dave, 2) },
			WantOwners:    []common.Address{dave, alice, bob, carol},
			WantThreshold: 2,
			WantEvents:    []string{"AddedOwner"},
		},
		"add owner raising threshold": {
			Mutate:        func(env quorum.Env) error { return Add(env, dave, 4) },
			WantOwners:    []common.Address{dave, alice, bob, carol},
			WantThreshold: 4,
			WantEvents:    []string{"AddedOwner", "ChangedThreshold"},
		},
		"add existing owner": {
			Mutate:     func(env quorum.Env) error { return Add(env, bob, 2) },
			WantReason: "GS204",
		},
		"add self": {
			Mutate:     func(env quorum.Env) error { return Add(env, self, 2) },
			WantReason: "GS203",
		},
		"add with too high threshold": {
			Mutate:     func(env quorum.Env) error { return Add(env, dave, 5) },
			WantReason: "GS201",
		},
		"remove owner": {
			Mutate:        func(env quorum.Env) error { return Remove(env, alice, bob, 1) },
			WantOwners:    []common.Address{alice, carol},
			WantThreshold: 1,
			WantEvents:    []string{"RemovedOwner", "ChangedThreshold"},
		},
		"remove head owner": {
			Mutate:        func(env quorum.Env) error { return Remove(env, quorum.Sentinel, alice, 2) },
			WantOwners:    []common.Address{bob, carol},
			WantThreshold: 2,
			WantEvents:    []string{"RemovedOwner"},
		},
		"remove below threshold": {
			Mutate:     func(env quorum.Env) error { return Remove(env, alice, bob, 3) },
			WantReason: "GS201",
		},
		"remove with zero threshold": {
			Mutate:     func(env quorum.Env) error { return Remove(env, alice, bob, 0) },
			WantReason: "GS202",
		},
		"remove with wrong predecessor": {
			Mutate:     func(env quorum.Env) error { return Remove(env, carol, bob, 2) },
			WantReason: "GS205",
		},
		"remove sentinel": {
			Mutate:     func(env quorum.Env) error { return Remove(env, carol, quorum.Sentinel, 2) },
			WantReason: "GS203",
		},
		"swap owner": {
			Mutate:        func(env quorum.Env) error { return Swap(env, alice, bob, dave) },
			WantOwners:    []common.Address{alice, dave, carol},
			WantThreshold: 2,
			WantEvents:    []string{"RemovedOwner", "AddedOwner"},
		},
		"swap to existing owner": {
			Mutate:     func(env quorum.Env) error { return Swap(env, alice, bob, carol) },
			WantReason: "GS204",
		},
		"swap to self": {
			Mutate:     func(env quorum.Env) error { return Swap(env, alice, bob, self) },
			WantReason: "GS203",
		},
		"swap with wrong predecessor": {
			Mutate:     func(env quorum.Env) error { return Swap(env, quorum.Sentinel, bob, dave) },
			WantReason: "GS205",
		},
		"change threshold": {
			Mutate:        func(env quorum.Env) error { return ChangeThreshold(env, 3) },
			WantOwners:    []common.Address{alice, bob, carol},
			WantThreshold: 3,
			WantEvents:    []string{"ChangedThreshold"},
		},
		"change threshold to zero": {
			Mutate:     func(env quorum.Env) error { return ChangeThreshold(env, 0) },
			WantReason: "GS202",
		},
		"change threshold above count": {
			Mutate:     func(env quorum.Env) error { return ChangeThreshold(env, 4) },
			WantReason: "GS201",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			world := quorumtest.NewWorld()
			env := world.Env(self, self)
			assert.Nil(t, Setup(env, []common.Address{alice, bob, carol}, 2))
			before := world.State(self).Clone()

			err := tc.Mutate(env)
			assert.Reason(t, tc.WantReason, err)
			if tc.WantReason != "" {
				assert.Equal(t, before, world.State(self))
				assert.Equal(t, 0, len(world.Logs))
				return
			}
			assert.Equal(t, tc.WantOwners, List(env))
			assert.Equal(t, tc.WantThreshold, Threshold(env))
			assert.Equal(t, uint64(len(tc.WantOwners)), Count(env))
			assert.Equal(t, len(tc.WantEvents), len(world.Logs))
			for i, name := range tc.WantEvents {
				assert.Equal(t, ownersABI.Events[name].ID, world.Logs[i].Topics[0])
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	world := quorumtest.NewWorld()
	r := quorum.NewRouter(ownersABI)
	RegisterRoutes(r, x.SelfAuth{})
	world.Contracts[self] = r
	ctx := context.Background()

	assert.Nil(t, Setup(world.Env(self, self), []common.Address{alice, bob}, 1))

	input, err := ownersABI.Pack("addOwnerWithThreshold", carol, big.NewInt(2))
	assert.Nil(t, err)
	_, err = r.Run(ctx, world.Env(self, alice), input)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Reason(t, "GS031", err)

	_, err = r.Run(ctx, world.Env(self, self), input)
	assert.Nil(t, err)

	input, err = ownersABI.Pack("getOwners")
	assert.Nil(t, err)
	out, err := r.Run(ctx, world.Env(self, alice).WithStatic(), input)
	assert.Nil(t, err)
	values, err := ownersABI.Unpack("getOwners", out)
	assert.Nil(t, err)
	assert.Equal(t, []common.Address{carol, alice, bob}, values[0])

	input, err = ownersABI.Pack("getThreshold")
	assert.Nil(t, err)
	out, err = r.Run(ctx, world.Env(self, alice).WithStatic(), input)
	assert.Nil(t, err)
	values, err = ownersABI.Unpack("getThreshold", out)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), values[0].(*big.Int).Int64())

	input, err = ownersABI.Pack("isOwner", dave)
	assert.Nil(t, err)
	out, err = r.Run(ctx, world.Env(self, alice).WithStatic(), input)
	assert.Nil(t, err)
	values, err = ownersABI.Unpack("isOwner", out)
	assert.Nil(t, err)
	assert.Equal(t, false, values[0])

	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	input, err = ownersABI.Pack("changeThreshold", huge)
	assert.Nil(t, err)
	_, err = r.Run(ctx, world.Env(self, self), input)
	assert.Reason(t, "GS201", err)
}
