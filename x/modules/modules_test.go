package modules

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
	self = common.HexToAddress("0x5afe")
	modA = common.HexToAddress("0x0a")
	modB = common.HexToAddress("0x0b")
	modC = common.HexToAddress("0x0c")
)

func TestEnableDisable(t *testing.T) {
	cases := map[string]struct {
		Mutate      func(env quorum.Env) error
		WantReason  string
		WantEnabled []common.Address
	}{
		"enable": {
			Mutate:      func(env quorum.Env) error { return Enable(env, modC) },
			WantEnabled: []common.Address{modC, modB, modA},
		},
		"enable twice": {
			Mutate:     func(env quorum.Env) error { return Enable(env, modA) },
			WantReason: "GS102",
		},
		"enable zero": {
			Mutate:     func(env quorum.Env) error { return Enable(env, common.Address{}) },
			WantReason: "GS101",
		},
		"enable sentinel": {
			Mutate:     func(env quorum.Env) error { return Enable(env, quorum.Sentinel) },
			WantReason: "GS101",
		},
		"disable": {
			Mutate:      func(env quorum.Env) error { return Disable(env, modB, modA) },
			WantEnabled: []common.Address{modB},
		},
		"disable with wrong predecessor": {
			Mutate:     func(env quorum.Env) error { return Disable(env, quorum.Sentinel, modA) },
			WantReason: "GS103",
		},
		"disable not enabled": {
			Mutate:     func(env quorum.Env) error { return Disable(env, modA, modC) },
			WantReason: "GS103",
		},
		"disable sentinel": {
			Mutate:     func(env quorum.Env) error { return Disable(env, modA, quorum.Sentinel) },
			WantReason: "GS101",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			world := quorumtest.NewWorld()
			env := world.Env(self, self)
			assert.Nil(t, Setup(env))
			assert.Nil(t, Enable(env, modA))
			assert.Nil(t, Enable(env, modB))
			world.Logs = nil

			err := tc.Mutate(env)
			assert.Reason(t, tc.WantReason, err)
			if tc.WantReason != "" {
				assert.Equal(t, 0, len(world.Logs))
				return
			}
			page, next, err := Page(env, quorum.Sentinel, 10)
			assert.Nil(t, err)
			assert.Equal(t, tc.WantEnabled, page)
			assert.Equal(t, quorum.Sentinel, next)
			assert.Equal(t, 1, len(world.Logs))
		})
	}
}

func TestSetupOnce(t *testing.T) {
	env := quorumtest.NewWorld().Env(self, self)
	assert.Nil(t, Setup(env))
	err := Setup(env)
	assert.IsErr(t, errors.ErrState, err)
	assert.Reason(t, "GS100", err)
	assert.Equal(t, false, IsEnabled(env, quorum.Sentinel))
}

func TestPaginatedRoute(t *testing.T) {
	world := quorumtest.NewWorld()
	r := quorum.NewRouter(modulesABI)
	RegisterRoutes(r, x.SelfAuth{})
	ctx := context.Background()

	env := world.Env(self, self)
	assert.Nil(t, Setup(env))
	for _, m := range []common.Address{modA, modB, modC} {
		input, err := modulesABI.Pack("enableModule", m)
		assert.Nil(t, err)
		_, err = r.Run(ctx, world.Env(self, self), input)
		assert.Nil(t, err)
	}

	input, err := modulesABI.Pack("enableModule", common.HexToAddress("0x0d"))
	assert.Nil(t, err)
	_, err = r.Run(ctx, world.Env(self, modA), input)
	assert.Reason(t, "GS031", err)

	input, err = modulesABI.Pack("getModulesPaginated", quorum.Sentinel, big.NewInt(2))
	assert.Nil(t, err)
	out, err := r.Run(ctx, world.Env(self, modA).WithStatic(), input)
	assert.Nil(t, err)
	values, err := modulesABI.Unpack("getModulesPaginated", out)
	assert.Nil(t, err)
	assert.Equal(t, []common.Address{modC, modB}, values[0])
	assert.Equal(t, modB, values[1])

	input, err = modulesABI.Pack("getModulesPaginated", modB, big.NewInt(2))
	assert.Nil(t, err)
	out, err = r.Run(ctx, world.Env(self, modA).WithStatic(), input)
	assert.Nil(t, err)
	values, err = modulesABI.Unpack("getModulesPaginated", out)
	assert.Nil(t, err)
	assert.Equal(t, []common.Address{modA}, values[0])
	assert.Equal(t, quorum.Sentinel, values[1])

	input, err = modulesABI.Pack("getModulesPaginated", quorum.Sentinel, big.NewInt(0))
	assert.Nil(t, err)
	_, err = r.Run(ctx, world.Env(self, modA).WithStatic(), input)
	assert.Reason(t, "GS106", err)
}
