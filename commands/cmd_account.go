package commands

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/proxy"
	"github.com/iov-one/quorum/x/safe"
	"github.com/spf13/cobra"
)

// setupFlags describe a new account.
type setupFlags struct {
	owners          []string
	threshold       uint64
	salt            string
	fallbackHandler string
}

func (f *setupFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.owners, "owners", nil, "comma separated owner addresses")
	fl.Uint64Var(&f.threshold, "threshold", 1, "number of owners that must sign an execution")
	fl.StringVar(&f.salt, "salt", "0", "salt nonce picking the account address")
	fl.StringVar(&f.fallbackHandler, "fallback-handler", "", "contract receiving unknown calls")
}

func (f *setupFlags) parse() (safe.SetupParams, *big.Int, error) {
	owners, err := parseAddresses("owners", f.owners)
	if err != nil {
		return safe.SetupParams{}, nil, err
	}
	if len(owners) == 0 {
		return safe.SetupParams{}, nil, errors.Field("owners", errors.ErrInput, "at least one owner required")
	}
	salt, err := parseBig("salt", f.salt)
	if err != nil {
		return safe.SetupParams{}, nil, err
	}
	handler, err := parseAddress("fallback-handler", f.fallbackHandler)
	if err != nil {
		return safe.SetupParams{}, nil, err
	}
	return safe.SetupParams{
		Owners:          owners,
		Threshold:       new(big.Int).SetUint64(f.threshold),
		FallbackHandler: handler,
	}, salt, nil
}

func predictCmd(home func() string) *cobra.Command {
	var setup setupFlags
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the address an account would be created at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(home())
			if err != nil {
				return err
			}
			p, salt, err := setup.parse()
			if err != nil {
				return err
			}
			factory, singleton, err := deployment(cfg)
			if err != nil {
				return err
			}
			addr := proxy.CalculateAddress(factory, singleton, p.Input(), salt)
			printKV(cmd.OutOrStdout(), "account", addr.Hex())
			return nil
		},
	}
	setup.register(cmd)
	return cmd
}

func deployment(cfg Config) (factory, singleton common.Address, err error) {
	if !common.IsHexAddress(cfg.Contracts.Factory) || !common.IsHexAddress(cfg.Contracts.Singleton) {
		return factory, singleton, errors.Wrap(errors.ErrNotFound, "contracts not deployed, run init first")
	}
	return common.HexToAddress(cfg.Contracts.Factory), common.HexToAddress(cfg.Contracts.Singleton), nil
}

func createCmd(home func() string) *cobra.Command {
	var (
		setup setupFlags
		fund  string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account through the proxy factory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, salt, err := setup.parse()
			if err != nil {
				return err
			}
			amount, err := parseBig("fund", fund)
			if err != nil {
				return err
			}
			return withNode(cmd, home(), func(n *Node) error {
				factory, singleton, err := deployment(n.Config)
				if err != nil {
					return err
				}
				rcpt, err := n.Submit(context.Background(), n.Deployer(), factory, proxy.CreateInput(singleton, p.Input(), salt), nil)
				if err != nil {
					return err
				}
				if rcpt.Err != nil {
					return errors.Wrap(rcpt.Err, "create account")
				}
				out, err := proxy.FactoryDefinition().Unpack("createProxyWithNonce", rcpt.ReturnData)
				if err != nil {
					return errors.Wrap(errors.ErrInput, err.Error())
				}
				account := out[0].(common.Address)
				if amount.Sign() > 0 {
					if err := n.Chain.SetBalance(account, amount); err != nil {
						return err
					}
				}
				printKV(cmd.OutOrStdout(), "account", account.Hex())
				printKV(cmd.OutOrStdout(), "gas_used", rcpt.GasUsed)
				return nil
			})
		},
	}
	setup.register(cmd)
	cmd.Flags().StringVar(&fund, "fund", "0", "native balance given to the new account")
	return cmd
}

func showCmd(home func() string) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the settings of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress("account", account)
			if err != nil {
				return err
			}
			if addr == (common.Address{}) {
				return errors.Field("account", errors.ErrInput, "required")
			}
			return withNode(cmd, home(), func(n *Node) error {
				ctx := context.Background()
				abi := safe.Definition()
				call := func(method string, args ...interface{}) ([]interface{}, error) {
					input, err := abi.Pack(method, args...)
					if err != nil {
						return nil, errors.Wrap(errors.ErrHuman, err.Error())
					}
					out, err := n.Query(ctx, addr, input)
					if err != nil {
						return nil, errors.Wrapf(err, "%s", method)
					}
					values, err := abi.Unpack(method, out)
					if err != nil {
						return nil, errors.Wrapf(errors.ErrInput, "%s: %s", method, err)
					}
					return values, nil
				}

				owners, err := call("getOwners")
				if err != nil {
					return err
				}
				threshold, err := call("getThreshold")
				if err != nil {
					return err
				}
				nonce, err := call("nonce")
				if err != nil {
					return err
				}
				modules, err := call("getModulesPaginated", quorum.Sentinel, big.NewInt(100))
				if err != nil {
					return err
				}
				version, err := call("VERSION")
				if err != nil {
					return err
				}
				storage := func(slot common.Hash) (common.Address, error) {
					v, err := n.Chain.Storage(addr, slot)
					return quorum.WordAddress(v), err
				}
				g, err := storage(guard.GuardSlot)
				if err != nil {
					return err
				}
				handler, err := storage(safe.FallbackHandlerSlot)
				if err != nil {
					return err
				}
				singleton, err := storage(safe.SingletonSlot)
				if err != nil {
					return err
				}
				balance, err := n.Chain.Balance(addr)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				printKV(w, "account", addr.Hex())
				printKV(w, "version", version[0])
				printKV(w, "singleton", singleton.Hex())
				for _, o := range owners[0].([]common.Address) {
					printKV(w, "owner", o.Hex())
				}
				printKV(w, "threshold", threshold[0])
				printKV(w, "nonce", nonce[0])
				for _, m := range modules[0].([]common.Address) {
					printKV(w, "module", m.Hex())
				}
				printKV(w, "guard", g.Hex())
				printKV(w, "fallback_handler", handler.Hex())
				printKV(w, "balance", balance)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "address of the account")
	return cmd
}
