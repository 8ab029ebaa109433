package commands

import (
	"context"
	"os"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/multisend"
	"github.com/iov-one/quorum/x/proxy"
	"github.com/iov-one/quorum/x/safe"
	"github.com/spf13/cobra"
)

func initCmd(home func() string) *cobra.Command {
	cfg := DefaultConfig()
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a local chain with the account contracts deployed",
		Long: `Create the home directory, its configuration file and a chain
state holding the account singleton, the proxy factory, the multisend
libraries and the guards. This command fails if the home directory is
already initialized.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := home()
			if _, err := LoadConfig(dir); !errors.ErrNotFound.Is(err) {
				return errors.Wrapf(errors.ErrDuplicate, "%s is already initialized", dir)
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(errors.ErrInput, "create home: %s", err)
			}
			n, err := OpenNode(dir, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer n.Close()

			ctx := context.Background()
			deployments := []struct {
				artifact host.Artifact
				dest     *string
			}{
				{safe.Artifact, &n.Config.Contracts.Singleton},
				{proxy.FactoryArtifact, &n.Config.Contracts.Factory},
				{multisend.Artifact, &n.Config.Contracts.MultiSend},
				{multisend.CallOnlyArtifact, &n.Config.Contracts.MultiSendCallOnly},
				{guard.AllowlistArtifact, &n.Config.Contracts.AllowlistGuard},
				{DelegateCallGuardArtifact, &n.Config.Contracts.DelegateCallGuard},
			}
			for i, d := range deployments {
				addr, err := n.Deploy(ctx, d.artifact, uint64(i+1))
				if err != nil {
					return err
				}
				*d.dest = addr.Hex()
				printKV(cmd.OutOrStdout(), d.artifact.Name, addr.Hex())
			}
			return SaveConfig(dir, n.Config)
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&cfg.ChainID, "chain-id", cfg.ChainID, "chain identifier accounts sign for")
	fl.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "one of debug, info, error, none")
	fl.StringVar(&cfg.Contracts.Deployer, "deployer", cfg.Contracts.Deployer, "account deploying the contracts")
	return cmd
}
