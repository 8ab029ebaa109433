/*
Package commands implements the quorum command line: a local chain kept in
a LevelDB database, and the tools to create, sign for and execute
multi-signature accounts on it.
*/
package commands

import (
	"os"
	"path/filepath"

	"github.com/iov-one/quorum"
	"github.com/spf13/cobra"
)

// DefaultHome is where the chain lives unless --home says otherwise.
func DefaultHome() string {
	return filepath.Join(os.ExpandEnv("$HOME"), ".quorum")
}

// NewRootCmd returns the quorum command with all subcommands.
func NewRootCmd() *cobra.Command {
	var home string
	root := &cobra.Command{
		Use:           "quorum",
		Short:         "Multi-signature accounts on a local chain",
		Version:       quorum.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&home, "home", DefaultHome(), "directory to store files under")

	homeDir := func() string { return home }
	root.AddCommand(
		initCmd(homeDir),
		keygenCmd(),
		signCmd(),
		predictCmd(homeDir),
		createCmd(homeDir),
		hashCmd(homeDir),
		execCmd(homeDir),
		encodeMultiSendCmd(),
		showCmd(homeDir),
	)
	return root
}

// withNode loads the configuration and opens the chain around fn.
func withNode(cmd *cobra.Command, home string, fn func(n *Node) error) error {
	cfg, err := LoadConfig(home)
	if err != nil {
		return err
	}
	n, err := OpenNode(home, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(n)
}
