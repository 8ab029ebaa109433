package commands

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/safe"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/txhash"
	"github.com/spf13/cobra"
)

func hashCmd(home func() string) *cobra.Command {
	var (
		tx    txFlags
		nonce string
	)
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the digest owners sign to authorize a transaction",
		Long: `Print the digest owners sign to authorize a transaction. Unless --nonce
is given, the digest is computed for the current nonce of the account, so
it authorizes the next execution.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, t, err := tx.parse()
			if err != nil {
				return err
			}
			return withNode(cmd, home(), func(n *Node) error {
				if nonce != "" {
					if t.Nonce, err = parseBig("nonce", nonce); err != nil {
						return err
					}
				} else if t.Nonce, err = accountNonce(n, account); err != nil {
					return err
				}
				digest, err := txhash.Digest(t, txhash.DomainSeparator(n.Chain.ChainID(), account))
				if err != nil {
					return err
				}
				printKV(cmd.OutOrStdout(), "nonce", t.Nonce)
				printKV(cmd.OutOrStdout(), "digest", digest.Hex())
				return nil
			})
		},
	}
	tx.register(cmd)
	cmd.Flags().StringVar(&nonce, "nonce", "", "nonce to sign for, the current one when empty")
	return cmd
}

func accountNonce(n *Node, account common.Address) (*big.Int, error) {
	v, err := n.Chain.Storage(account, safe.NonceSlot)
	if err != nil {
		return nil, err
	}
	return v.Big(), nil
}

func execCmd(home func() string) *cobra.Command {
	var (
		tx         txFlags
		signatures []string
		from       string
	)
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute a transaction signed by enough owners",
		Long: `Submit a transaction together with the signatures of its digest, as
printed by the sign command. Signatures may be given in any order. The
transaction fields must be the ones the digest was computed from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, t, err := tx.parse()
			if err != nil {
				return err
			}
			sender, err := parseAddress("from", from)
			if err != nil {
				return err
			}
			return withNode(cmd, home(), func(n *Node) error {
				if sender == (common.Address{}) {
					sender = n.Deployer()
				}
				if t.Nonce, err = accountNonce(n, account); err != nil {
					return err
				}
				digest, err := txhash.Digest(t, txhash.DomainSeparator(n.Chain.ChainID(), account))
				if err != nil {
					return err
				}
				bundle, err := parseBundle(signatures, digest)
				if err != nil {
					return err
				}
				input, err := execInput(t, bundle)
				if err != nil {
					return err
				}
				rcpt, err := n.Submit(context.Background(), sender, account, input, nil)
				if err != nil {
					return err
				}
				if rcpt.Err != nil {
					return rcpt.Err
				}
				out, err := safe.Definition().Unpack("execTransaction", rcpt.ReturnData)
				if err != nil {
					return errors.Wrap(errors.ErrInput, err.Error())
				}
				printKV(cmd.OutOrStdout(), "digest", digest.Hex())
				printKV(cmd.OutOrStdout(), "success", out[0])
				printKV(cmd.OutOrStdout(), "gas_used", rcpt.GasUsed)
				printKV(cmd.OutOrStdout(), "logs", len(rcpt.Logs))
				return nil
			})
		},
	}
	tx.register(cmd)
	fl := cmd.Flags()
	fl.StringSliceVar(&signatures, "signatures", nil, "comma separated hex signatures")
	fl.StringVar(&from, "from", "", "submitter of the message, the deployer when empty")
	return cmd
}

// parseBundle decodes signature windows and orders them by signer.
func parseBundle(list []string, digest common.Hash) ([]byte, error) {
	var b sigs.Bundle
	for i, s := range list {
		raw, err := parseHex("signatures", strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		sig, err := sigs.FromWindow(raw, digest)
		if err != nil {
			return nil, errors.Field("signatures", err, "signature %d", i)
		}
		b = append(b, sig)
	}
	return b.Encode(), nil
}

func execInput(t txhash.Tx, signatures []byte) ([]byte, error) {
	input, err := safe.Definition().Pack("execTransaction",
		t.To, t.Value, t.Data, uint8(t.Operation), t.SafeTxGas, t.BaseGas, t.GasPrice,
		t.GasToken, t.RefundReceiver, signatures)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return input, nil
}
