package commands

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new secp256k1 private key",
		Long: `Generate a new secp256k1 private key and print it hex encoded together
with the address of the owner it controls. Keep the key secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return errors.Wrapf(errors.ErrHuman, "cannot generate key: %s", err)
			}
			printKV(cmd.OutOrStdout(), "private_key", hexutil.Encode(crypto.FromECDSA(key)))
			printKV(cmd.OutOrStdout(), "address", crypto.PubkeyToAddress(key.PublicKey).Hex())
			return nil
		},
	}
}

func signCmd() *cobra.Command {
	var (
		keyHex   string
		digest   string
		prefixed bool
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a transaction digest",
		Long: `Sign a digest printed by the hash command. The signature is printed hex
encoded and can be passed to exec. With --prefixed the digest is signed
like a personal message, the way most wallets sign.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseHex("key", keyHex)
			if err != nil {
				return err
			}
			key, err := crypto.ToECDSA(raw)
			if err != nil {
				return errors.Field("key", errors.ErrInput, "invalid private key: %s", err)
			}
			d, err := parseHex("digest", digest)
			if err != nil {
				return err
			}
			if len(d) != common.HashLength {
				return errors.Field("digest", errors.ErrInput, "want %d bytes, got %d", common.HashLength, len(d))
			}

			sign := sigs.SignDigest
			if prefixed {
				sign = sigs.SignPrefixed
			}
			sig, err := sign(key, common.BytesToHash(d))
			if err != nil {
				return err
			}
			printKV(cmd.OutOrStdout(), "signer", sig.Signer.Hex())
			printKV(cmd.OutOrStdout(), "signature", hexutil.Encode(sigs.Bundle{sig}.Encode()))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&keyHex, "key", "", "hex encoded private key")
	fl.StringVar(&digest, "digest", "", "hex encoded digest to sign")
	fl.BoolVar(&prefixed, "prefixed", false, "sign as a personal message")
	return cmd
}
