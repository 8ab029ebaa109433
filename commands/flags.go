package commands

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/txhash"
	"github.com/spf13/cobra"
)

func parseAddress(name, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Field(name, errors.ErrInput, "invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAddresses(name string, list []string) ([]common.Address, error) {
	res := make([]common.Address, 0, len(list))
	for _, s := range list {
		a, err := parseAddress(name, strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}

// parseBig accepts decimal numbers and 0x prefixed hexadecimal numbers.
func parseBig(name, s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok || n.Sign() < 0 || n.BitLen() > 256 {
		return nil, errors.Field(name, errors.ErrInput, "invalid number %q", s)
	}
	return n, nil
}

func parseHex(name, s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Field(name, errors.ErrInput, "invalid hex: %s", err)
	}
	return b, nil
}

// txFlags are the fields of an account transaction.
type txFlags struct {
	account        string
	to             string
	value          string
	data           string
	operation      uint8
	safeTxGas      string
	baseGas        string
	gasPrice       string
	gasToken       string
	refundReceiver string
}

func (f *txFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.account, "account", "", "address of the account executing the transaction")
	fl.StringVar(&f.to, "to", "", "address called by the account")
	fl.StringVar(&f.value, "value", "0", "native amount sent with the call")
	fl.StringVar(&f.data, "data", "", "hex encoded call data")
	fl.Uint8Var(&f.operation, "operation", 0, "0 for a call, 1 for a delegate call")
	fl.StringVar(&f.safeTxGas, "safe-tx-gas", "0", "gas of the call, required when refunding")
	fl.StringVar(&f.baseGas, "base-gas", "0", "gas spent around the call that is refunded")
	fl.StringVar(&f.gasPrice, "gas-price", "0", "refund price per gas unit, zero disables the refund")
	fl.StringVar(&f.gasToken, "gas-token", "", "token the refund is paid in, native unit when empty")
	fl.StringVar(&f.refundReceiver, "refund-receiver", "", "receiver of the refund, the submitter when empty")
}

// parse returns the account and the transaction.
func (f *txFlags) parse() (common.Address, txhash.Tx, error) {
	var (
		tx   txhash.Tx
		errs error
		err  error
	)
	account, err := parseAddress("account", f.account)
	errs = errors.Append(errs, err)
	if account == (common.Address{}) {
		errs = errors.AppendField(errs, "account", errors.Wrap(errors.ErrInput, "required"))
	}
	tx.To, err = parseAddress("to", f.to)
	errs = errors.Append(errs, err)
	tx.Value, err = parseBig("value", f.value)
	errs = errors.Append(errs, err)
	tx.Data, err = parseHex("data", f.data)
	errs = errors.Append(errs, err)
	tx.Operation = quorum.Operation(f.operation)
	errs = errors.AppendField(errs, "operation", tx.Operation.Validate())
	tx.SafeTxGas, err = parseBig("safe-tx-gas", f.safeTxGas)
	errs = errors.Append(errs, err)
	tx.BaseGas, err = parseBig("base-gas", f.baseGas)
	errs = errors.Append(errs, err)
	tx.GasPrice, err = parseBig("gas-price", f.gasPrice)
	errs = errors.Append(errs, err)
	tx.GasToken, err = parseAddress("gas-token", f.gasToken)
	errs = errors.Append(errs, err)
	tx.RefundReceiver, err = parseAddress("refund-receiver", f.refundReceiver)
	errs = errors.Append(errs, err)
	return account, tx, errs
}
