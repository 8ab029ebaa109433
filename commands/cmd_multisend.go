package commands

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/multisend"
	"github.com/spf13/cobra"
)

func encodeMultiSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode-multisend op:to:value:data...",
		Short: "Encode a batch of calls for the multisend library",
		Long: `Encode a batch of calls into multiSend call data. Each argument is one
record written as op:to:value:data, where op is 0 for a call and 1 for a
delegate call, value is in the native unit and data is hex encoded. An
empty to calls the account itself.

Execute the result with a delegate call to the multisend library:

  quorum exec --to <multisend> --operation 1 --data <output> ...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := make([]multisend.Record, 0, len(args))
			for i, a := range args {
				r, err := parseRecord(a)
				if err != nil {
					return errors.Field("records."+strconv.Itoa(i), err, "")
				}
				records = append(records, r)
			}
			input, err := multisend.Input(records)
			if err != nil {
				return err
			}
			printKV(cmd.OutOrStdout(), "data", hexutil.Encode(input))
			return nil
		},
	}
}

// parseRecord decodes op:to:value:data.
func parseRecord(s string) (multisend.Record, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return multisend.Record{}, errors.Wrapf(errors.ErrInput, "want op:to:value:data, got %q", s)
	}
	op, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return multisend.Record{}, errors.Wrapf(errors.ErrInput, "operation %q", parts[0])
	}
	var r multisend.Record
	r.Operation = quorum.Operation(op)
	if r.To, err = parseAddress("to", parts[1]); err != nil {
		return r, err
	}
	if r.Value, err = parseBig("value", parts[2]); err != nil {
		return r, err
	}
	if r.Data, err = parseHex("data", parts[3]); err != nil {
		return r, err
	}
	return r, r.Validate()
}
