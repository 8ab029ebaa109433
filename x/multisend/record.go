package multisend

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// headerSize is the size of a record without its data.
const headerSize = 1 + common.AddressLength + 2*common.HashLength

// Record is a single call of a batch.
type Record struct {
	Operation quorum.Operation
	To        common.Address
	Value     *big.Int
	Data      []byte
}

// Validate returns an error if the record cannot be encoded.
func (r Record) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Operation", r.Operation.Validate())
	if r.Value != nil && (r.Value.Sign() < 0 || r.Value.BitLen() > 256) {
		errs = errors.AppendField(errs, "Value", errors.Wrap(errors.ErrInput, "not an unsigned 256 bit number"))
	}
	return errs
}

// Encode packs records into a batch.
func Encode(records []Record) ([]byte, error) {
	var b []byte
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, errors.Field(recordField(i), err, "")
		}
		value := r.Value
		if value == nil {
			value = new(big.Int)
		}
		b = append(b, byte(r.Operation))
		b = append(b, r.To.Bytes()...)
		b = append(b, quorum.BigWord(value).Bytes()...)
		b = append(b, quorum.Uint64Word(uint64(len(r.Data))).Bytes()...)
		b = append(b, r.Data...)
	}
	return b, nil
}

// Decode unpacks a batch.
func Decode(packed []byte) ([]Record, error) {
	var records []Record
	for off := 0; off < len(packed); {
		i := len(records)
		if len(packed)-off < headerSize {
			return nil, errors.Field(recordField(i), errors.ErrInput, "truncated header")
		}
		h := packed[off : off+headerSize]
		r := Record{
			Operation: quorum.Operation(h[0]),
			To:        common.BytesToAddress(h[1 : 1+common.AddressLength]),
			Value:     new(big.Int).SetBytes(h[1+common.AddressLength : 1+common.AddressLength+common.HashLength]),
		}
		if err := r.Operation.Validate(); err != nil {
			return nil, errors.Field(recordField(i), err, "")
		}
		length := new(big.Int).SetBytes(h[headerSize-common.HashLength:])
		off += headerSize
		if !length.IsUint64() || length.Uint64() > uint64(len(packed)-off) {
			return nil, errors.Field(recordField(i), errors.ErrInput, "truncated data")
		}
		end := off + int(length.Uint64())
		r.Data = packed[off:end]
		off = end
		records = append(records, r)
	}
	return records, nil
}

func recordField(i int) string {
	return "Records." + strconv.Itoa(i)
}
