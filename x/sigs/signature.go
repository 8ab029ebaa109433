package sigs

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// WindowSize is the size of the fixed part of every signature.
const WindowSize = 65

// Kind of a signature, derived from the window marker byte.
type Kind uint8

const (
	ContractSignature Kind = iota
	PreApproved
	PlainECDSA
	PrefixedECDSA
)

func (k Kind) String() string {
	switch k {
	case ContractSignature:
		return "contract"
	case PreApproved:
		return "pre-approved"
	case PlainECDSA:
		return "ecdsa"
	case PrefixedECDSA:
		return "prefixed ecdsa"
	default:
		return "unknown"
	}
}

// KindOf returns the kind selected by a marker byte.
func KindOf(v byte) (Kind, error) {
	switch {
	case v == 0:
		return ContractSignature, nil
	case v == 1:
		return PreApproved, nil
	case v == 27 || v == 28:
		return PlainECDSA, nil
	case v == 31 || v == 32:
		return PrefixedECDSA, nil
	default:
		return 0, errors.Wrapf(errors.ErrSignature, "GS026: unknown signature marker %d", v)
	}
}

// Signature is one entry of a bundle.
type Signature struct {
	Kind Kind
	// Signer is embedded in contract and pre-approved signatures. For
	// ECDSA signatures it is only known off-chain, and used to order the
	// bundle.
	Signer common.Address
	R, S   common.Hash
	V      byte
	// Payload is the data passed to the signer contract of a contract
	// signature.
	Payload []byte
}

// window returns the fixed part of the signature. off is the offset of
// the payload of a contract signature.
func (s Signature) window(off uint64) []byte {
	w := make([]byte, 0, WindowSize)
	switch s.Kind {
	case ContractSignature:
		w = append(w, quorum.AddressWord(s.Signer).Bytes()...)
		w = append(w, quorum.Uint64Word(off).Bytes()...)
		return append(w, 0)
	case PreApproved:
		w = append(w, quorum.AddressWord(s.Signer).Bytes()...)
		w = append(w, make([]byte, common.HashLength)...)
		return append(w, 1)
	default:
		w = append(w, s.R.Bytes()...)
		w = append(w, s.S.Bytes()...)
		return append(w, s.V)
	}
}

// Parse decodes the first required windows of a bundle. It checks the
// layout of contract signature payloads, but verifies nothing.
//
// Contract signature payloads must start after the consulted windows and
// fit within the bundle. When a consulted window carries a payload, the
// payload of the last contract signature of the whole table must end
// exactly at the end of the bundle. Windows past the consulted ones are
// only read to find that payload, they are never verified.
func Parse(bundle []byte, required uint64) ([]Signature, error) {
	size := uint64(len(bundle))
	if required > size/WindowSize {
		return nil, errors.Wrapf(errors.ErrSignature, "GS020: %d bytes cannot hold %d signatures", size, required)
	}
	fixed := required * WindowSize

	sigs := make([]Signature, 0, required)
	var (
		lastEnd  uint64
		firstOff = size
	)
	for i := uint64(0); i < required; i++ {
		w := bundle[i*WindowSize : (i+1)*WindowSize]
		sig := Signature{
			R: common.BytesToHash(w[:32]),
			S: common.BytesToHash(w[32:64]),
			V: w[64],
		}
		kind, err := KindOf(sig.V)
		if err != nil {
			return nil, errors.Field(windowField(i), err, "")
		}
		sig.Kind = kind

		switch kind {
		case ContractSignature:
			sig.Signer = quorum.WordAddress(sig.R)
			off := sig.S.Big()
			if off.Cmp(new(big.Int).SetUint64(fixed)) < 0 {
				return nil, errors.Field(windowField(i), errors.ErrSignature, "GS021: invalid contract signature location: inside static part")
			}
			if !off.IsUint64() || off.Uint64() > size || size-off.Uint64() < 32 {
				return nil, errors.Field(windowField(i), errors.ErrSignature, "GS022: invalid contract signature location: length not present")
			}
			start, end, ok := payloadBounds(bundle, off.Uint64())
			if !ok {
				return nil, errors.Field(windowField(i), errors.ErrSignature, "GS023: invalid contract signature location: data not complete")
			}
			if off.Uint64() < firstOff {
				firstOff = off.Uint64()
			}
			lastEnd = end
			sig.Payload = bundle[start:end]
		case PreApproved:
			sig.Signer = quorum.WordAddress(sig.R)
		}
		sigs = append(sigs, sig)
	}
	if lastEnd == 0 {
		return sigs, nil
	}
	// Windows between the consulted ones and the first payload belong to
	// the table as well.
	for i := required; (i+1)*WindowSize <= firstOff; i++ {
		w := bundle[i*WindowSize : (i+1)*WindowSize]
		if w[64] != 0 {
			continue
		}
		off := new(big.Int).SetBytes(w[32:64])
		if !off.IsUint64() || off.Uint64() < firstOff {
			continue
		}
		if _, end, ok := payloadBounds(bundle, off.Uint64()); ok {
			lastEnd = end
		}
	}
	if lastEnd != size {
		return nil, errors.Wrap(errors.ErrSignature, "GS023: invalid contract signature location: trailing data")
	}
	return sigs, nil
}

// payloadBounds locates the length prefixed payload at off.
func payloadBounds(bundle []byte, off uint64) (start, end uint64, ok bool) {
	size := uint64(len(bundle))
	if off > size || size-off < 32 {
		return 0, 0, false
	}
	start = off + 32
	length := new(big.Int).SetBytes(bundle[off:start])
	if !length.IsUint64() || length.Uint64() > size-start {
		return 0, 0, false
	}
	return start, start + length.Uint64(), true
}

func windowField(i uint64) string {
	return "Signatures." + strconv.FormatUint(i, 10)
}
