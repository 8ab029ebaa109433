package sigs

import (
	"bytes"
	"crypto/ecdsa"
	"sort"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// SignDigest signs digest with key.
func SignDigest(key *ecdsa.PrivateKey, digest common.Hash) (Signature, error) {
	return sign(key, digest.Bytes(), PlainECDSA, 27)
}

// SignPrefixed signs digest prefixed like a personal message, the way
// wallets sign arbitrary messages.
func SignPrefixed(key *ecdsa.PrivateKey, digest common.Hash) (Signature, error) {
	return sign(key, accounts.TextHash(digest.Bytes()), PrefixedECDSA, 31)
}

func sign(key *ecdsa.PrivateKey, hash []byte, kind Kind, base byte) (Signature, error) {
	raw, err := crypto.Sign(hash, key)
	if err != nil {
		return Signature{}, errors.Wrap(errors.ErrSignature, err.Error())
	}
	return Signature{
		Kind:   kind,
		Signer: crypto.PubkeyToAddress(key.PublicKey),
		R:      common.BytesToHash(raw[:32]),
		S:      common.BytesToHash(raw[32:64]),
		V:      raw[64] + base,
	}, nil
}

// Approved returns a signature of an owner who approved the digest
// on-chain, or who submits the execution.
func Approved(owner common.Address) Signature {
	return Signature{Kind: PreApproved, Signer: owner, R: quorum.AddressWord(owner), V: 1}
}

// Contract returns a signature verified by calling the signer contract
// with payload.
func Contract(signer common.Address, payload []byte) Signature {
	return Signature{Kind: ContractSignature, Signer: signer, R: quorum.AddressWord(signer), Payload: payload}
}

// FromWindow decodes a standalone ECDSA or pre-approved window, for example
// one collected from a co-signer. Recovering the ECDSA signer requires the
// signed digest.
func FromWindow(window []byte, digest common.Hash) (Signature, error) {
	if len(window) != WindowSize {
		return Signature{}, errors.Wrapf(errors.ErrInput, "want %d bytes, got %d", WindowSize, len(window))
	}
	sig := Signature{
		R: common.BytesToHash(window[:32]),
		S: common.BytesToHash(window[32:64]),
		V: window[64],
	}
	kind, err := KindOf(sig.V)
	if err != nil {
		return Signature{}, err
	}
	sig.Kind = kind
	switch kind {
	case ContractSignature:
		return Signature{}, errors.Wrap(errors.ErrInput, "contract signatures carry a payload")
	case PreApproved:
		sig.Signer = quorum.WordAddress(sig.R)
		return sig, nil
	}
	hash := digest.Bytes()
	v := sig.V - 27
	if kind == PrefixedECDSA {
		hash = accounts.TextHash(hash)
		v = sig.V - 31
	}
	raw := append(append(sig.R.Bytes(), sig.S.Bytes()...), v)
	pub, err := crypto.SigToPub(hash, raw)
	if err != nil {
		return Signature{}, errors.Wrap(errors.ErrSignature, err.Error())
	}
	sig.Signer = crypto.PubkeyToAddress(*pub)
	return sig, nil
}

// Bundle is a set of signatures to be encoded together.
type Bundle []Signature

// Encode sorts the signatures by ascending signer and lays them out:
// all windows first, then the length prefixed payloads of contract
// signatures in window order.
func (b Bundle) Encode() []byte {
	sorted := append(Bundle(nil), b...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Signer.Bytes(), sorted[j].Signer.Bytes()) < 0
	})

	var static, dynamic []byte
	tail := uint64(len(sorted) * WindowSize)
	for _, sig := range sorted {
		if sig.Kind != ContractSignature {
			static = append(static, sig.window(0)...)
			continue
		}
		static = append(static, sig.window(tail+uint64(len(dynamic)))...)
		dynamic = append(dynamic, quorum.Uint64Word(uint64(len(sig.Payload))).Bytes()...)
		dynamic = append(dynamic, sig.Payload...)
	}
	return append(static, dynamic...)
}
