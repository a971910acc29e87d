// Copyright 2025 Certen Protocol
//
// Identity primitives: hashing, signing, and address recovery for canonical
// entity content. Thin wrapper around go-ethereum's secp256k1/Keccak256
// implementation rather than a reimplementation of either primitive.
package identity

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Signer exposes the cryptographic primitives the entity validator (C2)
// consumes. Production code uses Default; tests can substitute a fake.
type Signer interface {
	CalculateHash(obj interface{}) (string, error)
	CheckHashMatches(hash string, obj interface{}) (bool, error)
	Sign(secret *ecdsa.PrivateKey, obj interface{}) (string, error)
	ValidateSignature(address string, signature string, obj interface{}) error
	AddressFromSecret(secret *ecdsa.PrivateKey) string
}

type ethSigner struct{}

// Default is the go-ethereum backed Signer used outside of tests.
var Default Signer = ethSigner{}

// canonicalize produces a deterministic byte representation of obj by
// marshaling to JSON with sorted map keys. encoding/json already sorts
// map[string]interface{} keys, so this is a thin, explicit wrapper kept
// separate so call sites never marshal ad hoc.
func canonicalize(obj interface{}) ([]byte, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return b, nil
}

// CalculateHash returns the 0x-prefixed, lowercase hex Keccak256 digest of
// obj's canonical JSON encoding.
func (ethSigner) CalculateHash(obj interface{}) (string, error) {
	b, err := canonicalize(obj)
	if err != nil {
		return "", err
	}
	h := crypto.Keccak256(b)
	return "0x" + strings.ToLower(toHex(h)), nil
}

func toHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0xf]
	}
	return string(out)
}

// CheckHashMatches recomputes the hash of obj and compares it to hash.
func (s ethSigner) CheckHashMatches(hash string, obj interface{}) (bool, error) {
	computed, err := s.CalculateHash(obj)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(computed, hash), nil
}

// Sign signs the Keccak256 digest of obj's canonical encoding with secret,
// returning a 0x-prefixed hex signature (r || s || v, 65 bytes).
func (ethSigner) Sign(secret *ecdsa.PrivateKey, obj interface{}) (string, error) {
	b, err := canonicalize(obj)
	if err != nil {
		return "", err
	}
	digest := crypto.Keccak256(b)
	sig, err := crypto.Sign(digest, secret)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return "0x" + toHex(sig), nil
}

// ValidateSignature recovers the signer address from signature over obj and
// fails loudly (returns a non-nil error) unless it matches address.
func (ethSigner) ValidateSignature(address string, signature string, obj interface{}) error {
	b, err := canonicalize(obj)
	if err != nil {
		return err
	}
	digest := crypto.Keccak256(b)

	sigBytes, err := decodeHex(signature)
	if err != nil {
		return fmt.Errorf("validate signature: malformed signature: %w", err)
	}
	if len(sigBytes) != 65 {
		return fmt.Errorf("validate signature: expected 65-byte signature, got %d", len(sigBytes))
	}

	pub, err := crypto.SigToPub(digest, sigBytes)
	if err != nil {
		return fmt.Errorf("validate signature: recover failed: %w", err)
	}
	recovered := crypto.PubkeyToAddress(*pub).Hex()
	if !strings.EqualFold(recovered, address) {
		return fmt.Errorf("validate signature: signer mismatch: expected %s, recovered %s", address, recovered)
	}
	return nil
}

// AddressFromSecret returns the 0x-prefixed checksum address for secret.
func (ethSigner) AddressFromSecret(secret *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(secret.PublicKey).Hex()
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, err := hexDigit(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexDigit(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit %q", c)
	}
}

// SortedKeys returns m's keys in lexical order. Map iteration order isn't
// stable, so callers that need a deterministic traversal (e.g. composing a
// query filter whose conjunct shape must be reproducible) sort through this
// rather than ranging over the map directly.
func SortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
