// Copyright 2025 Certen Protocol
package identity

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Foo string `json:"foo"`
	Bar int    `json:"bar"`
}

func TestCalculateHash_Deterministic(t *testing.T) {
	obj := sample{Foo: "hello", Bar: 42}

	h1, err := Default.CalculateHash(obj)
	require.NoError(t, err)
	h2, err := Default.CalculateHash(obj)
	require.NoError(t, err)

	require.Equal(t, h1, h2)
	require.Regexp(t, "^0x[0-9a-f]{64}$", h1)
}

func TestCalculateHash_DiffersOnContent(t *testing.T) {
	h1, err := Default.CalculateHash(sample{Foo: "a"})
	require.NoError(t, err)
	h2, err := Default.CalculateHash(sample{Foo: "b"})
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestCheckHashMatches(t *testing.T) {
	obj := sample{Foo: "hello", Bar: 1}
	hash, err := Default.CalculateHash(obj)
	require.NoError(t, err)

	matches, err := Default.CheckHashMatches(hash, obj)
	require.NoError(t, err)
	require.True(t, matches)

	matches, err = Default.CheckHashMatches(hash, sample{Foo: "other"})
	require.NoError(t, err)
	require.False(t, matches)
}

func TestSignAndValidateSignature(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)

	obj := sample{Foo: "signed", Bar: 7}
	sig, err := Default.Sign(secret, obj)
	require.NoError(t, err)

	address := Default.AddressFromSecret(secret)
	require.NoError(t, Default.ValidateSignature(address, sig, obj))
}

func TestValidateSignature_WrongAddress(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	obj := sample{Foo: "signed"}
	sig, err := Default.Sign(secret, obj)
	require.NoError(t, err)

	err = Default.ValidateSignature(Default.AddressFromSecret(other), sig, obj)
	require.Error(t, err)
}

func TestValidateSignature_TamperedContent(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := Default.Sign(secret, sample{Foo: "original"})
	require.NoError(t, err)

	address := Default.AddressFromSecret(secret)
	err = Default.ValidateSignature(address, sig, sample{Foo: "tampered"})
	require.Error(t, err)
}

func TestSortedKeys(t *testing.T) {
	m := map[string]interface{}{"z": 1, "a": 2, "m": 3}
	require.Equal(t, []string{"a", "m", "z"}, SortedKeys(m))
}
