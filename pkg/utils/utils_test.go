package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("p")
	require.NoError(t, err)
	assert.True(t, IsHashed(hash))
	assert.NotContains(t, hash, "$p$")

	ok, err := VerifyPassword("p", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("q", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("p")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	_, err := VerifyPassword("p", "plain")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, TokenLength)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.True(t, strings.ContainsRune(base62Alphabet, r))
	}
}

func TestNormalizeDeviceToken(t *testing.T) {
	cases := map[string]string{
		"a591bde2 720d89d4 086beaa8 43f9b061 a18b36b4 8cd0008a 1f347a5a d844be95":   "a591bde2720d89d4086beaa843f9b061a18b36b48cd0008a1f347a5ad844be95",
		"<A591BDE2 720D89D4 086BEAA8 43F9B061 A18B36B4 8CD0008A 1F347A5A D844BE95>": "a591bde2720d89d4086beaa843f9b061a18b36b48cd0008a1f347a5ad844be95",
		"  0aff\t\n": "0aff",
	}
	for in, want := range cases {
		got, err := NormalizeDeviceToken(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
}

func TestNormalizeDeviceTokenInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "xyz1", "abc"} {
		_, err := NormalizeDeviceToken(in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, in)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("u1_name"))
	assert.NoError(t, ValidateUsername("u1"))
	assert.Error(t, ValidateUsername("u"))
	assert.Error(t, ValidateUsername("_hidden"))
	assert.Error(t, ValidateUsername("bad name"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 31)))
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "JohnsiPhone", SanitizeUsername("John's iPhone"))
	assert.Equal(t, "yoga.fan", SanitizeUsername("__yoga.fan"))
	assert.Len(t, SanitizeUsername(strings.Repeat("x", 100)), MaxUsernameLength-5)
}
