package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-value")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	require.Len(t, key1, argonKeyLen)
	assert.Equal(t, key1, key2)
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	assert.NotEqual(t, DeriveKey(password, []byte("salt-1")), DeriveKey(password, []byte("salt-2")))
}

func TestCheckPassword(t *testing.T) {
	salt := NewSalt()
	require.Len(t, salt, SaltSize)

	verifier := MakeVerifier(DeriveKey([]byte("correct horse"), salt))

	assert.True(t, CheckPassword([]byte("correct horse"), salt, verifier))
	assert.False(t, CheckPassword([]byte("Correct horse"), salt, verifier))
	assert.False(t, CheckPassword([]byte("correct horse"), NewSalt(), verifier))
	assert.False(t, CheckPassword([]byte("correct horse"), salt, nil))
}
