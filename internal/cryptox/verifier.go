// Package cryptox contains the client's credential primitives: the argon2id
// password verifier kept for offline sign-in and the age-sealed secret used
// for opt-in silent re-authentication.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

// SaltSize is the length of the random per-credential salt.
const SaltSize = 16

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey stretches password with argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// MakeVerifier hashes a derived key into the value stored on disk. The key
// itself is never persisted.
func MakeVerifier(key []byte) []byte {
	sum := sha256.Sum256(key)
	return sum[:]
}

// CheckPassword reports whether password matches the stored salt and verifier.
// The comparison is constant time.
func CheckPassword(password, salt, verifier []byte) bool {
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)

	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}
