package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCachedCredential_HasSealedSecret(t *testing.T) {
	assert.False(t, (&CachedCredential{}).HasSealedSecret())
	assert.True(t, (&CachedCredential{SealedSecret: []byte{1}}).HasSealedSecret())
}
