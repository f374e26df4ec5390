// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast; verification reads them from the hash
var testParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHash_Format(t *testing.T) {
	h := NewPasswordHasherWithParams(testParams)

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"), encoded)
	assert.Len(t, strings.Split(encoded, "$"), 6)
}

func TestHash_SaltIsRandom(t *testing.T) {
	h := NewPasswordHasherWithParams(testParams)

	h1, err := h.Hash("password")
	require.NoError(t, err)
	h2, err := h.Hash("password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerify(t *testing.T) {
	h := NewPasswordHasherWithParams(testParams)

	encoded, err := h.Hash("P@ssw0rd!")
	require.NoError(t, err)

	ok, err := h.Verify("P@ssw0rd!", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("p@ssw0rd!", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_UsesParamsFromHash(t *testing.T) {
	encoded, err := NewPasswordHasherWithParams(testParams).Hash("secret")
	require.NoError(t, err)

	ok, err := NewPasswordHasher().Verify("secret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_InvalidHash(t *testing.T) {
	h := NewPasswordHasherWithParams(testParams)

	tests := []struct {
		name    string
		encoded string
		want    error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"bad version", "$argon2id$v=x$m=1,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"old version", "$argon2id$v=16$m=1,t=1,p=1$c2FsdA$a2V5", ErrIncompatibleVersion},
		{"bad params", "$argon2id$v=19$m=a,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5", ErrInvalidHash},
		{"empty key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("secret", tt.encoded)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHash_RandomReadFails(t *testing.T) {
	h := &argon2Hasher{params: testParams, rand: bytes.NewReader(nil)}

	_, err := h.Hash("secret")
	assert.ErrorIs(t, err, io.EOF)
}
