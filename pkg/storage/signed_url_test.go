package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("alice_1700000000.jpg")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	name, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice_1700000000.jpg", name)
	assert.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("alice.jpg")
	require.NoError(t, err)

	_, _, err = signer.Parse(token + "x")
	assert.Error(t, err)

	other := NewSignedURLSigner("different", time.Hour)
	_, _, err = other.Parse(token)
	assert.Error(t, err)
}

func TestSignedURLRejectsExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", -time.Minute)
	signer.ttl = -time.Minute

	token, _, err := signer.Generate("alice.jpg")
	require.NoError(t, err)

	_, _, err = signer.Parse(token)
	assert.ErrorContains(t, err, "expired")
}
