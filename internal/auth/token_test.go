package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	verifier := NewVerifier("test-secret", "chat-broker")

	token, err := verifier.GenerateToken("alice")
	require.NoError(t, err)

	username, err := verifier.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewVerifier("secret-a", "chat-broker").GenerateToken("alice")
	require.NoError(t, err)

	_, err = NewVerifier("secret-b", "chat-broker").ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := NewVerifier("secret", "chat-broker").ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestValidateTokenRejectsOtherSigningMethods(t *testing.T) {
	claims := &Claims{Username: "alice"}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier("secret", "chat-broker").ValidateToken(unsigned)
	require.Error(t, err)
}
