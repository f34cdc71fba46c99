package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hearth/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-key", "hearth-test")

	token, err := svc.GenerateToken("user-1", "bank_agent", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "bank_agent", claims.Role)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewService("key-a", "hearth-test").GenerateToken("user-1", "buyer", time.Hour)
	require.NoError(t, err)

	_, err = NewService("key-b", "hearth-test").ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-key", "hearth-test")

	token, err := svc.GenerateToken("user-1", "buyer", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewService("test-key", "hearth-test").ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
