package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-1")
	require.NoError(t, err)

	userID, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).Generate("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Generate("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager("test-secret", time.Hour).Validate("not-a-token")
	assert.Error(t, err)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("test-secret", time.Hour).Validate(token)
	assert.Error(t, err)
}
