package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSRFService() *CSRFService {
	return NewCSRFService("test-secret-key-for-testing-purposes", time.Hour)
}

func TestNewCSRFService(t *testing.T) {
	service := newTestCSRFService()
	assert.NotNil(t, service)
	assert.Equal(t, time.Hour, service.TTL())
}

func TestCSRFService_Generate_Success(t *testing.T) {
	service := newTestCSRFService()

	token, expiresAt, err := service.Generate("session-1")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(61*time.Minute)))
}

func TestCSRFService_Generate_UniqueTokens(t *testing.T) {
	service := newTestCSRFService()

	a, _, err := service.Generate("session-1")
	require.NoError(t, err)
	b, _, err := service.Generate("session-1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCSRFService_Validate_Valid(t *testing.T) {
	service := newTestCSRFService()
	token, _, err := service.Generate("session-2")
	require.NoError(t, err)

	assert.NoError(t, service.Validate(token, "session-2"))
}

func TestCSRFService_Validate_OtherSession(t *testing.T) {
	service := newTestCSRFService()
	token, _, err := service.Generate("session-2")
	require.NoError(t, err)

	assert.ErrorIs(t, service.Validate(token, "session-3"), ErrTokenMismatch)
	assert.ErrorIs(t, service.Validate(token, ""), ErrTokenMismatch)
}

func TestCSRFService_Validate_Expired(t *testing.T) {
	service := NewCSRFService("test-secret-key-for-testing-purposes", -time.Minute)
	token, _, err := service.Generate("session-1")
	require.NoError(t, err)

	assert.ErrorIs(t, service.Validate(token, "session-1"), ErrExpiredToken)
}

func TestCSRFService_Validate_WrongSecret(t *testing.T) {
	token, _, err := NewCSRFService("secret-a", time.Hour).Generate("session-1")
	require.NoError(t, err)

	assert.ErrorIs(t, NewCSRFService("secret-b", time.Hour).Validate(token, "session-1"), ErrInvalidToken)
}

func TestCSRFService_Validate_Garbage(t *testing.T) {
	service := newTestCSRFService()

	assert.ErrorIs(t, service.Validate("not-a-token", "session-1"), ErrInvalidToken)
	assert.ErrorIs(t, service.Validate("", "session-1"), ErrInvalidToken)
}

func TestCSRFService_Validate_WrongAudience(t *testing.T) {
	service := newTestCSRFService()
	claims := CSRFClaims{
		SessionID: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"access"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secretKey)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Validate(token, "session-1"), ErrInvalidToken)
}

func TestCSRFService_Validate_RejectsNoneAlgorithm(t *testing.T) {
	service := newTestCSRFService()
	claims := CSRFClaims{
		SessionID: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{csrfAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Validate(token, "session-1"), ErrInvalidToken)
}
