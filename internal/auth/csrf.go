package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrTokenMismatch = errors.New("token was issued for another session")
)

const csrfAudience = "csrf"

// CSRFClaims binds a token to the browser session that requested it.
type CSRFClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CSRFService issues and verifies HS256-signed CSRF tokens
type CSRFService struct {
	secretKey []byte
	ttl       time.Duration
}

func NewCSRFService(secretKey string, ttl time.Duration) *CSRFService {
	return &CSRFService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

// Generate creates a token for sessionID
func (s *CSRFService) Generate(sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := CSRFClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{csrfAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate checks signature, expiry, audience and session binding
func (s *CSRFService) Validate(tokenString, sessionID string) error {
	token, err := jwt.ParseWithClaims(tokenString, &CSRFClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithAudience(csrfAudience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(*CSRFClaims)
	if !ok || !token.Valid {
		return ErrInvalidToken
	}
	if sessionID == "" || claims.SessionID != sessionID {
		return ErrTokenMismatch
	}

	return nil
}

// TTL returns the token lifetime
func (s *CSRFService) TTL() time.Duration {
	return s.ttl
}
