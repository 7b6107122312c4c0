// Package token issues and verifies the stateless bearer tokens that bind a
// request to an account id.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accountforge/service-identity-go/internal/apperror"
)

// Claims is the payload carried by an issued token. The subject account id
// lives in the "id" claim, which existing clients depend on.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens with a process-wide secret. It is
// constructed once at startup and holds no mutable state, so it is safe for
// concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a token service. ttl <= 0 disables expiry, which matches
// the historical behavior of this API; pass a positive ttl to opt in.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue produces a signed token bound to subjectID.
func (s *Service) Issue(subjectID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.Newf(apperror.KindInternal, "sign token: %v", err)
	}
	return signed, nil
}

// Verify checks the signature and decodes the bound account id. Malformed,
// tampered, expired, and wrongly-signed tokens all collapse to Unauthorized.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !tok.Valid {
		return "", apperror.New(apperror.KindUnauthorized, "invalid token")
	}
	if claims.UserID == "" {
		return "", apperror.New(apperror.KindUnauthorized, "invalid token")
	}
	return claims.UserID, nil
}
