package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenAuthority issues and inspects the signed session tokens. It is built
// once at startup from the configured secret and session TTL and handed to
// whoever needs it; nothing reads the signing key after construction.
type TokenAuthority struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenAuthority(secret []byte, ttl time.Duration) *TokenAuthority {
	return &TokenAuthority{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
	}
}

// JWTAuth exposes the underlying verifier for the chi middleware.
func (a *TokenAuthority) JWTAuth() *jwtauth.JWTAuth {
	return a.auth
}

func (a *TokenAuthority) TTL() time.Duration {
	return a.ttl
}

// GenerateToken signs a session token for the given user. The jti claim
// identifies the token in the revocation list on logout.
func (a *TokenAuthority) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(a.ttl).Unix(),
	}
	_, tokenString, err := a.auth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, used by the auth middleware.

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

func GetTokenIDFromClaims(claims jwt.MapClaims) (string, error) {
	jti, ok := claims["jti"].(string)
	if !ok {
		return "", errors.New("jti claim is missing or not a string")
	}
	return jti, nil
}

// GetExpiryFromClaims handles both shapes the verifier can hand us: jwx
// converts exp to time.Time, a raw decode leaves it as a float.
func GetExpiryFromClaims(claims jwt.MapClaims) (time.Time, error) {
	switch v := claims["exp"].(type) {
	case time.Time:
		return v, nil
	case float64:
		return time.Unix(int64(v), 0), nil
	case int64:
		return time.Unix(v, 0), nil
	}
	return time.Time{}, errors.New("exp claim is missing or has an unexpected type")
}
