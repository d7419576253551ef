package service

import (
	"fmt"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ============================================================
// Access token verification — used by middleware
// ============================================================

// JWTClaims are the claims the backend puts in access tokens.
type JWTClaims struct {
	UserID    domain.FlexString `json:"user_id"`
	Username  string            `json:"username,omitempty"`
	Phone     string            `json:"phone_number,omitempty"`
	Role      string            `json:"role,omitempty"`
	TokenType string            `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 access tokens issued by the backend.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier for tokens signed with secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses tokenString and returns the caller it identifies.
func (v *TokenVerifier) Verify(tokenString string) (*domain.Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "توکن نامعتبر یا منقضی شده است"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "توکن نامعتبر است"}
	}
	if claims.TokenType != "" && claims.TokenType != "access" {
		return nil, &domain.ErrUnauthorized{Message: "نوع توکن نامعتبر است"}
	}

	userID := claims.UserID.String()
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, &domain.ErrUnauthorized{Message: "توکن نامعتبر است"}
	}

	return &domain.Caller{
		UserID:   userID,
		Username: claims.Username,
		Phone:    claims.Phone,
		Role:     claims.Role,
		Token:    tokenString,
	}, nil
}

// Sign issues an access token for c valid for ttl. The backend issues the
// real tokens; this serves local tooling and tests.
func (v *TokenVerifier) Sign(c domain.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:    domain.FlexString(c.UserID),
		Username:  c.Username,
		Phone:     c.Phone,
		Role:      c.Role,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
