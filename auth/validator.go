// Package auth implements the token side of the authentication dependency
// chain: it turns a bearer token into an authenticated principal. Everything
// upstream of the token (identity provider, login flow) is external.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/learnloop/backend/middleware"
)

var (
	// ErrInvalidToken is returned when the token fails validation
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is unknown
	ErrInvalidIssuer = errors.New("invalid issuer")
)

// tokenClaims are the custom claims carried by platform tokens
type tokenClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

// Validator validates HMAC-signed platform tokens and implements
// middleware.TokenValidator.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a token validator
func NewValidator(secret, issuer string) *Validator {
	return &Validator{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// ValidateToken validates a JWT and returns the principal's claims.
func (v *Validator) ValidateToken(_ context.Context, token string) (*middleware.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if v.issuer != "" {
		iss, err := claims.GetIssuer()
		if err != nil || iss != v.issuer {
			return nil, ErrInvalidIssuer
		}
	}

	return &middleware.Claims{
		Sub:       claims.Subject,
		Email:     claims.Email,
		CompanyID: claims.CompanyID,
		UserID:    claims.UserID,
		Role:      claims.Role,
	}, nil
}
