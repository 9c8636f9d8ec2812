// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth verifies the bearer tokens that identify the owner of a
// request. Tokens are HS256 JWTs whose subject is the owner's UUID.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken reports a missing, malformed, expired or mis-signed token.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies access tokens with a shared secret.
type Tokens struct {
	secret []byte
}

// NewTokens creates a Tokens for the given HS256 secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue returns a signed token for owner that expires after ttl.
func (t *Tokens) Issue(owner uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the owner it identifies.
func (t *Tokens) Verify(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	owner, err := uuid.Parse(claims.Subject)
	if err != nil || owner == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return owner, nil
}
