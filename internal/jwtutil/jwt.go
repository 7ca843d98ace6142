// Package jwtutil reads ID token claims for display. Tokens are parsed without
// signature verification or claim validation.
package jwtutil

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrEmptyToken is returned when there is no token to parse
var ErrEmptyToken = fmt.Errorf("empty token")

// IDTokenClaims holds the standard ID token claims shown to the user
type IDTokenClaims struct {
	Issuer   string    `json:"iss,omitempty"`
	Subject  string    `json:"sub,omitempty"`
	Audience []string  `json:"aud,omitempty"`
	Expiry   time.Time `json:"exp,omitempty"`
	IssuedAt time.Time `json:"iat,omitempty"`
	Nonce    string    `json:"nonce,omitempty"`
	SID      string    `json:"sid,omitempty"`
}

func parseUnverified(idToken string) (jwt.Token, error) {
	if idToken == "" {
		return nil, ErrEmptyToken
	}
	token, err := jwt.Parse([]byte(idToken), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ID token: %w", err)
	}
	return token, nil
}

// ParseUnverified extracts the standard claims from idToken
func ParseUnverified(idToken string) (*IDTokenClaims, error) {
	token, err := parseUnverified(idToken)
	if err != nil {
		return nil, err
	}

	claims := &IDTokenClaims{
		Issuer:   token.Issuer(),
		Subject:  token.Subject(),
		Audience: token.Audience(),
		Expiry:   token.Expiration(),
		IssuedAt: token.IssuedAt(),
	}
	if v, ok := token.Get("nonce"); ok {
		claims.Nonce, _ = v.(string)
	}
	if v, ok := token.Get("sid"); ok {
		claims.SID, _ = v.(string)
	}
	return claims, nil
}

// ClaimsMap returns every claim in idToken, including private ones
func ClaimsMap(ctx context.Context, idToken string) (map[string]any, error) {
	token, err := parseUnverified(idToken)
	if err != nil {
		return nil, err
	}
	m, err := token.AsMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ID token claims: %w", err)
	}
	return m, nil
}
