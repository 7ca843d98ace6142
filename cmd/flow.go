package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jrschumacher/appauth/internal/authflow"
	"github.com/jrschumacher/appauth/internal/jwtutil"
	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/jrschumacher/appauth/pkg/appauth"
)

// ErrInvalidEndpoints is returned when the configured endpoints cannot be resolved.
var ErrInvalidEndpoints = errors.New("the configured endpoints are invalid, see the log for details")

// ErrNoIssuer is returned when discovery is requested without an issuer.
var ErrNoIssuer = errors.New("issuer must be configured to use discovery")

func newFlow() (*authflow.Handler, *appauth.Service) {
	svc := appauth.NewService()
	return authflow.NewHandler(cfg, svc), svc
}

// resolveMetadata reads the endpoints from configuration, or from the issuer's
// discovery document when discover is set.
func resolveMetadata(ctx context.Context, h *authflow.Handler, svc *appauth.Service, discover bool) (*appauth.ProviderMetadata, error) {
	if discover {
		if cfg.Issuer == "" {
			return nil, ErrNoIssuer
		}
		return svc.Discover(ctx, cfg.Issuer)
	}
	md := h.FetchMetadata()
	if md == nil {
		return nil, ErrInvalidEndpoints
	}
	return md, nil
}

type tokenOutput struct {
	AccessToken   string     `json:"access_token"`
	RefreshToken  string     `json:"refresh_token,omitempty"`
	IDToken       string     `json:"id_token,omitempty"`
	TokenType     string     `json:"token_type,omitempty"`
	Scope         string     `json:"scope,omitempty"`
	Expiry        *time.Time `json:"expiry,omitempty"`
	IDTokenClaims any        `json:"id_token_claims,omitempty"`
}

// printTokens writes tokens as JSON. With allClaims every ID token claim is
// included, otherwise only the standard ones.
func printTokens(ctx context.Context, w io.Writer, tokens *appauth.TokenResponse, allClaims bool) error {
	out := tokenOutput{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		TokenType:    tokens.TokenType,
		Scope:        tokens.Scope,
	}
	if !tokens.Expiry.IsZero() {
		out.Expiry = &tokens.Expiry
	}
	if tokens.IDToken != "" {
		var claims any
		var err error
		if allClaims {
			claims, err = jwtutil.ClaimsMap(ctx, tokens.IDToken)
		} else {
			claims, err = jwtutil.ParseUnverified(tokens.IDToken)
		}
		if err != nil {
			logger.Warn("Could not read ID token claims", "error", err)
		} else {
			out.IDTokenClaims = claims
		}
	}
	return printJSON(w, out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
