package appauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ProviderMetadata describes the endpoints of one identity provider.
// It is immutable once built.
type ProviderMetadata struct {
	AuthorizationEndpoint *url.URL
	TokenEndpoint         *url.URL
	Issuer                *url.URL
	RegistrationEndpoint  *url.URL
	EndSessionEndpoint    *url.URL
}

// NewProviderMetadata builds metadata from statically known endpoints.
func NewProviderMetadata(authorizationEndpoint, tokenEndpoint, issuer, registrationEndpoint, endSessionEndpoint *url.URL) *ProviderMetadata {
	return &ProviderMetadata{
		AuthorizationEndpoint: authorizationEndpoint,
		TokenEndpoint:         tokenEndpoint,
		Issuer:                issuer,
		RegistrationEndpoint:  registrationEndpoint,
		EndSessionEndpoint:    endSessionEndpoint,
	}
}

// discoveryClaims are the discovery document fields not exposed by oidc.Provider.
type discoveryClaims struct {
	RegistrationEndpoint string `json:"registration_endpoint"`
	EndSessionEndpoint   string `json:"end_session_endpoint"`
}

// Discover fetches the issuer's OpenID Connect discovery document.
// A nil client uses http.DefaultClient.
func Discover(ctx context.Context, issuer string, client *http.Client) (*ProviderMetadata, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, &Error{
			Domain:  GeneralErrorDomain,
			Code:    ErrorCodeInvalidDiscoveryDocument,
			Message: fmt.Sprintf("failed to discover provider metadata for %s: %v", issuer, err),
			Err:     err,
		}
	}

	var extra discoveryClaims
	if err := provider.Claims(&extra); err != nil {
		return nil, &Error{
			Domain:  GeneralErrorDomain,
			Code:    ErrorCodeJSONDeserializationError,
			Message: fmt.Sprintf("failed to decode discovery document: %v", err),
			Err:     err,
		}
	}

	endpoint := provider.Endpoint()
	md := &ProviderMetadata{}
	fields := []struct {
		raw      string
		dst      **url.URL
		required bool
	}{
		{endpoint.AuthURL, &md.AuthorizationEndpoint, true},
		{endpoint.TokenURL, &md.TokenEndpoint, true},
		{issuer, &md.Issuer, true},
		{extra.RegistrationEndpoint, &md.RegistrationEndpoint, false},
		{extra.EndSessionEndpoint, &md.EndSessionEndpoint, false},
	}
	for _, f := range fields {
		if f.raw == "" {
			if f.required {
				return nil, NewError(GeneralErrorDomain, ErrorCodeInvalidDiscoveryDocument, "discovery document is missing a required endpoint")
			}
			continue
		}
		u, err := url.Parse(f.raw)
		if err != nil {
			return nil, &Error{
				Domain:  GeneralErrorDomain,
				Code:    ErrorCodeInvalidDiscoveryDocument,
				Message: fmt.Sprintf("invalid endpoint %q in discovery document", f.raw),
				Err:     err,
			}
		}
		*f.dst = u
	}
	return md, nil
}
