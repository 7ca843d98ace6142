package appauth

import (
	"fmt"
	"net/url"
)

// EndSessionRequest is an RP-initiated logout request.
type EndSessionRequest struct {
	Metadata              *ProviderMetadata
	IDTokenHint           string
	PostLogoutRedirectURL *url.URL
	State                 string
	AdditionalParameters  map[string]string
}

// NewEndSessionRequest creates a logout request with a fresh state.
func NewEndSessionRequest(metadata *ProviderMetadata, idTokenHint string, postLogoutRedirectURL *url.URL, additionalParameters map[string]string) *EndSessionRequest {
	return &EndSessionRequest{
		Metadata:              metadata,
		IDTokenHint:           idTokenHint,
		PostLogoutRedirectURL: postLogoutRedirectURL,
		State:                 GenerateStateToken(),
		AdditionalParameters:  additionalParameters,
	}
}

// ExternalUserAgentRequestURL returns the end session URL, or nil when the
// provider has no end session endpoint.
func (r *EndSessionRequest) ExternalUserAgentRequestURL() *url.URL {
	if r.Metadata == nil || r.Metadata.EndSessionEndpoint == nil {
		return nil
	}
	u := *r.Metadata.EndSessionEndpoint
	q := u.Query()
	for k, v := range r.AdditionalParameters {
		q.Set(k, v)
	}
	if r.IDTokenHint != "" {
		q.Set("id_token_hint", r.IDTokenHint)
	}
	if r.PostLogoutRedirectURL != nil {
		q.Set("post_logout_redirect_uri", r.PostLogoutRedirectURL.String())
	}
	q.Set("state", r.State)
	u.RawQuery = q.Encode()
	return &u
}

// RedirectTarget returns the post logout redirect URL.
func (r *EndSessionRequest) RedirectTarget() *url.URL {
	return r.PostLogoutRedirectURL
}

// EndSessionResponse is the parsed post logout redirect.
type EndSessionResponse struct {
	Request *EndSessionRequest
	State   string
}

func parseEndSessionResponse(req *EndSessionRequest, callback *url.URL) (*EndSessionResponse, error) {
	q := callback.Query()
	if oauthErr := q.Get("error"); oauthErr != "" {
		return nil, newOAuthError(OAuthAuthorizationErrorDomain, oauthErr, q.Get("error_description"))
	}
	resp := &EndSessionResponse{Request: req, State: q.Get("state")}
	// Providers are not required to echo state on logout.
	if resp.State != "" && resp.State != req.State {
		return nil, NewError(OAuthAuthorizationErrorDomain, ErrorCodeOAuthClientError,
			fmt.Sprintf("State mismatch, expecting %s but got %s in end session response", req.State, resp.State))
	}
	return resp, nil
}
