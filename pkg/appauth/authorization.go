package appauth

import (
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
)

// ResponseTypeCode is the authorization code response type.
const ResponseTypeCode = "code"

// AuthorizationRequest is an OAuth 2.0 authorization request with PKCE.
type AuthorizationRequest struct {
	Metadata             *ProviderMetadata
	ClientID             string
	ClientSecret         string
	Scopes               []string
	RedirectURL          *url.URL
	ResponseType         string
	State                string
	Nonce                string
	CodeVerifier         string
	AdditionalParameters map[string]string
}

// NewAuthorizationRequest creates a request with a fresh state, nonce and PKCE verifier.
func NewAuthorizationRequest(
	metadata *ProviderMetadata,
	clientID, clientSecret string,
	scopes []string,
	redirectURL *url.URL,
	responseType string,
	additionalParameters map[string]string,
) *AuthorizationRequest {
	return &AuthorizationRequest{
		Metadata:             metadata,
		ClientID:             clientID,
		ClientSecret:         clientSecret,
		Scopes:               scopes,
		RedirectURL:          redirectURL,
		ResponseType:         responseType,
		State:                GenerateStateToken(),
		Nonce:                GenerateStateToken(),
		CodeVerifier:         oauth2.GenerateVerifier(),
		AdditionalParameters: additionalParameters,
	}
}

// ExternalUserAgentRequestURL builds the authorization URL including the S256 code challenge.
func (r *AuthorizationRequest) ExternalUserAgentRequestURL() *url.URL {
	conf := oauth2Config(r.Metadata, r.ClientID, r.ClientSecret, r.RedirectURL, r.Scopes)
	opts := []oauth2.AuthCodeOption{
		oauth2.S256ChallengeOption(r.CodeVerifier),
		oauth2.SetAuthURLParam("nonce", r.Nonce),
	}
	if r.ResponseType != "" && r.ResponseType != ResponseTypeCode {
		opts = append(opts, oauth2.SetAuthURLParam("response_type", r.ResponseType))
	}
	for k, v := range r.AdditionalParameters {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	u, err := url.Parse(conf.AuthCodeURL(r.State, opts...))
	if err != nil {
		return nil
	}
	return u
}

// RedirectTarget returns the redirect URL.
func (r *AuthorizationRequest) RedirectTarget() *url.URL {
	return r.RedirectURL
}

// ErrNoAuthorizationCode is returned when a response cannot be exchanged for tokens.
var ErrNoAuthorizationCode = NewError(GeneralErrorDomain, ErrorCodeTokenResponseConstructionError,
	"authorization response has no authorization code")

// AuthorizationResponse is the parsed redirect of a successful authorization.
type AuthorizationResponse struct {
	Request              *AuthorizationRequest
	AuthorizationCode    string
	State                string
	Scope                string
	AdditionalParameters map[string]string
}

// TokenExchangeRequest builds the authorization_code grant for this response.
func (r *AuthorizationResponse) TokenExchangeRequest(additionalParameters map[string]string) (*TokenRequest, error) {
	if r.AuthorizationCode == "" || r.Request == nil {
		return nil, ErrNoAuthorizationCode
	}
	return &TokenRequest{
		Metadata:             r.Request.Metadata,
		GrantType:            GrantTypeAuthorizationCode,
		AuthorizationCode:    r.AuthorizationCode,
		RedirectURL:          r.Request.RedirectURL,
		ClientID:             r.Request.ClientID,
		ClientSecret:         r.Request.ClientSecret,
		CodeVerifier:         r.Request.CodeVerifier,
		AdditionalParameters: additionalParameters,
	}, nil
}

var authorizationResponseFields = map[string]bool{
	"code": true, "state": true, "scope": true,
}

func parseAuthorizationResponse(req *AuthorizationRequest, callback *url.URL) (*AuthorizationResponse, error) {
	q := callback.Query()
	if oauthErr := q.Get("error"); oauthErr != "" {
		return nil, newOAuthError(OAuthAuthorizationErrorDomain, oauthErr, q.Get("error_description"))
	}

	resp := &AuthorizationResponse{
		Request:              req,
		AuthorizationCode:    q.Get("code"),
		State:                q.Get("state"),
		Scope:                q.Get("scope"),
		AdditionalParameters: map[string]string{},
	}
	for k := range q {
		if !authorizationResponseFields[k] {
			resp.AdditionalParameters[k] = q.Get(k)
		}
	}

	if resp.State != req.State {
		return nil, NewError(OAuthAuthorizationErrorDomain, ErrorCodeOAuthClientError,
			fmt.Sprintf("State mismatch, expecting %s but got %s in authorization response", req.State, resp.State))
	}
	return resp, nil
}
