package appauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// Grant types supported by the token endpoint.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
)

// TokenRequest is a request to the token endpoint.
type TokenRequest struct {
	Metadata             *ProviderMetadata
	GrantType            string
	AuthorizationCode    string
	RedirectURL          *url.URL
	ClientID             string
	ClientSecret         string
	Scope                string
	RefreshToken         string
	CodeVerifier         string
	AdditionalParameters map[string]string
}

// TokenResponse holds the tokens returned by the provider. Empty strings mean
// the provider did not return the value.
type TokenResponse struct {
	Request      *TokenRequest
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	Scope        string
	Expiry       time.Time
}

// oauth2Config builds an oauth2.Config for the given client. Public clients
// send client_id in the body, confidential clients use HTTP basic auth.
func oauth2Config(md *ProviderMetadata, clientID, clientSecret string, redirect *url.URL, scopes []string) *oauth2.Config {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
	}
	if redirect != nil {
		conf.RedirectURL = redirect.String()
	}
	if md != nil {
		if md.AuthorizationEndpoint != nil {
			conf.Endpoint.AuthURL = md.AuthorizationEndpoint.String()
		}
		if md.TokenEndpoint != nil {
			conf.Endpoint.TokenURL = md.TokenEndpoint.String()
		}
	}
	if clientSecret == "" {
		conf.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	} else {
		conf.Endpoint.AuthStyle = oauth2.AuthStyleInHeader
	}
	return conf
}

func (r *TokenRequest) oauth2Config() *oauth2.Config {
	var scopes []string
	if r.Scope != "" {
		scopes = []string{r.Scope}
	}
	return oauth2Config(r.Metadata, r.ClientID, r.ClientSecret, r.RedirectURL, scopes)
}

func (r *TokenRequest) retrieve(ctx context.Context) (*oauth2.Token, error) {
	conf := r.oauth2Config()
	switch r.GrantType {
	case GrantTypeAuthorizationCode:
		var opts []oauth2.AuthCodeOption
		if r.CodeVerifier != "" {
			opts = append(opts, oauth2.VerifierOption(r.CodeVerifier))
		}
		for k, v := range r.AdditionalParameters {
			opts = append(opts, oauth2.SetAuthURLParam(k, v))
		}
		return conf.Exchange(ctx, r.AuthorizationCode, opts...)
	case GrantTypeRefreshToken:
		return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: r.RefreshToken}).Token()
	default:
		return nil, NewError(GeneralErrorDomain, ErrorCodeTokenResponseConstructionError,
			fmt.Sprintf("unsupported grant type %q", r.GrantType))
	}
}

func newTokenResponse(req *TokenRequest, tok *oauth2.Token) *TokenResponse {
	return &TokenResponse{
		Request:     req,
		AccessToken: tok.AccessToken,
		// oauth2 substitutes the request's refresh token when the server omits
		// one; report only what the server actually sent.
		RefreshToken: extraString(tok, "refresh_token"),
		IDToken:      extraString(tok, "id_token"),
		TokenType:    tok.TokenType,
		Scope:        extraString(tok, "scope"),
		Expiry:       tok.Expiry,
	}
}

func extraString(tok *oauth2.Token, key string) string {
	s, _ := tok.Extra(key).(string)
	return s
}

// tokenError maps oauth2 failures onto the token error domain.
func tokenError(ctx context.Context, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode != "" {
			e := newOAuthError(OAuthTokenErrorDomain, re.ErrorCode, re.ErrorDescription)
			e.Err = err
			return e
		}
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &Error{
			Domain:  GeneralErrorDomain,
			Code:    ErrorCodeServerError,
			Message: fmt.Sprintf("token endpoint returned HTTP %d", status),
			Err:     err,
		}
	}

	if ctx.Err() != nil {
		return &Error{
			Domain:  GeneralErrorDomain,
			Code:    ErrorCodeProgramCanceledAuthorizationFlow,
			Message: "token request was cancelled",
			Err:     err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{
			Domain:  GeneralErrorDomain,
			Code:    ErrorCodeNetworkError,
			Message: fmt.Sprintf("network error: %v", urlErr.Err),
			Err:     err,
		}
	}

	return &Error{
		Domain:  GeneralErrorDomain,
		Code:    ErrorCodeTokenResponseConstructionError,
		Message: err.Error(),
		Err:     err,
	}
}
