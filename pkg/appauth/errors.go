package appauth

import (
	"fmt"
	"strings"
)

// Error domains. Domain strings share the ErrorDomainPrefix namespace.
const (
	ErrorDomainPrefix = "org.openid.appauth"

	GeneralErrorDomain            = ErrorDomainPrefix + ".general"
	OAuthAuthorizationErrorDomain = ErrorDomainPrefix + ".oauth_authorization"
	OAuthTokenErrorDomain         = ErrorDomainPrefix + ".oauth_token"
	ResourceServerErrorDomain     = ErrorDomainPrefix + ".resourceserver"
)

// Codes in GeneralErrorDomain.
const (
	ErrorCodeInvalidDiscoveryDocument         = -2
	ErrorCodeUserCanceledAuthorizationFlow    = -3
	ErrorCodeProgramCanceledAuthorizationFlow = -4
	ErrorCodeNetworkError                     = -5
	ErrorCodeServerError                      = -6
	ErrorCodeJSONDeserializationError         = -7
	ErrorCodeTokenResponseConstructionError   = -8
	ErrorCodeBrowserOpenError                 = -10
	ErrorCodeTokenRefreshError                = -11
)

// Codes in the OAuth authorization and token domains, keyed by the RFC 6749 error value.
const (
	ErrorCodeOAuthInvalidRequest          = -2
	ErrorCodeOAuthUnauthorizedClient      = -3
	ErrorCodeOAuthAccessDenied            = -4
	ErrorCodeOAuthUnsupportedResponseType = -5
	ErrorCodeOAuthInvalidScope            = -6
	ErrorCodeOAuthServerError             = -7
	ErrorCodeOAuthTemporarilyUnavailable  = -8
	ErrorCodeOAuthInvalidClient           = -9
	ErrorCodeOAuthInvalidGrant            = -10
	ErrorCodeOAuthUnsupportedGrantType    = -11
	ErrorCodeOAuthInvalidRedirectURI      = -12
	ErrorCodeOAuthOther                   = -0xF000
	ErrorCodeOAuthClientError             = -0xEFFF
)

var oauthErrorCodes = map[string]int{
	"invalid_request":           ErrorCodeOAuthInvalidRequest,
	"unauthorized_client":       ErrorCodeOAuthUnauthorizedClient,
	"access_denied":             ErrorCodeOAuthAccessDenied,
	"unsupported_response_type": ErrorCodeOAuthUnsupportedResponseType,
	"invalid_scope":             ErrorCodeOAuthInvalidScope,
	"server_error":              ErrorCodeOAuthServerError,
	"temporarily_unavailable":   ErrorCodeOAuthTemporarilyUnavailable,
	"invalid_client":            ErrorCodeOAuthInvalidClient,
	"invalid_grant":             ErrorCodeOAuthInvalidGrant,
	"unsupported_grant_type":    ErrorCodeOAuthUnsupportedGrantType,
	"invalid_redirect_uri":      ErrorCodeOAuthInvalidRedirectURI,
}

// OAuthErrorCode maps an OAuth "error" value to its numeric code.
func OAuthErrorCode(oauthError string) int {
	if code, ok := oauthErrorCodes[oauthError]; ok {
		return code
	}
	return ErrorCodeOAuthOther
}

// Error is a provider error identified by a domain and a numeric code.
type Error struct {
	Domain  string
	Code    int
	Message string
	Err     error
}

// NewError creates an Error with no underlying cause.
func NewError(domain string, code int, message string) *Error {
	return &Error{Domain: domain, Code: code, Message: message}
}

func newOAuthError(domain, oauthError, description string) *Error {
	msg := description
	if msg == "" {
		msg = oauthError
	}
	return &Error{Domain: domain, Code: OAuthErrorCode(oauthError), Message: msg}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("The operation couldn't be completed. (%s error %d.)", e.Domain, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports domain and code equality, so sentinel *Error values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Domain == t.Domain && e.Code == t.Code
}

// IsLibraryDomain reports whether domain belongs to this package's error namespace.
func IsLibraryDomain(domain string) bool {
	return strings.Contains(domain, ErrorDomainPrefix)
}
