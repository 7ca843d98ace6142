// Package appauth implements the OAuth 2.0 / OpenID Connect protocol side of
// a native client: provider metadata, authorization and end session requests
// presented through an external user-agent, and token endpoint grants.
package appauth

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

// Service presents browser flows and performs token requests.
type Service struct {
	client *http.Client
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient sets the client used for token and discovery requests.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// NewService creates a Service. Without options it uses http.DefaultClient.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withHTTPClient(ctx context.Context) context.Context {
	if s.client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.client)
}

// PresentAuthorizationRequest shows req in agent. callback runs exactly once,
// with either a response or an error, on whichever goroutine completes the flow.
func (s *Service) PresentAuthorizationRequest(
	req *AuthorizationRequest,
	agent ExternalUserAgent,
	callback func(*AuthorizationResponse, error),
) ExternalUserAgentSession {
	session := &flowSession[*AuthorizationResponse]{
		agent:    agent,
		redirect: req.RedirectTarget(),
		parse: func(u *url.URL) (*AuthorizationResponse, error) {
			return parseAuthorizationResponse(req, u)
		},
		callback: callback,
	}
	session.present(req)
	return session
}

// PresentEndSessionRequest shows req in agent with the same completion rules
// as PresentAuthorizationRequest.
func (s *Service) PresentEndSessionRequest(
	req *EndSessionRequest,
	agent ExternalUserAgent,
	callback func(*EndSessionResponse, error),
) ExternalUserAgentSession {
	session := &flowSession[*EndSessionResponse]{
		agent:    agent,
		redirect: req.RedirectTarget(),
		parse: func(u *url.URL) (*EndSessionResponse, error) {
			return parseEndSessionResponse(req, u)
		},
		callback: callback,
	}
	if req.ExternalUserAgentRequestURL() == nil {
		session.FailExternalUserAgentFlow(NewError(GeneralErrorDomain, ErrorCodeInvalidDiscoveryDocument,
			"provider metadata has no end session endpoint"))
		return session
	}
	session.present(req)
	return session
}

// Token performs req synchronously.
func (s *Service) Token(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	tok, err := req.retrieve(s.withHTTPClient(ctx))
	if err != nil {
		return nil, tokenError(ctx, err)
	}
	return newTokenResponse(req, tok), nil
}

// PerformTokenRequest performs req on a new goroutine and reports the outcome to callback.
func (s *Service) PerformTokenRequest(ctx context.Context, req *TokenRequest, callback func(*TokenResponse, error)) {
	go func() {
		callback(s.Token(ctx, req))
	}()
}

// flowSession tracks one presented request until its callback has run.
type flowSession[R any] struct {
	mu       sync.Mutex
	finished bool

	agent    ExternalUserAgent
	redirect *url.URL
	parse    func(*url.URL) (R, error)
	callback func(R, error)
}

func (s *flowSession[R]) present(req ExternalUserAgentRequest) {
	if s.agent == nil || req.ExternalUserAgentRequestURL() == nil || !s.agent.PresentExternalUserAgentRequest(req, s) {
		s.FailExternalUserAgentFlow(NewError(GeneralErrorDomain, ErrorCodeBrowserOpenError,
			"unable to open the external user-agent"))
	}
}

// claim marks the session finished; only the first caller gets true.
func (s *flowSession[R]) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return false
	}
	s.finished = true
	return true
}

func (s *flowSession[R]) finish(resp R, err error) {
	if s.agent == nil {
		s.callback(resp, err)
		return
	}
	s.agent.DismissExternalUserAgent(func() {
		s.callback(resp, err)
	})
}

func (s *flowSession[R]) Cancel() {
	if !s.claim() {
		return
	}
	var zero R
	s.finish(zero, NewError(GeneralErrorDomain, ErrorCodeProgramCanceledAuthorizationFlow,
		"authorization flow was cancelled"))
}

func (s *flowSession[R]) ResumeExternalUserAgentFlow(callback *url.URL) bool {
	if !matchesRedirect(callback, s.redirect) {
		return false
	}
	if !s.claim() {
		return false
	}
	resp, err := s.parse(callback)
	if err != nil {
		var zero R
		s.finish(zero, err)
		return true
	}
	s.finish(resp, nil)
	return true
}

func (s *flowSession[R]) FailExternalUserAgentFlow(err error) {
	if !s.claim() {
		return
	}
	var zero R
	s.finish(zero, err)
}

// Discover fetches provider metadata using the Service's HTTP client.
func (s *Service) Discover(ctx context.Context, issuer string) (*ProviderMetadata, error) {
	return Discover(ctx, issuer, s.client)
}
