package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrschumacher/appauth/internal/config"
	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/jrschumacher/appauth/pkg/appauth"
)

type fakeConfig struct {
	authorization, token, logout string
	redirect, postLogoutRedirect string
	secret, scope                string

	lookups []string
}

func validConfig() *fakeConfig {
	return &fakeConfig{
		authorization:      "https://idsvr.example.com/oauth/authorize",
		token:              "https://idsvr.example.com/oauth/token",
		logout:             "https://idsvr.example.com/oauth/logout",
		redirect:           "io.curity.client:/callback",
		postLogoutRedirect: "io.curity.client:/logoutcallback",
		scope:              "openid profile",
	}
}

func (c *fakeConfig) lookup(name, value string) (*url.URL, error) {
	c.lookups = append(c.lookups, name)
	return config.GetURL(value)
}

func (c *fakeConfig) GetAuthorizationURI() (*url.URL, error) {
	return c.lookup("authorization", c.authorization)
}
func (c *fakeConfig) GetTokenURI() (*url.URL, error)  { return c.lookup("token", c.token) }
func (c *fakeConfig) GetLogoutURI() (*url.URL, error) { return c.lookup("logout", c.logout) }
func (c *fakeConfig) GetRedirectURI() (*url.URL, error) {
	return c.lookup("redirect", c.redirect)
}
func (c *fakeConfig) GetPostLogoutRedirectURI() (*url.URL, error) {
	return c.lookup("post_logout_redirect", c.postLogoutRedirect)
}
func (c *fakeConfig) GetClientSecret() string { return c.secret }
func (c *fakeConfig) GetScope() string        { return c.scope }

// fakeSession hands Cancel back to the engine that created it.
type fakeSession struct {
	cancel func()
}

func (s *fakeSession) Cancel()                                   { s.cancel() }
func (s *fakeSession) ResumeExternalUserAgentFlow(*url.URL) bool { return false }
func (s *fakeSession) FailExternalUserAgentFlow(error)           {}

// fakeEngine records presented requests so tests can complete them by hand.
type fakeEngine struct {
	mu       sync.Mutex
	presents int

	authReq *appauth.AuthorizationRequest
	authCB  func(*appauth.AuthorizationResponse, error)
	endReq  *appauth.EndSessionRequest
	endCB   func(*appauth.EndSessionResponse, error)

	tokenReq  *appauth.TokenRequest
	tokenResp *appauth.TokenResponse
	tokenErr  error
}

var programCanceled = appauth.NewError(appauth.GeneralErrorDomain,
	appauth.ErrorCodeProgramCanceledAuthorizationFlow, "authorization flow was cancelled")

func (e *fakeEngine) PresentAuthorizationRequest(req *appauth.AuthorizationRequest, _ appauth.ExternalUserAgent,
	cb func(*appauth.AuthorizationResponse, error)) appauth.ExternalUserAgentSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.presents++
	e.authReq = req
	var once sync.Once
	e.authCB = func(resp *appauth.AuthorizationResponse, err error) {
		once.Do(func() { cb(resp, err) })
	}
	complete := e.authCB
	return &fakeSession{cancel: func() { complete(nil, programCanceled) }}
}

func (e *fakeEngine) PresentEndSessionRequest(req *appauth.EndSessionRequest, _ appauth.ExternalUserAgent,
	cb func(*appauth.EndSessionResponse, error)) appauth.ExternalUserAgentSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.presents++
	e.endReq = req
	var once sync.Once
	e.endCB = func(resp *appauth.EndSessionResponse, err error) {
		once.Do(func() { cb(resp, err) })
	}
	complete := e.endCB
	return &fakeSession{cancel: func() { complete(nil, programCanceled) }}
}

func (e *fakeEngine) PerformTokenRequest(_ context.Context, req *appauth.TokenRequest,
	cb func(*appauth.TokenResponse, error)) {
	e.mu.Lock()
	e.tokenReq = req
	resp, err := e.tokenResp, e.tokenErr
	e.mu.Unlock()
	go cb(resp, err)
}

func (e *fakeEngine) completeAuthorization(resp *appauth.AuthorizationResponse, err error) {
	e.mu.Lock()
	cb := e.authCB
	e.mu.Unlock()
	cb(resp, err)
}

func (e *fakeEngine) completeEndSession(err error) {
	e.mu.Lock()
	cb := e.endCB
	e.mu.Unlock()
	cb(nil, err)
}

func await[T any](t *testing.T, r *Result[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := r.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "result never completed")
	return v, err
}

type logEntry struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
	Field string `json:"field"`
}

type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) entries(t *testing.T) []logEntry {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []logEntry
	dec := json.NewDecoder(bytes.NewReader(c.buf.Bytes()))
	for dec.More() {
		var e logEntry
		require.NoError(t, dec.Decode(&e))
		out = append(out, e)
	}
	return out
}

func (c *logCapture) messages(t *testing.T, level string) []string {
	var out []string
	for _, e := range c.entries(t) {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}

func captureLogs(t *testing.T) *logCapture {
	t.Helper()
	c := &logCapture{}
	prev := logger.Logger()
	logger.SetLogger(logger.New(c, "DEBUG", "json"))
	t.Cleanup(func() { logger.SetLogger(prev) })
	return c
}

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func validMetadata() *appauth.ProviderMetadata {
	return appauth.NewProviderMetadata(
		mustURL("https://idsvr.example.com/oauth/authorize"),
		mustURL("https://idsvr.example.com/oauth/token"),
		nil, nil,
		mustURL("https://idsvr.example.com/oauth/logout"),
	)
}

// nopAgent is handed to the fake engine, which never calls it.
type nopAgent struct{}

func (nopAgent) PresentExternalUserAgentRequest(appauth.ExternalUserAgentRequest, appauth.ExternalUserAgentSession) bool {
	return true
}
func (nopAgent) DismissExternalUserAgent(completion func()) { completion() }

var browser appauth.ExternalUserAgent = nopAgent{}

// panickingEngine fails every presentation with a panic.
type panickingEngine struct {
	fakeEngine
}

func (*panickingEngine) PresentAuthorizationRequest(*appauth.AuthorizationRequest, appauth.ExternalUserAgent,
	func(*appauth.AuthorizationResponse, error)) appauth.ExternalUserAgentSession {
	panic("agent went away")
}

func (*panickingEngine) PresentEndSessionRequest(*appauth.EndSessionRequest, appauth.ExternalUserAgent,
	func(*appauth.EndSessionResponse, error)) appauth.ExternalUserAgentSession {
	panic("agent went away")
}
