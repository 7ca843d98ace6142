// Package authflow drives the authorization code flow for one identity
// provider: metadata resolution, browser login and logout through an external
// user-agent, code exchange and token refresh. Every operation returns a
// Result that completes with a value, a nil soft outcome or an error.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/jrschumacher/appauth/pkg/appauth"
)

// ErrSessionInProgress is returned when a browser flow is started while
// another one is still presented.
var ErrSessionInProgress = errors.New("an authorization session is already in progress")

// ErrNoUserAgent is returned when a browser flow is started without an agent.
var ErrNoUserAgent = errors.New("no external user-agent to present the request")

// ConfigProvider supplies endpoint URLs and client settings.
type ConfigProvider interface {
	GetAuthorizationURI() (*url.URL, error)
	GetTokenURI() (*url.URL, error)
	GetLogoutURI() (*url.URL, error)
	GetRedirectURI() (*url.URL, error)
	GetPostLogoutRedirectURI() (*url.URL, error)
	GetClientSecret() string
	GetScope() string
}

// Engine presents requests through an external user-agent and performs token
// requests. *appauth.Service implements it.
type Engine interface {
	PresentAuthorizationRequest(req *appauth.AuthorizationRequest, agent appauth.ExternalUserAgent,
		callback func(*appauth.AuthorizationResponse, error)) appauth.ExternalUserAgentSession
	PresentEndSessionRequest(req *appauth.EndSessionRequest, agent appauth.ExternalUserAgent,
		callback func(*appauth.EndSessionResponse, error)) appauth.ExternalUserAgentSession
	PerformTokenRequest(ctx context.Context, req *appauth.TokenRequest,
		callback func(*appauth.TokenResponse, error))
}

// inFlight is the slot entry for one presented browser session. session is
// nil until the engine has returned it.
type inFlight struct {
	session appauth.ExternalUserAgentSession
}

// Handler runs authorization flows. At most one browser session is presented
// per Handler at a time.
type Handler struct {
	cfg    ConfigProvider
	engine Engine

	mu      sync.Mutex
	current *inFlight
}

// NewHandler creates a Handler.
func NewHandler(cfg ConfigProvider, engine Engine) *Handler {
	return &Handler{cfg: cfg, engine: engine}
}

// FetchMetadata builds provider metadata from the configured authorization,
// token and logout URIs. It logs the first lookup failure and returns nil.
func (h *Handler) FetchMetadata() *appauth.ProviderMetadata {
	authorizationURI, err := h.cfg.GetAuthorizationURI()
	if err != nil {
		logger.Error(err.Error(), "field", "authorization_uri")
		return nil
	}
	tokenURI, err := h.cfg.GetTokenURI()
	if err != nil {
		logger.Error(err.Error(), "field", "token_uri")
		return nil
	}
	logoutURI, err := h.cfg.GetLogoutURI()
	if err != nil {
		logger.Error(err.Error(), "field", "logout_uri")
		return nil
	}
	return appauth.NewProviderMetadata(authorizationURI, tokenURI, nil, nil, logoutURI)
}

// Authorize presents a login request through agent. The result is nil when
// the user cancels the browser window.
func (h *Handler) Authorize(
	ctx context.Context,
	metadata *appauth.ProviderMetadata,
	clientID string,
	agent appauth.ExternalUserAgent,
) *Result[*appauth.AuthorizationResponse] {
	result := newResult[*appauth.AuthorizationResponse]()

	if agent == nil {
		result.reject(ErrNoUserAgent)
		return result
	}
	slot, err := h.acquire()
	if err != nil {
		result.reject(err)
		return result
	}

	redirectURI, err := h.cfg.GetRedirectURI()
	if err != nil {
		h.release(slot)
		result.reject(err)
		return result
	}

	// acr_values can be added here to force an authentication method
	extraParams := map[string]string{}
	req := appauth.NewAuthorizationRequest(
		metadata,
		clientID,
		h.cfg.GetClientSecret(),
		strings.Split(h.cfg.GetScope(), " "),
		redirectURI,
		appauth.ResponseTypeCode,
		extraParams,
	)

	session, err := h.present(slot, func() appauth.ExternalUserAgentSession {
		return h.engine.PresentAuthorizationRequest(req, agent, func(resp *appauth.AuthorizationResponse, err error) {
			if resp != nil {
				logger.Info("Authorization response received successfully")
				logger.Debug("CODE: " + resp.AuthorizationCode + ", STATE: " + resp.State)
				h.release(slot)
				result.resolve(resp)
				return
			}

			if err != nil && isUserCancellation(err) {
				logger.Info("User cancelled the authorization window")
				h.release(slot)
				result.resolve(nil)
				return
			}

			appErr := newAuthorizationError("Authorization Request Error", err)
			h.release(slot)
			result.reject(appErr)
		})
	})
	if err != nil {
		result.reject(newAuthorizationError("Authorization Request Error", err))
		return result
	}
	watch(ctx, session, result.Done())
	return result
}

// ExchangeCode redeems the authorization code in response for tokens.
func (h *Handler) ExchangeCode(
	ctx context.Context,
	clientID string,
	response *appauth.AuthorizationResponse,
) *Result[*appauth.TokenResponse] {
	result := newResult[*appauth.TokenResponse]()

	if response == nil {
		result.reject(newAuthorizationError("Authorization Response Error", appauth.ErrNoAuthorizationCode))
		return result
	}
	req, err := response.TokenExchangeRequest(map[string]string{})
	if err != nil {
		result.reject(newAuthorizationError("Authorization Response Error", err))
		return result
	}
	if clientID != "" {
		req.ClientID = clientID
	}

	h.engine.PerformTokenRequest(ctx, req, func(resp *appauth.TokenResponse, err error) {
		if resp != nil {
			logger.Info("Authorization code grant response received successfully")
			logTokens(resp)
			result.resolve(resp)
			return
		}
		result.reject(newAuthorizationError("Authorization Response Error", err))
	})
	return result
}

// RefreshAccessToken runs a refresh token grant. The result is nil when the
// refresh token has expired and the user must authorize again.
func (h *Handler) RefreshAccessToken(
	ctx context.Context,
	metadata *appauth.ProviderMetadata,
	clientID string,
	refreshToken string,
) *Result[*appauth.TokenResponse] {
	result := newResult[*appauth.TokenResponse]()

	req := &appauth.TokenRequest{
		Metadata:     metadata,
		GrantType:    appauth.GrantTypeRefreshToken,
		ClientID:     clientID,
		RefreshToken: refreshToken,
	}

	h.engine.PerformTokenRequest(ctx, req, func(resp *appauth.TokenResponse, err error) {
		if resp != nil {
			logger.Info("Refresh token code grant response received successfully")
			logTokens(resp)
			result.resolve(resp)
			return
		}

		if err != nil && isRefreshTokenExpired(err) {
			logger.Info("Refresh token expired and the user must re-authenticate")
			result.resolve(nil)
			return
		}

		result.reject(newAuthorizationError("Refresh Token Error", err))
	})
	return result
}

// EndSession presents an end session request through agent. A user
// cancellation still counts as a completed logout.
func (h *Handler) EndSession(
	ctx context.Context,
	metadata *appauth.ProviderMetadata,
	idToken string,
	agent appauth.ExternalUserAgent,
) *Result[struct{}] {
	result := newResult[struct{}]()

	if agent == nil {
		result.reject(ErrNoUserAgent)
		return result
	}
	slot, err := h.acquire()
	if err != nil {
		result.reject(err)
		return result
	}

	postLogoutRedirectURI, err := h.cfg.GetPostLogoutRedirectURI()
	if err != nil {
		h.release(slot)
		result.reject(err)
		return result
	}

	req := appauth.NewEndSessionRequest(metadata, idToken, postLogoutRedirectURI, map[string]string{})

	session, err := h.present(slot, func() appauth.ExternalUserAgentSession {
		return h.engine.PresentEndSessionRequest(req, agent, func(_ *appauth.EndSessionResponse, err error) {
			if err == nil {
				h.release(slot)
				result.resolve(struct{}{})
				return
			}

			if isUserCancellation(err) {
				logger.Info("User cancelled the end session window")
				h.release(slot)
				result.resolve(struct{}{})
				return
			}

			appErr := newAuthorizationError("End Session Error", err)
			h.release(slot)
			result.reject(appErr)
		})
	})
	if err != nil {
		result.reject(newAuthorizationError("End Session Error", err))
		return result
	}
	watch(ctx, session, result.Done())
	return result
}

// Cancel cancels the presented browser session, if any. Its result completes
// with a program cancellation error.
func (h *Handler) Cancel() {
	if session := h.InFlightSession(); session != nil {
		session.Cancel()
	}
}

// InFlightSession returns the presented browser session, or nil.
func (h *Handler) InFlightSession() appauth.ExternalUserAgentSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil
	}
	return h.current.session
}

func (h *Handler) acquire() (*inFlight, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil {
		return nil, ErrSessionInProgress
	}
	h.current = &inFlight{}
	return h.current, nil
}

// present runs show and records the session it returns in slot. A panic while
// presenting releases the slot and is returned as an error.
func (h *Handler) present(slot *inFlight, show func() appauth.ExternalUserAgentSession) (session appauth.ExternalUserAgentSession, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.release(slot)
			session, err = nil, fmt.Errorf("presenting the request failed: %v", r)
		}
	}()
	session = show()
	h.attach(slot, session)
	return session, nil
}

// attach records session unless the flow already completed during presentation.
func (h *Handler) attach(slot *inFlight, session appauth.ExternalUserAgentSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == slot {
		slot.session = session
	}
}

func (h *Handler) release(slot *inFlight) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == slot {
		h.current = nil
	}
}

// watch cancels session when ctx ends before done is closed.
func watch(ctx context.Context, session appauth.ExternalUserAgentSession, done <-chan struct{}) {
	if ctx.Done() == nil || session == nil {
		return
	}
	go func() {
		select {
		case <-ctx.Done():
			session.Cancel()
		case <-done:
		}
	}()
}

func logTokens(resp *appauth.TokenResponse) {
	logger.Debug("AT: " + resp.AccessToken + ", RT: " + resp.RefreshToken + ", IDT: " + resp.IDToken)
}
