package useragent

import (
	"errors"
	"net/url"
	"sync"

	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/jrschumacher/appauth/pkg/appauth"
)

// ErrCanceled is passed to Completer.Complete when the user closes the web view.
var ErrCanceled = errors.New("the user closed the web view")

// Launcher is implemented by the host that owns the web view.
type Launcher interface {
	// LaunchURL shows u. The host must call completer.Complete exactly once,
	// when the web view reaches the redirect URL or is closed.
	LaunchURL(u *url.URL, completer *Completer) error
}

// Dismisser is optionally implemented by a Launcher that must close its web view.
type Dismisser interface {
	Dismiss()
}

// WebView adapts a host Launcher to appauth.ExternalUserAgent.
type WebView struct {
	launcher Launcher
}

// NewWebView creates a WebView backed by launcher.
func NewWebView(launcher Launcher) *WebView {
	return &WebView{launcher: launcher}
}

func (v *WebView) PresentExternalUserAgentRequest(req appauth.ExternalUserAgentRequest, session appauth.ExternalUserAgentSession) bool {
	u := req.ExternalUserAgentRequestURL()
	if u == nil {
		return false
	}
	if err := v.launcher.LaunchURL(u, &Completer{session: session}); err != nil {
		logger.Error("failed to launch the web view", "error", err)
		return false
	}
	return true
}

func (v *WebView) DismissExternalUserAgent(completion func()) {
	if d, ok := v.launcher.(Dismisser); ok {
		d.Dismiss()
	}
	if completion != nil {
		completion()
	}
}

// Completer reports the outcome of one web view presentation.
type Completer struct {
	session appauth.ExternalUserAgentSession
	once    sync.Once
}

// Complete finishes the flow with the URL the web view was redirected to, or
// with err. ErrCanceled is reported as a user cancellation. Only the first
// call has an effect.
func (c *Completer) Complete(callbackURL *url.URL, err error) {
	c.once.Do(func() {
		switch {
		case errors.Is(err, ErrCanceled):
			c.session.FailExternalUserAgentFlow(&appauth.Error{
				Domain:  appauth.GeneralErrorDomain,
				Code:    appauth.ErrorCodeUserCanceledAuthorizationFlow,
				Message: "The user cancelled the web view",
				Err:     err,
			})
		case err != nil:
			c.session.FailExternalUserAgentFlow(&appauth.Error{
				Domain:  appauth.GeneralErrorDomain,
				Code:    appauth.ErrorCodeBrowserOpenError,
				Message: err.Error(),
				Err:     err,
			})
		case callbackURL == nil || !c.session.ResumeExternalUserAgentFlow(callbackURL):
			c.session.FailExternalUserAgentFlow(appauth.NewError(appauth.OAuthAuthorizationErrorDomain,
				appauth.ErrorCodeOAuthClientError, "the web view finished on an unexpected URL"))
		}
	})
}
