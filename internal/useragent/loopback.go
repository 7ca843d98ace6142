// Package useragent provides external user-agents that present authorization
// and end session requests: the system browser with a loopback redirect
// listener, and a bridge for hosts that embed their own web view.
package useragent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"

	"github.com/jrschumacher/appauth/internal/logger"
	"github.com/jrschumacher/appauth/pkg/appauth"
)

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>appauth</title></head>
<body style="font-family: sans-serif; margin: 50px auto; max-width: 600px;">
<h1>You can close this window</h1>
<p>The browser flow has completed. Return to the application to continue.</p>
</body>
</html>
`

// Loopback presents requests in the system browser and receives the redirect
// on a local HTTP listener bound to the redirect URL's host.
type Loopback struct {
	openURL func(string) error

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// LoopbackOption configures a Loopback.
type LoopbackOption func(*Loopback)

// WithURLOpener replaces the function used to launch the browser.
func WithURLOpener(open func(string) error) LoopbackOption {
	return func(l *Loopback) {
		l.openURL = open
	}
}

// NewLoopback creates a Loopback that opens URLs with the system browser.
func NewLoopback(opts ...LoopbackOption) *Loopback {
	l := &Loopback{openURL: browser.OpenURL}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PresentExternalUserAgentRequest starts the redirect listener and opens the
// request URL. It returns false when the redirect is not an http URL, the
// listener cannot bind, or the browser cannot be opened.
func (l *Loopback) PresentExternalUserAgentRequest(req appauth.ExternalUserAgentRequest, session appauth.ExternalUserAgentSession) bool {
	redirect := req.RedirectTarget()
	requestURL := req.ExternalUserAgentRequestURL()
	if redirect == nil || requestURL == nil || redirect.Scheme != "http" {
		logger.Error("loopback user-agent needs an http redirect URL", "redirect", fmt.Sprint(redirect))
		return false
	}

	l.mu.Lock()
	if l.srv != nil {
		l.mu.Unlock()
		logger.Error("loopback user-agent is already presenting a request")
		return false
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		l.mu.Unlock()
		logger.Error("failed to listen for the redirect", "addr", redirect.Host, "error", err)
		return false
	}

	path := redirect.Path
	if path == "" {
		path = "/"
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		callback := *redirect
		callback.RawQuery = r.URL.RawQuery
		if !session.ResumeExternalUserAgentFlow(&callback) {
			http.Error(w, "This request is not expected by the application", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackPage)
	})

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	l.srv = srv
	l.ln = ln
	l.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			logger.Error("redirect listener error", "error", err)
		}
	}()
	logger.Debug("listening for the redirect", "addr", ln.Addr().String(), "path", path)

	if err := l.openURL(requestURL.String()); err != nil {
		logger.Error("failed to open the browser", "error", err)
		l.mu.Lock()
		if l.srv == srv {
			l.srv, l.ln = nil, nil
		}
		l.mu.Unlock()
		_ = srv.Close()
		return false
	}
	return true
}

// DismissExternalUserAgent closes the redirect listener and runs completion.
// Open connections drain in the background so an in-progress redirect
// response is still written.
func (l *Loopback) DismissExternalUserAgent(completion func()) {
	l.mu.Lock()
	srv, ln := l.srv, l.ln
	l.srv, l.ln = nil, nil
	l.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
	if completion != nil {
		completion()
	}
}
