package appauth

import (
	"net/url"
	"strings"
)

// ExternalUserAgentRequest is a request that can be presented in a browser.
type ExternalUserAgentRequest interface {
	// ExternalUserAgentRequestURL is the URL to load in the user-agent.
	ExternalUserAgentRequestURL() *url.URL
	// RedirectTarget is the URL the provider redirects back to when done.
	RedirectTarget() *url.URL
}

// ExternalUserAgentSession is the handle of a presented flow. The user-agent
// reports the outcome through it, and the owner can cancel it.
type ExternalUserAgentSession interface {
	// Cancel aborts the flow, dismissing the user-agent. The completion
	// callback receives a program-canceled error.
	Cancel()
	// ResumeExternalUserAgentFlow hands the redirect URL back to the flow.
	// It returns false if the URL is not this flow's redirect or the flow is over.
	ResumeExternalUserAgentFlow(callback *url.URL) bool
	// FailExternalUserAgentFlow ends the flow with err.
	FailExternalUserAgentFlow(err error)
}

// ExternalUserAgent presents requests outside the application, typically the system browser.
type ExternalUserAgent interface {
	// PresentExternalUserAgentRequest shows the request and returns false if it could not.
	PresentExternalUserAgentRequest(request ExternalUserAgentRequest, session ExternalUserAgentSession) bool
	// DismissExternalUserAgent closes the user-agent and then calls completion exactly once.
	DismissExternalUserAgent(completion func())
}

// matchesRedirect compares scheme, host and path of a callback with the expected redirect.
func matchesRedirect(callback, redirect *url.URL) bool {
	if callback == nil || redirect == nil {
		return false
	}
	return strings.EqualFold(callback.Scheme, redirect.Scheme) &&
		strings.EqualFold(callback.Host, redirect.Host) &&
		normalizePath(callback) == normalizePath(redirect)
}

func normalizePath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.EscapedPath()
}
