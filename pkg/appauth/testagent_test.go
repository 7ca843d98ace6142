package appauth

import (
	"net/url"
	"sync"
)

// scriptedAgent records presented requests and lets tests drive the session.
type scriptedAgent struct {
	mu        sync.Mutex
	refuse    bool
	presented []*url.URL
	session   ExternalUserAgentSession
	dismissed int
}

func (a *scriptedAgent) PresentExternalUserAgentRequest(req ExternalUserAgentRequest, session ExternalUserAgentSession) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.refuse {
		return false
	}
	a.presented = append(a.presented, req.ExternalUserAgentRequestURL())
	a.session = session
	return true
}

func (a *scriptedAgent) DismissExternalUserAgent(completion func()) {
	a.mu.Lock()
	a.dismissed++
	a.mu.Unlock()
	completion()
}

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func testMetadata() *ProviderMetadata {
	return NewProviderMetadata(
		mustURL("https://idsvr.example.com/oauth/authorize"),
		mustURL("https://idsvr.example.com/oauth/token"),
		nil, nil,
		mustURL("https://idsvr.example.com/oauth/logout"),
	)
}
