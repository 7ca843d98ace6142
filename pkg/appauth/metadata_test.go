package appauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discoveryServer(t *testing.T, withEndSession bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		doc := map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/oauth/authorize",
			"token_endpoint":         srv.URL + "/oauth/token",
			"jwks_uri":               srv.URL + "/oauth/jwks",
			"userinfo_endpoint":      srv.URL + "/oauth/userinfo",
		}
		if withEndSession {
			doc["end_session_endpoint"] = srv.URL + "/oauth/logout"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscover(t *testing.T) {
	srv := discoveryServer(t, true)

	md, err := NewService(WithHTTPClient(srv.Client())).Discover(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/oauth/authorize", md.AuthorizationEndpoint.String())
	assert.Equal(t, srv.URL+"/oauth/token", md.TokenEndpoint.String())
	assert.Equal(t, srv.URL, md.Issuer.String())
	require.NotNil(t, md.EndSessionEndpoint)
	assert.Equal(t, srv.URL+"/oauth/logout", md.EndSessionEndpoint.String())
	assert.Nil(t, md.RegistrationEndpoint)
}

func TestDiscoverWithoutEndSession(t *testing.T) {
	srv := discoveryServer(t, false)
	md, err := Discover(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)
	assert.Nil(t, md.EndSessionEndpoint)
}

func TestDiscoverFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Discover(context.Background(), srv.URL, srv.Client())
	assert.ErrorIs(t, err, NewError(GeneralErrorDomain, ErrorCodeInvalidDiscoveryDocument, ""))
}
