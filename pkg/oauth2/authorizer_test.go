/*
Copyright 2022-2023 EscherCloud.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package oauth2_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2store/memory"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2test"
)

var hexToken = regexp.MustCompile(`^[a-f0-9]{32}$`)

type authorizerFixture struct {
	config      *oauth2.Config
	authorizer  *oauth2.Authorizer
	dispatcher  *oauth2.Dispatcher
	grants      *memory.GrantStore
	tokens      *memory.TokenStore
	authRequest *memory.AuthRequestStore
	host        *oauth2test.Host
	handler     http.Handler
}

func newAuthorizerFixture(t *testing.T, client *oauth2.Client) *authorizerFixture {
	t.Helper()

	clients := oauth2test.NewClientStore(client)
	grants := memory.NewGrantStore(time.Minute)
	tokens := memory.NewTokenStore()
	authRequests := memory.NewAuthRequestStore(time.Minute, grants, tokens)

	config := oauth2.NewConfig()

	authorizer := oauth2.NewAuthorizer(config, clients, authRequests, grants, tokens)
	tokenIssuer := oauth2.NewTokenIssuer(config, clients, grants, tokens)
	resourceGate := oauth2.NewResourceGate(config, tokens)

	dispatcher := oauth2.NewDispatcher(config, authorizer, tokenIssuer, resourceGate)
	host := oauth2test.NewHost()

	return &authorizerFixture{
		config:      config,
		authorizer:  authorizer,
		dispatcher:  dispatcher,
		grants:      grants,
		tokens:      tokens,
		authRequest: authRequests,
		host:        host,
		handler:     dispatcher.Handler(host),
	}
}

func authorizeRequest(client *oauth2.Client, responseType, redirectURI, scope, state string) *http.Request {
	q := url.Values{}
	q.Set("response_type", responseType)
	q.Set("client_id", client.ID)
	q.Set("client_secret", client.Secret)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", scope)
	q.Set("state", state)

	return httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+q.Encode(), nil)
}

func TestAuthorizeHappyPathCode(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)

	r := authorizeRequest(client, "code", client.RedirectURI, "read write", "bring this back")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	q := u.Query()
	assert.Regexp(t, hexToken, q.Get("code"))
	assert.Equal(t, "read write", q.Get("scope"))
	assert.Equal(t, "bring this back", q.Get("state"))
}

func TestAuthorizeHappyPathToken(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)

	r := authorizeRequest(client, "token", client.RedirectURI, "read write", "bring this back")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	frag, err := url.ParseQuery(u.Fragment)
	require.NoError(t, err)

	assert.Regexp(t, hexToken, frag.Get("access_token"))
	assert.Equal(t, "read write", frag.Get("scope"))
	assert.Equal(t, "bring this back", frag.Get("state"))
	assert.Empty(t, u.RawQuery)
}

func TestAuthorizeRedirectURIMismatch(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)

	r := authorizeRequest(client, "code", "http://uberclient.dot/oz", "read write", "bring this back")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "redirect_uri_mismatch", q.Get("error"))
	assert.Equal(t, "bring this back", q.Get("state"))
}

func TestAuthorizeUnregisteredRedirectURIAccepted(t *testing.T) {
	client := oauth2test.UberClient()
	client.RedirectURI = ""

	f := newAuthorizerFixture(t, client)

	r := authorizeRequest(client, "code", "http://uberclient.dot/oz", "read write", "bring this back")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Regexp(t, hexToken, u.Query().Get("code"))
}

func TestAuthorizeMalformedRedirectURI(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)

	r := authorizeRequest(client, "code", "http:not-valid", "read write", "bring this back")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

func TestAuthorizeInvalidScope(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)
	f.config.Scopes = []string{"read", "write"}

	r := authorizeRequest(client, "code", client.RedirectURI, "read write math", "bring this back")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "invalid_scope", q.Get("error"))
	assert.Equal(t, "bring this back", q.Get("state"))
}

func TestAuthorizeDenied(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)
	f.host.Consent = oauth2test.ConsentDecision{Granted: false}

	r := authorizeRequest(client, "code", client.RedirectURI, "read write", "bring this back")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "access_denied", q.Get("error"))
	assert.Equal(t, "bring this back", q.Get("state"))
	assert.Empty(t, q.Get("code"))
	assert.Empty(t, q.Get("access_token"))
}
