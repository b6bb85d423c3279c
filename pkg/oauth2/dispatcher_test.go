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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2test"
)

// TestDispatcherEndToEndCodeThenToken exercises the full authorization code
// flow through a single Dispatcher-mounted handler tree: Phase A validation,
// the consent-response sentinel handshake, Phase C finalization, and finally
// redeeming the issued code at the token endpoint.
func TestDispatcherEndToEndCodeThenToken(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)

	authorizeReq := authorizeRequest(client, "code", client.RedirectURI, "read write", "xyz")
	authorizeResp := httptest.NewRecorder()

	f.handler.ServeHTTP(authorizeResp, authorizeReq)

	require.Equal(t, http.StatusFound, authorizeResp.Code)

	redirect, err := url.Parse(authorizeResp.Header().Get("Location"))
	require.NoError(t, err)

	code := redirect.Query().Get("code")
	require.Regexp(t, hexToken, code)

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", client.RedirectURI)
	form.Set("client_id", client.ID)
	form.Set("client_secret", client.Secret)

	tokenReq := httptest.NewRequest(http.MethodPost, "/oauth/access_token", strings.NewReader(form.Encode()))
	tokenReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tokenResp := httptest.NewRecorder()

	f.handler.ServeHTTP(tokenResp, tokenReq)

	require.Equal(t, http.StatusOK, tokenResp.Code)

	body := decodeTokenSuccess(t, tokenResp)
	assert.Regexp(t, hexToken, body["access_token"])
}

// TestDispatcherResourceRequestFallsThrough confirms any path that is
// neither the authorize nor token path routes to the ResourceGate.
func TestDispatcherResourceRequestFallsThrough(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)
	f.host.AccessDecision = oauth2test.ResourceDecision{Status: http.StatusOK, Body: "protected"}

	r := httptest.NewRequest(http.MethodGet, "/some/app/resource", nil)
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "protected", w.Body.String())
}

// TestDispatcherMetricsMounted confirms the /metrics handler is a
// Prometheus exposition endpoint, mounted independently of the OAuth2 tree.
func TestDispatcherMetricsMounted(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)

	// Drive one request through the tree first, so the counter this
	// assertion looks for has at least one labeled child registered.
	f.handler.ServeHTTP(httptest.NewRecorder(), authorizeRequest(client, "code", client.RedirectURI, "read", "xyz"))

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	f.dispatcher.Metrics().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "oauth2gate_authorize_requests_total")
}

// TestDispatcherConsentDenyRedirectsWithAccessDenied confirms a denied
// consent response never reaches the client as the host app wrote it; the
// sentinel middleware intercepts it and redirects instead.
func TestDispatcherConsentDenyRedirectsWithAccessDenied(t *testing.T) {
	client := oauth2test.UberClient()
	f := newAuthorizerFixture(t, client)
	f.host.Consent = oauth2test.ConsentDecision{Granted: false}

	r := authorizeRequest(client, "code", client.RedirectURI, "read write", "xyz")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)

	redirect, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "access_denied", redirect.Query().Get("error"))
}
