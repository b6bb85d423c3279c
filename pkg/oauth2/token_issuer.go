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

package oauth2

import (
	"encoding/json"
	"errors"
	"net/http"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// GrantType selects the credential-exchange flow requested at the token
// endpoint.
type GrantType string

const (
	GrantTypeAuthorizationCode GrantType = "authorization_code"
	GrantTypePassword          GrantType = "password"
)

// TokenIssuer implements the token endpoint (§4.5): it exchanges a
// previously-issued authorization code, or resource-owner credentials, for
// a bearer AccessToken.
type TokenIssuer struct {
	config  *Config
	clients *ClientResolver
	grants  GrantStore
	tokens  TokenStore
}

// NewTokenIssuer returns a TokenIssuer wired to the given stores.
func NewTokenIssuer(config *Config, clients ClientStore, grants GrantStore, tokens TokenStore) *TokenIssuer {
	return &TokenIssuer{
		config:  config,
		clients: NewClientResolver(clients),
		grants:  grants,
		tokens:  tokens,
	}
}

// tokenSuccess is the §4.5 step 3 success body.
type tokenSuccess struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope,omitempty"`
}

// ServeHTTP implements the token endpoint.
func (i *TokenIssuer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)

		body, err := json.Marshal(struct {
			Error string `json:"error"`
		}{Error: "POST only"})
		if err == nil {
			_, _ = w.Write(body)
		}

		return
	}

	client, httpErr := i.clients.Resolve(r)
	if httpErr != nil {
		i.writeClientError(w, r, httpErr)
		return
	}

	switch GrantType(r.PostFormValue("grant_type")) {
	case GrantTypeAuthorizationCode:
		i.authorizationCodeGrant(w, r, client.Client)
	case GrantTypePassword:
		i.passwordGrant(w, r, client.Client)
	default:
		i.fail(w, r, NewUnsupportedGrantType("grant_type is missing or not supported"))
	}
}

// fail records the failure metric and writes the JSON error body. Per
// §4.5 step 4, token-endpoint failures are always 400 outside the Basic
// auth challenge case handled separately in writeClientError.
func (i *TokenIssuer) fail(w http.ResponseWriter, r *http.Request, httpErr *HTTPError) {
	TokenRequestsFailedTotal.WithLabelValues(string(httpErr.Code())).Inc()
	httpErr.WriteJSON(w, r, http.StatusBadRequest)
}

// writeClientError applies the §4.5 step 1 surface rule: client-resolution
// failure is a 401 challenge when the client attempted Basic auth, a plain
// 400 JSON body otherwise.
func (i *TokenIssuer) writeClientError(w http.ResponseWriter, r *http.Request, httpErr *HTTPError) {
	logger := log.FromContext(r.Context())
	logger.Info("token request rejected", "detail", httpErr.Description())

	TokenRequestsFailedTotal.WithLabelValues(string(httpErr.Code())).Inc()

	decoder := NewRequestDecoder(r)

	if creds := decoder.Credentials(); creds.Kind == CredentialBasic {
		Challenge{
			Realm:            realmFor(i.config.Realm, r.Host),
			Code:             httpErr.Code(),
			ErrorDescription: httpErr.Description(),
		}.Write(w, http.StatusUnauthorized)

		return
	}

	httpErr.WriteJSON(w, r, http.StatusBadRequest)
}

// authorizationCodeGrant implements §4.5's authorization_code branch.
func (i *TokenIssuer) authorizationCodeGrant(w http.ResponseWriter, r *http.Request, client *Client) {
	code := r.PostFormValue("code")

	grant, err := i.grants.ConsumeGrant(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			i.fail(w, r, NewInvalidGrant("authorization code is unknown, expired, or already used"))
			return
		}

		i.fail(w, r, NewServerError("failed to consume authorization code").WithError(err))
		return
	}

	if grant.ClientID != client.ID {
		i.fail(w, r, NewInvalidGrant("authorization code was not issued to this client"))
		return
	}

	if grant.RedirectURI != "" {
		redirectURI := r.PostFormValue("redirect_uri")

		if redirectURI == "" || redirectURI != grant.RedirectURI {
			i.fail(w, r, NewInvalidGrant("redirect_uri does not match the value used to obtain the code"))
			return
		}
	}

	token, err := i.tokens.CreateToken(r.Context(), "", grant.ClientID, grant.Scope, nil)
	if err != nil {
		i.fail(w, r, NewServerError("failed to issue access token").WithError(err))
		return
	}

	TokensIssuedTotal.WithLabelValues(string(GrantTypeAuthorizationCode)).Inc()
	i.writeSuccess(w, r, token)
}

// passwordGrant implements §4.5's Resource Owner Password Credentials
// branch, only reachable when an Authenticator is configured.
func (i *TokenIssuer) passwordGrant(w http.ResponseWriter, r *http.Request, client *Client) {
	if i.config.Authenticator == nil {
		i.fail(w, r, NewUnsupportedGrantType("the password grant is not enabled"))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if username == "" || password == "" {
		i.fail(w, r, NewInvalidGrant("username and password are required"))
		return
	}

	scope, ok := i.config.scopeAllowed(r.PostFormValue("scope"))
	if !ok {
		i.fail(w, r, NewInvalidScope("scope contains an unrecognized value"))
		return
	}

	resource, ok := i.config.Authenticator(username, password)
	if !ok {
		i.fail(w, r, NewInvalidGrant("invalid resource owner credentials"))
		return
	}

	token, err := i.tokens.GetOrCreateToken(r.Context(), resource, client.ID, scope)
	if err != nil {
		i.fail(w, r, NewServerError("failed to issue access token").WithError(err))
		return
	}

	TokensIssuedTotal.WithLabelValues(string(GrantTypePassword)).Inc()
	i.writeSuccess(w, r, token)
}

// writeSuccess implements §4.5 step 3.
func (i *TokenIssuer) writeSuccess(w http.ResponseWriter, r *http.Request, token *AccessToken) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	body, err := json.Marshal(tokenSuccess{AccessToken: token.Token, Scope: token.Scope})
	if err != nil {
		log.FromContext(r.Context()).Error(err, "failed to marshal token response")
		return
	}

	if _, err := w.Write(body); err != nil {
		log.FromContext(r.Context()).Error(err, "failed to write token response")
	}
}
