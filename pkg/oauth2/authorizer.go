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
	"errors"
	"net/http"
	"net/url"
)

// Authorizer implements the authorize endpoint's three-phase state machine
// (§4.4): Phase A validates the request and hands off to the host
// application for consent, Phase C finalizes once the Dispatcher observes
// the host app's consent-response sentinel.
type Authorizer struct {
	config  *Config
	clients *ClientResolver

	authRequests AuthRequestStore
	grants       GrantStore
	tokens       TokenStore

	next http.Handler
}

// NewAuthorizer returns an Authorizer wired to the given stores.
func NewAuthorizer(config *Config, clients ClientStore, authRequests AuthRequestStore, grants GrantStore, tokens TokenStore) *Authorizer {
	return &Authorizer{
		config:       config,
		clients:      NewClientResolver(clients),
		authRequests: authRequests,
		grants:       grants,
		tokens:       tokens,
	}
}

// Middleware wraps next as the host application the authorize endpoint
// delegates consent to, in the chi `func(http.Handler) http.Handler`
// convention the teacher uses throughout its middleware package.
func (a *Authorizer) Middleware(next http.Handler) http.Handler {
	a.next = next

	return a
}

// ServeHTTP implements Phase A: validate, then delegate to the host app.
func (a *Authorizer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	redirectURI, httpErr := ParseRedirectURI(q.Get("redirect_uri"))
	if httpErr != nil {
		// The only authorize-time error that is not redirected: the
		// target of the redirect is itself untrustworthy.
		AuthorizeRequestsTotal.WithLabelValues(string(httpErr.Code())).Inc()
		httpErr.WritePlain(w, r)
		return
	}

	state := q.Get("state")

	client, httpErr := a.clients.Resolve(r)
	if httpErr != nil {
		AuthorizeRequestsTotal.WithLabelValues(string(httpErr.Code())).Inc()
		a.redirectError(w, r, redirectURI, httpErr, state)
		return
	}

	if client.Client.RedirectURI != "" && client.Client.RedirectURI != redirectURI.String() {
		httpErr := NewRedirectURIMismatch("redirect_uri does not match the registered value")
		AuthorizeRequestsTotal.WithLabelValues(string(httpErr.Code())).Inc()
		a.redirectError(w, r, redirectURI, httpErr, state)
		return
	}

	scope, ok := a.config.scopeAllowed(q.Get("scope"))
	if !ok {
		httpErr := NewInvalidScope("scope contains an unrecognized value")
		AuthorizeRequestsTotal.WithLabelValues(string(httpErr.Code())).Inc()
		a.redirectError(w, r, redirectURI, httpErr, state)
		return
	}

	responseType := ResponseType(q.Get("response_type"))

	if responseType == "" || !a.config.responseTypeAllowed(responseType) {
		httpErr := NewUnsupportedResponseType("response_type is missing or not supported")
		AuthorizeRequestsTotal.WithLabelValues(string(httpErr.Code())).Inc()
		a.redirectError(w, r, redirectURI, httpErr, state)
		return
	}

	authRequest, err := a.authRequests.CreateAuthRequest(r.Context(), client.Client.ID, scope, redirectURI.String(), responseType, state)
	if err != nil {
		httpErr := NewServerError("failed to create authorization request").WithError(err)
		AuthorizeRequestsTotal.WithLabelValues(string(httpErr.Code())).Inc()
		a.redirectError(w, r, redirectURI, httpErr, state)
		return
	}

	AuthorizeRequestsTotal.WithLabelValues("").Inc()

	ctx := r.Context()
	ctx = NewContextWithAuthRequestID(ctx, authRequest.ID)
	ctx = NewContextWithConsentView(ctx, ConsentView{ClientDisplayName: client.Client.DisplayName, Scope: scope})

	a.next.ServeHTTP(w, r.WithContext(ctx))
}

// redirectError implements the authorize endpoint's redirect-safe failure
// path: once redirect_uri has parsed, every later error is reported by
// redirecting it back to the client with error/error_description/state.
func (a *Authorizer) redirectError(w http.ResponseWriter, r *http.Request, redirectURI *url.URL, httpErr *HTTPError, state string) {
	u := *redirectURI
	q := u.Query()
	q.Set("error", string(httpErr.Code()))

	if httpErr.Description() != "" {
		q.Set("error_description", httpErr.Description())
	}

	if state != "" {
		q.Set("state", state)
	}

	u.RawQuery = q.Encode()

	http.Redirect(w, r, u.String(), http.StatusFound)
}

// Finalize implements Phase C: called by the Dispatcher once it observes
// the consent-response sentinel header on a response from the host app.
// granted selects grant (true) or deny (false); resource is the value the
// host app supplied alongside a grant, if any.
func (a *Authorizer) Finalize(w http.ResponseWriter, r *http.Request, authRequestID string, granted bool, resource string) {
	authRequest, err := a.authRequests.FindAuthRequest(r.Context(), authRequestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			NewInvalidRequest("authorization request is unknown or has expired").WritePlain(w, r)
			return
		}

		NewServerError("failed to look up authorization request").WithError(err).WritePlain(w, r)
		return
	}

	redirectURI, parseErr := url.Parse(authRequest.RedirectURI)
	if parseErr != nil {
		NewServerError("stored redirect_uri is no longer valid").WithError(parseErr).WritePlain(w, r)
		return
	}

	if !granted {
		if _, err := a.authRequests.DenyAuthRequest(r.Context(), authRequestID); err != nil {
			AuthorizeFinalizationsTotal.WithLabelValues(OutcomeError).Inc()
			a.redirectError(w, r, redirectURI, NewServerError("failed to deny authorization request").WithError(err), authRequest.State)
			return
		}

		AuthorizeFinalizationsTotal.WithLabelValues(OutcomeDenied).Inc()
		a.redirectError(w, r, redirectURI, NewAccessDenied("the resource owner denied the request"), authRequest.State)
		return
	}

	state := authRequest.State

	authRequest, err = a.authRequests.GrantAuthRequest(r.Context(), authRequestID, resource)
	if err != nil {
		AuthorizeFinalizationsTotal.WithLabelValues(OutcomeError).Inc()
		a.redirectError(w, r, redirectURI, NewServerError("failed to grant authorization request").WithError(err), state)
		return
	}

	AuthorizeFinalizationsTotal.WithLabelValues(OutcomeGranted).Inc()

	switch authRequest.ResponseType {
	case ResponseTypeCode:
		a.finalizeCode(w, r, authRequest, redirectURI)
	case ResponseTypeToken:
		a.finalizeToken(w, r, authRequest, redirectURI)
	default:
		a.redirectError(w, r, redirectURI, NewServerError("authorization request has an unrecognized response_type"), authRequest.State)
	}
}

// finalizeCode implements the §4.4 Phase C grant outcome for response_type
// code: the allocated AccessGrant's code goes into the redirect query.
func (a *Authorizer) finalizeCode(w http.ResponseWriter, r *http.Request, authRequest *AuthRequest, redirectURI *url.URL) {
	u := *redirectURI
	q := u.Query()
	q.Set("code", authRequest.GrantCode)
	q.Set("scope", authRequest.Scope)

	if authRequest.State != "" {
		q.Set("state", authRequest.State)
	}

	u.RawQuery = q.Encode()

	http.Redirect(w, r, u.String(), http.StatusFound)
}

// finalizeToken implements the §4.4 Phase C grant outcome for response_type
// token (the implicit grant): the bearer token goes into the redirect
// fragment, never the query, so it is not logged by intermediate servers.
func (a *Authorizer) finalizeToken(w http.ResponseWriter, r *http.Request, authRequest *AuthRequest, redirectURI *url.URL) {
	u := *redirectURI

	fragment := url.Values{}
	fragment.Set("access_token", authRequest.AccessToken)
	fragment.Set("scope", authRequest.Scope)

	if authRequest.State != "" {
		fragment.Set("state", authRequest.State)
	}

	u.Fragment = fragment.Encode()

	http.Redirect(w, r, u.String(), http.StatusFound)
}
