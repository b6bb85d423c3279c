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

// Package oauth2test provides hand-written fake collaborators for testing
// the oauth2 package's components end-to-end, in the style of the
// reference implementation's in-memory provider fixture: no mock
// generation, just small structs that implement the real interfaces.
package oauth2test

import (
	"net/http"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

// Host is a fake host application. It answers every consent request
// according to Consent (or ConsentFunc, if set), and every resource
// request according to AccessDecision, exactly the two request shapes
// the oauth2 package ever delegates to a host app.
type Host struct {
	// Consent is returned for every Phase B consent request, unless
	// ConsentFunc is set.
	Consent ConsentDecision

	// ConsentFunc, if set, overrides Consent and is invoked with the
	// consent view the Authorizer attached to the request context.
	ConsentFunc func(view oauth2.ConsentView) ConsentDecision

	// AccessDecision is returned for every resource request that is not
	// a consent request.
	AccessDecision ResourceDecision
}

// ConsentDecision is a canned host-app response to a Phase B consent
// request.
type ConsentDecision struct {
	// Granted selects grant (true) or deny (false).
	Granted bool

	// Resource names the authenticated resource owner on grant.
	Resource string
}

// ResourceDecision is a canned host-app response to a resource request.
type ResourceDecision struct {
	// NoAccess, if true, sets HeaderNoAccess (request an unauthenticated
	// challenge).
	NoAccess bool

	// NoScope, if non-empty, is written with a 403 to request an
	// insufficient_scope challenge.
	NoScope string

	// Status is the response status when neither NoAccess nor NoScope
	// applies. Defaults to 200.
	Status int

	// Body is written verbatim when neither sentinel applies.
	Body string
}

// NewHost returns a Host that grants every consent request with no
// resource named, and serves 200 with an empty body for every resource
// request. Override the fields before use to exercise other paths.
func NewHost() *Host {
	return &Host{
		Consent:        ConsentDecision{Granted: true},
		AccessDecision: ResourceDecision{Status: http.StatusOK},
	}
}

// ServeHTTP implements http.Handler.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if authRequestID, ok := oauth2.AuthRequestIDFromContext(r.Context()); ok {
		h.serveConsent(w, r, authRequestID)
		return
	}

	h.serveResource(w, r)
}

func (h *Host) serveConsent(w http.ResponseWriter, r *http.Request, authRequestID string) {
	decision := h.Consent

	if h.ConsentFunc != nil {
		view, _ := oauth2.ConsentViewFromContext(r.Context())
		decision = h.ConsentFunc(view)
	}

	w.Header().Set(oauth2.HeaderAuthorization, authRequestID)

	if !decision.Granted {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.WriteHeader(http.StatusOK)

	if decision.Resource != "" {
		w.Write([]byte(`{"resource":"` + decision.Resource + `"}`)) //nolint:errcheck
	}
}

func (h *Host) serveResource(w http.ResponseWriter, r *http.Request) {
	decision := h.AccessDecision

	if decision.NoAccess {
		w.Header().Set(oauth2.HeaderNoAccess, "1")
		w.WriteHeader(http.StatusUnauthorized)

		return
	}

	if decision.NoScope != "" {
		w.Header().Set(oauth2.HeaderNoScope, decision.NoScope)
		w.WriteHeader(http.StatusForbidden)

		return
	}

	status := decision.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)

	if decision.Body != "" {
		w.Write([]byte(decision.Body)) //nolint:errcheck
	}
}
