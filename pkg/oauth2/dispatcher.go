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
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatcher owns the HTTP entry point (§4.7): it routes the authorize and
// token paths to their respective components, falls everything else
// through to the ResourceGate, and wraps the whole tree in a middleware
// that watches every response the host application produces for the
// consent-response sentinel, since the host app's consent endpoint is an
// ordinary application route this Dispatcher does not otherwise own.
type Dispatcher struct {
	config       *Config
	authorizer   *Authorizer
	tokenIssuer  *TokenIssuer
	resourceGate *ResourceGate
}

// NewDispatcher wires a Dispatcher from its three constituent components.
func NewDispatcher(config *Config, authorizer *Authorizer, tokenIssuer *TokenIssuer, resourceGate *ResourceGate) *Dispatcher {
	return &Dispatcher{
		config:       config,
		authorizer:   authorizer,
		tokenIssuer:  tokenIssuer,
		resourceGate: resourceGate,
	}
}

// Handler builds the full chi-routed handler tree, with host being the
// application the authorize and resource-gate consent handshake delegates
// to.
func (d *Dispatcher) Handler(host http.Handler) http.Handler {
	router := chi.NewRouter()

	router.Method(http.MethodGet, d.config.AuthorizePath, d.authorizer.Middleware(host))
	router.Method(http.MethodPost, d.config.AuthorizePath, d.authorizer.Middleware(host))
	router.Handle(d.config.AccessTokenPath, d.tokenIssuer)
	router.NotFound(d.resourceGate.Middleware(host).ServeHTTP)
	router.MethodNotAllowed(d.resourceGate.Middleware(host).ServeHTTP)

	return d.consentResponseMiddleware(router)
}

// Metrics returns a standalone handler for the /metrics endpoint, mounted
// outside the OAuth2 route tree per §6.1 and never passed through
// consentResponseMiddleware or the resource gate.
func (d *Dispatcher) Metrics() http.Handler {
	return promhttp.Handler()
}

// consentResponseMiddleware implements the always-on half of Phase C: it
// buffers every response from the wrapped tree, and whenever it carries
// HeaderAuthorization it calls Authorizer.Finalize instead of letting the
// buffered response reach the client.
func (d *Dispatcher) consentResponseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newResponseRecorder(w)

		next.ServeHTTP(rec, r)

		authRequestID := rec.Header().Get(HeaderAuthorization)
		if authRequestID == "" {
			rec.flush()
			return
		}

		granted := rec.status != http.StatusUnauthorized
		resource := consentResource(rec)

		d.authorizer.Finalize(w, r, authRequestID, granted, resource)
	})
}

// consentResource extracts the resource owner identifier the host app
// optionally names in its consent-response body: a JSON object
// `{"resource": "..."}`, or, failing that, the raw body trimmed of
// surrounding whitespace.
func consentResource(rec *responseRecorder) string {
	if rec.body.Len() == 0 {
		return ""
	}

	var body struct {
		Resource string `json:"resource"`
	}

	if err := json.Unmarshal(rec.body.Bytes(), &body); err == nil && body.Resource != "" {
		return body.Resource
	}

	return strings.TrimSpace(rec.body.String())
}
