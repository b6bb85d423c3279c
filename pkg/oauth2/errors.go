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

// ErrRequest is the sentinel every protocol error wraps, so callers can
// distinguish a well-formed protocol rejection from an unexpected bug.
var ErrRequest = errors.New("oauth2 request error")

// WireCode is a stable, client-facing error token.
type WireCode string

const (
	InvalidRequest          WireCode = "invalid_request"
	InvalidClient           WireCode = "invalid_client"
	RedirectURIMismatch     WireCode = "redirect_uri_mismatch"
	UnsupportedResponseType WireCode = "unsupported_response_type"
	InvalidScope            WireCode = "invalid_scope"
	InvalidGrant            WireCode = "invalid_grant"
	UnsupportedGrantType    WireCode = "unsupported_grant_type"
	InvalidToken            WireCode = "invalid_token"
	ExpiredToken            WireCode = "expired_token"
	InsufficientScope       WireCode = "insufficient_scope"
	AccessDenied            WireCode = "access_denied"
	ServerError             WireCode = "server_error"
)

// HTTPError wraps ErrRequest with enough context to write a correct
// client-facing response and a useful server-side log line. Validation
// and lookup helpers in this package return one of these; the endpoint
// that receives it writes it as a JSON body, a plain-text body or a
// redirect.
type HTTPError struct {
	// status is the HTTP status to use when the error is NOT redirected.
	status int

	// code is the terse, stable wire error code.
	code WireCode

	// description is a human-readable message, logged and usually
	// returned to the client.
	description string

	// err is set when the originator was a library/store error. Used
	// for logging only, never leaked to the client.
	err error

	// values are extra key/value pairs for structured logging.
	values []interface{}
}

// newHTTPError returns a new HTTP error.
func newHTTPError(status int, code WireCode, description string) *HTTPError {
	return &HTTPError{
		status:      status,
		code:        code,
		description: description,
	}
}

// WithError augments the error with an underlying cause, for logging.
func (e *HTTPError) WithError(err error) *HTTPError {
	e.err = err

	return e
}

// WithValues augments the error with key/value pairs for logging. Do not
// use the key "error", it's implicitly populated by WithError.
func (e *HTTPError) WithValues(values ...interface{}) *HTTPError {
	e.values = values

	return e
}

// Code returns the wire error code.
func (e *HTTPError) Code() WireCode {
	return e.code
}

// Description returns the human readable error description.
func (e *HTTPError) Description() string {
	return e.description
}

// Status returns the non-redirected HTTP status for this error.
func (e *HTTPError) Status() int {
	return e.status
}

// Unwrap implements Go 1.13 errors.
func (e *HTTPError) Unwrap() error {
	return ErrRequest
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.description
}

// logDetails assembles the key/value pairs logged server-side.
func (e *HTTPError) logDetails() []interface{} {
	var details []interface{}

	if e.description != "" {
		details = append(details, "detail", e.description)
	}

	if e.err != nil {
		details = append(details, "error", e.err)
	}

	if e.values != nil {
		details = append(details, e.values...)
	}

	return details
}

// wireBody is the JSON body returned to clients for token-endpoint
// failures.
type wireBody struct {
	Error            WireCode `json:"error"`
	ErrorDescription string   `json:"error_description,omitempty"`
}

// WriteJSON writes the error as a JSON body with the given status, per
// §4.5's token-endpoint failure contract.
func (e *HTTPError) WriteJSON(w http.ResponseWriter, r *http.Request, status int) {
	logger := log.FromContext(r.Context())
	logger.Info("oauth2 request rejected", e.logDetails()...)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body, err := json.Marshal(wireBody{Error: e.code, ErrorDescription: e.description})
	if err != nil {
		logger.Error(err, "failed to marshal error response")
		return
	}

	if _, err := w.Write(body); err != nil {
		logger.Error(err, "failed to write error response")
	}
}

// WritePlain writes the description as a plain-text body with the error's
// own status. The authorize endpoint uses it where no trusted redirect
// target exists: an unparseable redirect_uri, and a consent response whose
// authorization request is unknown or cannot be loaded.
func (e *HTTPError) WritePlain(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	logger.Info("oauth2 request rejected", e.logDetails()...)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(e.status)

	if _, err := w.Write([]byte(e.description)); err != nil {
		logger.Error(err, "failed to write error response")
	}
}

// AsHTTPError unwraps a generic error to an *HTTPError, if possible.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError

	if !errors.As(err, &httpErr) {
		return nil
	}

	return httpErr
}

// Constructors. Each fixes the HTTP status that applies when the error is
// NOT redirected (see §7 propagation policy for when each applies).

func NewInvalidRequest(description string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, InvalidRequest, description)
}

func NewInvalidClient(description string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, InvalidClient, description)
}

func NewRedirectURIMismatch(description string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, RedirectURIMismatch, description)
}

func NewUnsupportedResponseType(description string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, UnsupportedResponseType, description)
}

func NewInvalidScope(description string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, InvalidScope, description)
}

func NewInvalidGrant(description string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, InvalidGrant, description)
}

func NewUnsupportedGrantType(description string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, UnsupportedGrantType, description)
}

func NewInvalidToken(description string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, InvalidToken, description)
}

func NewExpiredToken(description string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, ExpiredToken, description)
}

func NewInsufficientScope(description string) *HTTPError {
	return newHTTPError(http.StatusForbidden, InsufficientScope, description)
}

func NewAccessDenied(description string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, AccessDenied, description)
}

// NewServerError tells the client we are at fault. This should never be
// seen in production; if it is, our testing needs to improve.
func NewServerError(description string) *HTTPError {
	return newHTTPError(http.StatusInternalServerError, ServerError, description)
}
