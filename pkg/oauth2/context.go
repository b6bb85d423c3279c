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

import "context"

// Host-application contract headers (§6.2). These are plain HTTP headers
// rather than typed return values so the host application has no import
// coupling to this package.
const (
	// HeaderAuthorization is set by the host app on its consent
	// response to name the in-flight AuthRequest (which the core passes
	// to the consent request through the context, see
	// AuthRequestIDFromContext) and to signal grant (any status other
	// than 401) or deny (401), optionally naming the resource in the
	// response body.
	HeaderAuthorization = "Oauth2-Authorization"

	// HeaderNoAccess is set by the host app to trigger an unauthenticated
	// challenge when a resource request arrives with no bearer token.
	HeaderNoAccess = "Oauth2-No-Access"

	// HeaderNoScope is set by the host app, alongside a 403, to trigger
	// an insufficient_scope challenge naming the scopes that were
	// missing. May be a single scope name or a comma-joined list; the
	// host app must emit it as one header value (Header().Set, not
	// Add), since only the first value of a repeated header is read.
	HeaderNoScope = "Oauth2-No-Scope"
)

// contextKey is a unique, unexported type so keys from this package never
// collide with another package's context values.
type contextKey int

const (
	accessTokenKey contextKey = iota
	resourceKey
	authRequestIDKey
	consentViewKey
)

// ConsentView is the information the host application's consent page
// needs to render: who is asking, and for what.
type ConsentView struct {
	ClientDisplayName string
	Scope             string
}

// NewContextWithAuthRequestID attaches the in-flight AuthRequest id to ctx,
// readable by the host app as the inbound half of HeaderAuthorization.
func NewContextWithAuthRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, authRequestIDKey, id)
}

// AuthRequestIDFromContext extracts the AuthRequest id attached by Authorizer.
func AuthRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(authRequestIDKey).(string)

	return id, ok
}

// NewContextWithConsentView attaches the consent view to ctx.
func NewContextWithConsentView(ctx context.Context, view ConsentView) context.Context {
	return context.WithValue(ctx, consentViewKey, view)
}

// ConsentViewFromContext extracts the consent view attached by Authorizer.
func ConsentViewFromContext(ctx context.Context) (ConsentView, bool) {
	view, ok := ctx.Value(consentViewKey).(ConsentView)

	return view, ok
}

// NewContextWithAccessToken attaches the validated access token to ctx.
func NewContextWithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}

// AccessTokenFromContext extracts the access token attached by ResourceGate.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey).(string)

	return token, ok
}

// NewContextWithResource attaches the token's resource owner to ctx.
func NewContextWithResource(ctx context.Context, resource string) context.Context {
	return context.WithValue(ctx, resourceKey, resource)
}

// ResourceFromContext extracts the resource attached by ResourceGate.
func ResourceFromContext(ctx context.Context) (string, bool) {
	resource, ok := ctx.Value(resourceKey).(string)

	return resource, ok
}
