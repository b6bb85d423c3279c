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
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by store lookups that find nothing. It is never
// surfaced to a client directly; callers translate it into the
// appropriate protocol error (§4.3's invariant: resolution failures never
// reveal which specific condition caused them).
var ErrNotFound = errors.New("oauth2: not found")

// ClientStore resolves registered third-party applications.
type ClientStore interface {
	// FindClient returns the client for id, or ErrNotFound.
	FindClient(ctx context.Context, id string) (*Client, error)
}

// AuthRequestStore persists in-flight authorization attempts across the
// Phase A / Phase C boundary (§5 ordering guarantees).
type AuthRequestStore interface {
	// CreateAuthRequest stores a new pending AuthRequest and returns it
	// with its ID populated.
	CreateAuthRequest(ctx context.Context, clientID, scope, redirectURI string, responseType ResponseType, state string) (*AuthRequest, error)

	// FindAuthRequest returns the AuthRequest for id, or ErrNotFound if
	// it is unknown or has expired.
	FindAuthRequest(ctx context.Context, id string) (*AuthRequest, error)

	// GrantAuthRequest atomically transitions a pending AuthRequest to
	// granted, allocating a GrantCode or AccessToken according to its
	// ResponseType, and returns the updated record. Implementations
	// MUST make this a no-op (returning the existing terminal record)
	// if the AuthRequest is already terminal, per §3's idempotency
	// invariant.
	GrantAuthRequest(ctx context.Context, id, resource string) (*AuthRequest, error)

	// DenyAuthRequest atomically transitions a pending AuthRequest to
	// denied. Same idempotency requirement as GrantAuthRequest.
	DenyAuthRequest(ctx context.Context, id string) (*AuthRequest, error)
}

// GrantStore persists one-shot authorization codes.
type GrantStore interface {
	// CreateGrant stores a new AccessGrant for the given client, scope,
	// and redirect URI, returning its freshly generated code.
	CreateGrant(ctx context.Context, clientID, scope, redirectURI string) (*AccessGrant, error)

	// ConsumeGrant atomically finds and deletes the grant for code, so
	// that a concurrent redemption can never observe it twice (§9 open
	// question resolution: first wins, others see ErrNotFound).
	ConsumeGrant(ctx context.Context, code string) (*AccessGrant, error)
}

// TokenStore persists bearer access tokens.
type TokenStore interface {
	// CreateToken allocates a fresh AccessToken.
	CreateToken(ctx context.Context, resource, clientID, scope string, expiresAt *time.Time) (*AccessToken, error)

	// FindToken returns the token for its value, or ErrNotFound.
	FindToken(ctx context.Context, token string) (*AccessToken, error)

	// GetOrCreateToken returns the existing live token for
	// (resource, clientID, scope) if one exists, or creates one. This
	// is the §3 uniqueness invariant: the triple maps to at most one
	// live token.
	GetOrCreateToken(ctx context.Context, resource, clientID, scope string) (*AccessToken, error)
}
