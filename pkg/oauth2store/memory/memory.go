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

// Package memory provides a process-local, in-memory reference
// implementation of the oauth2 package's store contracts: suitable for a
// single-process deployment or tests, not for a durable multi-replica
// backend.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

// ClientStore is a sync.Map-backed oauth2.ClientStore. Clients are
// long-lived and registered out of band, so no eviction applies.
type ClientStore struct {
	clients sync.Map
}

var _ oauth2.ClientStore = &ClientStore{}

// NewClientStore returns an empty ClientStore.
func NewClientStore() *ClientStore {
	return &ClientStore{}
}

// Register adds or replaces a client. Not part of the oauth2.ClientStore
// interface; used by oauth2gatectl and tests to seed the store.
func (s *ClientStore) Register(client *oauth2.Client) {
	c := *client

	s.clients.Store(c.ID, &c)
}

// FindClient implements oauth2.ClientStore.
func (s *ClientStore) FindClient(_ context.Context, id string) (*oauth2.Client, error) {
	v, ok := s.clients.Load(id)
	if !ok {
		return nil, oauth2.ErrNotFound
	}

	return v.(*oauth2.Client), nil
}

// authRequestEntry guards an AuthRequest's status transition with its own
// mutex, so a concurrent grant and deny on the same id cannot race.
type authRequestEntry struct {
	mu  sync.Mutex
	req oauth2.AuthRequest
}

// AuthRequestStore is an expiring-cache-backed oauth2.AuthRequestStore.
type AuthRequestStore struct {
	ttl     time.Duration
	entries *lru.LRU[string, *authRequestEntry]
	grants  oauth2.GrantStore
	tokens  oauth2.TokenStore
}

var _ oauth2.AuthRequestStore = &AuthRequestStore{}

// NewAuthRequestStore returns an AuthRequestStore whose entries expire
// after ttl. grants and tokens are consulted on grant to allocate the
// AccessGrant or AccessToken the response_type calls for.
func NewAuthRequestStore(ttl time.Duration, grants oauth2.GrantStore, tokens oauth2.TokenStore) *AuthRequestStore {
	return &AuthRequestStore{
		ttl:     ttl,
		entries: lru.NewLRU[string, *authRequestEntry](4096, nil, ttl),
		grants:  grants,
		tokens:  tokens,
	}
}

// CreateAuthRequest implements oauth2.AuthRequestStore.
func (s *AuthRequestStore) CreateAuthRequest(_ context.Context, clientID, scope, redirectURI string, responseType oauth2.ResponseType, state string) (*oauth2.AuthRequest, error) {
	entry := &authRequestEntry{
		req: oauth2.AuthRequest{
			ID:           uuid.NewString(),
			ClientID:     clientID,
			Scope:        scope,
			RedirectURI:  redirectURI,
			ResponseType: responseType,
			State:        state,
			Status:       oauth2.AuthRequestPending,
			ExpiresAt:    time.Now().Add(s.ttl),
		},
	}

	s.entries.Add(entry.req.ID, entry)

	req := entry.req

	return &req, nil
}

// FindAuthRequest implements oauth2.AuthRequestStore.
func (s *AuthRequestStore) FindAuthRequest(_ context.Context, id string) (*oauth2.AuthRequest, error) {
	entry, ok := s.entries.Get(id)
	if !ok {
		return nil, oauth2.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	req := entry.req

	return &req, nil
}

// GrantAuthRequest implements oauth2.AuthRequestStore. The status
// compare-and-swap happens under the entry's own mutex: the first caller
// to observe status == pending wins and performs the allocation, every
// later caller observes the already-terminal record and no-ops.
func (s *AuthRequestStore) GrantAuthRequest(ctx context.Context, id, resource string) (*oauth2.AuthRequest, error) {
	entry, ok := s.entries.Get(id)
	if !ok {
		return nil, oauth2.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.req.Status != oauth2.AuthRequestPending {
		req := entry.req

		return &req, nil
	}

	switch entry.req.ResponseType {
	case oauth2.ResponseTypeCode:
		grant, err := s.grants.CreateGrant(ctx, entry.req.ClientID, entry.req.Scope, entry.req.RedirectURI)
		if err != nil {
			return nil, err
		}

		entry.req.GrantCode = grant.Code
	case oauth2.ResponseTypeToken:
		token, err := s.tokens.CreateToken(ctx, resource, entry.req.ClientID, entry.req.Scope, nil)
		if err != nil {
			return nil, err
		}

		entry.req.AccessToken = token.Token
	default:
		return nil, fmt.Errorf("%w: unrecognized response_type %q", oauth2.ErrRequest, entry.req.ResponseType)
	}

	entry.req.Status = oauth2.AuthRequestGranted

	req := entry.req

	return &req, nil
}

// DenyAuthRequest implements oauth2.AuthRequestStore.
func (s *AuthRequestStore) DenyAuthRequest(_ context.Context, id string) (*oauth2.AuthRequest, error) {
	entry, ok := s.entries.Get(id)
	if !ok {
		return nil, oauth2.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.req.Status == oauth2.AuthRequestPending {
		entry.req.Status = oauth2.AuthRequestDenied
	}

	req := entry.req

	return &req, nil
}

// GrantStore is an expiring-cache-backed oauth2.GrantStore.
type GrantStore struct {
	entries *lru.LRU[string, *oauth2.AccessGrant]
}

var _ oauth2.GrantStore = &GrantStore{}

// NewGrantStore returns a GrantStore whose codes expire after ttl.
func NewGrantStore(ttl time.Duration) *GrantStore {
	return &GrantStore{entries: lru.NewLRU[string, *oauth2.AccessGrant](4096, nil, ttl)}
}

// CreateGrant implements oauth2.GrantStore.
func (s *GrantStore) CreateGrant(_ context.Context, clientID, scope, redirectURI string) (*oauth2.AccessGrant, error) {
	code, err := oauth2.NewOpaqueID()
	if err != nil {
		return nil, err
	}

	grant := &oauth2.AccessGrant{
		Code:        code,
		ClientID:    clientID,
		Scope:       scope,
		RedirectURI: redirectURI,
	}

	s.entries.Add(strings.ToLower(code), grant)

	return grant, nil
}

// ConsumeGrant implements oauth2.GrantStore. Remove reports whether the key
// was actually present, making this atomic find-and-delete: under a race,
// exactly one concurrent caller observes ok == true. The lookup key is
// lowercased per §6.5: codes are compared case-insensitively but emitted
// in their stored form, which the returned AccessGrant.Code still carries.
func (s *GrantStore) ConsumeGrant(_ context.Context, code string) (*oauth2.AccessGrant, error) {
	code = strings.ToLower(code)

	grant, ok := s.entries.Peek(code)
	if !ok {
		return nil, oauth2.ErrNotFound
	}

	if !s.entries.Remove(code) {
		return nil, oauth2.ErrNotFound
	}

	return grant, nil
}

// tokenKey is the secondary index key for the (resource, client_id, scope)
// uniqueness invariant.
func tokenKey(resource, clientID, scope string) string {
	return resource + "\x00" + clientID + "\x00" + scope
}

// TokenStore is an in-memory oauth2.TokenStore with a secondary index on
// (resource, client_id, scope) and singleflight-collapsed creation.
type TokenStore struct {
	mu      sync.RWMutex
	byToken map[string]*oauth2.AccessToken
	byKey   map[string]string

	group singleflight.Group
}

var _ oauth2.TokenStore = &TokenStore{}

// NewTokenStore returns an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byToken: map[string]*oauth2.AccessToken{},
		byKey:   map[string]string{},
	}
}

// CreateToken implements oauth2.TokenStore.
func (s *TokenStore) CreateToken(_ context.Context, resource, clientID, scope string, expiresAt *time.Time) (*oauth2.AccessToken, error) {
	value, err := oauth2.NewOpaqueID()
	if err != nil {
		return nil, err
	}

	token := &oauth2.AccessToken{
		Token:    value,
		Resource: resource,
		ClientID: clientID,
		Scope:    scope,
	}

	if expiresAt != nil {
		token.ExpiresAt = *expiresAt
	}

	s.mu.Lock()
	s.byToken[strings.ToLower(token.Token)] = token
	s.byKey[tokenKey(resource, clientID, scope)] = token.Token
	s.mu.Unlock()

	return token, nil
}

// FindToken implements oauth2.TokenStore. The lookup key is lowercased per
// §6.5: tokens are compared case-insensitively but emitted in their stored
// form, which the returned AccessToken.Token still carries.
func (s *TokenStore) FindToken(_ context.Context, token string) (*oauth2.AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byToken[strings.ToLower(token)]
	if !ok {
		return nil, oauth2.ErrNotFound
	}

	return t, nil
}

// GetOrCreateToken implements oauth2.TokenStore. Concurrent callers for the
// same (resource, client_id, scope) collapse onto a single singleflight
// call, so the triple maps to at most one live token without a store-wide
// lock.
func (s *TokenStore) GetOrCreateToken(ctx context.Context, resource, clientID, scope string) (*oauth2.AccessToken, error) {
	key := tokenKey(resource, clientID, scope)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		s.mu.RLock()
		if existingToken, ok := s.byKey[key]; ok {
			if existing, ok := s.byToken[existingToken]; ok && !existing.Revoked && !existing.Expired(time.Now()) {
				s.mu.RUnlock()
				return existing, nil
			}
		}
		s.mu.RUnlock()

		return s.CreateToken(ctx, resource, clientID, scope, nil)
	})
	if err != nil {
		return nil, err
	}

	return v.(*oauth2.AccessToken), nil
}
