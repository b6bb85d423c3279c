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

package oauth2test

import (
	"context"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

// ClientStore is a fixed-size fake oauth2.ClientStore, for tests that want
// direct control over what FindClient returns without pulling in the
// memory store's concurrency machinery.
type ClientStore struct {
	Clients map[string]*oauth2.Client
}

// NewClientStore returns a ClientStore seeded with clients.
func NewClientStore(clients ...*oauth2.Client) *ClientStore {
	s := &ClientStore{Clients: map[string]*oauth2.Client{}}

	for _, c := range clients {
		s.Clients[c.ID] = c
	}

	return s
}

// FindClient implements oauth2.ClientStore.
func (s *ClientStore) FindClient(_ context.Context, id string) (*oauth2.Client, error) {
	c, ok := s.Clients[id]
	if !ok {
		return nil, oauth2.ErrNotFound
	}

	return c, nil
}

// UberClient is the canonical fixture client used throughout this
// repository's tests: a pre-registered redirect URI, matching the
// end-to-end scenarios.
func UberClient() *oauth2.Client {
	return &oauth2.Client{
		ID:          "uber_client_id",
		Secret:      "uber_client_secret",
		RedirectURI: "http://uberclient.dot/callback",
		DisplayName: "UberClient",
	}
}
