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
)

// ClientResolver authenticates the 3rd-party client making a request,
// picking whichever of the three credential carriers §4.1's decoder
// found (Basic header first, then form body, then query string).
type ClientResolver struct {
	clients ClientStore
}

// NewClientResolver returns a resolver backed by clients.
func NewClientResolver(clients ClientStore) *ClientResolver {
	return &ClientResolver{clients: clients}
}

// ResolvedClient is the outcome of a successful Resolve call, including
// which carrier the credentials came from (the token endpoint needs to
// know whether Basic auth was used to pick its failure surface, §4.5.1).
type ResolvedClient struct {
	Client *Client
	Basic  bool
}

// Resolve implements §4.3: select a credential source, look the client
// up, and authenticate it. Every failure condition — not found, secret
// mismatch, revoked — collapses to the same InvalidClient error so a
// caller can never distinguish which one occurred.
func (r *ClientResolver) Resolve(req *http.Request) (*ResolvedClient, *HTTPError) {
	decoder := NewRequestDecoder(req)

	var id, secret string

	basic := false

	if creds := decoder.Credentials(); creds.Kind == CredentialBasic {
		id, secret = creds.Username, creds.Password
		basic = true
	} else if formID, formSecret := decoder.FormClient(); formID != "" {
		id, secret = formID, formSecret
	} else {
		id, secret = decoder.QueryClient()
	}

	if id == "" {
		return nil, NewInvalidClient("client_id is required")
	}

	client, err := r.clients.FindClient(req.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewInvalidClient("client not found")
		}

		return nil, NewServerError("failed to look up client").WithError(err)
	}

	if client.Secret != secret || client.Revoked {
		return nil, NewInvalidClient("client authentication failed")
	}

	return &ResolvedClient{Client: client, Basic: basic}, nil
}
