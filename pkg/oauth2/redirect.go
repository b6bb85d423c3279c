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

import "net/url"

// ParseRedirectURI validates a client-supplied redirect URI per §4.2:
// it must be present, absolute, and carry a host (the defining test for
// "not valid" is the absence of a hierarchical authority). A fragment is
// rejected outright since the server itself appends one for the implicit
// grant. Query parameters, if any, are preserved.
func ParseRedirectURI(raw string) (*url.URL, *HTTPError) {
	if raw == "" {
		return nil, NewInvalidRequest("redirect_uri is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, NewInvalidRequest("redirect_uri is not a valid URI").WithError(err)
	}

	if !u.IsAbs() {
		return nil, NewInvalidRequest("redirect_uri must be absolute")
	}

	if u.Host == "" {
		return nil, NewInvalidRequest("redirect_uri must have a host")
	}

	if u.Fragment != "" {
		return nil, NewInvalidRequest("redirect_uri must not contain a fragment")
	}

	return u, nil
}
