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
	"fmt"
	"net/http"
	"strings"
)

// Challenge builds the value of a WWW-Authenticate header: always
// `OAuth realm="..."`, optionally followed by an error/description pair,
// optionally followed by a space-joined scope list. Exactly the format
// §4.6 specifies.
type Challenge struct {
	Realm            string
	Code             WireCode
	ErrorDescription string
	Scope            string
}

// String renders the challenge value.
func (c Challenge) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "OAuth realm=%q", c.Realm)

	if c.Code != "" {
		fmt.Fprintf(&b, ", error=%q", c.Code)

		if c.ErrorDescription != "" {
			fmt.Fprintf(&b, ", error_description=%q", c.ErrorDescription)
		}
	}

	if c.Scope != "" {
		fmt.Fprintf(&b, ", scope=%q", c.Scope)
	}

	return b.String()
}

// Write sets the WWW-Authenticate header and status on w.
func (c Challenge) Write(w http.ResponseWriter, status int) {
	w.Header().Set("WWW-Authenticate", c.String())
	w.WriteHeader(status)
}

// realmFor resolves the configured realm, falling back to the request
// host when unset.
func realmFor(configured, host string) string {
	if configured != "" {
		return configured
	}

	return host
}

// normalizeScopeHeader turns the oauth.no_scope sentinel's value into a
// space-joined scope string. Per Design Notes §9, the host app may emit
// either a single scope (a scalar) or several joined by commas.
func normalizeScopeHeader(raw string) string {
	if raw == "" {
		return ""
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})

	return strings.Join(fields, " ")
}
