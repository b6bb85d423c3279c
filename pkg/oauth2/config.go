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
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"
)

// Authenticator authenticates resource-owner credentials for the password
// grant (§4.5). A nil Authenticator disables that grant.
type Authenticator func(username, password string) (resource string, ok bool)

// Config holds the enumerated §6.4 configuration. Flags are registered
// with the AddFlags(*pflag.FlagSet) convention the teacher uses for its
// JWTIssuer and serverOptions types, so a Config can be embedded directly
// into a command's flag set.
type Config struct {
	// AuthorizePath is the HTTP path for the authorize endpoint.
	AuthorizePath string

	// AccessTokenPath is the HTTP path for the token endpoint.
	AccessTokenPath string

	// AuthorizationTypes is the subset of {"code","token"} allowed at
	// the authorize endpoint.
	AuthorizationTypes []string

	// Realm is used in WWW-Authenticate; falls back to the request host
	// when empty.
	Realm string

	// Scopes, when non-empty, is the allow-list of scope names; any
	// requested scope outside it is invalid_scope.
	Scopes []string

	// AuthRequestTTL bounds how long a created AuthRequest may still be
	// finalized (expansion, Design Notes §9).
	AuthRequestTTL time.Duration

	// Authenticator enables the password grant when set.
	Authenticator Authenticator
}

// NewConfig returns a Config with the protocol's documented defaults.
func NewConfig() *Config {
	return &Config{
		AuthorizePath:      "/oauth/authorize",
		AccessTokenPath:    "/oauth/access_token",
		AuthorizationTypes: []string{"code", "token"},
		AuthRequestTTL:     10 * time.Minute,
	}
}

// AddFlags registers flags with the provided flag set.
func (c *Config) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&c.AuthorizePath, "oauth2-authorize-path", c.AuthorizePath, "HTTP path for the authorize endpoint.")
	f.StringVar(&c.AccessTokenPath, "oauth2-access-token-path", c.AccessTokenPath, "HTTP path for the token endpoint.")
	f.StringSliceVar(&c.AuthorizationTypes, "oauth2-authorization-types", c.AuthorizationTypes, "Response types allowed at the authorize endpoint.")
	f.StringVar(&c.Realm, "oauth2-realm", c.Realm, "Realm reported in WWW-Authenticate challenges; defaults to the request host.")
	f.StringSliceVar(&c.Scopes, "oauth2-scopes", c.Scopes, "Allow-list of scope names; unset means any scope is accepted.")
	f.DurationVar(&c.AuthRequestTTL, "oauth2-auth-request-ttl", c.AuthRequestTTL, "How long an authorization request may remain pending before it expires.")
}

// LoadFile overlays values from the [oauth2] section of an INI file onto
// c; keys absent from the file leave c unchanged. Flags parsed after
// LoadFile override what it set. Neither binary in this repository calls
// LoadFile or has a flag naming such a file.
func (c *Config) LoadFile(path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return err
	}

	section := cfg.Section("oauth2")

	if v := section.Key("authorize_path").String(); v != "" {
		c.AuthorizePath = v
	}

	if v := section.Key("access_token_path").String(); v != "" {
		c.AccessTokenPath = v
	}

	if v := section.Key("authorization_types").String(); v != "" {
		c.AuthorizationTypes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}

	if v := section.Key("realm").String(); v != "" {
		c.Realm = v
	}

	if v := section.Key("scopes").String(); v != "" {
		c.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}

	if v := section.Key("auth_request_ttl").String(); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}

		c.AuthRequestTTL = d
	}

	return nil
}

// responseTypeAllowed reports whether rt is in the configured allow-list.
func (c *Config) responseTypeAllowed(rt ResponseType) bool {
	for _, t := range c.AuthorizationTypes {
		if ResponseType(t) == rt {
			return true
		}
	}

	return false
}

// scopeAllowed reports whether every scope token in scope is allowed by
// the configured allow-list. An empty allow-list permits anything.
func (c *Config) scopeAllowed(scope string) (string, bool) {
	normalized := NormalizeScope(scope)

	if len(c.Scopes) == 0 {
		return normalized, true
	}

	for _, token := range ScopeList(normalized) {
		allowed := false

		for _, s := range c.Scopes {
			if s == token {
				allowed = true
				break
			}
		}

		if !allowed {
			return "", false
		}
	}

	return normalized, true
}
