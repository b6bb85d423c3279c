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

package oauth2_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

func TestNewConfigDefaults(t *testing.T) {
	c := oauth2.NewConfig()

	assert.Equal(t, "/oauth/authorize", c.AuthorizePath)
	assert.Equal(t, "/oauth/access_token", c.AccessTokenPath)
	assert.ElementsMatch(t, []string{"code", "token"}, c.AuthorizationTypes)
	assert.Equal(t, 10*time.Minute, c.AuthRequestTTL)
}

func TestConfigAddFlagsOverridesDefaults(t *testing.T) {
	c := oauth2.NewConfig()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--oauth2-realm=example", "--oauth2-auth-request-ttl=30s"}))

	assert.Equal(t, "example", c.Realm)
	assert.Equal(t, 30*time.Second, c.AuthRequestTTL)
}

func TestConfigLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oauth2gate.ini")

	contents := "[oauth2]\nrealm = from-file\nscopes = read, write\nauth_request_ttl = 5m\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	c := oauth2.NewConfig()
	require.NoError(t, c.LoadFile(path))

	assert.Equal(t, "from-file", c.Realm)
	assert.ElementsMatch(t, []string{"read", "write"}, c.Scopes)
	assert.Equal(t, 5*time.Minute, c.AuthRequestTTL)
}
