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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

func TestParseRedirectURIValid(t *testing.T) {
	u, err := oauth2.ParseRedirectURI("http://uberclient.dot/callback?foo=bar")
	require.Nil(t, err)
	assert.Equal(t, "uberclient.dot", u.Host)
	assert.Equal(t, "bar", u.Query().Get("foo"))
}

func TestParseRedirectURIEmpty(t *testing.T) {
	_, err := oauth2.ParseRedirectURI("")
	require.NotNil(t, err)
	assert.Equal(t, oauth2.InvalidRequest, err.Code())
}

func TestParseRedirectURIMalformed(t *testing.T) {
	_, err := oauth2.ParseRedirectURI("http:not-valid")
	require.NotNil(t, err)
	assert.Equal(t, oauth2.InvalidRequest, err.Code())
}

func TestParseRedirectURINotAbsolute(t *testing.T) {
	_, err := oauth2.ParseRedirectURI("/callback")
	require.NotNil(t, err)
	assert.Equal(t, oauth2.InvalidRequest, err.Code())
}

func TestParseRedirectURIWithFragment(t *testing.T) {
	_, err := oauth2.ParseRedirectURI("http://uberclient.dot/callback#frag")
	require.NotNil(t, err)
	assert.Equal(t, oauth2.InvalidRequest, err.Code())
}
