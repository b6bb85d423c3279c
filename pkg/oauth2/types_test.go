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
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

func TestNormalizeScopeDedupesPreservingOrder(t *testing.T) {
	assert.Equal(t, "read write", oauth2.NormalizeScope("read write read"))
}

func TestNormalizeScopeEmpty(t *testing.T) {
	assert.Equal(t, "", oauth2.NormalizeScope(""))
}

func TestScopeList(t *testing.T) {
	assert.Equal(t, []string{"read", "write"}, oauth2.ScopeList("read write"))
	assert.Nil(t, oauth2.ScopeList(""))
}

func TestAccessTokenExpired(t *testing.T) {
	now := time.Now()

	nonExpiring := &oauth2.AccessToken{}
	assert.False(t, nonExpiring.Expired(now))

	expired := &oauth2.AccessToken{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, expired.Expired(now))

	notYetExpired := &oauth2.AccessToken{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, notYetExpired.Expired(now))
}
