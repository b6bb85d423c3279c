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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
)

func TestHTTPErrorWriteJSON(t *testing.T) {
	err := oauth2.NewInvalidGrant("authorization code is unknown")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/oauth/access_token", nil)

	err.WriteJSON(w, r, http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid_grant", body.Error)
	assert.Equal(t, "authorization code is unknown", body.ErrorDescription)
}

func TestHTTPErrorWritePlain(t *testing.T) {
	err := oauth2.NewInvalidRequest("redirect_uri is not a valid URI")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/oauth/authorize", nil)

	err.WritePlain(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "redirect_uri is not a valid URI", w.Body.String())
}

func TestAsHTTPError(t *testing.T) {
	err := oauth2.NewServerError("boom").WithError(errors.New("underlying"))

	var target error = err

	httpErr := oauth2.AsHTTPError(target)
	require.NotNil(t, httpErr)
	assert.Equal(t, oauth2.ServerError, httpErr.Code())
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status())

	assert.Nil(t, oauth2.AsHTTPError(errors.New("not one of ours")))
}

func TestHTTPErrorUnwrapsToSentinel(t *testing.T) {
	err := oauth2.NewInvalidClient("bad client")

	assert.True(t, errors.Is(err, oauth2.ErrRequest))
}
