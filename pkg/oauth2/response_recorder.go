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
	"bytes"
	"net/http"
)

// responseRecorder buffers a handler's response so a wrapping middleware
// can inspect its headers and status before any of it reaches the real
// client, then either forward it verbatim (flush) or replace it entirely.
// ResourceGate and Dispatcher both need this: the host application's
// sentinel headers only exist once it has finished writing its response.
type responseRecorder struct {
	underlying http.ResponseWriter
	header     http.Header
	body       bytes.Buffer
	status     int
	wrote      bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{
		underlying: w,
		header:     make(http.Header),
		status:     http.StatusOK,
	}
}

// Header implements http.ResponseWriter.
func (rec *responseRecorder) Header() http.Header {
	return rec.header
}

// WriteHeader implements http.ResponseWriter.
func (rec *responseRecorder) WriteHeader(status int) {
	if rec.wrote {
		return
	}

	rec.status = status
	rec.wrote = true
}

// Write implements http.ResponseWriter.
func (rec *responseRecorder) Write(b []byte) (int, error) {
	if !rec.wrote {
		rec.WriteHeader(http.StatusOK)
	}

	return rec.body.Write(b)
}

// flush copies the buffered response to the real ResponseWriter verbatim.
func (rec *responseRecorder) flush() {
	dst := rec.underlying.Header()

	for key, values := range rec.header {
		dst[key] = values
	}

	rec.underlying.WriteHeader(rec.status)
	_, _ = rec.underlying.Write(rec.body.Bytes())
}
