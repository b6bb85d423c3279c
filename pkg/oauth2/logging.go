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
	"net/http"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// loggingResponseWriter gives logging middleware access to the status code
// a downstream handler wrote, without altering the response in any way.
type loggingResponseWriter struct {
	next http.ResponseWriter
	code int
}

var _ http.ResponseWriter = &loggingResponseWriter{}

func (w *loggingResponseWriter) Header() http.Header {
	return w.next.Header()
}

func (w *loggingResponseWriter) Write(body []byte) (int, error) {
	return w.next.Write(body)
}

func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	w.code = statusCode
	w.next.WriteHeader(statusCode)
}

func (w *loggingResponseWriter) StatusCode() int {
	if w.code == 0 {
		return http.StatusOK
	}

	return w.code
}

// Logger attaches a request-scoped logger, tagged with a fresh request id,
// to the request context, and logs a summary line once the request
// completes.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()

		logger := log.Log.WithValues("request.id", requestID, "request.method", r.Method, "request.path", r.URL.Path)

		ctx := log.IntoContext(r.Context(), logger)

		writer := &loggingResponseWriter{next: w}

		next.ServeHTTP(writer, r.WithContext(ctx))

		logger.Info("request completed", "status", writer.StatusCode())
	})
}
