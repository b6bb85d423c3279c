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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values for the "outcome" dimension.
const (
	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

var (
	// AuthorizeRequestsTotal counts Phase A completions of the authorize
	// endpoint, by error code (empty for a successful hand-off to the
	// host app).
	AuthorizeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oauth2gate",
		Name:      "authorize_requests_total",
		Help:      "Authorize endpoint requests, by wire error code (empty on success).",
	}, []string{"error"})

	// AuthorizeFinalizationsTotal counts Phase C finalizations, by outcome.
	AuthorizeFinalizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oauth2gate",
		Name:      "authorize_finalizations_total",
		Help:      "Authorization requests finalized, by outcome (granted, denied, error).",
	}, []string{"outcome"})

	// TokensIssuedTotal counts token-endpoint successes, by grant type.
	TokensIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oauth2gate",
		Name:      "tokens_issued_total",
		Help:      "Access tokens issued, by grant_type.",
	}, []string{"grant_type"})

	// TokenRequestsFailedTotal counts token-endpoint failures, by wire
	// error code.
	TokenRequestsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oauth2gate",
		Name:      "token_requests_failed_total",
		Help:      "Token endpoint requests rejected, by wire error code.",
	}, []string{"error"})

	// ResourceRequestsTotal counts every resource-gate decision, by
	// outcome (authenticated, anonymous, challenged, invalid_token,
	// expired_token, insufficient_scope, error).
	ResourceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oauth2gate",
		Name:      "resource_requests_total",
		Help:      "Resource requests passing through the gate, by outcome.",
	}, []string{"outcome"})
)
