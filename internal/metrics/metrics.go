// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics defines the Prometheus metrics of the identity server. It
// is the single source of truth for metric names, labels and help strings.
//
// Metrics are registered with the default registry when the package is
// loaded and exposed by the HTTP handler on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled HTTP requests.
// Labels:
//   - method: HTTP method (e.g. "POST")
//   - route: chi route pattern (e.g. "/api/users/{id}")
//   - code: response status code (e.g. "201")
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status code.",
	},
	[]string{"method", "route", "code"},
)

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: chi route pattern
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests from routing to the last written byte.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// SignInsTotal counts password sign-in attempts.
// Label:
//   - result: "success", "wrong_password", "locked_out" or "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of password sign-in attempts, by result.",
	},
	[]string{"result"},
)

// LockoutsTotal counts users locked out after too many failed attempts.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of lockouts started after repeated failed access attempts.",
	},
)

// LockoutsClearedTotal counts expired lockouts cleared by the sweeper.
var LockoutsClearedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_cleared_total",
		Help:      "Total number of expired lockouts cleared by the lockout sweeper.",
	},
)

// Sign-in results used as the "result" label of [SignInsTotal].
const (
	SignInSuccess       = "success"
	SignInWrongPassword = "wrong_password"
	SignInLockedOut     = "locked_out"
	SignInError         = "error"
)
