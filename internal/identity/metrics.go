// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import "github.com/prometheus/client_golang/prometheus"

// Status constants for identity metrics.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Logins is the counter for login attempts.
// Use RegisterMetrics to register this with a Prometheus registry.
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hireloop_logins_total",
		Help: "Total number of login attempts by status",
	},
	[]string{"status"},
)

// OTPIssued is the counter for issued one-time-password challenges.
var OTPIssued = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "hireloop_otp_issued_total",
		Help: "Total number of one-time-password challenges issued",
	},
)

// OTPVerifications is the counter for one-time-password verification attempts.
var OTPVerifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hireloop_otp_verifications_total",
		Help: "Total number of one-time-password verification attempts by status",
	},
	[]string{"status"},
)

// OTPSwept is the counter for challenges removed by the expiry sweep.
var OTPSwept = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "hireloop_otp_swept_total",
		Help: "Total number of expired one-time-password challenges removed",
	},
)

// SequenceAllocations is the counter for sequence value allocations.
var SequenceAllocations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hireloop_sequence_allocations_total",
		Help: "Total number of sequence values allocated by counter key",
	},
	[]string{"key"},
)

// RegisterMetrics registers identity package metrics with the given Prometheus
// registry. This must be called at startup to make metrics available on
// /metrics. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Logins)
	reg.MustRegister(OTPIssued)
	reg.MustRegister(OTPVerifications)
	reg.MustRegister(OTPSwept)
	reg.MustRegister(SequenceAllocations)
}
