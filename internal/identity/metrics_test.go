// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/identity"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	assert.NotPanics(t, func() {
		identity.RegisterMetrics(reg)
	})

	// Vectors with no observations yet do not gather; touch one so the
	// family shows up.
	identity.Logins.WithLabelValues(identity.StatusSuccess).Add(0)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["hireloop_logins_total"])
	assert.True(t, names["hireloop_otp_issued_total"])
	assert.True(t, names["hireloop_otp_swept_total"])
}

func TestRegisterMetricsTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	identity.RegisterMetrics(reg)
	assert.Panics(t, func() { identity.RegisterMetrics(reg) })
}
