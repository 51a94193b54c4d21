// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import "context"

// Notification is an out-of-band message to a subject.
type Notification struct {
	Subject string // recipient email
	Action  string // short machine-readable action tag
	Message string // human-readable body
}

// Notifier delivers notifications out of band (email). Delivery is
// fire-and-forget from the identity core's perspective: an OTP challenge
// exists once stored even if delivery fails, and password-change
// notifications are best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
