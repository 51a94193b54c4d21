// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

// Package notify delivers account notifications to subjects.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/samber/oops"

	"github.com/hireloop/hireloop/internal/identity"
)

// SMTPNotifier delivers notifications as plain-text email over SMTP.
type SMTPNotifier struct {
	addr string
	from string
	send func(addr, from string, to []string, msg []byte) error
}

var _ identity.Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates a notifier that relays through the SMTP server
// at addr ("host:port") using from as the envelope sender.
func NewSMTPNotifier(addr, from string) (*SMTPNotifier, error) {
	if addr == "" {
		return nil, oops.Errorf("smtp address is required")
	}
	if from == "" {
		return nil, oops.Errorf("smtp sender is required")
	}
	return &SMTPNotifier{
		addr: addr,
		from: from,
		send: func(addr, from string, to []string, msg []byte) error {
			//nolint:wrapcheck // callers wrap with delivery context
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}, nil
}

// Notify sends the notification to the subject's address.
func (n *SMTPNotifier) Notify(_ context.Context, notification identity.Notification) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", notification.Subject)
	fmt.Fprintf(&b, "Subject: %s\r\n", notification.Action)
	b.WriteString("\r\n")
	b.WriteString(notification.Message)
	b.WriteString("\r\n")

	if err := n.send(n.addr, n.from, []string{notification.Subject}, []byte(b.String())); err != nil {
		return oops.Code("NOTIFY_DELIVERY_FAILED").
			With("action", notification.Action).
			Wrap(err)
	}
	return nil
}

// LogNotifier records notifications to the logger instead of delivering
// them. Used in development when no SMTP relay is configured.
type LogNotifier struct {
	logger *slog.Logger
}

var _ identity.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier backed by logger. A nil logger
// discards output.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification. It never fails.
func (n *LogNotifier) Notify(ctx context.Context, notification identity.Notification) error {
	n.logger.InfoContext(ctx, "notification",
		"subject", notification.Subject,
		"action", notification.Action,
		"message", notification.Message,
	)
	return nil
}
