// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
)

// Sweeper runs the expiry sweep on a fixed interval, independent of request
// handling. The sweep is a cleanup optimization: Verify re-checks challenge
// age itself, so a late sweep never extends a challenge's life.
type Sweeper struct {
	otp      *OTPService
	interval time.Duration
	logger   *slog.Logger
	clock    func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a Sweeper. A non-positive interval falls back to
// DefaultSweepInterval.
func NewSweeper(otp *OTPService, interval time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if otp == nil {
		return nil, oops.Errorf("otp service is required")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		otp:      otp,
		interval: interval,
		logger:   logger,
		clock:    time.Now,
	}, nil
}

// Start begins periodic sweeping until the context is canceled or Stop is
// called.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the sweeper and waits for the current cycle to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunOnce executes a single sweep cycle.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	_, err := s.otp.SweepExpired(ctx, s.clock())
	return err
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("otp sweep failed", "error", err)
			}
		}
	}
}
