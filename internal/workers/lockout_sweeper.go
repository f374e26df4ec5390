// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/metrics"
)

// LockoutSweeper periodically clears lockout ends that lie in the past.
// Expired lockouts already stop blocking sign-ins on their own; sweeping
// keeps the stored state and the user listings tidy.
type LockoutSweeper struct {
	users    identity.UserStore
	interval time.Duration
	now      func() time.Time

	logger *logger.Logger
}

func NewLockoutSweeper(users identity.UserStore, interval time.Duration, logger *logger.Logger) *LockoutSweeper {
	return &LockoutSweeper{
		users:    users,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Run sweeps once per interval until ctx is cancelled. A non-positive
// interval disables the sweeper.
func (s *LockoutSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Warn().Str("func", "*LockoutSweeper.Run").Msg("lockout sweeper disabled")
		return
	}

	ctx = s.logger.WithContext(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("func", "*LockoutSweeper.Run").Msg("lockout sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.sweep(ctx)
		}
	}
}

// sweep clears expired lockouts. The store call runs off the ticker
// goroutine so a slow sweep never delays shutdown: on cancellation sweep
// returns at once and the abandoned call rolls back on the same ctx.
func (s *LockoutSweeper) sweep(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	pending := identity.Async(ctx, func(ctx context.Context) (int64, error) {
		return s.users.ClearExpiredLockouts(ctx, now)
	})

	var res identity.Result[int64]
	select {
	case res = <-pending:
	case <-ctx.Done():
		s.logger.Warn().Str("func", "*LockoutSweeper.sweep").Msg("sweep abandoned on shutdown")
		return 0, ctx.Err()
	}

	if res.Err != nil {
		s.logger.Err(res.Err).Str("func", "*LockoutSweeper.sweep").Msg("error clearing expired lockouts")
		return 0, res.Err
	}

	if res.Value > 0 {
		metrics.LockoutsClearedTotal.Add(float64(res.Value))
		s.logger.Info().Str("func", "*LockoutSweeper.sweep").Int64("cleared", res.Value).Msg("expired lockouts cleared")
	}

	return res.Value, nil
}
