// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/metrics"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// AccessFailed records a failed access attempt. When lockout is enabled for
// user and the count reaches the configured maximum, user is locked out for
// the configured duration and the count starts over.
func (m *userManager) AccessFailed(ctx context.Context, user *models.User) error {
	log := logger.FromContext(ctx)

	count, err := m.users.IncrementFailedAccessCount(ctx, user)
	if err != nil {
		log.Err(err).Str("func", "*userManager.AccessFailed").Msg("error incrementing failed access count")
		return fmt.Errorf("recording failed access failed: %w", err)
	}

	if !user.LockoutEnabled || count < m.maxFailedAccessAttempts {
		return nil
	}

	end := m.now().Add(m.lockoutDuration)
	if err = m.users.SetLockoutEnd(ctx, user, &end); err != nil {
		log.Err(err).Str("func", "*userManager.AccessFailed").Msg("error setting lockout end")
		return fmt.Errorf("locking out user failed: %w", err)
	}
	if err = m.users.ResetFailedAccessCount(ctx, user); err != nil {
		log.Err(err).Str("func", "*userManager.AccessFailed").Msg("error resetting failed access count")
		return fmt.Errorf("resetting failed access count failed: %w", err)
	}

	metrics.LockoutsTotal.Inc()
	log.Info().Str("func", "*userManager.AccessFailed").Str("user_id", user.ID).Time("lockout_end", end).Msg("user locked out")

	return nil
}

func (m *userManager) GetAccessFailedCount(user *models.User) int {
	if user == nil {
		return 0
	}

	return user.AccessFailedCount
}

func (m *userManager) IsLockedOut(user *models.User) bool {
	return identity.IsLockedOut(user, m.now())
}

func (m *userManager) ResetAccessFailedCount(ctx context.Context, user *models.User) error {
	if err := m.users.ResetFailedAccessCount(ctx, user); err != nil {
		return fmt.Errorf("resetting failed access count failed: %w", err)
	}

	return nil
}
