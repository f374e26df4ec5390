// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// IsLockedOut reports whether user is locked out at now: lockout must be
// enabled and the lockout end must lie after now.
func IsLockedOut(user *models.User, now time.Time) bool {
	return user != nil &&
		user.LockoutEnabled &&
		user.LockoutEnd != nil &&
		user.LockoutEnd.After(now)
}

// IncrementFailedAccessCount adds one to the stored failed access count of
// user and returns the new value.
func (s *userStore) IncrementFailedAccessCount(ctx context.Context, user *models.User) (int, error) {
	if user == nil {
		return 0, ErrNotFound
	}

	var count int
	err := withinUnitOfWork(ctx, s.db, "*userStore.IncrementFailedAccessCount", func(ctx context.Context) error {
		return s.modifyRow(ctx, user.ID, func(row *userRow) {
			row.AccessFailedCount++
			count = row.AccessFailedCount
		})
	})
	if err != nil {
		return 0, err
	}

	user.AccessFailedCount = count

	return count, nil
}

// ResetFailedAccessCount sets the failed access count of user to zero.
func (s *userStore) ResetFailedAccessCount(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrNotFound
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.ResetFailedAccessCount", func(ctx context.Context) error {
		return s.modifyRow(ctx, user.ID, func(row *userRow) {
			row.AccessFailedCount = 0
		})
	})
	if err != nil {
		return err
	}

	user.AccessFailedCount = 0

	return nil
}

// SetLockoutEnd stores end as the moment the lockout of user expires. A nil
// end clears the lockout.
func (s *userStore) SetLockoutEnd(ctx context.Context, user *models.User, end *time.Time) error {
	if user == nil {
		return ErrNotFound
	}

	var stored *time.Time
	if end != nil {
		t := normalizeTime(*end)
		stored = &t
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.SetLockoutEnd", func(ctx context.Context) error {
		return s.modifyRow(ctx, user.ID, func(row *userRow) {
			row.LockoutEnd = sql.NullTime{}
			if stored != nil {
				row.LockoutEnd = sql.NullTime{Time: *stored, Valid: true}
			}
		})
	})
	if err != nil {
		return err
	}

	user.LockoutEnd = stored

	return nil
}

// ClearExpiredLockouts clears every lockout end at or before now and
// returns how many users were released.
func (s *userStore) ClearExpiredLockouts(ctx context.Context, now time.Time) (int64, error) {
	var cleared int64

	err := withinUnitOfWork(ctx, s.db, "*userStore.ClearExpiredLockouts", func(ctx context.Context) error {
		expired, err := s.tables.users.Query(ctx, sq.LtOrEq{"lockout_end": normalizeTime(now)}, "id")
		if err != nil {
			return err
		}

		for i := range expired {
			expired[i].LockoutEnd = sql.NullTime{}
			if err = s.tables.users.Update(ctx, &expired[i]); err != nil {
				return err
			}
			cleared++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return cleared, nil
}

// modifyRow reloads the user row, applies change and writes it back.
func (s *userStore) modifyRow(ctx context.Context, userID string, change func(row *userRow)) error {
	row, err := s.tables.users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	change(row)

	if err = s.tables.users.Update(ctx, row); err != nil {
		if errors.Is(err, store.ErrNoRowsAffected) {
			return ErrNotFound
		}
		return err
	}

	return nil
}
