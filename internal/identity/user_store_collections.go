// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// AddClaim attaches claim to user. Adding a (type, value) pair the user
// already holds is a no-op.
func (s *userStore) AddClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	if user == nil {
		return ErrNotFound
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.AddClaim", func(ctx context.Context) error {
		if err := s.ensureUser(ctx, user.ID); err != nil {
			return err
		}

		n, err := s.tables.claims.Count(ctx, claimPredicate(user.ID, claim))
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		row := claimRow{ID: s.ids.Generate(), UserID: user.ID, Type: claim.Type, Value: claim.Value}
		return s.tables.claims.Save(ctx, &row)
	})
	if err != nil {
		return err
	}

	if !user.HasClaim(claim) {
		user.Claims = append(user.Claims, claim)
	}

	return nil
}

// RemoveClaim detaches every claim of user equal to claim. Removing a claim
// the user does not hold is a no-op.
func (s *userStore) RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	if user == nil {
		return ErrNotFound
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.RemoveClaim", func(ctx context.Context) error {
		_, err := s.tables.claims.DeleteWhere(ctx, claimPredicate(user.ID, claim))
		return err
	})
	if err != nil {
		return err
	}

	kept := make([]models.Claim, 0, len(user.Claims))
	for _, c := range user.Claims {
		if c != claim {
			kept = append(kept, c)
		}
	}
	user.Claims = kept

	return nil
}

// AddLogin links an external login to user. A (provider, key) pair that is
// already linked to any user, this one included, is rejected with
// [ErrLoginAlreadyAssociated].
func (s *userStore) AddLogin(ctx context.Context, user *models.User, login models.Login) error {
	if user == nil {
		return ErrNotFound
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.AddLogin", func(ctx context.Context) error {
		if err := s.ensureUser(ctx, user.ID); err != nil {
			return err
		}

		_, err := s.tables.logins.GetByID(ctx, login.Provider, login.ProviderKey)
		if err == nil {
			return ErrLoginAlreadyAssociated
		}
		if !errors.Is(err, store.ErrRecordNotFound) {
			return err
		}

		row := loginRow{
			Provider:            login.Provider,
			ProviderKey:         login.ProviderKey,
			ProviderDisplayName: login.ProviderDisplayName,
			UserID:              user.ID,
		}
		if err = s.tables.logins.Save(ctx, &row); err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				return fmt.Errorf("%w: %w: %w", ErrPersistenceFailure, ErrLoginAlreadyAssociated, err)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	user.Logins = append(user.Logins, login)

	return nil
}

// RemoveLogin unlinks the (provider, providerKey) login from user. It is a
// no-op when user does not hold that login.
func (s *userStore) RemoveLogin(ctx context.Context, user *models.User, provider, providerKey string) error {
	if user == nil {
		return ErrNotFound
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.RemoveLogin", func(ctx context.Context) error {
		_, err := s.tables.logins.DeleteWhere(ctx, sq.Eq{
			"user_id":        user.ID,
			"login_provider": provider,
			"provider_key":   providerKey,
		})
		return err
	})
	if err != nil {
		return err
	}

	kept := make([]models.Login, 0, len(user.Logins))
	for _, l := range user.Logins {
		if l.Provider != provider || l.ProviderKey != providerKey {
			kept = append(kept, l)
		}
	}
	user.Logins = kept

	return nil
}

// AddToRole makes user a member of the role named roleName, matched
// ignoring case. Joining a role the user is already in is a no-op.
func (s *userStore) AddToRole(ctx context.Context, user *models.User, roleName string) error {
	if user == nil {
		return ErrNotFound
	}

	var role roleRow
	err := withinUnitOfWork(ctx, s.db, "*userStore.AddToRole", func(ctx context.Context) error {
		if err := s.ensureUser(ctx, user.ID); err != nil {
			return err
		}

		var (
			found bool
			err   error
		)
		if role, found, err = findRoleByName(ctx, s.tables, roleName); err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrRoleNotFound, roleName)
		}

		link := userRoleRow{UserID: user.ID, RoleID: role.ID}
		n, err := s.tables.userRoles.Count(ctx, sq.Eq{"user_id": link.UserID, "role_id": link.RoleID})
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		return s.tables.userRoles.Save(ctx, &link)
	})
	if err != nil {
		return err
	}

	if !user.HasRole(role.Name) {
		user.Roles = append(user.Roles, role.Name)
		sortRoleNames(user.Roles)
	}

	return nil
}

// RemoveFromRole ends the membership of user in roleName. It is a no-op when
// the user is not a member or the role does not exist.
func (s *userStore) RemoveFromRole(ctx context.Context, user *models.User, roleName string) error {
	if user == nil {
		return ErrNotFound
	}

	err := withinUnitOfWork(ctx, s.db, "*userStore.RemoveFromRole", func(ctx context.Context) error {
		role, found, err := findRoleByName(ctx, s.tables, roleName)
		if err != nil || !found {
			return err
		}

		_, err = s.tables.userRoles.DeleteWhere(ctx, sq.Eq{"user_id": user.ID, "role_id": role.ID})
		return err
	})
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		if !strings.EqualFold(r, roleName) {
			kept = append(kept, r)
		}
	}
	user.Roles = kept

	return nil
}

// IsInRole reports whether the stored user is a member of roleName.
func (s *userStore) IsInRole(ctx context.Context, user *models.User, roleName string) (bool, error) {
	if user == nil {
		return false, ErrNotFound
	}

	var member bool
	err := withinUnitOfWork(ctx, s.db, "*userStore.IsInRole", func(ctx context.Context) error {
		role, found, err := findRoleByName(ctx, s.tables, roleName)
		if err != nil || !found {
			return err
		}

		n, err := s.tables.userRoles.Count(ctx, sq.Eq{"user_id": user.ID, "role_id": role.ID})
		if err != nil {
			return err
		}
		member = n > 0

		return nil
	})
	if err != nil {
		return false, err
	}

	return member, nil
}

// GetRoles returns the sorted names of the stored roles of user.
func (s *userStore) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	if user == nil {
		return nil, ErrNotFound
	}

	var names []string
	err := withinUnitOfWork(ctx, s.db, "*userStore.GetRoles", func(ctx context.Context) error {
		var err error
		names, err = s.roleNames(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

func claimPredicate(userID string, claim models.Claim) sq.Eq {
	return sq.Eq{
		"user_id":     userID,
		"claim_type":  claim.Type,
		"claim_value": claim.Value,
	}
}
