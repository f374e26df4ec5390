// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

//go:generate mockgen -source=interfaces.go -destination=../mock/identity_store_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// UserStore persists the user aggregate: the user row together with its
// claims, external logins and role memberships.
//
// Every operation runs in one unit of work. When ctx already carries a
// transaction opened with [store.DB.Begin] or [store.DB.WithinTransaction]
// the operation joins it. In-memory collections of the passed user change
// once the operation succeeds: after its own commit, or inside the caller's
// transaction, where a later rollback by the caller leaves them ahead of
// the stored state.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByName(ctx context.Context, userName string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLogin(ctx context.Context, provider, providerKey string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	AddClaim(ctx context.Context, user *models.User, claim models.Claim) error
	RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error

	AddLogin(ctx context.Context, user *models.User, login models.Login) error
	RemoveLogin(ctx context.Context, user *models.User, provider, providerKey string) error

	AddToRole(ctx context.Context, user *models.User, roleName string) error
	RemoveFromRole(ctx context.Context, user *models.User, roleName string) error
	IsInRole(ctx context.Context, user *models.User, roleName string) (bool, error)
	GetRoles(ctx context.Context, user *models.User) ([]string, error)

	IncrementFailedAccessCount(ctx context.Context, user *models.User) (int, error)
	ResetFailedAccessCount(ctx context.Context, user *models.User) error
	SetLockoutEnd(ctx context.Context, user *models.User, end *time.Time) error
	ClearExpiredLockouts(ctx context.Context, now time.Time) (int64, error)
}

// RoleStore persists roles. Role names are unique ignoring case.
type RoleStore interface {
	CreateRole(ctx context.Context, role *models.Role) error
	UpdateRole(ctx context.Context, role *models.Role) error
	DeleteRole(ctx context.Context, role *models.Role) error

	FindByID(ctx context.Context, roleID string) (*models.Role, error)
	FindByName(ctx context.Context, roleName string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
}
